// Package backend talks to the inspection REST service: it lists and fetches
// form schemas and persists assembled submissions.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/goliatone/go-inspectform/internal/wire"
	"github.com/goliatone/go-inspectform/pkg/contract"
	"github.com/goliatone/go-inspectform/pkg/form"
	"github.com/goliatone/go-inspectform/pkg/submission"
)

const maxBodyBytes = 4 << 20

var (
	ErrBaseURL  = errors.New("backend: base url must be absolute http(s)")
	ErrNotFound = errors.New("backend: resource not found")
)

// Query filters the form listing.
type Query struct {
	CategoryID string
	ActiveOnly bool
}

// Client is safe for concurrent use.
type Client struct {
	base   *url.URL
	token  string
	http   *retryablehttp.Client
	logger *slog.Logger
	now    func() time.Time
	newKey func() (string, error)
}

var _ submission.Submitter = (*Client)(nil)

// New builds a Client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBaseURL, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, ErrBaseURL
	}

	rc := retryablehttp.NewClient()
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		base:   base,
		http:   rc,
		logger: slog.Default(),
		now:    time.Now,
		newKey: newIdempotencyKey,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	rc.Logger = c.logger
	return c, nil
}

// ListForms returns every form the backend exposes for query.
func (c *Client) ListForms(ctx context.Context, query Query) ([]form.Form, error) {
	values := url.Values{}
	if query.CategoryID != "" {
		values.Set("categorie_id", query.CategoryID)
	}
	if query.ActiveOnly {
		values.Set("actif", "true")
	}

	data, err := c.get(ctx, contract.PathForms, values)
	if err != nil {
		return nil, fmt.Errorf("backend: list forms: %w", err)
	}
	forms, err := wire.DecodeList(data)
	if err != nil {
		return nil, fmt.Errorf("backend: list forms: %w", err)
	}
	return forms, nil
}

// GetForm fetches one form by id.
func (c *Client) GetForm(ctx context.Context, id string) (form.Form, error) {
	if strings.TrimSpace(id) == "" {
		return form.Form{}, errors.New("backend: form id is required")
	}
	path := strings.Replace(contract.PathForm, "{id}", url.PathEscape(id), 1)
	data, err := c.get(ctx, path, nil)
	if err != nil {
		return form.Form{}, fmt.Errorf("backend: get form %s: %w", id, err)
	}
	f, err := wire.Decode(data)
	if err != nil {
		return form.Form{}, fmt.Errorf("backend: get form %s: %w", id, err)
	}
	return f, nil
}

// Submit posts payload to the unified inspection resource. Every attempt of
// one call carries the same Idempotency-Key. Failures are returned as
// *submission.PersistenceError.
func (c *Client) Submit(ctx context.Context, payload submission.Payload) (submission.Receipt, error) {
	if err := contract.ValidatePayload(payload); err != nil {
		// Rejected locally with the status the endpoint would answer.
		return submission.Receipt{}, &submission.PersistenceError{StatusCode: http.StatusUnprocessableEntity, Err: err}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return submission.Receipt{}, &submission.PersistenceError{StatusCode: http.StatusUnprocessableEntity, Err: err}
	}
	key, err := c.newKey()
	if err != nil {
		return submission.Receipt{}, &submission.PersistenceError{Err: fmt.Errorf("idempotency key: %w", err)}
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint(contract.PathSubmissions, nil), body)
	if err != nil {
		return submission.Receipt{}, &submission.PersistenceError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(contract.HeaderIdempotencyKey, key)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("submission failed", "form", payload.FormID, "target", payload.TargetID, "err", err)
		return submission.Receipt{}, &submission.PersistenceError{Err: err}
	}
	defer closeBody(resp)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return submission.Receipt{}, &submission.PersistenceError{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := &submission.PersistenceError{StatusCode: resp.StatusCode, Err: statusError(resp, data)}
		c.logger.Warn("submission rejected", "form", payload.FormID, "status", resp.StatusCode, "retryable", err.Retryable())
		return submission.Receipt{}, err
	}

	receipt := submission.Receipt{}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &receipt); err != nil {
			c.logger.Warn("submission receipt unreadable", "err", err)
		}
	}
	if receipt.IdempotencyKey == "" {
		receipt.IdempotencyKey = key
	}
	if receipt.ID == "" {
		receipt.ID = key
	}
	if receipt.SubmittedAt.IsZero() {
		receipt.SubmittedAt = c.now().UTC()
	}
	c.logger.Info("submission stored", "form", payload.FormID, "target", payload.TargetID, "receipt", receipt.ID)
	return receipt, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, statusError(resp, data)
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body []byte) (*retryablehttp.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var raw any
	if body != nil {
		raw = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, raw)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func statusError(resp *http.Response, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return fmt.Errorf("unexpected status %s: %s", resp.Status, payload.Message)
	}
	return fmt.Errorf("unexpected status %s", resp.Status)
}

func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func newIdempotencyKey() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
