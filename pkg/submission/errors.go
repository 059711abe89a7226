package submission

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MissingItem names a mandatory slot without an answer.
type MissingItem struct {
	SectionID    string `json:"sectionId"`
	SectionTitle string `json:"sectionTitle"`
	ItemID       string `json:"itemId,omitempty"`
	ItemName     string `json:"itemName"`
}

// ValidationError blocks submission until the listed items are answered.
// The answer state is kept.
type ValidationError struct {
	Missing []MissingItem
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		names = append(names, fmt.Sprintf("%s / %s", m.SectionTitle, m.ItemName))
	}
	return "submission: mandatory items unanswered: " + strings.Join(names, ", ")
}

// PersistenceError reports a failed hand-off to the backend. The answer
// state is kept so the user can retry.
type PersistenceError struct {
	StatusCode int
	Err        error
}

func (e *PersistenceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("submission: persistence failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("submission: persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Retryable reports whether retrying the same payload may succeed. Network
// failures, 5xx, 408 and 429 are retryable; other 4xx are not.
func (e *PersistenceError) Retryable() bool {
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	}
	return false
}

// IsRetryable reports whether err carries a retryable PersistenceError.
func IsRetryable(err error) bool {
	var persistErr *PersistenceError
	return errors.As(err, &persistErr) && persistErr.Retryable()
}
