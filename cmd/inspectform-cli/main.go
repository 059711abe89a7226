package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	inspectform "github.com/goliatone/go-inspectform"
	"github.com/goliatone/go-inspectform/pkg/backend"
	"github.com/goliatone/go-inspectform/pkg/config"
	"github.com/goliatone/go-inspectform/pkg/contract"
	"github.com/goliatone/go-inspectform/pkg/form"
	"github.com/goliatone/go-inspectform/pkg/renderers/tui"
	"github.com/goliatone/go-inspectform/pkg/report"
	"github.com/goliatone/go-inspectform/pkg/session"
	"github.com/goliatone/go-inspectform/pkg/source"
	"github.com/goliatone/go-inspectform/pkg/submission"
)

type flags struct {
	config       string
	form         string
	hint         string
	backend      string
	targetID     string
	targetType   string
	assignedForm string
	category     string
	user         string
	output       string
	format       string
	contract     bool
	dryRun       bool
	verbose      bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.config, "config", "", "YAML configuration file")
	flag.StringVar(&f.form, "form", "", "form schema path or URL (bypasses the backend form lookup)")
	flag.StringVar(&f.hint, "hint", "", "bootstrap hint JSON file")
	flag.StringVar(&f.backend, "backend", "", "backend base URL (overrides the config file)")
	flag.StringVar(&f.targetID, "target-id", "", "inspected asset id")
	flag.StringVar(&f.targetType, "target-type", "", "inspected asset type")
	flag.StringVar(&f.assignedForm, "assigned-form", "", "form id assigned to the asset")
	flag.StringVar(&f.category, "category", "", "asset category used to pick a form")
	flag.StringVar(&f.user, "user", "", "inspector name")
	flag.StringVar(&f.output, "output", "", "output file (stdout if empty)")
	flag.StringVar(&f.format, "format", "", "output format: json, text or html")
	flag.BoolVar(&f.contract, "contract", false, "print the OpenAPI contract as YAML and exit")
	flag.BoolVar(&f.dryRun, "dry-run", false, "print the payload instead of submitting it")
	flag.BoolVar(&f.verbose, "v", false, "debug logging")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, f, logger); err != nil {
		if errors.Is(err, tui.ErrAborted) || errors.Is(err, tui.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "inspection abandoned")
			os.Exit(130)
		}
		logger.Error("inspectform failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags, logger *slog.Logger) error {
	if f.contract {
		doc, err := contract.YAML()
		if err != nil {
			return err
		}
		return writeOutput(f.output, doc)
	}

	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	applyFlags(&cfg, f)
	if err := cfg.Validate(); err != nil {
		return err
	}

	var client *backend.Client
	if cfg.Backend.URL != "" {
		opts := append(cfg.BackendOptions(), backend.WithLogger(logger))
		client, err = backend.New(cfg.Backend.URL, opts...)
		if err != nil {
			return err
		}
	}

	captured := &capturingSubmitter{}
	switch {
	case f.dryRun || client == nil:
		captured.next = submission.SubmitterFunc(dryRun)
	default:
		captured.next = client
	}

	sessCfg := session.Config{
		TargetID:         f.targetID,
		TargetType:       f.targetType,
		AssignedFormID:   f.assignedForm,
		CategoryID:       f.category,
		UserName:         cfg.Inspector.Name,
		CountdownMinutes: cfg.Inspector.CountdownMinutes,
		Today:            time.Now(),
		Submitter:        captured,
	}
	s, err := openSession(ctx, f, cfg, sessCfg, client, logger)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := checkTarget(s.Preview()); err != nil {
		return err
	}
	schema := s.Form()

	renderer, err := tui.New(tui.WithLogger(logger), tui.WithOutput(os.Stderr))
	if err != nil {
		return err
	}
	receipt, err := renderer.Run(ctx, s)
	if err != nil {
		return err
	}
	logger.Info("inspection recorded", "receipt", receipt.ID, "dry_run", f.dryRun || client == nil)

	payload, ok := captured.last()
	if !ok {
		return errors.New("inspectform: no payload was submitted")
	}
	out, err := renderPayload(payload, schema, cfg.Output.Format)
	if err != nil {
		return err
	}
	return writeOutput(cfg.Output.Path, out)
}

var errMissingTarget = errors.New("inspectform: the inspected asset needs -target-id and -target-type (or a hint naming them)")

// checkTarget rejects a session the backend would refuse, before any
// question is asked.
func checkTarget(p submission.Payload) error {
	var missing []string
	if strings.TrimSpace(p.TargetID) == "" {
		missing = append(missing, "-target-id")
	}
	if strings.TrimSpace(p.TargetType) == "" {
		missing = append(missing, "-target-type")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", errMissingTarget, strings.Join(missing, ", "))
	}
	return nil
}

func applyFlags(cfg *config.Config, f flags) {
	if f.backend != "" {
		cfg.Backend.URL = f.backend
	}
	if f.user != "" {
		cfg.Inspector.Name = f.user
	}
	if f.format != "" {
		cfg.Output.Format = strings.ToLower(strings.TrimSpace(f.format))
	}
	if f.output != "" {
		cfg.Output.Path = f.output
	}
}

func openSession(ctx context.Context, f flags, cfg config.Config, sessCfg session.Config, client *backend.Client, logger *slog.Logger) (*session.Session, error) {
	opts := []session.Option{session.WithLogger(logger)}

	if f.form != "" {
		schema, err := loadForm(ctx, f.form, cfg)
		if err != nil {
			return nil, err
		}
		sessCfg.Form = &schema
	} else if client != nil {
		sessCfg.Fetcher = client
	}

	if f.hint != "" {
		raw, err := os.ReadFile(f.hint)
		if err != nil {
			return nil, fmt.Errorf("inspectform: read hint: %w", err)
		}
		return session.OpenFromHint(ctx, raw, sessCfg, opts...)
	}
	if sessCfg.Form == nil && sessCfg.Fetcher == nil {
		return nil, errors.New("inspectform: one of -form, -hint or -backend is required")
	}
	return session.Open(ctx, sessCfg, opts...)
}

func loadForm(ctx context.Context, location string, cfg config.Config) (form.Form, error) {
	timeout := cfg.Backend.Timeout.Std()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return inspectform.LoadForm(ctx, location, source.WithHTTPFallback(timeout))
}

func renderPayload(payload submission.Payload, schema form.Form, format string) ([]byte, error) {
	if format == config.FormatJSON {
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("inspectform: encode payload: %w", err)
		}
		return append(data, '\n'), nil
	}
	rf, err := report.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	out, err := report.Render(payload, schema, rf)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("inspectform: write output: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Output written to %s\n", path)
	return nil
}

func dryRun(_ context.Context, payload submission.Payload) (submission.Receipt, error) {
	if err := contract.ValidatePayload(payload); err != nil {
		return submission.Receipt{}, &submission.PersistenceError{StatusCode: 422, Err: err}
	}
	return submission.Receipt{ID: "dry-run", SubmittedAt: time.Now().UTC()}, nil
}

// capturingSubmitter keeps the last accepted payload for the output step.
type capturingSubmitter struct {
	next submission.Submitter

	mu      sync.Mutex
	payload *submission.Payload
}

func (c *capturingSubmitter) Submit(ctx context.Context, payload submission.Payload) (submission.Receipt, error) {
	receipt, err := c.next.Submit(ctx, payload)
	if err != nil {
		return receipt, err
	}
	c.mu.Lock()
	c.payload = &payload
	c.mu.Unlock()
	return receipt, nil
}

func (c *capturingSubmitter) last() (submission.Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payload == nil {
		return submission.Payload{}, false
	}
	return *c.payload, true
}
