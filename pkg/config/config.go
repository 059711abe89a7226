// Package config loads the YAML configuration of the inspectform CLI.
//
//	backend:
//	  url: https://api.example.test/v1
//	  token: ${INSPECTFORM_TOKEN}
//	  timeout: 15s
//	  retry: {max: 4, wait_min: 500ms, wait_max: 10s}
//	inspector:
//	  name: Jeanne Tremblay
//	  countdown_minutes: 5
//	output:
//	  format: text
//
// Command-line flags override file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-inspectform/pkg/backend"
)

// Output formats accepted by the CLI.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatHTML = "html"
)

var ErrInvalid = errors.New("config: invalid configuration")

// Duration is a time.Duration written as "15s" or "500ms".
type Duration time.Duration

// UnmarshalYAML accepts Go duration strings and bare integers (seconds).
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("config: line %d: duration must be a scalar", node.Line)
	}
	var seconds int64
	if err := node.Decode(&seconds); err == nil {
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("config: line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration in its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Backend   Backend   `yaml:"backend"`
	Inspector Inspector `yaml:"inspector"`
	Output    Output    `yaml:"output"`
}

type Backend struct {
	URL     string   `yaml:"url"`
	Token   string   `yaml:"token"`
	Timeout Duration `yaml:"timeout"`
	Retry   Retry    `yaml:"retry"`
}

type Retry struct {
	Max     int      `yaml:"max"`
	WaitMin Duration `yaml:"wait_min"`
	WaitMax Duration `yaml:"wait_max"`
}

type Inspector struct {
	Name             string  `yaml:"name"`
	CountdownMinutes float64 `yaml:"countdown_minutes"`
}

type Output struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Backend: Backend{
			Timeout: Duration(30 * time.Second),
			Retry: Retry{
				Max:     4,
				WaitMin: Duration(time.Second),
				WaitMax: Duration(30 * time.Second),
			},
		},
		Output: Output{Format: FormatJSON},
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults. Unknown keys are rejected and
// ${VAR} references in the token are expanded from the environment.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Backend.Token = os.ExpandEnv(cfg.Backend.Token)
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var problems []string
	switch c.Output.Format {
	case FormatJSON, FormatText, FormatHTML:
	default:
		problems = append(problems, fmt.Sprintf("output.format %q is not one of json, text, html", c.Output.Format))
	}
	if c.Backend.Retry.Max < 0 {
		problems = append(problems, "backend.retry.max cannot be negative")
	}
	if c.Backend.Retry.WaitMin > c.Backend.Retry.WaitMax {
		problems = append(problems, "backend.retry.wait_min exceeds wait_max")
	}
	if c.Backend.Timeout < 0 {
		problems = append(problems, "backend.timeout cannot be negative")
	}
	if c.Inspector.CountdownMinutes < 0 {
		problems = append(problems, "inspector.countdown_minutes cannot be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// BackendOptions translates the backend section into client options.
func (c Config) BackendOptions() []backend.Option {
	opts := []backend.Option{
		backend.WithRetry(c.Backend.Retry.Max, c.Backend.Retry.WaitMin.Std(), c.Backend.Retry.WaitMax.Std()),
	}
	if c.Backend.Token != "" {
		opts = append(opts, backend.WithToken(c.Backend.Token))
	}
	if c.Backend.Timeout > 0 {
		opts = append(opts, backend.WithTimeout(c.Backend.Timeout.Std()))
	}
	return opts
}

// Marshal encodes c as YAML.
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	return buf.Bytes(), nil
}
