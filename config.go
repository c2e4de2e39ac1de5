package agentllama

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the runtime configuration. It
// can be populated from YAML or JSON; zero-value fields inherit their package
// defaults.
type Config struct {
	Admission  AdmissionConfig  `json:"admission" yaml:"admission"`
	Dispatcher DispatcherConfig `json:"dispatcher" yaml:"dispatcher"`

	// Buffer is the promotion queue capacity. A completing task blocks once
	// the buffer is full rather than dropping a promotion.
	Buffer int `json:"buffer" yaml:"buffer"`
}

// AdmissionConfig configures the admission gate.
type AdmissionConfig struct {
	// MaxConcurrent is the fixed upper bound on simultaneously running tasks.
	MaxConcurrent int `json:"maxConcurrent" yaml:"maxConcurrent"`
}

// DispatcherConfig configures the promotion dispatcher.
type DispatcherConfig struct {
	Workers int `json:"workers" yaml:"workers"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Admission:  AdmissionConfig{MaxConcurrent: 2},
		Dispatcher: DispatcherConfig{Workers: 5},
		Buffer:     100,
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Admission.MaxConcurrent <= 0 {
		return fmt.Errorf("admission.maxConcurrent must be > 0, got %d", c.Admission.MaxConcurrent)
	}
	if c.Dispatcher.Workers <= 0 {
		return fmt.Errorf("dispatcher.workers must be > 0, got %d", c.Dispatcher.Workers)
	}
	return nil
}

// init fills zero-value fields with package defaults.
func (c *Config) init() {
	defaults := DefaultConfig()
	if c.Admission.MaxConcurrent == 0 {
		c.Admission.MaxConcurrent = defaults.Admission.MaxConcurrent
	}
	if c.Dispatcher.Workers == 0 {
		c.Dispatcher.Workers = defaults.Dispatcher.Workers
	}
	if c.Buffer == 0 {
		c.Buffer = defaults.Buffer
	}
}

// LoadConfig reads a YAML configuration from the specified URL. Any scheme
// the afs service understands works, including file paths and embed:// with
// the corresponding fs option.
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", URL, err)
	}
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config from %s: %w", URL, err)
	}
	config.init()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
