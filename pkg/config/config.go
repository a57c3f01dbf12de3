// Package config loads run defaults for telhelp.
//
// Precedence, lowest to highest: built-in defaults, an optional
// telhelp.yaml file, TELHELP_* environment variables, command-line
// flags (applied by the cmd layer). The resulting Config is an
// explicit value handed to the pipeline constructor; there is no
// process-global state, so several conversions can run side by side.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/auxspace/telhelp/pkg/format"
)

// DefaultFile is the config file probed in the working directory when
// no --config flag is given.
const DefaultFile = "telhelp.yaml"

// Config holds run defaults for a conversion.
type Config struct {
	// Format is the output data format name.
	Format string `yaml:"format" env:"TELHELP_FORMAT"`
	// Timebase is how many raw timestamp units make up one second.
	// Zero disables rebasing.
	Timebase float64 `yaml:"timebase" env:"TELHELP_TIMEBASE"`
	// Epoch is the absolute instant raw timestamps count from,
	// RFC 3339. Empty means derive it so the newest record lands on
	// the current time.
	Epoch string `yaml:"epoch" env:"TELHELP_EPOCH"`
	// Output is the output path; "-" or empty means stdout.
	Output string `yaml:"output" env:"TELHELP_OUTPUT"`
	// Filter is an optional record predicate expression.
	Filter string `yaml:"filter" env:"TELHELP_FILTER"`
	// NoShow disables the plot view.
	NoShow bool `yaml:"no_show" env:"TELHELP_NO_SHOW"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"TELHELP_LOG_LEVEL"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Format:   string(format.LineProtocol),
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped
// silently when it does not exist and optional is true), and the
// environment.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && optional:
		// no file, defaults apply
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for semantic errors.
func Validate(c *Config) []error {
	var errs []error
	if _, err := format.Parse(c.Format); err != nil {
		errs = append(errs, err)
	}
	if c.Timebase < 0 {
		errs = append(errs, fmt.Errorf("timebase must be >= 0, got %v", c.Timebase))
	}
	if c.Epoch != "" {
		if _, err := time.Parse(time.RFC3339, c.Epoch); err != nil {
			errs = append(errs, fmt.Errorf("epoch: %w", err))
		}
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn or error; got %q", c.LogLevel))
	}
	return errs
}

// EpochTime parses the configured epoch. The zero time means "derive
// automatically".
func (c *Config) EpochTime() (time.Time, error) {
	if c.Epoch == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, c.Epoch)
}
