// Package config loads settings for the mathexec command from TOML or YAML
// files.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file format.
type Format int

const (
	// FormatTOML is TOML, the default.
	FormatTOML Format = iota
	// FormatYAML is YAML.
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// DetectFormat chooses a format from a file extension. Files with
// extensions other than .yaml and .yml are TOML.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Backends names the accepted values of Config.Backend.
var Backends = []string{"float", "decimal", "bigfloat"}

// Config holds command settings.
type Config struct {
	// Backend selects the number type: float, decimal, or bigfloat.
	Backend string `toml:"backend" yaml:"backend"`
	// Precision is bits of mantissa for bigfloat and decimal places for
	// decimal. Zero uses the backend's default.
	Precision uint `toml:"precision" yaml:"precision"`
	// DivisionByZeroIsZero makes division by zero produce zero.
	DivisionByZeroIsZero bool `toml:"division_by_zero_is_zero" yaml:"division_by_zero_is_zero"`
	// CacheSize is the number of compiled expressions to keep. Negative
	// disables the cache; zero uses the default size.
	CacheSize int `toml:"cache_size" yaml:"cache_size"`
	// LogLevel is debug, info, warn, or error.
	LogLevel string `toml:"log_level" yaml:"log_level"`
	// Variables are predefined variables. Strings are evaluated as
	// expressions.
	Variables map[string]any `toml:"variables" yaml:"variables"`
}

// Default returns the settings used without a configuration file.
func Default() Config {
	return Config{
		Backend:  "float",
		LogLevel: "warn",
	}
}

// Load reads a configuration file over the defaults.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(b, DetectFormat(path))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes configuration content over the defaults and validates it.
func Parse(content []byte, format Format) (Config, error) {
	cfg := Default()
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("TOML parse error: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("YAML parse error: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported format: %v", format)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that settings have meaningful values.
func (c Config) Validate() error {
	ok := false
	for _, b := range Backends {
		ok = ok || c.Backend == b
	}
	if !ok {
		return fmt.Errorf("unknown backend %q (want one of %s)", c.Backend, strings.Join(Backends, ", "))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}
