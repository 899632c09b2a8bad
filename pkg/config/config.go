// Package config loads plugincheck settings from flags, PLUGINCHECK_*
// environment variables and an optional plugincheck.yaml file via viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/jingkaihe/plugincheck/pkg/manifest"
)

// EnvPrefix is the prefix of every environment variable read by plugincheck
const EnvPrefix = "PLUGINCHECK"

// Config holds the settings of a plugincheck invocation
type Config struct {
	Root       string            `mapstructure:"root"`
	SchemasDir string            `mapstructure:"schemas_dir"`
	Kinds      []string          `mapstructure:"kinds"`
	Patterns   map[string]string `mapstructure:"patterns"`
	Exclude    []string          `mapstructure:"exclude"`
	Output     string            `mapstructure:"output"`
	Color      string            `mapstructure:"color"`
	Quiet      bool              `mapstructure:"quiet"`
	LogLevel   string            `mapstructure:"log_level"`
	LogFormat  string            `mapstructure:"log_format"`
	Watch      WatchConfig       `mapstructure:"watch"`
}

// WatchConfig holds settings for watch mode
type WatchConfig struct {
	Debounce   time.Duration `mapstructure:"debounce"`
	IgnoreDirs []string      `mapstructure:"ignore_dirs"`
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("root", ".")
	v.SetDefault("schemas_dir", "")
	v.SetDefault("kinds", []string{})
	v.SetDefault("exclude", []string{})
	v.SetDefault("output", "text")
	v.SetDefault("color", "auto")
	v.SetDefault("quiet", false)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("watch.debounce", 500*time.Millisecond)
	v.SetDefault("watch.ignore_dirs", []string{".git", "node_modules"})
}

// NewViper creates a viper instance with defaults, environment binding and
// config file lookup in the given directories (plugincheck.yaml)
func NewViper(configPaths ...string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("plugincheck")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}

	return v
}

// ReadConfigFile reads the config file if one exists. A missing file is not
// an error; a malformed one is.
func ReadConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

// Load decodes and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(c.Root) == "" {
		result = multierror.Append(result, errors.New("root must not be empty"))
	}

	for _, k := range c.Kinds {
		if _, err := manifest.ParseKind(k); err != nil {
			result = multierror.Append(result, err)
		}
	}

	for k, pattern := range c.Patterns {
		if _, err := manifest.ParseKind(k); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "patterns"))
		}
		if strings.TrimSpace(pattern) == "" {
			result = multierror.Append(result, errors.Errorf("pattern for '%s' must not be empty", k))
		}
	}

	switch c.Output {
	case "text", "json":
	default:
		result = multierror.Append(result, errors.Errorf("invalid output format '%s', must be one of: text, json", c.Output))
	}

	switch strings.ToLower(c.Color) {
	case "auto", "always", "force", "never", "off":
	default:
		result = multierror.Append(result, errors.Errorf("invalid color mode '%s', must be one of: auto, always, never", c.Color))
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, errors.Errorf("invalid log level '%s'", c.LogLevel))
	}

	switch c.LogFormat {
	case "text", "fmt", "json":
	default:
		result = multierror.Append(result, errors.Errorf("invalid log format '%s', must be one of: text, json", c.LogFormat))
	}

	if c.Watch.Debounce < 0 {
		result = multierror.Append(result, fmt.Errorf("watch debounce cannot be negative: %s", c.Watch.Debounce))
	}

	return result.ErrorOrNil()
}

// SelectedKinds returns the kinds to check in canonical order, defaulting to
// all kinds. Duplicates collapse.
func (c *Config) SelectedKinds() []manifest.Kind {
	if len(c.Kinds) == 0 {
		return manifest.Kinds()
	}

	wanted := make(map[manifest.Kind]bool)
	for _, k := range c.Kinds {
		if kind, err := manifest.ParseKind(k); err == nil {
			wanted[kind] = true
		}
	}

	var kinds []manifest.Kind
	for _, kind := range manifest.Kinds() {
		if wanted[kind] {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// KindPatterns returns the pattern overrides keyed by kind
func (c *Config) KindPatterns() map[manifest.Kind]string {
	out := make(map[manifest.Kind]string, len(c.Patterns))
	for k, pattern := range c.Patterns {
		if kind, err := manifest.ParseKind(k); err == nil {
			out[kind] = pattern
		}
	}
	return out
}
