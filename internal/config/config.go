// Package config loads emailaddr runtime configuration.
//
// Precedence (highest wins): explicitly set flags > EMAILADDR_* env vars >
// emailaddr.yaml > defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/optimode/emailaddr"
	"github.com/optimode/emailaddr/hostname"
)

const envPrefix = "EMAILADDR"

// Config holds all application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Validator ValidatorConfig `mapstructure:"validator"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// ServerConfig holds HTTP service configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	MaxBatch        int           `mapstructure:"max_batch"`
	CORSOrigins     []string      `mapstructure:"cors_origins"` // empty disables CORS
}

// ValidatorConfig maps onto the emailaddr builder options.
type ValidatorConfig struct {
	Workers         int           `mapstructure:"workers"`
	Cache           bool          `mapstructure:"cache"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	CacheMaxEntries int           `mapstructure:"cache_max_entries"`
	Typos           bool          `mapstructure:"typos"`
	TypoThreshold   int           `mapstructure:"typo_threshold"`
	RequireKnownTLD bool          `mapstructure:"require_known_tld"`
	AllowProtocol   bool          `mapstructure:"allow_protocol"`
	AllowPort       bool          `mapstructure:"allow_port"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"log-level":         "log.level",
	"log-format":        "log.format",
	"addr":              "server.addr",
	"cors-origin":       "server.cors_origins",
	"workers":           "validator.workers",
	"cache":             "validator.cache",
	"typos":             "validator.typos",
	"typo-threshold":    "validator.typo_threshold",
	"require-known-tld": "validator.require_known_tld",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.max_batch", 1000)
	v.SetDefault("server.cors_origins", []string{})

	v.SetDefault("validator.workers", 5)
	v.SetDefault("validator.cache", true)
	v.SetDefault("validator.cache_ttl", 5*time.Minute)
	v.SetDefault("validator.cache_max_entries", 10000)
	v.SetDefault("validator.typos", false)
	v.SetDefault("validator.typo_threshold", 2)
	v.SetDefault("validator.require_known_tld", true)
	v.SetDefault("validator.allow_protocol", true)
	v.SetDefault("validator.allow_port", true)
}

// RegisterFlags defines the flags Load understands on fs.
// Only flags the user sets explicitly override other sources.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a config file (default: ./emailaddr.yaml if present)")
	fs.String("log-level", "info", "Log level")
	fs.String("log-format", "json", `Log format "json"|"console"`)
	fs.String("addr", ":8080", "HTTP listen address")
	fs.StringSlice("cors-origin", nil, "Allowed CORS origin (repeatable)")
	fs.Int("workers", 5, "Concurrent validation workers")
	fs.Bool("cache", true, "Cache hostname parse results")
	fs.Bool("typos", false, "Suggest corrections for mistyped provider domains")
	fs.Int("typo-threshold", 2, "Levenshtein distance for typo suggestions")
	fs.Bool("require-known-tld", true, "Reject domains whose TLD is not on the public suffix list")
}

// Load merges defaults, an optional config file, environment and flags.
// fs may be nil. configPaths are searched for emailaddr.yaml when the
// --config flag is not set.
func Load(fs *pflag.FlagSet, configPaths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file := ""
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			file = f.Value.String()
		}
	}
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("emailaddr")
		v.SetConfigType("yaml")
		for _, p := range configPaths {
			v.AddConfigPath(p)
		}
	}
	if file != "" || len(configPaths) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if file != "" || !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Validator.Workers <= 0 {
		return fmt.Errorf("validator.workers must be positive, got %d", c.Validator.Workers)
	}
	if c.Server.MaxBatch <= 0 {
		return fmt.Errorf("server.max_batch must be positive, got %d", c.Server.MaxBatch)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	return nil
}

// NewValidator builds an emailaddr.Validator from c.
func (c ValidatorConfig) NewValidator() (*emailaddr.Validator, error) {
	v := emailaddr.New().WithHostnameOptions(hostname.Options{
		RequireKnownTLD: c.RequireKnownTLD,
		AllowProtocol:   c.AllowProtocol,
		AllowPort:       c.AllowPort,
	})
	if c.Cache {
		v.WithCache(emailaddr.CacheOptions{
			TTL:        c.CacheTTL,
			MaxEntries: c.CacheMaxEntries,
		})
	}
	if c.Typos {
		v.WithTypoSuggestions(emailaddr.TypoOptions{Threshold: c.TypoThreshold})
	}
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("build validator: %w", err)
	}
	return v, nil
}
