package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/facetlabs/facet/pkg/helper"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from either a Go duration
// string ("30s", "1h") or a bare number, read as seconds to match the
// service's historical environment variables.
type Duration time.Duration

// Duration returns the standard library form.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var secs int64
	if err := value.Decode(&secs); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

type (
	// Config is the root configuration for the facet service.
	Config struct {
		Server    ServerConfig    `yaml:"server"`
		Telegram  TelegramConfig  `yaml:"telegram"`
		Blob      BlobConfig      `yaml:"blob"`
		Session   SessionConfig   `yaml:"session"`
		RateLimit RateLimitConfig `yaml:"rate_limit"`
		Logger    LoggerConfig    `yaml:"logger"`
		Metrics   MetricsConfig   `yaml:"metrics"`
		TimeZone  string          `yaml:"time_zone"` // journal timestamps, default Asia/Kolkata
	}

	// ServerConfig covers the HTTP health/metrics surface.
	ServerConfig struct {
		Port int `yaml:"port"`
	}

	// TelegramConfig holds the bot credentials and poll tuning.
	TelegramConfig struct {
		Token       string        `yaml:"token"`
		PollTimeout Duration      `yaml:"poll_timeout"`
	}

	// BlobConfig selects the object store backend.
	BlobConfig struct {
		Type string       `yaml:"type"` // "memory", "disk" or "s3"
		Disk BlobDiskConf `yaml:"disk"`
		S3   BlobS3Conf   `yaml:"s3"`
	}

	BlobDiskConf struct {
		BaseDir string `yaml:"base_dir"`
	}

	BlobS3Conf struct {
		Endpoint  string `yaml:"endpoint"`
		Region    string `yaml:"region"`
		Bucket    string `yaml:"bucket"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		UseSSL    bool   `yaml:"use_ssl"`
	}

	// SessionConfig selects the session store backend and the idle timeout.
	SessionConfig struct {
		Type    string             `yaml:"type"` // "memory" or "redis"
		Timeout Duration           `yaml:"timeout"`
		Sweep   Duration           `yaml:"sweep"` // 0 disables the periodic sweep
		Redis   SessionRedisConfig `yaml:"redis"`
	}

	// SessionRedisConfig represents the Redis configuration for session storage.
	SessionRedisConfig struct {
		Addr     string `yaml:"addr"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	}

	// RateLimitConfig bounds per-identity request rates.
	RateLimitConfig struct {
		Limit  int           `yaml:"limit"`
		Window Duration      `yaml:"window"`
	}

	// LoggerConfig represents the logger configuration.
	LoggerConfig struct {
		Level      string `yaml:"level"`       // debug, info, warn, error
		Format     string `yaml:"format"`      // json, console
		Output     string `yaml:"output"`      // stdout, file
		FilePath   string `yaml:"file_path"`   // path to log file when output is file
		MaxSize    int    `yaml:"max_size"`    // max size of log file in MB
		MaxBackups int    `yaml:"max_backups"` // max number of backup files
		MaxAge     int    `yaml:"max_age"`     // max age of backup files in days
		Compress   bool   `yaml:"compress"`    // whether to compress backup files
		Color      bool   `yaml:"color"`       // whether to use color in console output
		Stacktrace bool   `yaml:"stacktrace"`  // whether to include stacktrace in error logs
	}

	// MetricsConfig configures the Prometheus registry.
	MetricsConfig struct {
		Enabled   bool      `yaml:"enabled"`
		Namespace string    `yaml:"namespace"`
		Buckets   []float64 `yaml:"buckets"`
	}
)

// LoadConfig loads configuration from a YAML file with environment variable
// support and applies defaults for anything left unset.
func LoadConfig(filename string) (*Config, string, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfgPath := helper.GetCfgPath(filename)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, cfgPath, err
	}

	data = resolveEnv(data)
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cfgPath, err
	}

	cfg.SetDefaults()
	return &cfg, cfgPath, nil
}

// SetDefaults fills in defaults for anything left unset. The numeric
// defaults (timeout 3600s, limit 5, window 10s, port 10000) are the
// service's historical environment defaults.
func (c *Config) SetDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 10000
	}
	if c.Telegram.PollTimeout == 0 {
		c.Telegram.PollTimeout = Duration(30 * time.Second)
	}
	if c.Blob.Type == "" {
		c.Blob.Type = "disk"
	}
	if c.Blob.Disk.BaseDir == "" {
		c.Blob.Disk.BaseDir = "data"
	}
	if c.Session.Type == "" {
		c.Session.Type = "memory"
	}
	if c.Session.Timeout == 0 {
		c.Session.Timeout = Duration(3600 * time.Second)
	}
	if c.RateLimit.Limit == 0 {
		c.RateLimit.Limit = 5
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = Duration(10 * time.Second)
	}
	if c.TimeZone == "" {
		c.TimeZone = "Asia/Kolkata"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "facet"
	}
}

// resolveEnv replaces environment variable placeholders in YAML content
func resolveEnv(content []byte) []byte {
	regex := regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

	return regex.ReplaceAllFunc(content, func(match []byte) []byte {
		matches := regex.FindSubmatch(match)
		envKey := string(matches[1])
		var defaultValue string

		if len(matches) > 2 {
			defaultValue = string(matches[2])
		}

		if value, exists := os.LookupEnv(envKey); exists {
			return []byte(value)
		}
		return []byte(defaultValue)
	})
}
