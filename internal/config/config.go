// Package config provides centralized configuration for the server.
// Values come from an optional YAML file, overridden by environment
// variables, with sensible defaults for everything.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts Go duration strings ("500ms", "2s") in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Config holds all server configuration values.
type Config struct {
	// Port is the HTTP server listen port.
	Port string `yaml:"port"`

	// DBPath is the path to the SQLite database file.
	DBPath string `yaml:"db_path"`

	// OpenAIKey is the API key for the rewrite backend. When empty the
	// server runs with stub clients.
	OpenAIKey string `yaml:"openai_key"`

	// OpenAIModel is the model identifier for completions.
	OpenAIModel string `yaml:"openai_model"`

	// OpenAIBaseURL overrides the API endpoint, for OpenAI-compatible
	// backends (Azure, local inference servers).
	OpenAIBaseURL string `yaml:"openai_base_url"`

	// RedisAddr enables the Redis-backed task queue when non-empty;
	// otherwise an in-process queue is used.
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisQueueKey string `yaml:"redis_queue_key"`

	// WorkerCount is the number of pipeline worker goroutines.
	WorkerCount int `yaml:"worker_count"`

	// QueueSize is the in-process queue's initial capacity (ignored with
	// Redis).
	QueueSize int `yaml:"queue_size"`

	// MaxRetries is how many times a failed stage is re-attempted.
	// Zero disables retries.
	MaxRetries int `yaml:"max_retries"`

	// RetryBaseDelay is the wait before the first retry; it doubles on
	// each subsequent one.
	RetryBaseDelay Duration `yaml:"retry_base_delay"`

	// HTTPTimeout is the timeout for outgoing HTTP requests (fetch, rewrite).
	HTTPTimeout Duration `yaml:"http_timeout"`

	// MetricsAddr is the listen address for the Prometheus endpoint.
	// Empty disables it.
	MetricsAddr string `yaml:"metrics_addr"`

	// CORSOrigin is the allowed CORS origin. Defaults to "*".
	CORSOrigin string `yaml:"cors_origin"`
}

func defaults() Config {
	return Config{
		Port:           "8080",
		DBPath:         "seopipe.db",
		OpenAIModel:    "gpt-4o-mini",
		RedisQueueKey:  "seopipe:tasks",
		WorkerCount:    4,
		QueueSize:      256,
		MaxRetries:     3,
		RetryBaseDelay: Duration(2 * time.Second),
		HTTPTimeout:    Duration(60 * time.Second),
		CORSOrigin:     "*",
	}
}

// Load starts from the defaults, overlays the YAML file at path (skipped when
// path is empty or the file does not exist), then overlays environment
// variable overrides. A value explicitly set to zero stays zero; only unset
// values take defaults.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.clamp()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setStr(&c.Port, "PORT")
	setStr(&c.DBPath, "DB_PATH")
	setStr(&c.OpenAIKey, "OPENAI_API_KEY")
	setStr(&c.OpenAIModel, "OPENAI_MODEL")
	setStr(&c.OpenAIBaseURL, "OPENAI_BASE_URL")
	setStr(&c.RedisAddr, "REDIS_ADDR")
	setStr(&c.RedisPassword, "REDIS_PASSWORD")
	setInt(&c.RedisDB, "REDIS_DB")
	setStr(&c.RedisQueueKey, "REDIS_QUEUE_KEY")
	setInt(&c.WorkerCount, "WORKER_COUNT")
	setInt(&c.QueueSize, "QUEUE_SIZE")
	setInt(&c.MaxRetries, "MAX_RETRIES")
	setDuration(&c.RetryBaseDelay, "RETRY_BASE_DELAY")
	setDuration(&c.HTTPTimeout, "HTTP_TIMEOUT")
	setStr(&c.MetricsAddr, "METRICS_ADDR")
	setStr(&c.CORSOrigin, "CORS_ORIGIN")
}

// clamp restores defaults for values where zero or negative is meaningless.
// MaxRetries is the exception: zero is a valid setting (no retries).
func (c *Config) clamp() {
	d := defaults()
	if c.Port == "" {
		c.Port = d.Port
	}
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = d.OpenAIModel
	}
	if c.RedisQueueKey == "" {
		c.RedisQueueKey = d.RedisQueueKey
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.QueueSize <= 0 {
		c.QueueSize = d.QueueSize
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = d.RetryBaseDelay
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = d.HTTPTimeout
	}
	if c.CORSOrigin == "" {
		c.CORSOrigin = d.CORSOrigin
	}
}

// UseStubs returns true when no rewrite API key is configured.
func (c Config) UseStubs() bool {
	return c.OpenAIKey == ""
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setDuration(dst *Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = Duration(d)
	}
}
