// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type RedisConfig struct {
	URL       string        `yaml:"url"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	StatusTTL time.Duration `yaml:"status_ttl"` // status record retention
}

type SubmitConfig struct {
	LockTTL      time.Duration `yaml:"lock_ttl"`
	LockAttempts int           `yaml:"lock_attempts"`
	LockBackoff  time.Duration `yaml:"lock_backoff"`
}

type WorkerConfig struct {
	Instances         int           `yaml:"instances"`
	DequeueTimeout    time.Duration `yaml:"dequeue_timeout"`
	ProcessingLockTTL time.Duration `yaml:"processing_lock_ttl"`
	MetricsPort       int           `yaml:"metrics_port"`
}

type MLConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"` // primary classify budget, distinct from the lock lease
}

type NotifyConfig struct {
	SlackWebhookURL string        `yaml:"slack_webhook_url"`
	Threshold       float64       `yaml:"threshold"` // notify when S > threshold
	Timeout         time.Duration `yaml:"timeout"`
	PoolWorkers     int           `yaml:"pool_workers"`
}

type Config struct {
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Submit SubmitConfig `yaml:"submit"`
	Worker WorkerConfig `yaml:"worker"`
	ML     MLConfig     `yaml:"ml"`
	Notify NotifyConfig `yaml:"notify"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Notify.Threshold < 0 || cfg.Notify.Threshold > 1 {
		return nil, errors.New("notify.threshold must be in [0,1]")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "ssr:"
	}
	if cfg.Redis.StatusTTL <= 0 {
		cfg.Redis.StatusTTL = 7 * 24 * time.Hour
	}
	if cfg.Submit.LockTTL <= 0 {
		cfg.Submit.LockTTL = 5 * time.Second
	}
	if cfg.Submit.LockAttempts <= 0 {
		cfg.Submit.LockAttempts = 5
	}
	if cfg.Submit.LockBackoff <= 0 {
		cfg.Submit.LockBackoff = 50 * time.Millisecond
	}
	if cfg.Worker.Instances <= 0 {
		cfg.Worker.Instances = 1
	}
	if cfg.Worker.DequeueTimeout <= 0 {
		cfg.Worker.DequeueTimeout = 5 * time.Second
	}
	if cfg.Worker.ProcessingLockTTL <= 0 {
		cfg.Worker.ProcessingLockTTL = 5 * time.Minute
	}
	if cfg.Worker.MetricsPort <= 0 {
		cfg.Worker.MetricsPort = 9091
	}
	if cfg.ML.BaseURL == "" {
		cfg.ML.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.ML.Model == "" {
		cfg.ML.Model = "gpt-4o-mini"
	}
	if cfg.ML.Timeout <= 0 {
		cfg.ML.Timeout = 20 * time.Second
	}
	if cfg.Notify.Threshold == 0 {
		cfg.Notify.Threshold = 0.8
	}
	if cfg.Notify.Timeout <= 0 {
		cfg.Notify.Timeout = 10 * time.Second
	}
	if cfg.Notify.PoolWorkers <= 0 {
		cfg.Notify.PoolWorkers = 4
	}
}
