package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"PriceTrust/internal/domain/models"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Verify struct {
		LookbackDays    int           `yaml:"lookback_days"`
		WideWindowDays  int           `yaml:"wide_window_days"`
		CrossTolerance  float64       `yaml:"cross_tolerance"`
		BreakerFailures int           `yaml:"breaker_failures"`
		BreakerReset    time.Duration `yaml:"breaker_reset"`
	} `yaml:"verify"`
	Providers struct {
		Vendor struct {
			BaseURL string        `yaml:"base_url"`
			APIKey  string        `yaml:"api_key"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"vendor"`
		TWSE struct {
			BaseURL string        `yaml:"base_url"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"twse"`
		Yahoo struct {
			BaseURL string        `yaml:"base_url"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"yahoo"`
	} `yaml:"providers"`
	Lifecycle struct {
		Session struct {
			Timezone string `yaml:"timezone"`
			Open     string `yaml:"open"`  // HH:MM
			Close    string `yaml:"close"` // HH:MM
		} `yaml:"session"`
		Tools map[string]models.ToolLifecycleDescriptor `yaml:"tools"`
	} `yaml:"lifecycle"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		AuditTopic   string   `yaml:"audit_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		AsyncInsert  bool          `yaml:"async_insert"`
		WaitForAsync bool          `yaml:"wait_for_async_insert"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("VENDOR_API_KEY"); v != "" {
		c.Providers.Vendor.APIKey = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_AUDIT_TOPIC"); v != "" {
		c.Kafka.AuditTopic = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Verify.CrossTolerance < 0 || c.Verify.CrossTolerance > 1 {
		return fmt.Errorf("verify.cross_tolerance must be a fraction in [0,1], got %v", c.Verify.CrossTolerance)
	}
	if c.Verify.LookbackDays < 0 {
		return fmt.Errorf("verify.lookback_days must be >= 0")
	}
	for name, d := range c.Lifecycle.Tools {
		switch d.Lifecycle {
		case models.LifecycleRealtime, models.LifecycleIntraday, models.LifecyclePeriodic,
			models.LifecycleStatic, models.LifecycleEventDriven:
		default:
			return fmt.Errorf("lifecycle.tools.%s: unknown lifecycle %q", name, d.Lifecycle)
		}
		if d.JitterPct < 0 || d.JitterPct >= 100 {
			return fmt.Errorf("lifecycle.tools.%s: jitter_pct must be in [0,100)", name)
		}
	}
	return nil
}
