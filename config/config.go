package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Storage       StorageConfig       `mapstructure:"storage"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Worker        WorkerConfig        `mapstructure:"worker"`
	Poller        PollerConfig        `mapstructure:"poller"`
	Reminders     RemindersConfig     `mapstructure:"reminders"`
	Email         EmailConfig         `mapstructure:"email"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Log           LogConfig           `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadMB     int64         `mapstructure:"max_upload_mb"`
}

type DatabaseConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	LogSQL       bool   `mapstructure:"log_sql"`
}

type StorageConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	AccessKey string        `mapstructure:"access_key"`
	SecretKey string        `mapstructure:"secret_key"`
	Bucket    string        `mapstructure:"bucket"`
	Region    string        `mapstructure:"region"`
	UseSSL    bool          `mapstructure:"use_ssl"`
	URLTTL    time.Duration `mapstructure:"url_ttl"`
}

type LLMConfig struct {
	Provider string        `mapstructure:"provider"` // openai | ollama
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Vision   bool          `mapstructure:"vision"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Retries  int           `mapstructure:"retries"`
}

type WorkerConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	TaskTimeout time.Duration `mapstructure:"task_timeout"`
	LockTTL     time.Duration `mapstructure:"lock_ttl"`
}

type PollerConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	Multiplier  float64       `mapstructure:"multiplier"`
	MaxInterval time.Duration `mapstructure:"max_interval"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type RemindersConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Schedule       string `mapstructure:"schedule"`
	WindowDays     int    `mapstructure:"window_days"`
	ExpirySchedule string `mapstructure:"expiry_schedule"`
}

type EmailConfig struct {
	APIKey string `mapstructure:"api_key"`
	From   string `mapstructure:"from"`
	// 收件人；为空时发送到供应商邮箱
	To []string `mapstructure:"to"`
}

// Enabled reports whether reminder emails can be sent at all.
func (e EmailConfig) Enabled() bool { return e.APIKey != "" }

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load 读取配置：path 为空时按默认目录查找 config.yaml，环境变量 DOCUFLOW_* 覆盖文件
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/docuflow")
	}

	v.SetEnvPrefix("DOCUFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no sensible default.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("unsupported llm.provider %q", c.LLM.Provider)
	}
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("worker.concurrency must be >= 1, got %d", c.Worker.Concurrency)
	}
	if c.Poller.MaxAttempts < 1 {
		return fmt.Errorf("poller.max_attempts must be >= 1, got %d", c.Poller.MaxAttempts)
	}
	if c.Poller.Multiplier < 1 {
		return fmt.Errorf("poller.multiplier must be >= 1, got %v", c.Poller.Multiplier)
	}
	if c.Reminders.WindowDays < 0 {
		return fmt.Errorf("reminders.window_days must be >= 0, got %d", c.Reminders.WindowDays)
	}
	switch strings.TrimSpace(c.Auth.JWTSecret) {
	case "", "change-me", "secret":
		return fmt.Errorf("auth.jwt_secret must be set to a private value")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.max_upload_mb", 20)

	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=docuflow port=5432 sslmode=disable")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.log_sql", false)

	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.access_key", "minioadmin")
	v.SetDefault("storage.secret_key", "minioadmin")
	v.SetDefault("storage.bucket", "documents")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.url_ttl", "60s")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.vision", true)
	v.SetDefault("llm.timeout", "120s")
	v.SetDefault("llm.retries", 3)

	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.task_timeout", "3m")
	v.SetDefault("worker.lock_ttl", "5m")

	v.SetDefault("poller.interval", "2s")
	v.SetDefault("poller.multiplier", 1.5)
	v.SetDefault("poller.max_interval", "10s")
	v.SetDefault("poller.max_attempts", 60)
	v.SetDefault("poller.timeout", "5m")

	v.SetDefault("reminders.enabled", true)
	v.SetDefault("reminders.schedule", "0 0 8 * * *")
	v.SetDefault("reminders.window_days", 3)
	v.SetDefault("reminders.expiry_schedule", "0 0 2 * * *")

	v.SetDefault("email.api_key", "")
	v.SetDefault("email.from", "DocuFlow AI <onboarding@resend.dev>")
	v.SetDefault("email.to", []string{})

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("elasticsearch.addresses", []string{})
	v.SetDefault("elasticsearch.index", "docuflow_records")

	// 没有默认密钥，必须通过配置或 DOCUFLOW_AUTH_JWT_SECRET 提供
	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
