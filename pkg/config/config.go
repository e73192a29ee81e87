package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Tiingo struct {
		APIKey            string        `yaml:"api_key"`
		BaseURL           string        `yaml:"base_url"`
		Timeout           time.Duration `yaml:"timeout"`
		RequestsPerMinute int           `yaml:"requests_per_minute"`
	} `yaml:"tiingo"`
	Model struct {
		Symbol       string        `yaml:"symbol"`
		Lookback     int           `yaml:"lookback"`
		TrainRatio   float64       `yaml:"train_ratio"`
		Epochs       int           `yaml:"epochs"`
		BatchSize    int           `yaml:"batch_size"`
		LearningRate float64       `yaml:"learning_rate"`
		CacheTTL     time.Duration `yaml:"cache_ttl"`
	} `yaml:"model"`
	Storage struct {
		ModelDir string `yaml:"model_dir"`
	} `yaml:"storage"`
	Kafka struct {
		Enabled       bool     `yaml:"enabled"`
		Brokers       []string `yaml:"brokers"`
		TrainingTopic string   `yaml:"training_topic"`
		ForecastTopic string   `yaml:"forecast_topic"`
		RequiredAcks  int      `yaml:"required_acks"`
		Compression   string   `yaml:"compression"`
		Producer      struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		Table            string        `yaml:"table"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
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

	c.applyDefaults()

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

	if v := os.Getenv("TIINGO_API_KEY"); v != "" {
		c.Tiingo.APIKey = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		c.Model.Symbol = v
	}
	if v := os.Getenv("MODEL_DIR"); v != "" {
		c.Storage.ModelDir = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Tiingo.BaseURL == "" {
		c.Tiingo.BaseURL = "https://api.tiingo.com"
	}
	if c.Tiingo.Timeout == 0 {
		c.Tiingo.Timeout = 30 * time.Second
	}
	if c.Model.Symbol == "" {
		c.Model.Symbol = "NFLX"
	}
	if c.Model.Lookback == 0 {
		c.Model.Lookback = 100
	}
	if c.Model.TrainRatio == 0 {
		c.Model.TrainRatio = 0.65
	}
	if c.Model.Epochs == 0 {
		c.Model.Epochs = 100
	}
	if c.Model.BatchSize == 0 {
		c.Model.BatchSize = 64
	}
	if c.Model.LearningRate == 0 {
		c.Model.LearningRate = 0.05
	}
	if c.Model.CacheTTL == 0 {
		c.Model.CacheTTL = 15 * time.Minute
	}
	if c.Storage.ModelDir == "" {
		c.Storage.ModelDir = "models"
	}
	if c.ClickHouse.Table == "" {
		c.ClickHouse.Table = "daily_bars"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Tiingo.APIKey == "" {
		return fmt.Errorf("tiingo.api_key is required")
	}
	if c.Model.Lookback < 1 {
		return fmt.Errorf("model.lookback must be positive, got %d", c.Model.Lookback)
	}
	if c.Model.TrainRatio <= 0 || c.Model.TrainRatio >= 1 {
		return fmt.Errorf("model.train_ratio must be in (0, 1), got %g", c.Model.TrainRatio)
	}
	if c.Model.LearningRate <= 0 {
		return fmt.Errorf("model.learning_rate must be positive, got %g", c.Model.LearningRate)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	return nil
}
