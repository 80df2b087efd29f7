package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/logtide")
	}

	setDefaults(v)

	// Enable environment variable overrides
	v.SetEnvPrefix("LOGTIDE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 5680)

	// Sink defaults
	v.SetDefault("sink.batch_size_limit", 100)
	v.SetDefault("sink.period", "2s")
	v.SetDefault("sink.flush_threshold", 1000)
	v.SetDefault("sink.table_name", "LogEvent")

	// Table defaults
	v.SetDefault("table.type", "memory")
	v.SetDefault("table.url", "redis://localhost:6379")

	// Bus defaults
	v.SetDefault("bus.enabled", false)
	v.SetDefault("bus.type", "nats")
	v.SetDefault("bus.url", "nats://localhost:4222")
	v.SetDefault("bus.subject", "logtide.events")
	v.SetDefault("bus.consumer_group", "logtide-sink")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			HTTPPort: 5680,
		},
		Sink: SinkConfig{
			BatchSizeLimit: 100,
			Period:         2 * time.Second,
			FlushThreshold: 1000,
			TableName:      "LogEvent",
		},
		Table: TableConfig{
			Type: "memory",
		},
		Bus: BusConfig{
			Enabled:       false,
			Type:          "nats",
			URL:           "nats://localhost:4222",
			Subject:       "logtide.events",
			ConsumerGroup: "logtide-sink",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
