// Package config defines the logtide service configuration and its validation
// rules. Values load from YAML with environment overrides via viper.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Sink    SinkConfig    `mapstructure:"sink"`
	Table   TableConfig   `mapstructure:"table"`
	Bus     BusConfig     `mapstructure:"bus"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig represents the HTTP intake server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0)
	HTTPPort int    `mapstructure:"http_port"` // HTTP server port
}

// SinkConfig represents the batching sink configuration
type SinkConfig struct {
	BatchSizeLimit int           `mapstructure:"batch_size_limit"` // Max records per backend batch call, [1,100]
	Period         time.Duration `mapstructure:"period"`           // Flush interval
	FlushThreshold int           `mapstructure:"flush_threshold"`  // Queue length that triggers an early flush
	TableName      string        `mapstructure:"table_name"`       // Backend table identity (default: LogEvent)
}

// TableConfig represents the table storage backend configuration
type TableConfig struct {
	Type     string `mapstructure:"type"`     // Backend type: memory (default), redis, kafka, nats
	URL      string `mapstructure:"url"`      // Backend URL (e.g., redis://localhost:6379, nats://localhost:4222)
	Password string `mapstructure:"password"` // Optional authentication
	DB       int    `mapstructure:"db"`       // Redis database number (default: 0)

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"` // Kafka broker addresses

	// CompressThreshold is the encoded record size in bytes above which the
	// property payload is snappy-compressed. 0 uses the codec default.
	CompressThreshold int `mapstructure:"compress_threshold"`
}

// BusConfig represents the ingest message bus configuration
type BusConfig struct {
	Enabled       bool   `mapstructure:"enabled"`        // Consume events from the bus
	Type          string `mapstructure:"type"`           // Bus type: memory, nats (default)
	URL           string `mapstructure:"url"`            // Bus server URL
	Subject       string `mapstructure:"subject"`        // Subject carrying event payloads
	ConsumerGroup string `mapstructure:"consumer_group"` // Durable consumer group name
	NodeID        string `mapstructure:"node_id"`        // Unique consumer identity
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Sink.Validate(); err != nil {
		return fmt.Errorf("sink config: %w", err)
	}
	if err := c.Bus.Validate(); err != nil {
		return fmt.Errorf("bus config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}
	return nil
}

// Validate validates sink configuration. The batch size ceiling is imposed by
// the table backend and must not be silently clamped.
func (c *SinkConfig) Validate() error {
	if c.BatchSizeLimit < 1 || c.BatchSizeLimit > 100 {
		return fmt.Errorf("batch_size_limit must be in [1,100], got %d", c.BatchSizeLimit)
	}
	if c.Period <= 0 {
		return fmt.Errorf("period must be positive, got %s", c.Period)
	}
	if c.FlushThreshold < 1 {
		return fmt.Errorf("flush_threshold must be at least 1, got %d", c.FlushThreshold)
	}
	return nil
}

// Validate validates bus configuration
func (c *BusConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Subject == "" {
		return fmt.Errorf("bus.subject is required when the bus is enabled")
	}
	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}
	return nil
}
