package table

import (
	"fmt"
	"strings"

	"github.com/logtide/logtide/internal/config"
)

// NewClient creates a table Client based on the table configuration
func NewClient(cfg config.TableConfig) (Client, error) {
	backend := strings.ToLower(cfg.Type)

	// Default to memory if not specified
	if backend == "" {
		backend = "memory"
	}

	switch backend {
	case "memory":
		return NewMemoryClient(), nil
	case "redis":
		return NewRedisClient(RedisClientConfig{
			URL:               cfg.URL,
			Password:          cfg.Password,
			DB:                cfg.DB,
			CompressThreshold: cfg.CompressThreshold,
		})
	case "kafka":
		return NewKafkaClient(KafkaClientConfig{
			Brokers:           cfg.KafkaBrokers,
			CompressThreshold: cfg.CompressThreshold,
		})
	case "nats":
		return NewNATSClient(NATSClientConfig{
			URL:               cfg.URL,
			CompressThreshold: cfg.CompressThreshold,
		})
	default:
		return nil, fmt.Errorf("unsupported table backend: %s", cfg.Type)
	}
}
