package subscriber

import (
	"fmt"
	"os"
	"strings"

	"github.com/logtide/logtide/internal/config"
)

// NewSubscriber creates a Subscriber based on the bus configuration
func NewSubscriber(cfg config.BusConfig) (Subscriber, error) {
	busType := strings.ToLower(cfg.Type)

	// Default to NATS if not specified
	if busType == "" {
		busType = "nats"
	}

	switch busType {
	case "nats":
		nodeID := cfg.NodeID
		if nodeID == "" {
			hostname, _ := os.Hostname()
			if hostname == "" {
				hostname = "logtide-1"
			}
			nodeID = hostname
		}
		group := cfg.ConsumerGroup
		if group == "" {
			group = "logtide-sink"
		}
		return NewNATSSubscriber(cfg.URL, nodeID, group)
	case "memory":
		return NewMemorySubscriber()
	default:
		return nil, fmt.Errorf("unsupported bus type: %s", cfg.Type)
	}
}
