package table

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
)

// KafkaClient implements Client on Kafka. A table maps to a topic; a batch is
// one produce request keyed by partition key, so all records of a sub-batch
// land on the same topic partition in order.
type KafkaClient struct {
	brokers []string
	admin   *kafka.Client
	codec   Codec

	writers map[string]*kafka.Writer
	mu      sync.Mutex
}

// KafkaClientConfig holds Kafka backend options
type KafkaClientConfig struct {
	Brokers           []string
	CompressThreshold int
}

// NewKafkaClient creates a Kafka table client
func NewKafkaClient(cfg KafkaClientConfig) (*KafkaClient, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	return &KafkaClient{
		brokers: cfg.Brokers,
		admin:   &kafka.Client{Addr: kafka.TCP(cfg.Brokers...)},
		codec:   NewCodec(cfg.CompressThreshold),
		writers: make(map[string]*kafka.Writer),
	}, nil
}

// GetOrCreateTable creates the backing topic if missing and returns a handle
func (c *KafkaClient) GetOrCreateTable(ctx context.Context, name string) (Table, error) {
	if name == "" {
		return nil, fmt.Errorf("table name is required")
	}

	resp, err := c.admin.CreateTopics(ctx, &kafka.CreateTopicsRequest{
		Topics: []kafka.TopicConfig{{
			Topic:             name,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create topic %s: %w", name, err)
	}
	if topicErr := resp.Errors[name]; topicErr != nil && !errors.Is(topicErr, kafka.TopicAlreadyExists) {
		return nil, fmt.Errorf("failed to create topic %s: %w", name, topicErr)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	writer, exists := c.writers[name]
	if !exists {
		writer = &kafka.Writer{
			Addr:         kafka.TCP(c.brokers...),
			Topic:        name,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchSize:    MaxBatchOperations,
		}
		c.writers[name] = writer
	}
	return &kafkaTable{name: name, writer: writer, codec: c.codec}, nil
}

// Close closes all topic writers
func (c *KafkaClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for name, writer := range c.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close writer for topic %s: %w", name, err)
		}
		delete(c.writers, name)
	}
	return firstErr
}

type kafkaTable struct {
	name   string
	writer *kafka.Writer
	codec  Codec
}

func (t *kafkaTable) Name() string { return t.name }

// ExecuteBatch produces the whole sub-batch as one request
func (t *kafkaTable) ExecuteBatch(ctx context.Context, ops []Operation) error {
	if err := validateBatch(ops); err != nil {
		return err
	}

	pk := ops[0].Record.PartitionKey
	msgs := make([]kafka.Message, len(ops))
	for i, op := range ops {
		data, err := t.codec.Encode(op.Record)
		if err != nil {
			return err
		}
		msgs[i] = kafka.Message{
			Key:   []byte(pk),
			Value: data,
		}
	}

	if err := t.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka batch for topic %s partition %s failed: %w", t.name, pk, err)
	}
	return nil
}
