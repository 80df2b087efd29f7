package table

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSClient implements Client on NATS JetStream. A table maps to a stream;
// records publish to "logtide.tbl.<table>.<partition>" so a consumer can
// replay one partition without filtering.
type NATSClient struct {
	conn  *nats.Conn
	js    nats.JetStreamContext
	codec Codec
}

// NATSClientConfig holds NATS backend options
type NATSClientConfig struct {
	URL               string
	CompressThreshold int
}

// NewNATSClient connects to NATS and enables JetStream
func NewNATSClient(cfg NATSClientConfig) (*NATSClient, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("logtide-table"),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSClient{conn: conn, js: js, codec: NewCodec(cfg.CompressThreshold)}, nil
}

// GetOrCreateTable ensures the backing stream exists and returns a handle
func (c *NATSClient) GetOrCreateTable(_ context.Context, name string) (Table, error) {
	if name == "" {
		return nil, fmt.Errorf("table name is required")
	}

	streamName := "LOGTIDE-" + sanitizeToken(name)
	subjectRoot := fmt.Sprintf("logtide.tbl.%s", sanitizeToken(name))

	if _, err := c.js.StreamInfo(streamName); err != nil {
		// Stream doesn't exist, create it
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     streamName,
			Subjects: []string{subjectRoot + ".>"},
			Storage:  nats.FileStorage,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream for table %s: %w", name, err)
		}
	}

	return &natsTable{js: c.js, codec: c.codec, name: name, subjectRoot: subjectRoot}, nil
}

// Close closes the NATS connection
func (c *NATSClient) Close() error {
	c.conn.Close()
	return nil
}

type natsTable struct {
	js          nats.JetStreamContext
	codec       Codec
	name        string
	subjectRoot string
}

func (t *natsTable) Name() string { return t.name }

// ExecuteBatch publishes all records asynchronously and waits for every ack.
// Any nack fails the whole batch.
func (t *natsTable) ExecuteBatch(ctx context.Context, ops []Operation) error {
	if err := validateBatch(ops); err != nil {
		return err
	}

	pk := ops[0].Record.PartitionKey
	subject := t.subjectRoot + "." + sanitizeToken(pk)

	futures := make([]nats.PubAckFuture, 0, len(ops))
	for _, op := range ops {
		data, err := t.codec.Encode(op.Record)
		if err != nil {
			return err
		}
		future, err := t.js.PublishAsync(subject, data)
		if err != nil {
			return fmt.Errorf("nats batch for table %s partition %s failed: %w", t.name, pk, err)
		}
		futures = append(futures, future)
	}

	select {
	case <-t.js.PublishAsyncComplete():
	case <-ctx.Done():
		return fmt.Errorf("nats batch for table %s partition %s timed out: %w", t.name, pk, ctx.Err())
	}

	for _, future := range futures {
		select {
		case err := <-future.Err():
			return fmt.Errorf("nats batch for table %s partition %s failed: %w", t.name, pk, err)
		default:
		}
	}
	return nil
}

// sanitizeToken makes a value safe for use inside a NATS subject or stream name
func sanitizeToken(s string) string {
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "*", "_")
	s = strings.ReplaceAll(s, ">", "_")
	return s
}
