package table

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient implements Client on Redis. Each row is stored as an opaque
// encoded value under "logtide:<table>:<pk>:<rk>" and every partition keeps a
// sorted-set index of its row keys so rows can be listed in key order.
// ExecuteBatch runs inside MULTI/EXEC, which gives per-call atomicity.
type RedisClient struct {
	client *redis.Client
	codec  Codec
}

// RedisClientConfig holds Redis backend options
type RedisClientConfig struct {
	URL               string
	Password          string
	DB                int
	CompressThreshold int
}

// NewRedisClient creates a Redis table client and verifies the connection
func NewRedisClient(cfg RedisClientConfig) (*RedisClient, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		// Fallback to treating the URL as a plain address
		opts = &redis.Options{
			Addr:     cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: client,
		codec:  NewCodec(cfg.CompressThreshold),
	}, nil
}

// GetOrCreateTable registers the table name and returns a handle
func (c *RedisClient) GetOrCreateTable(ctx context.Context, name string) (Table, error) {
	if name == "" {
		return nil, fmt.Errorf("table name is required")
	}
	if err := c.client.SAdd(ctx, "logtide:tables", name).Err(); err != nil {
		return nil, fmt.Errorf("failed to register table %s: %w", name, err)
	}
	return &redisTable{client: c.client, codec: c.codec, name: name}, nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	return c.client.Close()
}

type redisTable struct {
	client *redis.Client
	codec  Codec
	name   string
}

func (t *redisTable) Name() string { return t.name }

func (t *redisTable) rowKey(pk, rk string) string {
	return fmt.Sprintf("logtide:%s:%s:%s", t.name, pk, rk)
}

func (t *redisTable) indexKey(pk string) string {
	return fmt.Sprintf("logtide:%s:%s", t.name, pk)
}

// ExecuteBatch writes all rows of a single-partition batch inside MULTI/EXEC
func (t *redisTable) ExecuteBatch(ctx context.Context, ops []Operation) error {
	if err := validateBatch(ops); err != nil {
		return err
	}

	pk := ops[0].Record.PartitionKey
	encoded := make([][]byte, len(ops))
	for i, op := range ops {
		data, err := t.codec.Encode(op.Record)
		if err != nil {
			return err
		}
		encoded[i] = data
	}

	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, op := range ops {
			pipe.Set(ctx, t.rowKey(pk, op.Record.RowKey), encoded[i], 0)
			pipe.ZAdd(ctx, t.indexKey(pk), redis.Z{
				Score:  float64(time.Now().UnixNano()),
				Member: op.Record.RowKey,
			})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis batch for table %s partition %s failed: %w", t.name, pk, err)
	}
	return nil
}
