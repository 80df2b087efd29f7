// Package sink implements the periodic batching pipeline: events submitted by
// concurrent producers are buffered, grouped into partition-scoped sub-batches
// and written atomically to a partitioned table storage backend.
package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/logtide/logtide/internal/config"
	"github.com/logtide/logtide/internal/event"
	"github.com/logtide/logtide/internal/logging"
	"github.com/logtide/logtide/internal/table"
)

// DefaultTableName is used when no table name is configured; it mirrors the
// name of the record type the sink persists.
const DefaultTableName = "LogEvent"

// Config holds sink construction options. All values are validated eagerly;
// construction fails with ErrInvalidConfiguration on out-of-range values.
type Config struct {
	// BatchSizeLimit is the max records per backend batch call, in [1,100]
	BatchSizeLimit int

	// Period is the flush interval
	Period time.Duration

	// FlushThreshold is the queue length that triggers an early flush.
	// Defaults to 10x BatchSizeLimit.
	FlushThreshold int

	// TableName is the backend table identity. Defaults to DefaultTableName.
	TableName string

	// KeyGenerator controls partition/row key derivation. Defaults to the
	// per-minute time-bucketed generator.
	KeyGenerator KeyGenerator

	// Formatter renders event field values into the persisted record.
	// Defaults to Go-verb formatting with RFC3339 timestamps.
	Formatter Formatter

	// Logger defaults to the global logger
	Logger *logging.Logger
}

func (c *Config) withDefaults() {
	if c.TableName == "" {
		c.TableName = DefaultTableName
	}
	if c.FlushThreshold == 0 {
		c.FlushThreshold = 10 * c.BatchSizeLimit
	}
	if c.KeyGenerator == nil {
		c.KeyGenerator = NewTimeBucketKeyGenerator()
	}
	if c.Formatter == nil {
		c.Formatter = defaultFormatter{}
	}
	if c.Logger == nil {
		c.Logger = logging.Global()
	}
}

func (c *Config) validate() error {
	if c.BatchSizeLimit < 1 || c.BatchSizeLimit > table.MaxBatchOperations {
		return fmt.Errorf("%w: batch size limit must be in [1,%d], got %d",
			ErrInvalidConfiguration, table.MaxBatchOperations, c.BatchSizeLimit)
	}
	if c.Period <= 0 {
		return fmt.Errorf("%w: period must be positive, got %s", ErrInvalidConfiguration, c.Period)
	}
	if c.FlushThreshold < 0 {
		return fmt.Errorf("%w: flush threshold must not be negative, got %d",
			ErrInvalidConfiguration, c.FlushThreshold)
	}
	return nil
}

// Sink owns the pipeline lifecycle: it provisions the backend table before
// accepting submissions and guarantees on Close that no buffered event is
// silently dropped under normal termination.
type Sink struct {
	cfg       Config
	scheduler *Scheduler
	logger    *logging.Logger
}

// New validates the configuration, ensures the backend table exists and
// starts the flush loop. No submission is accepted before the idempotent
// table provisioning call succeeds.
func New(ctx context.Context, client table.Client, cfg Config) (*Sink, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.withDefaults()

	tbl, err := client.GetOrCreateTable(ctx, cfg.TableName)
	if err != nil {
		return nil, fmt.Errorf("failed to provision table %s: %w", cfg.TableName, err)
	}

	logger := cfg.Logger.With("table", cfg.TableName)
	writer := NewWriter(tbl, cfg.Logger)
	acc := NewAccumulator(cfg.BatchSizeLimit, cfg.KeyGenerator, writer, cfg.Formatter)
	scheduler := NewScheduler(cfg.Period, cfg.FlushThreshold, acc.Flush, cfg.Logger)

	s := &Sink{
		cfg:       cfg,
		scheduler: scheduler,
		logger:    logger,
	}
	scheduler.Start()
	logger.Info("Sink started",
		"batch_size_limit", cfg.BatchSizeLimit,
		"period", cfg.Period,
		"flush_threshold", cfg.FlushThreshold)
	return s, nil
}

// NewFromConfig builds a sink from the service configuration
func NewFromConfig(ctx context.Context, client table.Client, cfg config.SinkConfig, logger *logging.Logger) (*Sink, error) {
	return New(ctx, client, Config{
		BatchSizeLimit: cfg.BatchSizeLimit,
		Period:         cfg.Period,
		FlushThreshold: cfg.FlushThreshold,
		TableName:      cfg.TableName,
		Logger:         logger,
	})
}

// Submit enqueues an event for the next flush cycle. Non-blocking, safe for
// concurrent producers.
func (s *Sink) Submit(ev event.Event) error {
	return s.scheduler.Submit(ev)
}

// Close performs one final flush of queued events and waits for its backend
// calls to complete. The final flush's error is surfaced to the caller.
func (s *Sink) Close(ctx context.Context) error {
	s.logger.Info("Sink shutting down")
	err := s.scheduler.Shutdown(ctx)
	if err != nil {
		s.logger.Error("Final flush failed", "error", err)
		return err
	}
	s.logger.Info("Sink stopped")
	return nil
}

// Stats returns pipeline statistics
func (s *Sink) Stats() map[string]interface{} {
	stats := s.scheduler.Stats()
	stats["table"] = s.cfg.TableName
	stats["batch_size_limit"] = s.cfg.BatchSizeLimit
	return stats
}
