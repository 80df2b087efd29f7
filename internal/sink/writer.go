package sink

import (
	"context"

	"github.com/google/uuid"

	"github.com/logtide/logtide/internal/logging"
	"github.com/logtide/logtide/internal/metrics"
	"github.com/logtide/logtide/internal/table"
)

// SubBatch is a sealed, size-bounded group of records sharing one partition
// key, submitted as a single atomic backend operation.
type SubBatch struct {
	PartitionKey string
	Records      []table.Record
}

// Writer adapts sealed sub-batches into backend insert operations. The
// backend guarantees that one ExecuteBatch call is all-or-nothing per
// partition; the writer relies on that and adds no atomicity of its own.
type Writer struct {
	table  table.Table
	logger *logging.Logger
}

// NewWriter creates a writer bound to one backend table
func NewWriter(tbl table.Table, logger *logging.Logger) *Writer {
	return &Writer{
		table:  tbl,
		logger: logger.With("component", "sink.writer", "table", tbl.Name()),
	}
}

// Execute submits one sub-batch. On failure it returns a WriteError carrying
// the batch identity and size so the scheduler can apply its retry policy.
func (w *Writer) Execute(ctx context.Context, sb SubBatch) error {
	ops := make([]table.Operation, len(sb.Records))
	for i, r := range sb.Records {
		ops[i] = table.Insert(r)
	}

	if err := w.table.ExecuteBatch(ctx, ops); err != nil {
		metrics.WriteFailures.Inc()
		werr := &WriteError{
			Table:        w.table.Name(),
			PartitionKey: sb.PartitionKey,
			BatchID:      uuid.New().String(),
			Records:      len(sb.Records),
			Err:          err,
		}
		w.logger.Error("Sub-batch write failed",
			"partition", sb.PartitionKey,
			"records", len(sb.Records),
			"batch_id", werr.BatchID,
			"error", err)
		return werr
	}

	metrics.BatchesWritten.Inc()
	metrics.RecordsWritten.Add(float64(len(sb.Records)))
	metrics.RecordsPerBatch.Observe(float64(len(sb.Records)))
	w.logger.Debug("Sub-batch written",
		"partition", sb.PartitionKey,
		"records", len(sb.Records))
	return nil
}
