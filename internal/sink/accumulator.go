package sink

import (
	"context"

	"github.com/logtide/logtide/internal/event"
	"github.com/logtide/logtide/internal/table"
)

// subBatchWriter is the submission boundary the accumulator hands sealed
// sub-batches to. Satisfied by *Writer; tests substitute their own.
type subBatchWriter interface {
	Execute(ctx context.Context, sb SubBatch) error
}

// Accumulator groups one flush cycle's events into partition-scoped
// sub-batches and submits them in input order. It guarantees that every
// sub-batch holds exactly one partition key, never exceeds the size limit,
// and that concatenating all sub-batches reproduces the input sequence.
type Accumulator struct {
	limit     int
	keys      KeyGenerator
	writer    subBatchWriter
	formatter Formatter
}

// NewAccumulator creates an accumulator. limit is the backend batch ceiling.
func NewAccumulator(limit int, keys KeyGenerator, writer subBatchWriter, formatter Formatter) *Accumulator {
	if formatter == nil {
		formatter = defaultFormatter{}
	}
	return &Accumulator{
		limit:     limit,
		keys:      keys,
		writer:    writer,
		formatter: formatter,
	}
}

// Flush consumes the drained events in order. An empty cycle performs no
// backend call. On a write failure it stops and returns every event not yet
// persisted (the failed sub-batch's events plus all later ones) so the
// scheduler can requeue them, together with the write error.
func (a *Accumulator) Flush(ctx context.Context, events []event.Event) ([]event.Event, error) {
	if len(events) == 0 {
		return nil, nil
	}

	a.keys.StartBatch()

	var (
		current   []table.Record
		currentPK string
		start     int // index of the first event in the current sub-batch
	)

	submit := func(failFrom int) error {
		err := a.writer.Execute(ctx, SubBatch{PartitionKey: currentPK, Records: current})
		if err != nil {
			return err
		}
		a.keys.StartBatch()
		current = nil
		start = failFrom
		return nil
	}

	for i, ev := range events {
		pk := a.keys.PartitionKey(ev)

		// Partition changed: seal and submit the run collected so far
		if len(current) > 0 && pk != currentPK {
			if err := submit(i); err != nil {
				return events[start:], err
			}
		}

		currentPK = pk
		current = append(current, buildRecord(ev, pk, a.keys.RowKey(ev), a.formatter))

		// Backend ceiling is hard, even if the next event shares the partition
		if len(current) >= a.limit {
			if err := submit(i + 1); err != nil {
				return events[start:], err
			}
		}
	}

	if len(current) > 0 {
		if err := a.writer.Execute(ctx, SubBatch{PartitionKey: currentPK, Records: current}); err != nil {
			return events[start:], err
		}
	}
	return nil, nil
}
