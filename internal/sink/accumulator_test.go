package sink

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logtide/logtide/internal/event"
)

// captureWriter records submitted sub-batches and can fail on demand
type captureWriter struct {
	batches []SubBatch
	failOn  int // 1-based Execute call that fails; 0 never fails
	calls   int
}

func (w *captureWriter) Execute(_ context.Context, sb SubBatch) error {
	w.calls++
	if w.failOn > 0 && w.calls == w.failOn {
		return errors.New("backend unavailable")
	}
	w.batches = append(w.batches, sb)
	return nil
}

// stubKeys partitions by the "pk" property and numbers rows per batch
type stubKeys struct{ n int }

func (s *stubKeys) StartBatch() { s.n = 0 }

func (s *stubKeys) PartitionKey(ev event.Event) string {
	return ev.Properties["pk"].(string)
}

func (s *stubKeys) RowKey(event.Event) string {
	s.n++
	return fmt.Sprintf("r%03d", s.n)
}

func seqEvents(t *testing.T, pks ...string) []event.Event {
	t.Helper()
	events := make([]event.Event, len(pks))
	for i, pk := range pks {
		events[i] = event.New(time.Now(), event.LevelInfo, "ev",
			map[string]interface{}{"pk": pk, "seq": i})
	}
	return events
}

func flattenSeqs(batches []SubBatch) []int {
	var seqs []int
	for _, sb := range batches {
		for _, r := range sb.Records {
			seqs = append(seqs, r.Properties["seq"].(int))
		}
	}
	return seqs
}

func TestAccumulator_GroupsContiguousRuns(t *testing.T) {
	w := &captureWriter{}
	acc := NewAccumulator(100, &stubKeys{}, w, nil)

	events := seqEvents(t, "a", "a", "b", "b", "b", "a")
	requeue, err := acc.Flush(context.Background(), events)
	require.NoError(t, err)
	require.Empty(t, requeue)

	require.Len(t, w.batches, 3)
	assert.Equal(t, "a", w.batches[0].PartitionKey)
	assert.Equal(t, "b", w.batches[1].PartitionKey)
	assert.Equal(t, "a", w.batches[2].PartitionKey)
	assert.Len(t, w.batches[0].Records, 2)
	assert.Len(t, w.batches[1].Records, 3)
	assert.Len(t, w.batches[2].Records, 1)

	// Concatenating all sub-batches reproduces the input order
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, flattenSeqs(w.batches))
}

func TestAccumulator_EverySubBatchSinglePartition(t *testing.T) {
	w := &captureWriter{}
	acc := NewAccumulator(3, &stubKeys{}, w, nil)

	events := seqEvents(t, "a", "b", "a", "b", "a", "b", "b", "b", "b")
	_, err := acc.Flush(context.Background(), events)
	require.NoError(t, err)

	for _, sb := range w.batches {
		for _, r := range sb.Records {
			assert.Equal(t, sb.PartitionKey, r.PartitionKey)
		}
		assert.LessOrEqual(t, len(sb.Records), 3)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, flattenSeqs(w.batches))
}

func TestAccumulator_SplitsAtSizeLimit(t *testing.T) {
	w := &captureWriter{}
	acc := NewAccumulator(100, &stubKeys{}, w, nil)

	// 250 events sharing one partition -> 100, 100, 50
	pks := make([]string, 250)
	for i := range pks {
		pks[i] = "hot"
	}
	_, err := acc.Flush(context.Background(), seqEvents(t, pks...))
	require.NoError(t, err)

	require.Len(t, w.batches, 3)
	assert.Len(t, w.batches[0].Records, 100)
	assert.Len(t, w.batches[1].Records, 100)
	assert.Len(t, w.batches[2].Records, 50)
}

func TestAccumulator_ThreeTimeBuckets(t *testing.T) {
	w := &captureWriter{}
	acc := NewAccumulator(100, NewTimeBucketKeyGenerator(), w, nil)

	// Strictly increasing timestamps spanning 3 distinct minute buckets
	base := time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC)
	var events []event.Event
	for i := 0; i < 30; i++ {
		ts := base.Add(time.Duration(i) * 6 * time.Second) // 10 per minute
		events = append(events, event.New(ts, event.LevelInfo, "ev", nil))
	}

	_, err := acc.Flush(context.Background(), events)
	require.NoError(t, err)

	require.Len(t, w.batches, 3)
	for i := 1; i < len(w.batches); i++ {
		assert.Less(t, w.batches[i-1].PartitionKey, w.batches[i].PartitionKey,
			"sub-batches should arrive in chronological bucket order")
	}
	for _, sb := range w.batches {
		assert.Len(t, sb.Records, 10)
	}
}

func TestAccumulator_EmptyCycleNoBackendCalls(t *testing.T) {
	w := &captureWriter{}
	acc := NewAccumulator(100, &stubKeys{}, w, nil)

	requeue, err := acc.Flush(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, requeue)
	assert.Zero(t, w.calls)
}

func TestAccumulator_FailureReturnsUnwrittenEvents(t *testing.T) {
	w := &captureWriter{failOn: 2}
	acc := NewAccumulator(2, &stubKeys{}, w, nil)

	// Sub-batches: [a a] [a] [b b] — second call (trailing "a") fails
	events := seqEvents(t, "a", "a", "a", "b", "b")
	requeue, err := acc.Flush(context.Background(), events)
	require.Error(t, err)

	// The first sub-batch was persisted; everything from the failed
	// sub-batch onward comes back for requeue.
	require.Len(t, w.batches, 1)
	require.Len(t, requeue, 3)
	assert.Equal(t, 2, requeue[0].Properties["seq"])
	assert.Equal(t, 4, requeue[2].Properties["seq"])
}

func TestAccumulator_FailureOnFirstSubBatchRequeuesAll(t *testing.T) {
	w := &captureWriter{failOn: 1}
	acc := NewAccumulator(100, &stubKeys{}, w, nil)

	events := seqEvents(t, "a", "a", "b")
	requeue, err := acc.Flush(context.Background(), events)
	require.Error(t, err)
	assert.Len(t, requeue, 3)
	assert.Empty(t, w.batches)
}
