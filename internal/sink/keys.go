package sink

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/logtide/logtide/internal/event"
)

// KeyGenerator derives storage keys for events. Implementations may keep
// per-batch state for row keys; StartBatch resets it at every sub-batch
// boundary. PartitionKey must not depend on per-batch state, since the
// accumulator computes it before deciding whether a new sub-batch starts.
//
// Within one flush cycle the generator is expected to produce contiguous
// partition keys over the submitted event order (e.g. a time-bucketed key),
// otherwise grouping degrades into many small sub-batches.
//
// Generators are called from the single flush goroutine only and need no
// internal locking.
type KeyGenerator interface {
	// StartBatch resets per-batch state
	StartBatch()

	// PartitionKey returns the partition key for an event
	PartitionKey(ev event.Event) string

	// RowKey returns the row key for an event
	RowKey(ev event.Event) string
}

// TimeBucketKeyGenerator is the default generator. The partition key is the
// event timestamp bucketed to a fixed granularity, zero-padded so lexical
// order matches chronological order. Row keys invert a per-batch counter so
// rows within a partition sort newest-first, with a per-batch suffix keeping
// them unique across sub-batches that share a partition.
type TimeBucketKeyGenerator struct {
	Bucket time.Duration

	counter uint32
	suffix  string
}

// NewTimeBucketKeyGenerator creates a generator with per-minute buckets
func NewTimeBucketKeyGenerator() *TimeBucketKeyGenerator {
	return &TimeBucketKeyGenerator{Bucket: time.Minute}
}

// StartBatch resets the row counter and rolls the uniqueness suffix
func (g *TimeBucketKeyGenerator) StartBatch() {
	g.counter = 0
	g.suffix = uuid.New().String()[:8]
}

// PartitionKey buckets the event timestamp in UTC
func (g *TimeBucketKeyGenerator) PartitionKey(ev event.Event) string {
	bucket := g.Bucket
	if bucket <= 0 {
		bucket = time.Minute
	}
	return ev.Timestamp.UTC().Truncate(bucket).Format("20060102T150405")
}

// RowKey returns the inverted zero-padded counter plus the batch suffix
func (g *TimeBucketKeyGenerator) RowKey(_ event.Event) string {
	if g.suffix == "" {
		// StartBatch not called yet; seed a suffix so keys stay unique
		g.suffix = uuid.New().String()[:8]
	}
	key := fmt.Sprintf("%010d-%s", math.MaxUint32-g.counter, g.suffix)
	g.counter++
	return key
}
