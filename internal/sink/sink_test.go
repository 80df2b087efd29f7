package sink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logtide/logtide/internal/event"
	"github.com/logtide/logtide/internal/table"
)

// countingClient records provisioning calls without touching a backend
type countingClient struct {
	table.Client
	calls int
}

func (c *countingClient) GetOrCreateTable(ctx context.Context, name string) (table.Table, error) {
	c.calls++
	return c.Client.GetOrCreateTable(ctx, name)
}

func (c *countingClient) Close() error { return c.Client.Close() }

func newTestSink(t *testing.T, cfg Config) (*Sink, *table.MemoryClient) {
	t.Helper()
	client := table.NewMemoryClient()
	cfg.Logger = testLogger()
	s, err := New(context.Background(), client, cfg)
	require.NoError(t, err)
	return s, client
}

func TestSink_RejectsOutOfRangeBatchSizeLimit(t *testing.T) {
	for _, limit := range []int{0, -1, 101, 500} {
		client := &countingClient{Client: table.NewMemoryClient()}
		_, err := New(context.Background(), client, Config{
			BatchSizeLimit: limit,
			Period:         time.Second,
			Logger:         testLogger(),
		})
		assert.ErrorIs(t, err, ErrInvalidConfiguration, "limit %d", limit)
		assert.Zero(t, client.calls, "invalid config must not reach the backend")
	}
}

func TestSink_RejectsNonPositivePeriod(t *testing.T) {
	client := &countingClient{Client: table.NewMemoryClient()}
	_, err := New(context.Background(), client, Config{
		BatchSizeLimit: 100,
		Period:         0,
		Logger:         testLogger(),
	})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Zero(t, client.calls)
}

func TestSink_DefaultsTableName(t *testing.T) {
	client := table.NewMemoryClient()
	s, err := New(context.Background(), client, Config{
		BatchSizeLimit: 100,
		Period:         time.Second,
		Logger:         testLogger(),
	})
	require.NoError(t, err)
	defer func() { _ = s.Close(context.Background()) }()

	tbl, err := client.GetOrCreateTable(context.Background(), DefaultTableName)
	require.NoError(t, err)
	assert.Equal(t, DefaultTableName, tbl.Name())
	assert.Equal(t, DefaultTableName, s.Stats()["table"])
}

func TestSink_EndToEndSplitsOnePartition(t *testing.T) {
	s, client := newTestSink(t, Config{
		BatchSizeLimit: 100,
		Period:         time.Hour, // only the final flush writes
		FlushThreshold: 10000,
		TableName:      "events",
	})

	// 250 events inside one minute bucket -> one partition, 3 sub-batches
	ts := time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC)
	for i := 0; i < 250; i++ {
		require.NoError(t, s.Submit(event.New(ts, event.LevelInfo, "msg {n}",
			map[string]interface{}{"n": i})))
	}
	require.NoError(t, s.Close(context.Background()))

	tbl, err := client.GetOrCreateTable(context.Background(), "events")
	require.NoError(t, err)
	mem := tbl.(*table.MemoryTable)

	require.Equal(t, []string{"20260301T101500"}, mem.PartitionKeys())
	assert.Equal(t, 250, mem.PartitionLen("20260301T101500"))
	assert.Equal(t, 3, mem.BatchCount(), "250 records at limit 100 need 3 batches")
}

func TestSink_EndToEndMultipleTimeBuckets(t *testing.T) {
	s, client := newTestSink(t, Config{
		BatchSizeLimit: 100,
		Period:         time.Hour,
		FlushThreshold: 10000,
		TableName:      "events",
	})

	base := time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		ts := base.Add(time.Duration(i) * 6 * time.Second)
		require.NoError(t, s.Submit(event.New(ts, event.LevelInfo, "tick", nil)))
	}
	require.NoError(t, s.Close(context.Background()))

	tbl, err := client.GetOrCreateTable(context.Background(), "events")
	require.NoError(t, err)
	mem := tbl.(*table.MemoryTable)

	assert.Len(t, mem.PartitionKeys(), 3)
	for _, pk := range mem.PartitionKeys() {
		assert.Equal(t, 10, mem.PartitionLen(pk))
	}
}

func TestSink_SubmitAfterCloseFails(t *testing.T) {
	s, _ := newTestSink(t, Config{
		BatchSizeLimit: 100,
		Period:         time.Hour,
	})
	require.NoError(t, s.Close(context.Background()))

	err := s.Submit(event.New(time.Now(), event.LevelInfo, "late", nil))
	assert.ErrorIs(t, err, ErrClosed)
}

// failingTable rejects every batch
type failingTable struct{ err error }

func (f *failingTable) Name() string { return "broken" }

func (f *failingTable) ExecuteBatch(context.Context, []table.Operation) error {
	return f.err
}

type failingClient struct{ tbl *failingTable }

func (c *failingClient) GetOrCreateTable(context.Context, string) (table.Table, error) {
	return c.tbl, nil
}

func (c *failingClient) Close() error { return nil }

func TestSink_CloseSurfacesFinalFlushError(t *testing.T) {
	backendErr := errors.New("backend unavailable")
	s, err := New(context.Background(), &failingClient{tbl: &failingTable{err: backendErr}}, Config{
		BatchSizeLimit: 100,
		Period:         time.Hour,
		Logger:         testLogger(),
	})
	require.NoError(t, err)

	require.NoError(t, s.Submit(event.New(time.Now(), event.LevelInfo, "doomed", nil)))

	err = s.Close(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)

	var werr *WriteError
	assert.ErrorAs(t, err, &werr)
	assert.Equal(t, "broken", werr.Table)
}

func TestSink_StatsShape(t *testing.T) {
	s, _ := newTestSink(t, Config{
		BatchSizeLimit: 25,
		Period:         time.Hour,
		TableName:      "events",
	})
	defer func() { _ = s.Close(context.Background()) }()

	stats := s.Stats()
	assert.Equal(t, "events", stats["table"])
	assert.Equal(t, 25, stats["batch_size_limit"])
	assert.Equal(t, 0, stats["pending"])
}
