package table

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(pk, rk string) Record {
	return Record{
		PartitionKey: pk,
		RowKey:       rk,
		Properties:   map[string]interface{}{"msg": "hello"},
	}
}

func TestMemoryClient_GetOrCreateTableIsIdempotent(t *testing.T) {
	c := NewMemoryClient()

	a, err := c.GetOrCreateTable(context.Background(), "events")
	require.NoError(t, err)
	b, err := c.GetOrCreateTable(context.Background(), "events")
	require.NoError(t, err)

	assert.Same(t, a, b, "repeated calls must return the same table")
	assert.Equal(t, "events", a.Name())

	_, err = c.GetOrCreateTable(context.Background(), "")
	assert.Error(t, err)
}

func TestMemoryTable_ExecuteBatch(t *testing.T) {
	c := NewMemoryClient()
	tbl, err := c.GetOrCreateTable(context.Background(), "events")
	require.NoError(t, err)

	ops := []Operation{
		Insert(rec("p1", "r1")),
		Insert(rec("p1", "r2")),
	}
	require.NoError(t, tbl.ExecuteBatch(context.Background(), ops))

	mem := tbl.(*MemoryTable)
	assert.Equal(t, 2, mem.PartitionLen("p1"))
	assert.Equal(t, 1, mem.BatchCount())
}

func TestMemoryTable_RejectsEmptyBatch(t *testing.T) {
	c := NewMemoryClient()
	tbl, err := c.GetOrCreateTable(context.Background(), "events")
	require.NoError(t, err)

	err = tbl.ExecuteBatch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestMemoryTable_RejectsOversizedBatch(t *testing.T) {
	c := NewMemoryClient()
	tbl, err := c.GetOrCreateTable(context.Background(), "events")
	require.NoError(t, err)

	ops := make([]Operation, MaxBatchOperations+1)
	for i := range ops {
		ops[i] = Insert(rec("p1", fmt.Sprintf("r%03d", i)))
	}
	assert.Error(t, tbl.ExecuteBatch(context.Background(), ops))
}

func TestMemoryTable_RejectsMixedPartitions(t *testing.T) {
	c := NewMemoryClient()
	tbl, err := c.GetOrCreateTable(context.Background(), "events")
	require.NoError(t, err)

	ops := []Operation{
		Insert(rec("p1", "r1")),
		Insert(rec("p2", "r1")),
	}
	assert.Error(t, tbl.ExecuteBatch(context.Background(), ops))
}

func TestMemoryTable_ConflictLeavesPartitionUntouched(t *testing.T) {
	c := NewMemoryClient()
	tbl, err := c.GetOrCreateTable(context.Background(), "events")
	require.NoError(t, err)
	mem := tbl.(*MemoryTable)

	require.NoError(t, tbl.ExecuteBatch(context.Background(), []Operation{
		Insert(rec("p1", "r1")),
	}))

	// r2 is new but r1 collides; neither may land
	err = tbl.ExecuteBatch(context.Background(), []Operation{
		Insert(rec("p1", "r2")),
		Insert(rec("p1", "r1")),
	})
	require.ErrorIs(t, err, ErrRowExists)
	assert.Equal(t, 1, mem.PartitionLen("p1"), "failed batch must not apply partially")
	assert.Equal(t, 1, mem.BatchCount())
}

func TestMemoryTable_DuplicateRowWithinBatch(t *testing.T) {
	c := NewMemoryClient()
	tbl, err := c.GetOrCreateTable(context.Background(), "events")
	require.NoError(t, err)

	err = tbl.ExecuteBatch(context.Background(), []Operation{
		Insert(rec("p1", "r1")),
		Insert(rec("p1", "r1")),
	})
	assert.ErrorIs(t, err, ErrRowExists)
	assert.Equal(t, 0, tbl.(*MemoryTable).PartitionLen("p1"))
}
