package table

import (
	"context"
	"fmt"
	"sync"
)

// MemoryClient implements Client with in-process tables.
// This is useful for testing and development without external dependencies.
type MemoryClient struct {
	tables map[string]*MemoryTable
	mu     sync.RWMutex
}

// NewMemoryClient creates a new in-memory table client
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{tables: make(map[string]*MemoryTable)}
}

// GetOrCreateTable returns the named table, creating it if missing
func (c *MemoryClient) GetOrCreateTable(_ context.Context, name string) (Table, error) {
	if name == "" {
		return nil, fmt.Errorf("table name is required")
	}

	c.mu.RLock()
	tbl, exists := c.tables[name]
	c.mu.RUnlock()
	if exists {
		return tbl, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if tbl, exists = c.tables[name]; exists {
		return tbl, nil
	}
	tbl = &MemoryTable{
		name:       name,
		partitions: make(map[string]map[string]Record),
	}
	c.tables[name] = tbl
	return tbl, nil
}

// Close releases all tables
func (c *MemoryClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables = make(map[string]*MemoryTable)
	return nil
}

// MemoryTable stores records per partition under a mutex. Batches are applied
// all-or-nothing: conflicts are detected before any record is inserted.
type MemoryTable struct {
	name       string
	partitions map[string]map[string]Record
	batches    int
	mu         sync.RWMutex
}

// Name returns the table identity
func (t *MemoryTable) Name() string { return t.name }

// ExecuteBatch applies a single-partition batch atomically
func (t *MemoryTable) ExecuteBatch(_ context.Context, ops []Operation) error {
	if err := validateBatch(ops); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	pk := ops[0].Record.PartitionKey
	partition := t.partitions[pk]
	if partition == nil {
		partition = make(map[string]Record, len(ops))
		t.partitions[pk] = partition
	}

	// Conflict check first so a failure leaves the partition untouched
	seen := make(map[string]bool, len(ops))
	for _, op := range ops {
		rk := op.Record.RowKey
		if _, exists := partition[rk]; exists || seen[rk] {
			return fmt.Errorf("table %s partition %s: %w (row %s)", t.name, pk, ErrRowExists, rk)
		}
		seen[rk] = true
	}

	for _, op := range ops {
		partition[op.Record.RowKey] = op.Record
	}
	t.batches++
	return nil
}

// PartitionLen returns the number of rows in a partition (for testing)
func (t *MemoryTable) PartitionLen(pk string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.partitions[pk])
}

// PartitionKeys returns all partition keys holding rows (for testing)
func (t *MemoryTable) PartitionKeys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]string, 0, len(t.partitions))
	for pk := range t.partitions {
		keys = append(keys, pk)
	}
	return keys
}

// BatchCount returns the number of batches applied (for testing)
func (t *MemoryTable) BatchCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.batches
}
