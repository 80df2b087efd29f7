// Package table defines the partitioned table storage collaborator consumed
// by the sink, with in-memory, Redis, Kafka and NATS backed implementations.
//
// A batch submitted through ExecuteBatch is scoped to a single partition key
// and is applied atomically: either every operation is persisted or none is.
package table

import (
	"context"
	"errors"
	"fmt"
)

// MaxBatchOperations is the backend-imposed ceiling on operations per batch
const MaxBatchOperations = 100

var (
	// ErrRowExists is returned when an insert collides with an existing row key
	ErrRowExists = errors.New("row key already exists in partition")

	// ErrEmptyBatch is returned when ExecuteBatch receives no operations
	ErrEmptyBatch = errors.New("batch contains no operations")
)

// Record is the unit persisted to the backend: a flat property bag addressed
// by partition and row key.
type Record struct {
	PartitionKey string                 `json:"partition_key"`
	RowKey       string                 `json:"row_key"`
	Properties   map[string]interface{} `json:"properties"`
}

// Operation is a single write in a batch. Only inserts are supported.
type Operation struct {
	Record Record
}

// Insert builds an insert operation for a record
func Insert(r Record) Operation {
	return Operation{Record: r}
}

// Table is a handle to one backend table
type Table interface {
	// Name returns the table identity
	Name() string

	// ExecuteBatch atomically applies a batch of operations sharing one
	// partition key. The batch must hold between 1 and MaxBatchOperations
	// operations.
	ExecuteBatch(ctx context.Context, ops []Operation) error
}

// Client provisions and hands out tables
type Client interface {
	// GetOrCreateTable returns a handle to the named table, creating it if
	// missing. The call is idempotent.
	GetOrCreateTable(ctx context.Context, name string) (Table, error)

	// Close releases backend resources
	Close() error
}

// validateBatch enforces the shared batch contract for all backends
func validateBatch(ops []Operation) error {
	if len(ops) == 0 {
		return ErrEmptyBatch
	}
	if len(ops) > MaxBatchOperations {
		return fmt.Errorf("batch of %d operations exceeds limit of %d", len(ops), MaxBatchOperations)
	}
	pk := ops[0].Record.PartitionKey
	for _, op := range ops {
		if op.Record.PartitionKey == "" || op.Record.RowKey == "" {
			return fmt.Errorf("operation missing partition or row key")
		}
		if op.Record.PartitionKey != pk {
			return fmt.Errorf("batch spans partitions %q and %q", pk, op.Record.PartitionKey)
		}
	}
	return nil
}
