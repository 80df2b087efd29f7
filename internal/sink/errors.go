package sink

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned when sink construction is given
	// out-of-range options. Values are never silently clamped.
	ErrInvalidConfiguration = errors.New("invalid sink configuration")

	// ErrClosed is returned by Submit after the sink has shut down
	ErrClosed = errors.New("sink is closed")
)

// WriteError reports a failed sub-batch backend call with enough context for
// the caller to decide retry/drop/log policy.
type WriteError struct {
	Table        string
	PartitionKey string
	BatchID      string
	Records      int
	Err          error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("batch %s (%d records, table %s, partition %s) failed: %v",
		e.BatchID, e.Records, e.Table, e.PartitionKey, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
