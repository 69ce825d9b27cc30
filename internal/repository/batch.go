package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// ErrBatchFull is returned when adding an operation would exceed the
// batch's operation ceiling.
var ErrBatchFull = fmt.Errorf("batch operation ceiling reached")

// Op is one queued write. It runs inside the commit transaction.
type Op func(tx *gorm.DB) error

// Batch accumulates write operations and applies them atomically in a
// single transaction on Commit. The store enforces a hard ceiling on
// operations per batch; callers flush with margin before reaching it.
type Batch struct {
	db     *gorm.DB
	maxOps int
	ops    []Op
}

// NewBatch creates an empty batch with the given operation ceiling.
func NewBatch(db *gorm.DB, maxOps int) *Batch {
	return &Batch{db: db, maxOps: maxOps, ops: make([]Op, 0, maxOps)}
}

// Add queues an operation. Returns ErrBatchFull at the ceiling.
func (b *Batch) Add(op Op) error {
	if len(b.ops) >= b.maxOps {
		return ErrBatchFull
	}
	b.ops = append(b.ops, op)
	return nil
}

// Len returns the number of queued operations.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Commit applies all queued operations in one transaction. The queue is
// cleared on success so the batch can be reused; on failure the queue is
// left intact and nothing was written.
func (b *Batch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	if len(b.ops) > b.maxOps {
		return fmt.Errorf("batch holds %d operations, ceiling is %d: %w", len(b.ops), b.maxOps, ErrBatchFull)
	}

	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range b.ops {
			if err := op(tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	b.ops = b.ops[:0]
	return nil
}
