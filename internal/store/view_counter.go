package store

import "context"

// ViewCounter keeps an approximate per-task count of detail views outside the
// relational store. Entries are created lazily and are never written in the
// same transaction as the task row they belong to.
type ViewCounter interface {
	// Increment atomically adds one to the counter for id, creating it at 1
	// when absent, and returns the new value. Concurrent callers never lose
	// increments.
	Increment(ctx context.Context, id int64) (int64, error)

	// Get returns the current value, or 0 when the counter was never set.
	// An unreachable backend yields an error wrapping ErrUnavailable, never 0.
	Get(ctx context.Context, id int64) (int64, error)

	// GetMany returns the counters for all ids in one round trip.
	// Every requested id is present in the result; absent counters map to 0.
	GetMany(ctx context.Context, ids []int64) (map[int64]int64, error)

	// Delete removes the counter. Deleting an absent counter is a no-op.
	Delete(ctx context.Context, id int64) error
}
