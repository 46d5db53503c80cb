package availability

import "context"

// Repository is the persistence boundary for availability slots.
type Repository interface {
	ListActive(ctx context.Context) ([]*Creneau, error)
	// ReplaceAll swaps the whole table for the given slots atomically: the
	// delete and the reinserts commit or roll back together, so readers
	// never observe an empty or half-filled table.
	ReplaceAll(ctx context.Context, slots []*Creneau) error
}
