package activity

import "context"

// Repository provides persistence operations for import entries.
type Repository interface {
	Log(ctx context.Context, entry *ImportEntry) error
	List(ctx context.Context, opts ListOptions) ([]ImportEntry, error)
}
