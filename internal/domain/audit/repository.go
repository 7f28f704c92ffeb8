package audit

import "context"

// Repository is append-only: entries are never updated or deleted.
type Repository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)
}
