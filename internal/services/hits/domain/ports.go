package domain

import "context"

// WriterPort persists hit events in batches.
type WriterPort interface {
	WriteBatch(ctx context.Context, xs []HitEvent) error
}
