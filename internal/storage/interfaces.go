package storage

import "context"

// Storage is the durable byte store the narrative state persists through.
type Storage interface {
	Save(ctx context.Context, path string, data []byte) error
	Load(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
}
