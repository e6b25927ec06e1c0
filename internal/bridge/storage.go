package bridge

import "context"

// Storage is the persistence surface the bridge writes through. Both the
// SQLite store and the in-memory store satisfy it.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
