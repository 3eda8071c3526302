package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// Implementations must be safe for concurrent use. A miss is reported as
// (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default lifetimes per artifact kind. Artifacts are addressed by content
// hash, so they never go stale; the TTLs only bound disk and memory use.
const (
	TTLConvert = 7 * 24 * time.Hour
	TTLGraph   = 7 * 24 * time.Hour
	TTLInspect = 24 * time.Hour
)
