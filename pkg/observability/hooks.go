// Package observability lets the libraries report events without importing
// a metrics backend.
//
// Each layer talks to one small hook interface. Until something is
// registered every hook is a no-op, so library code calls them
// unconditionally:
//
//	observability.Codec().OnEncodeStart(version, len(b.Blocks))
//	data, err := encode(b)
//	observability.Codec().OnEncodeComplete(version, len(data), err)
//
// The HTTP service installs Prometheus-backed hooks at startup with the Set
// functions. Tests call [Reset] to restore the defaults.
package observability

import (
	"context"
	"time"
)

// CodecHooks observes encode and decode passes. Passes are short and never
// block, so the methods take no context.
type CodecHooks interface {
	OnEncodeStart(version uint8, blocks int)
	OnEncodeComplete(version uint8, size int, err error)

	OnDecodeStart(size int)
	// OnDecodeComplete reports version 0 when the version byte was never read.
	OnDecodeComplete(version uint8, size int, err error)
}

// PipelineHooks observes conversions and renders. source names the input
// ("bytes", a file path, or "batch").
type PipelineHooks interface {
	OnConvertStart(ctx context.Context, source string, version uint8)
	OnConvertComplete(ctx context.Context, source string, version uint8, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// CacheHooks observes the pipeline cache. keyType is the kind of cached
// value, such as "convert" or "inspect".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// StoreHooks observes the structure archive.
type StoreHooks interface {
	OnStorePut(ctx context.Context, backend string, size int, err error)
	OnStoreGet(ctx context.Context, backend string, found bool, err error)
}

// HTTPHooks observes the HTTP service. route is the matched pattern, not the
// raw path.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}
