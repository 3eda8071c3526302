package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/structio/pkg/blocktype"
	"github.com/matzehuels/structio/pkg/building"
	"github.com/matzehuels/structio/pkg/cache"
	"github.com/matzehuels/structio/pkg/codec"
	sio "github.com/matzehuels/structio/pkg/io"
	"github.com/matzehuels/structio/pkg/observability"
)

// Runner executes pipeline stages with caching.
//
// The Runner holds no per-request state. Multiple goroutines can safely use
// the same Runner.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Registry *blocktype.Registry
	Logger   *log.Logger

	flight singleflight.Group
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means [cache.DefaultKeyer], a nil registry means [blocktype.Default] and a
// nil logger means [log.Default].
func NewRunner(c cache.Cache, keyer cache.Keyer, reg *blocktype.Registry, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if reg == nil {
		reg = blocktype.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Registry: reg, Logger: logger}
}

func (r *Runner) codecOptions() []codec.Option {
	return []codec.Option{codec.WithRegistry(r.Registry), codec.WithLogger(r.Logger)}
}

// Decode reads a structure, compressed or not.
func (r *Runner) Decode(ctx context.Context, data []byte) (*building.Building, *sio.Info, error) {
	b, info, err := sio.ReadStructure(bytes.NewReader(data), r.codecOptions()...)
	if err != nil {
		return nil, nil, err
	}
	r.Logger.Debug("decoded structure",
		"version", info.Version,
		"roots", info.Roots,
		"blocks", info.Blocks,
		"compressed", info.Compressed)
	return b, info, nil
}

// Encode writes b at the requested version.
func (r *Runner) Encode(ctx context.Context, b *building.Building, opts ConvertOptions) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := sio.WriteStructure(&buf, b, opts.Version, opts.Compress, r.codecOptions()...); err != nil {
		return nil, err
	}
	r.Logger.Debug("encoded structure", "version", opts.Version, "blocks", len(b.Blocks), "bytes", buf.Len())
	return buf.Bytes(), nil
}

// Convert decodes data and re-encodes it at opts.Version. The second result
// reports a cache hit.
func (r *Runner) Convert(ctx context.Context, data []byte, opts ConvertOptions) ([]byte, bool, error) {
	return r.convert(ctx, "bytes", data, opts)
}

func (r *Runner) convert(ctx context.Context, source string, data []byte, opts ConvertOptions) (out []byte, hit bool, err error) {
	start := time.Now()
	observability.Pipeline().OnConvertStart(ctx, source, opts.Version)
	defer func() {
		observability.Pipeline().OnConvertComplete(ctx, source, opts.Version, time.Since(start), err)
	}()

	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	key := r.Keyer.ConvertKey(cache.Hash(data), cache.ConvertKeyOpts{
		Version:  opts.Version,
		Compress: opts.Compress,
		Types:    r.Registry.Fingerprint(),
	})
	return r.cached(ctx, key, "convert", cache.TTLConvert, opts.Refresh, func() ([]byte, error) {
		b, _, err := r.Decode(ctx, data)
		if err != nil {
			return nil, err
		}
		return r.Encode(ctx, b, opts)
	})
}

// Summary is the cached result of [Runner.Inspect].
type Summary struct {
	Version         uint8       `json:"version"`
	Compressed      bool        `json:"compressed"`
	FileSize        int         `json:"file_size"`
	Size            int         `json:"size"`
	Roots           int         `json:"roots"`
	Blocks          int         `json:"blocks"`
	RotationCatalog int         `json:"rotation_catalog"`
	ColorCatalog    int         `json:"color_catalog"`
	Types           []TypeCount `json:"types"`
}

// TypeCount is one row of the per-type histogram, ordered by id.
type TypeCount struct {
	ID    uint8  `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Inspect summarizes a structure without building JSON.
func (r *Runner) Inspect(ctx context.Context, data []byte) (*Summary, bool, error) {
	key := r.Keyer.InspectKey(cache.Hash(data), r.Registry.Fingerprint())
	raw, hit, err := r.cached(ctx, key, "inspect", cache.TTLInspect, false, func() ([]byte, error) {
		_, info, err := r.Decode(ctx, data)
		if err != nil {
			return nil, err
		}
		return json.Marshal(r.summarize(info))
	})
	if err != nil {
		return nil, false, err
	}
	var s Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, fmt.Errorf("decode summary: %w", err)
	}
	return &s, hit, nil
}

func (r *Runner) summarize(info *sio.Info) *Summary {
	s := &Summary{
		Version:         info.Version,
		Compressed:      info.Compressed,
		FileSize:        info.FileSize,
		Size:            info.Size,
		Roots:           info.Roots,
		Blocks:          info.Blocks,
		RotationCatalog: info.RotationCatalog,
		ColorCatalog:    info.ColorCatalog,
	}
	for id := 0; id < 256; id++ {
		if n := info.Types[uint8(id)]; n > 0 {
			s.Types = append(s.Types, TypeCount{ID: uint8(id), Name: r.Registry.Name(uint8(id)), Count: n})
		}
	}
	return s
}

// cached returns the value under key, computing and storing it on a miss.
// Concurrent callers with the same key share one computation.
func (r *Runner) cached(ctx context.Context, key, kind string, ttl time.Duration, refresh bool, compute func() ([]byte, error)) ([]byte, bool, error) {
	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, kind)
			return data, true, nil
		} else if err != nil {
			r.Logger.Warn("cache read failed", "kind", kind, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, kind)
	}

	v, err, _ := r.flight.Do(key, func() (any, error) {
		data, err := compute()
		if err != nil {
			return nil, err
		}
		if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
			r.Logger.Warn("cache write failed", "kind", kind, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, kind, len(data))
		}
		return data, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
