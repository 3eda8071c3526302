package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/structio/pkg/cache"
	"github.com/matzehuels/structio/pkg/observability"
	"github.com/matzehuels/structio/pkg/render/nodelink"
)

// RenderGraph renders the link graph of a structure as DOT or SVG.
func (r *Runner) RenderGraph(ctx context.Context, data []byte, opts GraphOptions) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	key := r.Keyer.GraphKey(cache.Hash(data), cache.GraphKeyOpts{
		Format: opts.Format,
		Loads:  opts.Loads,
		Types:  r.Registry.Fingerprint(),
	})
	if opts.Detailed {
		key += ":detailed"
	}

	return r.cached(ctx, key, "graph", cache.TTLGraph, opts.Refresh, func() (out []byte, err error) {
		start := time.Now()
		observability.Pipeline().OnRenderStart(ctx, opts.Format)
		defer func() { observability.Pipeline().OnRenderComplete(ctx, opts.Format, time.Since(start), err) }()

		b, _, err := r.Decode(ctx, data)
		if err != nil {
			return nil, err
		}
		dot := nodelink.ToDOT(b, nodelink.Options{Names: r.Registry, Loads: opts.Loads, Detailed: opts.Detailed})
		if opts.Format == FormatDOT {
			return []byte(dot), nil
		}
		return nodelink.RenderSVG(ctx, dot)
	})
}
