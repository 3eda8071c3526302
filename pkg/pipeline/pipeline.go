// Package pipeline provides the structure processing pipeline shared by the
// CLI and the HTTP service.
//
// A [Runner] wraps the codec with a cache, a block type registry and a
// logger. Every entry point (decode, encode, convert, inspect, render)
// goes through it so that caching, hooks and logging behave the same
// everywhere.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, blocktype.Default(), logger)
//	out, hit, err := runner.Convert(ctx, data, pipeline.ConvertOptions{Version: 4})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Results that depend only on input bytes and options are cached under
// content-addressed keys (see [cache.Keyer]). Concurrent identical requests
// are collapsed into one computation.
package pipeline

import (
	"github.com/matzehuels/structio/pkg/codec"
	"github.com/matzehuels/structio/pkg/errors"
)

const (
	// DefaultVersion is the format version written when none is requested.
	DefaultVersion = codec.Latest

	// DefaultWorkers bounds batch conversions.
	DefaultWorkers = 4
)

// Graph output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ConvertOptions control re-encoding.
type ConvertOptions struct {
	Version  uint8 `json:"version"`
	Compress bool  `json:"compress,omitempty"`
	// Refresh bypasses cache reads; the fresh result is still stored.
	Refresh bool `json:"-"`
}

// Validate checks the target version.
func (o ConvertOptions) Validate() error {
	_, err := errors.ValidateVersion(int(o.Version), codec.Latest)
	return err
}

// GraphOptions control link graph rendering.
type GraphOptions struct {
	Format   string `json:"format"`
	Loads    bool   `json:"loads,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
	Refresh  bool   `json:"-"`
}

// ValidateAndSetDefaults normalizes the format, defaulting to SVG.
func (o *GraphOptions) ValidateAndSetDefaults() error {
	if o.Format == "" {
		o.Format = FormatSVG
	}
	f, err := errors.ValidateFormat(o.Format, FormatDOT, FormatSVG)
	if err != nil {
		return err
	}
	o.Format = f
	return nil
}
