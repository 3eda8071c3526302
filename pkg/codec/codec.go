package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/structio/pkg/blocktype"
	"github.com/matzehuels/structio/pkg/building"
	"github.com/matzehuels/structio/pkg/observability"
)

// Registry is the block type information the wire layout depends on.
// *blocktype.Registry satisfies it.
type Registry interface {
	NonInteractable(id uint8) bool
	Custom(id uint8) bool
	IsMath(id uint8) bool
}

// Option configures an encode or decode pass.
type Option func(*codec)

type codec struct {
	reg    Registry
	logger *log.Logger
}

// WithRegistry sets the type registry. The embedded default table is used
// otherwise.
func WithRegistry(r Registry) Option { return func(c *codec) { c.reg = r } }

// WithLogger sets the logger for per-record debug output.
func WithLogger(l *log.Logger) Option { return func(c *codec) { c.logger = l } }

func newCodec(opts []Option) *codec {
	c := &codec{}
	for _, opt := range opts {
		opt(c)
	}
	if c.reg == nil {
		c.reg = blocktype.Default()
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c
}

// Encode writes b to w in format version. Nothing is written to w unless
// the whole building encodes successfully.
func Encode(w io.Writer, b *building.Building, version uint8, opts ...Option) error {
	data, err := Marshal(b, version, opts...)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Marshal returns the encoding of b in format version.
func Marshal(b *building.Building, version uint8, opts ...Option) ([]byte, error) {
	c := newCodec(opts)
	hooks := observability.Codec()
	hooks.OnEncodeStart(version, len(b.Blocks))

	data, err := c.encode(b, version)
	hooks.OnEncodeComplete(version, len(data), err)
	return data, err
}

// Decode reads a complete structure from r.
func Decode(r io.Reader, opts ...Option) (*building.Building, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read structure: %w", err)
	}
	b, _, err := Unmarshal(data, opts...)
	return b, err
}

// Unmarshal decodes data and reports what the encoding contained.
func Unmarshal(data []byte, opts ...Option) (*building.Building, *Info, error) {
	c := newCodec(opts)
	hooks := observability.Codec()
	hooks.OnDecodeStart(len(data))

	b, info, err := c.decode(data)
	var version uint8
	if info != nil {
		version = info.Version
	}
	hooks.OnDecodeComplete(version, len(data), err)
	if err != nil {
		return nil, nil, err
	}
	return b, info, nil
}

// Info summarizes an encoding.
type Info struct {
	Version uint8
	Size    int // bytes

	Roots  int
	Blocks int

	// Catalog sizes; -1 when the catalog is unused or the version has none.
	RotationCatalog int
	ColorCatalog    int

	// Blocks by type id.
	Types map[uint8]int
}

// Inspect decodes data and returns only the summary.
func Inspect(data []byte, opts ...Option) (*Info, error) {
	_, info, err := Unmarshal(data, opts...)
	return info, err
}

// Equal reports whether x and y encode to the same bytes in version.
func Equal(x, y *building.Building, version uint8, opts ...Option) (bool, error) {
	a, err := Marshal(x, version, opts...)
	if err != nil {
		return false, err
	}
	b, err := Marshal(y, version, opts...)
	if err != nil {
		return false, err
	}
	return bytes.Equal(a, b), nil
}
