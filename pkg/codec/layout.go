package codec

import (
	"github.com/matzehuels/structio/pkg/errors"
	"github.com/matzehuels/structio/pkg/wire"
)

// Latest is the newest format version.
const Latest = 6

// Layout describes the record layout of one format version. Every rule the
// encoder and decoder branch on is a field here; nothing else looks at the
// version number.
type Layout struct {
	Version uint8

	// Roots store their bounding box and blocks store positions quantized
	// against it instead of raw floats.
	RootBounds bool
	// Roots store the canonical index of their last block.
	LastBlockIndex bool
	// Blocks store the index of their owning root.
	BlockRootIndex bool

	// Non-interactable types omit name, enable state, load, connections
	// and metadata. Without the gate every type is interactable.
	InteractableGate bool
	// Flag bit 7 forces the live enable state of any block with a
	// non-zero value onto the wire.
	ESCFlag bool
	// Width of the connection count.
	Connections wire.Width
	// Colors are stored as R, G, B and a pad byte instead of RGB565.
	RawColor bool

	// Metadata uses the compact layout (byte-sized field and vector
	// counts, u16 field indices, byte dropdowns).
	CompactMetadata bool
	// Width of the toggle count.
	Toggles wire.Width
	// Toggles are bit-packed eight per byte.
	PackedToggles bool
	// Dropdown count and the presence of colors and gradients share one byte.
	FoldedMetadataFlags bool

	// The header carries the global rotation and color catalogs.
	Catalogs bool
}

var layouts = [Latest + 1]Layout{
	{
		Version:     0,
		Connections: wire.U16, RawColor: true,
		BlockRootIndex: true,
		Toggles:        wire.U16,
	},
	{
		Version:    1,
		RootBounds: true, BlockRootIndex: true,
		InteractableGate: true, Connections: wire.U16,
		CompactMetadata: true, Toggles: wire.U16,
	},
	{
		Version:    2,
		RootBounds: true, LastBlockIndex: true,
		InteractableGate: true, Connections: wire.U16,
		CompactMetadata: true, Toggles: wire.U16,
	},
	{
		Version:    3,
		RootBounds: true, LastBlockIndex: true,
		InteractableGate: true, ESCFlag: true, Connections: wire.U16,
		CompactMetadata: true, Toggles: wire.U16,
	},
	{
		Version:    4,
		RootBounds: true, LastBlockIndex: true,
		InteractableGate: true, ESCFlag: true, Connections: wire.U8,
		CompactMetadata: true, Toggles: wire.U16,
	},
	{
		Version:    5,
		RootBounds: true, LastBlockIndex: true,
		InteractableGate: true, ESCFlag: true, Connections: wire.U8,
		CompactMetadata: true, Toggles: wire.U8, PackedToggles: true, FoldedMetadataFlags: true,
	},
	{
		Version:    6,
		RootBounds: true, LastBlockIndex: true,
		InteractableGate: true, ESCFlag: true, Connections: wire.U8,
		CompactMetadata: true, Toggles: wire.U8, PackedToggles: true, FoldedMetadataFlags: true,
		Catalogs: true,
	},
}

// LayoutFor returns the layout of version v.
func LayoutFor(v uint8) (Layout, error) {
	if int(v) >= len(layouts) {
		return Layout{}, errors.New(errors.ErrCodeUnsupportedVersion,
			"version %d not supported (want 0..%d)", v, Latest)
	}
	return layouts[v], nil
}

// Versions returns every supported version, oldest first.
func Versions() []uint8 {
	out := make([]uint8, len(layouts))
	for i := range layouts {
		out[i] = layouts[i].Version
	}
	return out
}
