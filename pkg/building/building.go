package building

import (
	"slices"

	"github.com/matzehuels/structio/pkg/errors"
)

// Vec3 is a position, rotation (degrees) or free vector.
type Vec3 [3]float32

// RGB is an 8-bit block color.
type RGB [3]uint8

// RGBA is a floating point color used by metadata and gradients.
type RGBA [4]float32

// Building is a complete structure: ordered roots and a flat block arena.
//
// The zero value is an empty building ready for use.
type Building struct {
	Roots  []Root
	Blocks []Block
}

// Root is a physically independent rigid body. Its transform places the body
// in the world; it does not transform the coordinates of its blocks.
type Root struct {
	Position Vec3
	Rotation Vec3
}

// Block is a single typed element of a building.
type Block struct {
	Position Vec3
	Rotation Vec3 // degrees
	Type     uint8
	Root     int // index into Building.Roots

	Name string

	// EnableState is the authored value in [0, 1].
	EnableState float32
	// EnableStateCurrent is the live value. Values above 1 mark the
	// overdriven mode and are stored with integer precision.
	EnableStateCurrent float32

	Connections []int // indices into Building.Blocks
	Load        *int  // index into Building.Blocks
	Color       *RGB
	Metadata    *Metadata
}

// Metadata holds per-block parameters. Their meaning depends on the block type.
type Metadata struct {
	Toggles   []bool
	Values    []float32
	Fields    [][]int // groups of indices into Building.Blocks
	Dropdowns []int32
	Colors    []RGBA
	Gradients []Gradient
	Vectors   []Vec3

	TypeSettings TypeSettings
}

// Gradient is two independently keyed curves. Key and time-key counts need
// not match.
type Gradient struct {
	ColorKeys     []RGBA
	ColorTimeKeys []float32
	AlphaKeys     []float32
	AlphaTimeKeys []float32
}

// TypeSettings is the closed set of per-type settings. A nil TypeSettings
// means none.
type TypeSettings interface {
	typeSettings()
}

// MathBlock configures the math block type: an expression plus parallel
// arrays mapping incoming connection order to evaluation slots.
type MathBlock struct {
	Function                 string
	IncomingConnectionsOrder []uint8
	Slots                    []uint8
}

func (MathBlock) typeSettings() {}

// New returns an empty building.
func New() *Building {
	return &Building{}
}

// AddRoot appends r and returns its index.
func (b *Building) AddRoot(r Root) int {
	b.Roots = append(b.Roots, r)
	return len(b.Roots) - 1
}

// AddBlock appends blk and returns its index. blk.Root must already name an
// existing root; this is checked by [Building.Validate], not here.
func (b *Building) AddBlock(blk Block) int {
	b.Blocks = append(b.Blocks, blk)
	return len(b.Blocks) - 1
}

// Connect links blocks x and y in both directions. Existing links are not
// duplicated.
func (b *Building) Connect(x, y int) {
	if !slices.Contains(b.Blocks[x].Connections, y) {
		b.Blocks[x].Connections = append(b.Blocks[x].Connections, y)
	}
	if !slices.Contains(b.Blocks[y].Connections, x) {
		b.Blocks[y].Connections = append(b.Blocks[y].Connections, x)
	}
}

// SetLoad makes target the load link of block i.
func (b *Building) SetLoad(i, target int) {
	t := target
	b.Blocks[i].Load = &t
}

// RootBlocks returns the indices of the blocks owned by root r, in stored order.
func (b *Building) RootBlocks(r int) []int {
	var out []int
	for i := range b.Blocks {
		if b.Blocks[i].Root == r {
			out = append(out, i)
		}
	}
	return out
}

// Contiguous reports whether blocks are grouped by owning root in root order.
func (b *Building) Contiguous() bool {
	for i := 1; i < len(b.Blocks); i++ {
		if b.Blocks[i].Root < b.Blocks[i-1].Root {
			return false
		}
	}
	return true
}

// Validate checks the structural invariants that cannot be repaired by
// dropping references: every block must be owned by an existing root.
// Dangling weak references are not reported.
func (b *Building) Validate() error {
	for i := range b.Blocks {
		if r := b.Blocks[i].Root; r < 0 || r >= len(b.Roots) {
			return errors.New(errors.ErrCodeInvalidInput,
				"block %d: owning root %d does not exist (%d roots)", i, r, len(b.Roots))
		}
	}
	return nil
}

// Clone returns a deep copy of b.
func (b *Building) Clone() *Building {
	out := &Building{
		Roots:  slices.Clone(b.Roots),
		Blocks: make([]Block, len(b.Blocks)),
	}
	for i, blk := range b.Blocks {
		blk.Connections = slices.Clone(blk.Connections)
		if blk.Load != nil {
			l := *blk.Load
			blk.Load = &l
		}
		if blk.Color != nil {
			c := *blk.Color
			blk.Color = &c
		}
		if blk.Metadata != nil {
			blk.Metadata = blk.Metadata.Clone()
		}
		out.Blocks[i] = blk
	}
	return out
}

// Clone returns a deep copy of m.
func (m *Metadata) Clone() *Metadata {
	out := &Metadata{
		Toggles:   slices.Clone(m.Toggles),
		Values:    slices.Clone(m.Values),
		Dropdowns: slices.Clone(m.Dropdowns),
		Colors:    slices.Clone(m.Colors),
		Vectors:   slices.Clone(m.Vectors),
	}
	if m.Fields != nil {
		out.Fields = make([][]int, len(m.Fields))
		for i, f := range m.Fields {
			out.Fields[i] = slices.Clone(f)
		}
	}
	if m.Gradients != nil {
		out.Gradients = make([]Gradient, len(m.Gradients))
		for i, g := range m.Gradients {
			out.Gradients[i] = Gradient{
				ColorKeys:     slices.Clone(g.ColorKeys),
				ColorTimeKeys: slices.Clone(g.ColorTimeKeys),
				AlphaKeys:     slices.Clone(g.AlphaKeys),
				AlphaTimeKeys: slices.Clone(g.AlphaTimeKeys),
			}
		}
	}
	if mb, ok := m.TypeSettings.(MathBlock); ok {
		out.TypeSettings = MathBlock{
			Function:                 mb.Function,
			IncomingConnectionsOrder: slices.Clone(mb.IncomingConnectionsOrder),
			Slots:                    slices.Clone(mb.Slots),
		}
	}
	return out
}
