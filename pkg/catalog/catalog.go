// Package catalog plans the global rotation and color catalogs of an encode
// pass.
//
// A catalog is an order-preserving list of distinct packed values. When a
// catalog is enabled every block stores an index into it instead of the
// packed value itself. Whether that pays off is decided once per pass from
// the reuse ratio of the values:
//
//   - rotations: enabled when blocks/distinct exceeds [RotationReuseSmall]
//     (at most 255 distinct, so indices fit a byte) or [RotationReuseLarge]
//     (otherwise), and there are fewer than 65535 distinct rotations.
//   - colors: only colored blocks take part, collection stops at 255
//     entries, and the catalog is enabled when colored/distinct exceeds
//     [ColorReuse] with fewer than 255 distinct colors.
package catalog

import (
	"github.com/matzehuels/structio/pkg/building"
	"github.com/matzehuels/structio/pkg/packing"
	"github.com/matzehuels/structio/pkg/wire"
)

// Reuse thresholds.
const (
	RotationReuseSmall = 1.2
	RotationReuseLarge = 1.5
	ColorReuse         = 2.0
)

// Capacity limits. Both sentinels mark an unused catalog on the wire, so the
// largest usable catalog is one entry shorter.
const (
	MaxRotations = 0xFFFF
	MaxColors    = 0xFF
)

// NoSlot marks a block without a catalog slot.
const NoSlot = -1

// Rotation is a packed rotation: three packed angles.
type Rotation = [3]uint16

// Catalog is an order-preserving set of distinct values.
type Catalog[T comparable] struct {
	entries []T
	slots   map[T]int
}

// Insert adds v unless present and returns its slot.
func (c *Catalog[T]) Insert(v T) int {
	if s, ok := c.slots[v]; ok {
		return s
	}
	if c.slots == nil {
		c.slots = make(map[T]int)
	}
	c.entries = append(c.entries, v)
	c.slots[v] = len(c.entries) - 1
	return len(c.entries) - 1
}

// Slot returns the slot of v.
func (c *Catalog[T]) Slot(v T) (int, bool) {
	s, ok := c.slots[v]
	return s, ok
}

// Len returns the number of distinct values.
func (c *Catalog[T]) Len() int { return len(c.entries) }

// Entries returns the values in insertion order.
func (c *Catalog[T]) Entries() []T { return c.entries }

// Plan is the catalog decision for one pass. Slot slices are indexed by
// canonical block position.
type Plan struct {
	Rotations      []Rotation
	RotationSlots  []int
	RotationLookup bool

	Colors      []uint16
	ColorSlots  []int
	ColorLookup bool
}

// New plans catalogs for blocks visited in the given order.
func New(blocks []building.Block, order []int) *Plan {
	p := &Plan{
		RotationSlots: make([]int, len(order)),
		ColorSlots:    make([]int, len(order)),
	}

	var rots Catalog[Rotation]
	var cols Catalog[uint16]
	colored := 0
	for c, i := range order {
		blk := &blocks[i]
		p.RotationSlots[c] = rots.Insert(packing.PackRotation(blk.Rotation))

		p.ColorSlots[c] = NoSlot
		if blk.Color == nil {
			continue
		}
		colored++
		packed := packing.PackColor(*blk.Color)
		if s, ok := cols.Slot(packed); ok {
			p.ColorSlots[c] = s
		} else if cols.Len() < MaxColors {
			p.ColorSlots[c] = cols.Insert(packed)
		}
	}

	p.Rotations = rots.Entries()
	p.RotationLookup = RotationWorthwhile(len(order), rots.Len())
	p.Colors = cols.Entries()
	p.ColorLookup = ColorWorthwhile(colored, cols.Len())
	return p
}

// RotationWorthwhile applies the rotation catalog threshold.
func RotationWorthwhile(blocks, distinct int) bool {
	if distinct == 0 || distinct >= MaxRotations {
		return false
	}
	reuse := float64(blocks) / float64(distinct)
	if RotationWidth(distinct) == wire.U8 {
		return reuse > RotationReuseSmall
	}
	return reuse > RotationReuseLarge
}

// ColorWorthwhile applies the color catalog threshold.
func ColorWorthwhile(colored, distinct int) bool {
	if distinct == 0 || distinct >= MaxColors {
		return false
	}
	return float64(colored)/float64(distinct) > ColorReuse
}

// RotationWidth returns the width of a rotation index: a byte while the
// catalog has at most 255 entries.
func RotationWidth(n int) wire.Width {
	if n <= 0xFF {
		return wire.U8
	}
	return wire.U16
}
