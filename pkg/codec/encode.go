package codec

import (
	"math"

	"github.com/matzehuels/structio/pkg/building"
	"github.com/matzehuels/structio/pkg/catalog"
	"github.com/matzehuels/structio/pkg/errors"
	"github.com/matzehuels/structio/pkg/index"
	"github.com/matzehuels/structio/pkg/packing"
	"github.com/matzehuels/structio/pkg/wire"
)

// Block flag bits.
const (
	flagName        = 1 << 0
	flagConnections = 1 << 1
	flagNoMetadata  = 1 << 2
	flagNoColor     = 1 << 3
	flagLoad        = 1 << 4
	flagReserved    = 1 << 5
	flagOverdriven  = 1 << 6
	flagLiveState   = 1 << 7
)

// Catalog sentinels in the v6 header.
const (
	noColorCatalog    = 0xFF
	noRotationCatalog = 0xFFFF
)

// Per-record byte estimates for sizing the output buffer.
const (
	rootSizeHint  = 50
	blockSizeHint = 24
)

type encoder struct {
	*codec
	lay  Layout
	w    *wire.Writer
	b    *building.Building
	ix   *index.Index
	plan *catalog.Plan
}

func (c *codec) encode(b *building.Building, version uint8) ([]byte, error) {
	lay, err := LayoutFor(version)
	if err != nil {
		return nil, err
	}
	ix, err := index.Build(b)
	if err != nil {
		return nil, err
	}
	if ix.Dropped > 0 {
		c.logger.Debug("dropped references", "count", ix.Dropped)
	}
	e := &encoder{
		codec: c,
		lay:   lay,
		w:     wire.NewWriter(1 + len(b.Roots)*rootSizeHint + len(b.Blocks)*blockSizeHint),
		b:     b,
		ix:    ix,
	}

	e.w.U8(version)
	c.logger.Debug("header", "version", version)
	if lay.Catalogs {
		e.plan = catalog.New(b.Blocks, ix.Order)
		e.writeCatalogs()
	}

	if err := e.w.Count(wire.U16, len(b.Roots), "roots"); err != nil {
		return nil, err
	}
	for r := range b.Roots {
		e.writeRoot(r)
	}

	if err := e.w.Count(wire.U16, len(b.Blocks), "blocks"); err != nil {
		return nil, err
	}
	for i := range ix.Order {
		if err := e.writeBlock(i); err != nil {
			return nil, err
		}
	}
	return e.w.Bytes(), nil
}

func (e *encoder) writeCatalogs() {
	p := e.plan
	colors, rotations := noColorCatalog, noRotationCatalog
	if p.ColorLookup {
		colors = len(p.Colors)
	}
	if p.RotationLookup {
		rotations = len(p.Rotations)
	}
	e.w.U8(uint8(colors))
	e.w.U16(uint16(rotations))
	e.logger.Debug("catalogs",
		"colors", len(p.Colors), "color_lookup", p.ColorLookup,
		"rotations", len(p.Rotations), "rotation_lookup", p.RotationLookup)

	if p.ColorLookup {
		for _, c := range p.Colors {
			e.w.U16(c)
		}
	}
	if p.RotationLookup {
		for _, r := range p.Rotations {
			e.w.U16(r[0])
			e.w.U16(r[1])
			e.w.U16(r[2])
		}
	}
}

func (e *encoder) writeRoot(r int) {
	root := &e.b.Roots[r]
	e.w.F32s(root.Position[:]...)
	e.w.F32s(root.Rotation[:]...)

	derived := e.ix.Roots[r]
	if e.lay.RootBounds {
		e.w.F32s(derived.Center[:]...)
		e.w.F32s(derived.Size[:]...)
	}
	if e.lay.LastBlockIndex {
		e.w.U16(derived.LastBlockIndex())
	}
	e.logger.Debug("root", "index", r, "blocks", derived.End-derived.Start,
		"center", derived.Center, "size", derived.Size)
}

func (e *encoder) interactable(typ uint8) bool {
	return !e.lay.InteractableGate || !e.reg.NonInteractable(typ)
}

func (e *encoder) writeBlock(c int) error {
	blk := &e.b.Blocks[e.ix.Order[c]]
	refs := e.ix.Blocks[c]

	if e.lay.RootBounds {
		root := e.ix.Roots[blk.Root]
		q := packing.Quantize(blk.Position, root.Center, root.Size)
		e.w.I16(q[0])
		e.w.I16(q[1])
		e.w.I16(q[2])
	} else {
		e.w.F32s(blk.Position[:]...)
	}

	if e.plan != nil && e.plan.RotationLookup {
		slot := e.plan.RotationSlots[c]
		if catalog.RotationWidth(len(e.plan.Rotations)) == wire.U8 {
			e.w.U8(uint8(slot))
		} else {
			e.w.U16(uint16(slot))
		}
	} else {
		p := packing.PackRotation(blk.Rotation)
		e.w.U16(p[0])
		e.w.U16(p[1])
		e.w.U16(p[2])
	}

	e.w.U8(blk.Type)
	if e.lay.BlockRootIndex {
		e.w.U16(uint16(blk.Root))
	}

	interactable := e.interactable(blk.Type)
	flags := e.flags(blk, refs, interactable)
	e.w.U8(flags)
	e.logger.Debug("block", "index", c, "type", blk.Type, "flags", flags, "interactable", interactable)

	if interactable || flags&flagLiveState != 0 {
		scale := float32(math.MaxUint8)
		if flags&flagOverdriven != 0 {
			scale = 1
		}
		e.w.U8(unitByte(blk.EnableStateCurrent * scale))
	}

	if interactable {
		if flags&flagName != 0 {
			if err := e.w.String(blk.Name); err != nil {
				return blockErr(c, "name", err)
			}
		}
		e.w.U8(unitByte(blk.EnableState * math.MaxUint8))
		if flags&flagLoad != 0 {
			e.w.U16(uint16(refs.Load))
		}
		if flags&flagConnections != 0 {
			if err := e.w.Count(e.lay.Connections, len(refs.Connections), "connections"); err != nil {
				return blockErr(c, "connections", err)
			}
			for _, to := range refs.Connections {
				e.w.U16(uint16(to))
			}
		}
	}

	if flags&flagNoMetadata == 0 {
		if err := e.writeMetadata(blk, refs); err != nil {
			return blockErr(c, "metadata", err)
		}
	}

	if flags&flagNoColor == 0 {
		e.writeColor(c, *blk.Color)
	}
	return nil
}

// flags describes what the block record carries. Groups a non-interactable
// block never writes are left clear.
func (e *encoder) flags(blk *building.Block, refs index.Block, interactable bool) uint8 {
	f := uint8(flagReserved)
	if interactable && blk.Name != "" {
		f |= flagName
	}
	if interactable && len(refs.Connections) > 0 {
		f |= flagConnections
	}
	if !interactable || blk.Metadata == nil {
		f |= flagNoMetadata
	}
	if blk.Color == nil {
		f |= flagNoColor
	}
	if interactable && refs.HasLoad() {
		f |= flagLoad
	}
	if blk.EnableStateCurrent > 1 {
		f |= flagOverdriven
	}
	if e.lay.ESCFlag && blk.EnableStateCurrent != 0 {
		f |= flagLiveState
	}
	return f
}

func (e *encoder) writeColor(c int, rgb building.RGB) {
	switch {
	case e.lay.RawColor:
		e.w.Raw([]byte{rgb[0], rgb[1], rgb[2], 0xFF})
	case e.plan != nil && e.plan.ColorLookup:
		e.w.U8(uint8(e.plan.ColorSlots[c]))
	default:
		e.w.U16(packing.PackColor(rgb))
	}
}

// unitByte truncates v into a byte, saturating at both ends.
func unitByte(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(v)
}

func blockErr(c int, field string, err error) error {
	return errors.Wrap(errors.GetCode(err), err, "block %d: %s", c, field)
}
