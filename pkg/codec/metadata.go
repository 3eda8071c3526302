package codec

import (
	"math"
	"unicode/utf8"

	"github.com/matzehuels/structio/pkg/building"
	"github.com/matzehuels/structio/pkg/errors"
	"github.com/matzehuels/structio/pkg/index"
	"github.com/matzehuels/structio/pkg/packing"
	"github.com/matzehuels/structio/pkg/wire"
)

// Packed count bytes.
const (
	legacyFieldMask   = 0x7FFF
	legacyVectorsFlag = 0x8000
	fieldMask         = 0x7F
	vectorsFlag       = 0x80
	dropdownMask      = 0x3F
	colorsFlag        = 1 << 6
	gradientsFlag     = 1 << 7
)

func (e *encoder) writeMetadata(blk *building.Block, refs index.Block) error {
	m := blk.Metadata
	if !e.lay.CompactMetadata {
		if err := e.writeLegacyMetadata(m, refs); err != nil {
			return err
		}
		return e.writeTypeSettings(blk.Type, m.TypeSettings)
	}
	w := e.w

	if err := w.Count(e.lay.Toggles, len(m.Toggles), "toggles"); err != nil {
		return err
	}
	if e.lay.PackedToggles {
		w.Raw(packing.PackBools(m.Toggles))
	} else {
		for _, t := range m.Toggles {
			w.U8(boolByte(t))
		}
	}

	if err := w.Count(wire.U16, len(m.Values), "values"); err != nil {
		return err
	}
	w.F32s(m.Values...)

	custom := e.reg.Custom(blk.Type)
	if custom {
		// The custom layout has no slot for field groups.
		if len(refs.Fields) > 0 {
			return errors.New(errors.ErrCodeCapacity, "fields: %d groups on custom type %d (max 0 at v%d)", len(refs.Fields), blk.Type, e.lay.Version)
		}
		if err := w.Count(wire.U8, len(m.Vectors), "vectors"); err != nil {
			return err
		}
		if len(m.Vectors) > 0 {
			if err := e.writeRangeVectors(m.Vectors); err != nil {
				return err
			}
		}
	} else {
		if len(refs.Fields) > fieldMask {
			return errors.New(errors.ErrCodeCapacity, "fields: %d groups (max %d)", len(refs.Fields), fieldMask)
		}
		packed := uint8(len(refs.Fields))
		if len(m.Vectors) > 0 {
			packed |= vectorsFlag
		}
		w.U8(packed)
		if len(m.Vectors) > 0 {
			if err := w.Count(wire.U8, len(m.Vectors), "vectors"); err != nil {
				return err
			}
			for _, v := range m.Vectors {
				w.F32s(v[:]...)
			}
		}
		for g, group := range refs.Fields {
			if err := w.Count(wire.U8, len(group), "field group"); err != nil {
				return err
			}
			for _, ref := range group {
				if ref == index.NoBlock {
					return errors.New(errors.ErrCodeCapacity, "field group %d: block index %d is reserved", g, ref)
				}
				w.U16(uint16(ref))
			}
		}
	}

	for i, d := range m.Dropdowns {
		if d < 0 || d > math.MaxUint8 {
			return errors.New(errors.ErrCodeCapacity, "dropdown %d: value %d outside 0..255", i, d)
		}
	}
	if e.lay.FoldedMetadataFlags {
		if len(m.Dropdowns) > dropdownMask {
			return errors.New(errors.ErrCodeCapacity, "dropdowns: count %d (max %d)", len(m.Dropdowns), dropdownMask)
		}
		packed := uint8(len(m.Dropdowns))
		if len(m.Colors) > 0 {
			packed |= colorsFlag
		}
		if len(m.Gradients) > 0 {
			packed |= gradientsFlag
		}
		w.U8(packed)
		for _, d := range m.Dropdowns {
			w.U8(uint8(d))
		}
		if len(m.Colors) > 0 {
			if err := e.writeColors(wire.U8, m.Colors); err != nil {
				return err
			}
		}
		if len(m.Gradients) > 0 {
			if err := e.writeGradients(wire.U8, m.Gradients); err != nil {
				return err
			}
		}
	} else {
		if err := w.Count(wire.U16, len(m.Dropdowns), "dropdowns"); err != nil {
			return err
		}
		for _, d := range m.Dropdowns {
			w.U8(uint8(d))
		}
		if err := e.writeColors(wire.U16, m.Colors); err != nil {
			return err
		}
		if err := e.writeGradients(wire.U16, m.Gradients); err != nil {
			return err
		}
	}

	return e.writeTypeSettings(blk.Type, m.TypeSettings)
}

func (e *encoder) writeLegacyMetadata(m *building.Metadata, refs index.Block) error {
	w := e.w
	if err := w.Count(wire.U16, len(m.Toggles), "toggles"); err != nil {
		return err
	}
	for _, t := range m.Toggles {
		w.U8(boolByte(t))
	}
	if err := w.Count(wire.U16, len(m.Values), "values"); err != nil {
		return err
	}
	w.F32s(m.Values...)

	if len(refs.Fields) > legacyFieldMask {
		return errors.New(errors.ErrCodeCapacity, "fields: %d groups (max %d)", len(refs.Fields), legacyFieldMask)
	}
	packed := uint16(len(refs.Fields))
	if len(m.Vectors) > 0 {
		packed |= legacyVectorsFlag
	}
	w.U16(packed)
	if err := w.Count(wire.U16, len(m.Vectors), "vectors"); err != nil {
		return err
	}
	for _, v := range m.Vectors {
		w.F32s(v[:]...)
	}
	for _, group := range refs.Fields {
		if err := w.Count(wire.U16, len(group), "field group"); err != nil {
			return err
		}
		for _, ref := range group {
			w.I32(int32(ref))
		}
	}

	if err := w.Count(wire.U16, len(m.Dropdowns), "dropdowns"); err != nil {
		return err
	}
	for _, d := range m.Dropdowns {
		w.I32(d)
	}
	if err := e.writeColors(wire.U16, m.Colors); err != nil {
		return err
	}
	return e.writeGradients(wire.U16, m.Gradients)
}

func (e *encoder) writeRangeVectors(vs []building.Vec3) error {
	lo, hi, ok := packing.VectorRange(vs)
	if !ok {
		return errors.New(errors.ErrCodeCapacity, "vectors: components outside the signed byte range")
	}
	e.w.I8(lo)
	e.w.I8(hi)
	for _, v := range vs {
		for _, x := range v {
			e.w.U16(packing.PackVectorComponent(x, lo, hi))
		}
	}
	return nil
}

func (e *encoder) writeColors(width wire.Width, colors []building.RGBA) error {
	if err := e.w.Count(width, len(colors), "colors"); err != nil {
		return err
	}
	for _, c := range colors {
		e.w.F32s(c[:]...)
	}
	return nil
}

func (e *encoder) writeGradients(width wire.Width, gs []building.Gradient) error {
	if err := e.w.Count(width, len(gs), "gradients"); err != nil {
		return err
	}
	for _, g := range gs {
		if err := e.writeColors(wire.U16, g.ColorKeys); err != nil {
			return err
		}
		for _, keys := range [][]float32{g.ColorTimeKeys, g.AlphaKeys, g.AlphaTimeKeys} {
			if err := e.w.Count(wire.U16, len(keys), "gradient keys"); err != nil {
				return err
			}
			e.w.F32s(keys...)
		}
	}
	return nil
}

// writeTypeSettings writes the settings record of math blocks. Other types
// have none; settings of the wrong kind are replaced by defaults.
func (e *encoder) writeTypeSettings(typ uint8, ts building.TypeSettings) error {
	if !e.reg.IsMath(typ) {
		if ts != nil {
			e.logger.Debug("type settings ignored", "type", typ)
		}
		return nil
	}
	mb, ok := ts.(building.MathBlock)
	if !ok {
		e.logger.Debug("math block without settings, writing defaults", "type", typ)
	}
	if len(mb.IncomingConnectionsOrder) != len(mb.Slots) {
		return errors.New(errors.ErrCodeMissingData, "math block: %d connection orders but %d slots",
			len(mb.IncomingConnectionsOrder), len(mb.Slots))
	}
	if len(mb.Function) > math.MaxUint16 {
		return errors.New(errors.ErrCodeCapacity, "math block: function of %d bytes (max %d)", len(mb.Function), math.MaxUint16)
	}
	e.w.U16(uint16(len(mb.Function)))
	e.w.Raw([]byte(mb.Function))
	if err := e.w.Count(wire.U8, len(mb.Slots), "math block slots"); err != nil {
		return err
	}
	e.w.Raw(mb.IncomingConnectionsOrder)
	e.w.Raw(mb.Slots)
	return nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func (d *decoder) readMetadata(typ uint8) *building.Metadata {
	m := &building.Metadata{}
	if !d.lay.CompactMetadata {
		d.readLegacyMetadata(m)
		m.TypeSettings = d.readTypeSettings(typ)
		return m
	}
	r := d.r

	if n := r.Count(d.lay.Toggles); n > 0 {
		if d.lay.PackedToggles {
			m.Toggles = packing.UnpackBools(r.Raw(packing.PackedBoolsLen(n)), n)
		} else {
			m.Toggles = make([]bool, n)
			for i := range m.Toggles {
				m.Toggles[i] = r.U8() != 0
			}
		}
	}
	m.Values = d.readFloats(r.Count(wire.U16))

	if d.reg.Custom(typ) {
		if n := int(r.U8()); n > 0 {
			m.Vectors = d.readRangeVectors(n)
		}
	} else {
		packed := r.U8()
		groups := int(packed & fieldMask)
		if packed&vectorsFlag != 0 {
			m.Vectors = d.readVectors(int(r.U8()))
		}
		if groups > 0 {
			m.Fields = make([][]int, groups)
			for g := range m.Fields {
				m.Fields[g] = d.readRefs(int(r.U8()), func() int { return int(r.U16()) })
			}
		}
	}

	if d.lay.FoldedMetadataFlags {
		packed := r.U8()
		m.Dropdowns = d.readByteDropdowns(int(packed & dropdownMask))
		if packed&colorsFlag != 0 {
			m.Colors = d.readColors(r.Count(wire.U8))
		}
		if packed&gradientsFlag != 0 {
			m.Gradients = d.readGradients(r.Count(wire.U8))
		}
	} else {
		m.Dropdowns = d.readByteDropdowns(r.Count(wire.U16))
		m.Colors = d.readColors(r.Count(wire.U16))
		m.Gradients = d.readGradients(r.Count(wire.U16))
	}

	m.TypeSettings = d.readTypeSettings(typ)
	return m
}

func (d *decoder) readLegacyMetadata(m *building.Metadata) {
	r := d.r
	if n := r.Count(wire.U16); n > 0 {
		m.Toggles = make([]bool, n)
		for i := range m.Toggles {
			m.Toggles[i] = r.U8() != 0
		}
	}
	m.Values = d.readFloats(r.Count(wire.U16))

	groups := int(r.U16() & legacyFieldMask)
	m.Vectors = d.readVectors(r.Count(wire.U16))
	if groups > 0 {
		m.Fields = make([][]int, groups)
		for g := range m.Fields {
			m.Fields[g] = d.readRefs(r.Count(wire.U16), func() int { return int(r.I32()) })
		}
	}

	if n := r.Count(wire.U16); n > 0 {
		m.Dropdowns = make([]int32, n)
		for i := range m.Dropdowns {
			m.Dropdowns[i] = r.I32()
		}
	}
	m.Colors = d.readColors(r.Count(wire.U16))
	m.Gradients = d.readGradients(r.Count(wire.U16))
}

// readRefs reads n block references and checks each against the block count.
func (d *decoder) readRefs(n int, next func() int) []int {
	if n == 0 {
		return []int{}
	}
	refs := make([]int, n)
	for i := range refs {
		refs[i] = next()
		d.checkRef(refs[i], "field group member")
	}
	return refs
}

func (d *decoder) readFloats(n int) []float32 {
	if n == 0 {
		return nil
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = d.r.F32()
	}
	return out
}

func (d *decoder) readVectors(n int) []building.Vec3 {
	if n == 0 {
		return nil
	}
	out := make([]building.Vec3, n)
	for i := range out {
		out[i] = building.Vec3{d.r.F32(), d.r.F32(), d.r.F32()}
	}
	return out
}

func (d *decoder) readRangeVectors(n int) []building.Vec3 {
	lo, hi := d.r.I8(), d.r.I8()
	if d.r.Err() == nil && hi <= lo {
		d.r.Fail(errors.New(errors.ErrCodeInvalidData, "vector range [%d, %d] is empty", lo, hi))
	}
	out := make([]building.Vec3, n)
	for i := range out {
		for j := range 3 {
			out[i][j] = packing.UnpackVectorComponent(d.r.U16(), lo, hi)
		}
	}
	return out
}

func (d *decoder) readByteDropdowns(n int) []int32 {
	if n == 0 {
		return nil
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(d.r.U8())
	}
	return out
}

func (d *decoder) readColors(n int) []building.RGBA {
	if n == 0 {
		return nil
	}
	out := make([]building.RGBA, n)
	for i := range out {
		out[i] = building.RGBA{d.r.F32(), d.r.F32(), d.r.F32(), d.r.F32()}
	}
	return out
}

func (d *decoder) readGradients(n int) []building.Gradient {
	if n == 0 {
		return nil
	}
	out := make([]building.Gradient, n)
	for i := range out {
		out[i].ColorKeys = d.readColors(d.r.Count(wire.U16))
		out[i].ColorTimeKeys = d.readFloats(d.r.Count(wire.U16))
		out[i].AlphaKeys = d.readFloats(d.r.Count(wire.U16))
		out[i].AlphaTimeKeys = d.readFloats(d.r.Count(wire.U16))
		if d.r.Err() != nil {
			return nil
		}
	}
	return out
}

func (d *decoder) readTypeSettings(typ uint8) building.TypeSettings {
	if !d.reg.IsMath(typ) {
		return nil
	}
	r := d.r
	start := r.Offset()
	fn := r.Raw(int(r.U16()))
	if r.Err() == nil && !utf8.Valid(fn) {
		r.Fail(errors.New(errors.ErrCodeInvalidData, "math block function at offset %d is not valid UTF-8", start))
	}
	pairs := int(r.U8())
	mb := building.MathBlock{Function: string(fn)}
	if pairs > 0 {
		mb.IncomingConnectionsOrder = append([]uint8(nil), r.Raw(pairs)...)
		mb.Slots = append([]uint8(nil), r.Raw(pairs)...)
	}
	return mb
}
