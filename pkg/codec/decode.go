package codec

import (
	"github.com/matzehuels/structio/pkg/building"
	"github.com/matzehuels/structio/pkg/catalog"
	"github.com/matzehuels/structio/pkg/errors"
	"github.com/matzehuels/structio/pkg/index"
	"github.com/matzehuels/structio/pkg/packing"
	"github.com/matzehuels/structio/pkg/wire"
)

type decoder struct {
	*codec
	lay Layout
	r   *wire.Reader

	blockCount int
	rotations  []catalog.Rotation
	colors     []uint16
}

type rootBounds struct {
	center, size building.Vec3
}

func (c *codec) decode(data []byte) (*building.Building, *Info, error) {
	d := &decoder{codec: c, r: wire.NewReader(data)}
	version := d.r.U8()
	if err := d.r.Err(); err != nil {
		return nil, nil, err
	}
	lay, err := LayoutFor(version)
	if err != nil {
		return nil, nil, err
	}
	d.lay = lay
	info := &Info{
		Version:         version,
		Size:            len(data),
		RotationCatalog: -1,
		ColorCatalog:    -1,
		Types:           make(map[uint8]int),
	}

	if lay.Catalogs {
		d.readCatalogs()
		if d.rotations != nil {
			info.RotationCatalog = len(d.rotations)
		}
		if d.colors != nil {
			info.ColorCatalog = len(d.colors)
		}
	}

	b := building.New()
	roots := d.r.Count(wire.U16)
	b.Roots = make([]building.Root, roots)
	bounds := make([]rootBounds, roots)
	boundaries := make([]uint16, roots)
	for i := range b.Roots {
		root := &b.Roots[i]
		root.Position = d.readVec3()
		root.Rotation = d.readVec3()
		if lay.RootBounds {
			bounds[i].center = d.readVec3()
			bounds[i].size = d.readVec3()
		}
		if lay.LastBlockIndex {
			boundaries[i] = d.r.U16()
		}
	}

	d.blockCount = d.r.Count(wire.U16)
	if err := d.r.Err(); err != nil {
		return nil, info, err
	}
	var owners []int
	if lay.LastBlockIndex {
		if owners, err = index.Owners(boundaries, d.blockCount); err != nil {
			return nil, info, err
		}
	}

	b.Blocks = make([]building.Block, d.blockCount)
	for i := range b.Blocks {
		blk := &b.Blocks[i]
		if err := d.readBlock(i, blk, owners, bounds); err != nil {
			return nil, info, errors.Wrap(errors.GetCode(err), err, "block %d", i)
		}
		info.Types[blk.Type]++
	}

	if n := d.r.Remaining(); n > 0 {
		return nil, info, errors.New(errors.ErrCodeInvalidData, "%d trailing bytes after the last block", n)
	}
	info.Roots, info.Blocks = len(b.Roots), len(b.Blocks)
	return b, info, nil
}

func (d *decoder) readCatalogs() {
	colors := d.r.U8()
	rotations := d.r.U16()
	if colors != noColorCatalog {
		d.colors = make([]uint16, colors)
		for i := range d.colors {
			d.colors[i] = d.r.U16()
		}
	}
	if rotations != noRotationCatalog {
		d.rotations = make([]catalog.Rotation, rotations)
		for i := range d.rotations {
			d.rotations[i] = catalog.Rotation{d.r.U16(), d.r.U16(), d.r.U16()}
		}
	}
	d.logger.Debug("catalogs", "colors", int(colors), "rotations", int(rotations))
}

func (d *decoder) readVec3() building.Vec3 {
	return building.Vec3{d.r.F32(), d.r.F32(), d.r.F32()}
}

func (d *decoder) readBlock(i int, blk *building.Block, owners []int, bounds []rootBounds) error {
	r := d.r

	var q [3]int16
	if d.lay.RootBounds {
		q = [3]int16{r.I16(), r.I16(), r.I16()}
	} else {
		blk.Position = d.readVec3()
	}

	if d.rotations != nil {
		var slot int
		if catalog.RotationWidth(len(d.rotations)) == wire.U8 {
			slot = int(r.U8())
		} else {
			slot = int(r.U16())
		}
		if r.Err() == nil && slot >= len(d.rotations) {
			return errors.New(errors.ErrCodeMissingData, "rotation slot %d outside catalog of %d", slot, len(d.rotations))
		}
		if r.Err() == nil {
			blk.Rotation = packing.UnpackRotation(d.rotations[slot])
		}
	} else {
		blk.Rotation = packing.UnpackRotation([3]uint16{r.U16(), r.U16(), r.U16()})
	}

	blk.Type = r.U8()
	if d.lay.BlockRootIndex {
		blk.Root = int(r.U16())
		if err := r.Err(); err != nil {
			return err
		}
		if blk.Root >= len(bounds) {
			return errors.New(errors.ErrCodeInvalidData, "owning root %d does not exist (%d roots)", blk.Root, len(bounds))
		}
	} else {
		blk.Root = owners[i]
	}
	if d.lay.RootBounds {
		rb := bounds[blk.Root]
		blk.Position = packing.Dequantize(q, rb.center, rb.size)
	}

	flags := r.U8()
	if err := r.Err(); err != nil {
		return err
	}
	interactable := !d.lay.InteractableGate || !d.reg.NonInteractable(blk.Type)
	if !interactable {
		if err := checkGatedFlags(flags); err != nil {
			return err
		}
	}

	if interactable || (d.lay.ESCFlag && flags&flagLiveState != 0) {
		v := float32(r.U8())
		if flags&flagOverdriven == 0 {
			v /= 255
		}
		blk.EnableStateCurrent = v
	}

	if interactable {
		if flags&flagName != 0 {
			blk.Name = r.String()
		}
		blk.EnableState = float32(r.U8()) / 255
		if flags&flagLoad != 0 {
			load := int(r.U16())
			d.checkRef(load, "load")
			blk.Load = &load
		}
		if flags&flagConnections != 0 {
			n := r.Count(d.lay.Connections)
			blk.Connections = d.readRefs(n, func() int { return int(r.U16()) })
		}
	}

	if flags&flagNoMetadata == 0 {
		blk.Metadata = d.readMetadata(blk.Type)
	}

	if flags&flagNoColor == 0 {
		c, err := d.readColor()
		if err != nil {
			return err
		}
		blk.Color = &c
	}

	d.logger.Debug("block", "index", i, "type", blk.Type, "flags", flags, "root", blk.Root)
	return r.Err()
}

// checkGatedFlags rejects flags that promise groups a non-interactable
// block cannot carry.
func checkGatedFlags(flags uint8) error {
	switch {
	case flags&flagName != 0:
		return errors.New(errors.ErrCodeMissingData, "flags claim a name on a non-interactable type")
	case flags&flagConnections != 0:
		return errors.New(errors.ErrCodeMissingData, "flags claim connections on a non-interactable type")
	case flags&flagLoad != 0:
		return errors.New(errors.ErrCodeMissingData, "flags claim a load on a non-interactable type")
	case flags&flagNoMetadata == 0:
		return errors.New(errors.ErrCodeMissingData, "flags claim metadata on a non-interactable type")
	}
	return nil
}

func (d *decoder) readColor() (building.RGB, error) {
	r := d.r
	switch {
	case d.lay.RawColor:
		p := r.Raw(4)
		if p == nil {
			return building.RGB{}, r.Err()
		}
		return building.RGB{p[0], p[1], p[2]}, nil
	case d.colors != nil:
		slot := int(r.U8())
		if err := r.Err(); err != nil {
			return building.RGB{}, err
		}
		if slot >= len(d.colors) {
			return building.RGB{}, errors.New(errors.ErrCodeMissingData,
				"color slot %d outside catalog of %d", slot, len(d.colors))
		}
		return packing.UnpackColor(d.colors[slot]), nil
	default:
		return packing.UnpackColor(r.U16()), r.Err()
	}
}

func (d *decoder) checkRef(ref int, what string) {
	if d.r.Err() == nil && (ref < 0 || ref >= d.blockCount) {
		d.r.Fail(errors.New(errors.ErrCodeMissingData, "%s references block %d of %d", what, ref, d.blockCount))
	}
}
