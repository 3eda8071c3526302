// Package index assigns the canonical index space of a building and resolves
// its weak references into that space.
//
// Canonical order visits roots in stored order and, within each root, its
// blocks in stored order. For a building whose blocks are already grouped by
// root this is the identity. Every cross-link the wire format stores
// (connections, load links, metadata field groups, root boundaries) is an
// index in this order.
//
// References to blocks that are not part of the building are dropped, as are
// repeated references within one list. Neither is an error.
package index

import (
	"slices"

	"github.com/matzehuels/structio/pkg/building"
	"github.com/matzehuels/structio/pkg/errors"
	"github.com/matzehuels/structio/pkg/packing"
)

// NoLoad marks a block without a load link in [Block.Load].
const NoLoad = -1

// NoBlock is the boundary value of a root that ends before any block.
const NoBlock = 0xFFFF

// Index is the per-pass state derived from one building.
type Index struct {
	// Order maps canonical position to the caller's block index.
	Order []int
	// Canon maps the caller's block index to canonical position.
	Canon []int

	Roots  []Root
	Blocks []Block // canonical order

	// Dropped counts references removed because they were dangling or repeated.
	Dropped int
}

// Root is the derived state of one root.
type Root struct {
	Start, End   int // canonical block range [Start, End)
	Center, Size building.Vec3
}

// LastBlockIndex returns the boundary value stored for the root: the
// canonical index of its last block, or of the last block of the nearest
// preceding non-empty root. NoBlock means no block precedes the boundary.
func (r Root) LastBlockIndex() uint16 {
	if r.End == 0 {
		return NoBlock
	}
	return uint16(r.End - 1)
}

// Block is a block's resolved references, all canonical.
type Block struct {
	Connections []int
	Load        int
	Fields      [][]int
}

// HasLoad reports whether the block has a resolved load link.
func (b Block) HasLoad() bool { return b.Load != NoLoad }

// Build indexes b. It fails only when a block names a root that does not
// exist.
func Build(b *building.Building) (*Index, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	ix := &Index{
		Order:  make([]int, 0, len(b.Blocks)),
		Canon:  make([]int, len(b.Blocks)),
		Roots:  make([]Root, len(b.Roots)),
		Blocks: make([]Block, len(b.Blocks)),
	}

	members := make([][]int, len(b.Roots))
	for i := range b.Blocks {
		r := b.Blocks[i].Root
		members[r] = append(members[r], i)
	}
	for r, ms := range members {
		var bounds packing.Bounds
		start := len(ix.Order)
		for _, i := range ms {
			ix.Canon[i] = len(ix.Order)
			ix.Order = append(ix.Order, i)
			bounds.Add(b.Blocks[i].Position)
		}
		center, size := bounds.CenterSize()
		ix.Roots[r] = Root{Start: start, End: len(ix.Order), Center: center, Size: size}
	}

	for c, i := range ix.Order {
		blk := &b.Blocks[i]
		res := Block{
			Connections: ix.resolveList(blk.Connections),
			Load:        NoLoad,
		}
		if blk.Load != nil {
			if l, ok := ix.resolve(*blk.Load); ok {
				res.Load = l
			} else {
				ix.Dropped++
			}
		}
		if blk.Metadata != nil && blk.Metadata.Fields != nil {
			res.Fields = make([][]int, len(blk.Metadata.Fields))
			for g, group := range blk.Metadata.Fields {
				res.Fields[g] = ix.resolveList(group)
			}
		}
		ix.Blocks[c] = res
	}
	return ix, nil
}

func (ix *Index) resolve(ref int) (int, bool) {
	if ref < 0 || ref >= len(ix.Canon) {
		return 0, false
	}
	return ix.Canon[ref], true
}

func (ix *Index) resolveList(refs []int) []int {
	if len(refs) == 0 {
		return nil
	}
	out := make([]int, 0, len(refs))
	for _, ref := range refs {
		c, ok := ix.resolve(ref)
		if !ok || slices.Contains(out, c) {
			ix.Dropped++
			continue
		}
		out = append(out, c)
	}
	return out
}

// Owners reconstructs the owning root of every block from root boundaries
// as written by [Root.LastBlockIndex]. Boundaries must be non-decreasing,
// inside the block range, and the last one must cover every block.
func Owners(boundaries []uint16, blockCount int) ([]int, error) {
	owners := make([]int, blockCount)
	next := 0
	for r, last := range boundaries {
		end := int(last) + 1
		if last == NoBlock {
			end = 0
		}
		if end < next || end > blockCount {
			return nil, errors.New(errors.ErrCodeInvalidData,
				"root %d: last block index %d outside [%d, %d)", r, int(last), next-1, blockCount)
		}
		for ; next < end; next++ {
			owners[next] = r
		}
	}
	if next != blockCount {
		return nil, errors.New(errors.ErrCodeInvalidData,
			"%d of %d blocks belong to no root", blockCount-next, blockCount)
	}
	return owners, nil
}
