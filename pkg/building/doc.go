// Package building provides the in-memory model of a structure: roots (rigid
// bodies) and the typed blocks attached to them.
//
// # Overview
//
// A [Building] owns two flat sequences. Roots is ordered and every root is
// addressed by its position in that slice. Blocks is a flat arena; every
// relationship a block has (its owning root, its connections, its load link,
// the members of its metadata field groups) is an integer index into these
// slices rather than a pointer.
//
// Blocks are expected to be grouped contiguously by owning root, in root
// order. The wire format depends on that grouping: from version 2 onwards a
// root only records the index of its last block. The codec regroups blocks
// that violate the ordering before encoding (see package index), so the
// grouping is a normalization, not a precondition.
//
// # Weak references
//
// Connections, load links and field-group members are weak: they may name
// an index that no longer exists after structural edits. Such references are
// silently dropped when the building is encoded. They are never an error.
//
// # Construction
//
//	b := building.New()
//	r := b.AddRoot(building.Root{})
//	a := b.AddBlock(building.Block{Type: 5, Root: r})
//	c := b.AddBlock(building.Block{Type: 5, Root: r, Position: building.Vec3{1, 0, 0}})
//	b.Connect(a, c)
//
// # Type settings
//
// [Metadata.TypeSettings] is a closed variant. A nil value means "none". The
// only defined variant is [MathBlock], which applies to the math block type
// id from the type registry; settings attached to any other type are ignored
// when encoding.
package building
