// Package codec encodes and decodes buildings in the versioned binary
// structure format.
//
// # Format
//
// An encoding starts with a version byte. Version 6 then carries the global
// rotation and color catalogs. Roots follow, each with its world transform
// and (from version 1) the bounding box of its blocks, and then the blocks.
// Block positions from version 1 on are 16-bit offsets within the owning
// root's box; from version 2 on the owning root is implied by the
// last-block boundaries the roots store.
//
// Every difference between versions is a field of [Layout]. The encoder and
// decoder consult the layout and never the version number itself.
//
// # Precision
//
// The format is lossy. Positions round-trip to one quantization step of the
// owning root's box, rotations to one packed angle step, colors to RGB565
// and enable states to 1/255 (or to whole numbers above 1). Counts, names,
// type ids and block references round-trip exactly.
//
// # References
//
// Connections, load links and metadata field groups are indices into the
// building's block slice. References to blocks that do not exist and
// repeated references are dropped while encoding; they are not errors.
// Blocks are written grouped by owning root, so decoding a building whose
// blocks were interleaved returns them regrouped with references remapped.
//
// # Errors
//
// Failures carry the codes of package errors: UNSUPPORTED_VERSION before
// anything is written, CAPACITY_OVERFLOW when a count does not fit its
// field, MISSING_DATA when a flag or index promises data that is absent, and
// INVALID_DATA for malformed input. [Encode] writes nothing on failure.
package codec
