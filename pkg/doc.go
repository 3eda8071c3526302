// Package pkg provides the libraries behind structio: the building model, the
// versioned binary structure codec, and the plumbing used by the CLI and the
// HTTP service.
//
// # Overview
//
// A building is a list of roots plus a list of typed blocks. Blocks carry a
// transform, links to other blocks, an optional load target, an optional
// color and per-type metadata. The structure format stores one building in a
// compact binary layout that has gone through seven versions (0 to 6); every
// version can be read and written.
//
// # Architecture
//
//	JSON / structure file
//	         ↓
//	    [io] (file formats, zstd framing)
//	         ↓
//	    [codec] (versioned encode/decode)
//	      ↙   ↓   ↘
//	[wire] [packing] [catalog] [index]
//	         ↓
//	    [building] (domain model)
//
// [pipeline] wraps the codec with caching ([cache]) and rendering
// ([render/nodelink]); [store] archives encoded structures for the service.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/structio/pkg/building"
//	    "github.com/matzehuels/structio/pkg/codec"
//	)
//
//	b := building.Snake(32, 5)
//	data, err := codec.Marshal(b, codec.Latest)
//	if err != nil {
//	    return err
//	}
//	decoded, info, err := codec.Unmarshal(data)
//
// # Main Packages
//
// ## Model and Codec
//
// [building] - Roots, blocks, metadata and the math block type settings.
//
// [codec] - Encode and Decode at any version. [codec.LayoutFor] describes
// which features a version carries.
//
// [blocktype] - Block type table: names, the math type, and the flags that
// change the wire layout.
//
// ## Wire Helpers
//
// [wire] - Little-endian primitives and unsigned LEB128 varints over a byte
// buffer with sticky errors.
//
// [packing] - Quantization of positions and rotations, bit-packed toggles.
//
// [catalog] - Deduplicated value tables (rotations, colors) written once and
// referenced by index.
//
// [index] - Compact block reference widths and dangling reference handling.
//
// ## Plumbing
//
// [io] - Structure and JSON files, zstd detection and compression.
//
// [pipeline] - Decode, encode, convert, inspect and render with caching,
// shared by the CLI and the HTTP service.
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// [store] - File and MongoDB archives of encoded structures.
//
// [render/nodelink] - Link graph rendering through Graphviz.
//
// [observability] - Metrics and logging hooks; no-ops until registered.
//
// [errors] - Structured error codes shared by every layer.
//
// [buildinfo] - Version information for the binary.
//
// # Testing
//
//	go test ./pkg/...            # All library tests
//	go test ./pkg/codec/...      # Codec only
//	go test -run Example ./...   # Examples only
package pkg
