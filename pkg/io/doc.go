// Package io reads and writes buildings as files: the binary structure
// format (optionally zstd-framed) and a JSON interchange format.
//
// # Structure files
//
// A structure file is one codec encoding. It may be wrapped in a single zstd
// frame; [ReadStructure] detects the frame magic and decompresses
// transparently, so callers never need to know which form a file uses:
//
//	b, info, err := io.ImportStructure("tower.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("version", info.Version, "compressed", info.Compressed)
//
// # JSON Format
//
// The JSON form mirrors the domain model. Indices refer to positions in the
// "roots" and "blocks" arrays; colors are "#rrggbb" strings:
//
//	{
//	  "roots": [{"position": [0, 1, 0], "rotation": [0, 0, 0]}],
//	  "blocks": [
//	    {"position": [0, 1, 0], "rotation": [0, 90, 0], "type": 5, "root": 0,
//	     "name": "throttle", "enable_state": 1, "connections": [1],
//	     "color": "#c82828"},
//	    {"position": [1, 1, 0], "rotation": [0, 0, 0], "type": 5, "root": 0,
//	     "connections": [0], "load": 0,
//	     "metadata": {"toggles": [true], "values": [0.5]}}
//	  ]
//	}
//
// Math block settings appear as "math" inside "metadata". JSON round-trips
// exactly; only the binary codec is lossy.
//
// # Choosing a format
//
// [FormatFromPath] maps ".json" to [FormatJSON] and everything else to
// [FormatStructure]. [Import] and [Export] dispatch on it.
package io
