package io

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/structio/pkg/building"
	"github.com/matzehuels/structio/pkg/codec"
	"github.com/matzehuels/structio/pkg/errors"
)

func TestJSONRoundTrip(t *testing.T) {
	for _, tt := range []struct {
		name string
		b    *building.Building
	}{
		{"empty", building.New()},
		{"snake", building.Snake(20, 5)},
		{"vehicle", building.Vehicle(129)},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteJSON(tt.b, &buf); err != nil {
				t.Fatalf("WriteJSON: %v", err)
			}
			got, err := ReadJSON(&buf)
			if err != nil {
				t.Fatalf("ReadJSON: %v", err)
			}
			if len(tt.b.Blocks) == 0 {
				if len(got.Blocks) != 0 || len(got.Roots) != 0 {
					t.Fatalf("got %d roots %d blocks, want none", len(got.Roots), len(got.Blocks))
				}
				return
			}
			if !reflect.DeepEqual(got, tt.b) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, tt.b)
			}
		})
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"malformed", `{"roots": [`, errors.ErrCodeInvalidFormat},
		{"missing root", `{"roots": [], "blocks": [{"root": 0}]}`, errors.ErrCodeInvalidInput},
		{"bad color", `{"roots": [{}], "blocks": [{"root": 0, "color": "#12"}]}`, errors.ErrCodeInvalidFormat},
		{"slot out of range", `{"roots": [{}], "blocks": [{"root": 0, "metadata": {"math": {"function": "a", "slots": [256]}}}]}`, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.in))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestColor(t *testing.T) {
	c, err := ParseColor("#C82828")
	if err != nil {
		t.Fatal(err)
	}
	if c != (building.RGB{200, 40, 40}) {
		t.Errorf("ParseColor = %v", c)
	}
	if got := FormatColor(c); got != "#c82828" {
		t.Errorf("FormatColor = %q", got)
	}
	if _, err := ParseColor("zzzzzz"); err == nil {
		t.Error("expected error for non-hex color")
	}
}

func TestStructureCompression(t *testing.T) {
	b := building.Snake(500, 5)
	for _, compress := range []bool{false, true} {
		var buf bytes.Buffer
		if err := WriteStructure(&buf, b, codec.Latest, compress); err != nil {
			t.Fatalf("WriteStructure(compress=%v): %v", compress, err)
		}
		if IsCompressed(buf.Bytes()) != compress {
			t.Errorf("IsCompressed = %v, want %v", !compress, compress)
		}
		size := buf.Len()
		got, info, err := ReadStructure(&buf)
		if err != nil {
			t.Fatalf("ReadStructure(compress=%v): %v", compress, err)
		}
		if info.Compressed != compress {
			t.Errorf("info.Compressed = %v, want %v", info.Compressed, compress)
		}
		if info.FileSize != size {
			t.Errorf("info.FileSize = %d, want %d", info.FileSize, size)
		}
		if info.Version != codec.Latest || len(got.Blocks) != 500 {
			t.Errorf("got v%d with %d blocks", info.Version, len(got.Blocks))
		}
		if compress && info.Size <= info.FileSize {
			t.Errorf("compressed file (%d) not smaller than encoding (%d)", info.FileSize, info.Size)
		}
	}
}

func TestReadStructureCorruptFrame(t *testing.T) {
	data := append([]byte{0x28, 0xB5, 0x2F, 0xFD}, 0, 0, 0)
	_, _, err := ReadStructure(bytes.NewReader(data))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestWriteStructureFailureWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	err := WriteStructure(&buf, building.Vehicle(129), codec.Latest+1, true)
	if !errors.Is(err, errors.ErrCodeUnsupportedVersion) {
		t.Fatalf("err = %v, want UNSUPPORTED_VERSION", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes on failure", buf.Len())
	}
}

func TestImportExport(t *testing.T) {
	dir := t.TempDir()
	b := building.Vehicle(129)

	for _, name := range []string{"vehicle.json", "vehicle.bin", "vehicle.bin.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			compress := strings.HasSuffix(name, ".zst")
			if err := Export(b, path, "", codec.Latest, compress); err != nil {
				t.Fatalf("Export: %v", err)
			}
			got, info, err := Import(path, "")
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if len(got.Blocks) != len(b.Blocks) || len(got.Roots) != len(b.Roots) {
				t.Errorf("got %d roots %d blocks", len(got.Roots), len(got.Blocks))
			}
			if FormatFromPath(path) == FormatJSON {
				if info != nil {
					t.Error("JSON import returned structure info")
				}
				return
			}
			if info.Compressed != compress {
				t.Errorf("info.Compressed = %v, want %v", info.Compressed, compress)
			}
		})
	}
}

func TestExportStructureFailureCreatesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := ExportStructure(building.Vehicle(129), path, 9, false); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file exists after failed export: %v", err)
	}
}

func TestImportMissingFile(t *testing.T) {
	_, _, err := ImportStructure(filepath.Join(t.TempDir(), "nope.bin"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestImportExportRejectBadPaths(t *testing.T) {
	b := building.Snake(4, 5)
	for _, path := range []string{"", "tower\x00.bin", strings.Repeat("a", 501)} {
		if _, _, err := Import(path, ""); !errors.Is(err, errors.ErrCodeInvalidPath) {
			t.Errorf("Import(%q) err = %v, want INVALID_PATH", path, err)
		}
		if err := Export(b, path, "", codec.Latest, false); !errors.Is(err, errors.ErrCodeInvalidPath) {
			t.Errorf("Export(%q) err = %v, want INVALID_PATH", path, err)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", "", false},
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"bin", FormatStructure, false},
		{"structure", FormatStructure, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
