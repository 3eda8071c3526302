package io

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/structio/pkg/building"
	"github.com/matzehuels/structio/pkg/codec"
	"github.com/matzehuels/structio/pkg/errors"
)

// Format names an on-disk representation of a building.
type Format string

const (
	FormatStructure Format = "structure"
	FormatJSON      Format = "json"
)

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatStructure
}

// ParseFormat validates a user supplied format name. An empty name means
// "detect from the path".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "":
		return "", nil
	case FormatStructure, "bin", "binary":
		return FormatStructure, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want structure or json)", s)
}

// ImportJSON reads a JSON file at path and returns the decoded building.
func ImportJSON(path string) (*building.Building, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f)
}

// ExportJSON writes b to path as JSON, creating or truncating the file.
func ExportJSON(b *building.Building, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(b, f)
}

// ImportStructure reads a structure file, compressed or not.
func ImportStructure(path string, opts ...codec.Option) (*building.Building, *Info, error) {
	f, err := open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return ReadStructure(f, opts...)
}

// ExportStructure encodes b and writes it to path. The file is only created
// once encoding has succeeded.
func ExportStructure(b *building.Building, path string, version uint8, compress bool, opts ...codec.Option) error {
	data, err := codec.Marshal(b, version, opts...)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if compress {
		return writeCompressed(f, data)
	}
	_, err = f.Write(data)
	return err
}

// Import reads path in the given format, detecting it from the extension
// when format is empty. The returned Info is nil for JSON input.
func Import(path string, format Format, opts ...codec.Option) (*building.Building, *Info, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, nil, err
	}
	if format == "" {
		format = FormatFromPath(path)
	}
	if format == FormatJSON {
		b, err := ImportJSON(path)
		return b, nil, err
	}
	return ImportStructure(path, opts...)
}

// Export writes b to path in the given format, detecting it from the
// extension when format is empty. version and compress apply to structure
// output only.
func Export(b *building.Building, path string, format Format, version uint8, compress bool, opts ...codec.Option) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	if format == "" {
		format = FormatFromPath(path)
	}
	if format == FormatJSON {
		return ExportJSON(b, path)
	}
	return ExportStructure(b, path, version, compress, opts...)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
