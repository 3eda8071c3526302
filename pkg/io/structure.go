package io

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/structio/pkg/building"
	"github.com/matzehuels/structio/pkg/codec"
	"github.com/matzehuels/structio/pkg/errors"
)

// MaxDecompressed bounds the size of a decompressed structure. It is well
// above the largest encoding the codec can produce for 65535 blocks with
// ordinary metadata.
const MaxDecompressed = 256 << 20

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Info describes a structure read from disk.
type Info struct {
	codec.Info
	Compressed bool
	FileSize   int // bytes as stored, before decompression
}

// IsCompressed reports whether data starts with a zstd frame.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

// ReadStructure reads one structure from r, decompressing it first if it is
// zstd-framed. ReadStructure does not close r.
func ReadStructure(r io.Reader, opts ...codec.Option) (*building.Building, *Info, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read: %w", err)
	}

	data := raw
	compressed := IsCompressed(raw)
	if compressed {
		if data, err = decompress(raw); err != nil {
			return nil, nil, err
		}
	}

	b, ci, err := codec.Unmarshal(data, opts...)
	if err != nil {
		return nil, nil, err
	}
	return b, &Info{Info: *ci, Compressed: compressed, FileSize: len(raw)}, nil
}

// WriteStructure encodes b at the given version and writes it to w. With
// compress set the encoding is wrapped in a single zstd frame. Nothing is
// written if encoding fails.
func WriteStructure(w io.Writer, b *building.Building, version uint8, compress bool, opts ...codec.Option) error {
	data, err := codec.Marshal(b, version, opts...)
	if err != nil {
		return err
	}
	if !compress {
		_, err = w.Write(data)
		return err
	}
	return writeCompressed(w, data)
}

func writeCompressed(w io.Writer, data []byte) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return fmt.Errorf("compress: %w", err)
	}
	return enc.Close()
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxDecompressed))
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decompress")
	}
	return out, nil
}
