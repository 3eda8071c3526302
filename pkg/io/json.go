package io

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/structio/pkg/building"
	"github.com/matzehuels/structio/pkg/errors"
)

type document struct {
	Roots  []root  `json:"roots"`
	Blocks []block `json:"blocks"`
}

type root struct {
	Position building.Vec3 `json:"position"`
	Rotation building.Vec3 `json:"rotation"`
}

type block struct {
	Position           building.Vec3 `json:"position"`
	Rotation           building.Vec3 `json:"rotation"`
	Type               uint8         `json:"type"`
	Root               int           `json:"root"`
	Name               string        `json:"name,omitempty"`
	EnableState        float32       `json:"enable_state,omitempty"`
	EnableStateCurrent float32       `json:"enable_state_current,omitempty"`
	Connections        []int         `json:"connections,omitempty"`
	Load               *int          `json:"load,omitempty"`
	Color              string        `json:"color,omitempty"`
	Metadata           *metadata     `json:"metadata,omitempty"`
}

type metadata struct {
	Toggles   []bool          `json:"toggles,omitempty"`
	Values    []float32       `json:"values,omitempty"`
	Fields    [][]int         `json:"fields,omitempty"`
	Dropdowns []int32         `json:"dropdowns,omitempty"`
	Colors    []building.RGBA `json:"colors,omitempty"`
	Gradients []gradient      `json:"gradients,omitempty"`
	Vectors   []building.Vec3 `json:"vectors,omitempty"`
	Math      *mathBlock      `json:"math,omitempty"`
}

type gradient struct {
	ColorKeys     []building.RGBA `json:"color_keys"`
	ColorTimeKeys []float32       `json:"color_time_keys"`
	AlphaKeys     []float32       `json:"alpha_keys"`
	AlphaTimeKeys []float32       `json:"alpha_time_keys"`
}

// mathBlock uses int slices so that the byte arrays are not base64 strings.
type mathBlock struct {
	Function                 string `json:"function"`
	IncomingConnectionsOrder []int  `json:"incoming_connections_order,omitempty"`
	Slots                    []int  `json:"slots,omitempty"`
}

// ReadJSON decodes a JSON building from r.
//
// ReadJSON validates the document structure (every block names an existing
// root, colors parse, byte arrays fit in bytes). Dangling block references
// are kept; the codec drops them when encoding. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*building.Building, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode JSON")
	}

	b := &building.Building{Roots: make([]building.Root, len(doc.Roots)), Blocks: make([]building.Block, len(doc.Blocks))}
	for i, r := range doc.Roots {
		b.Roots[i] = building.Root{Position: r.Position, Rotation: r.Rotation}
	}
	for i, blk := range doc.Blocks {
		out := building.Block{
			Position:           blk.Position,
			Rotation:           blk.Rotation,
			Type:               blk.Type,
			Root:               blk.Root,
			Name:               blk.Name,
			EnableState:        blk.EnableState,
			EnableStateCurrent: blk.EnableStateCurrent,
			Connections:        blk.Connections,
			Load:               blk.Load,
		}
		if blk.Color != "" {
			c, err := ParseColor(blk.Color)
			if err != nil {
				return nil, fmt.Errorf("block %d: %w", i, err)
			}
			out.Color = &c
		}
		if blk.Metadata != nil {
			m, err := blk.Metadata.toModel()
			if err != nil {
				return nil, fmt.Errorf("block %d: %w", i, err)
			}
			out.Metadata = m
		}
		b.Blocks[i] = out
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (m *metadata) toModel() (*building.Metadata, error) {
	out := &building.Metadata{
		Toggles:   m.Toggles,
		Values:    m.Values,
		Fields:    m.Fields,
		Dropdowns: m.Dropdowns,
		Colors:    m.Colors,
		Vectors:   m.Vectors,
	}
	for _, g := range m.Gradients {
		out.Gradients = append(out.Gradients, building.Gradient(g))
	}
	if m.Math != nil {
		order, err := toBytes(m.Math.IncomingConnectionsOrder, "incoming_connections_order")
		if err != nil {
			return nil, err
		}
		slots, err := toBytes(m.Math.Slots, "slots")
		if err != nil {
			return nil, err
		}
		out.TypeSettings = building.MathBlock{
			Function:                 m.Math.Function,
			IncomingConnectionsOrder: order,
			Slots:                    slots,
		}
	}
	return out, nil
}

func toBytes(vs []int, field string) ([]uint8, error) {
	if vs == nil {
		return nil, nil
	}
	out := make([]uint8, len(vs))
	for i, v := range vs {
		if v < 0 || v > 255 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "math.%s[%d] = %d outside 0..255", field, i, v)
		}
		out[i] = uint8(v)
	}
	return out, nil
}

func fromBytes(vs []uint8) []int {
	if vs == nil {
		return nil
	}
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = int(v)
	}
	return out
}

// WriteJSON encodes b as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(b *building.Building, w io.Writer) error {
	doc := document{
		Roots:  make([]root, len(b.Roots)),
		Blocks: make([]block, len(b.Blocks)),
	}
	for i, r := range b.Roots {
		doc.Roots[i] = root{Position: r.Position, Rotation: r.Rotation}
	}
	for i := range b.Blocks {
		blk := &b.Blocks[i]
		out := block{
			Position:           blk.Position,
			Rotation:           blk.Rotation,
			Type:               blk.Type,
			Root:               blk.Root,
			Name:               blk.Name,
			EnableState:        blk.EnableState,
			EnableStateCurrent: blk.EnableStateCurrent,
			Connections:        blk.Connections,
			Load:               blk.Load,
		}
		if blk.Color != nil {
			out.Color = FormatColor(*blk.Color)
		}
		if m := blk.Metadata; m != nil {
			md := &metadata{
				Toggles:   m.Toggles,
				Values:    m.Values,
				Fields:    m.Fields,
				Dropdowns: m.Dropdowns,
				Colors:    m.Colors,
				Vectors:   m.Vectors,
			}
			for _, g := range m.Gradients {
				md.Gradients = append(md.Gradients, gradient(g))
			}
			if mb, ok := m.TypeSettings.(building.MathBlock); ok {
				md.Math = &mathBlock{
					Function:                 mb.Function,
					IncomingConnectionsOrder: fromBytes(mb.IncomingConnectionsOrder),
					Slots:                    fromBytes(mb.Slots),
				}
			}
			out.Metadata = md
		}
		doc.Blocks[i] = out
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// FormatColor renders c as "#rrggbb".
func FormatColor(c building.RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// ParseColor parses "#rrggbb" (the leading '#' is optional).
func ParseColor(s string) (building.RGB, error) {
	var c building.RGB
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return c, errors.New(errors.ErrCodeInvalidFormat, "color %q: want #rrggbb", s)
	}
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &c[0], &c[1], &c[2]); err != nil {
		return c, errors.Wrap(errors.ErrCodeInvalidFormat, err, "color %q", s)
	}
	return c, nil
}
