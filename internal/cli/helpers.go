package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/structio/pkg/building"
	"github.com/matzehuels/structio/pkg/pipeline"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// replaceExt swaps the extension of path, ignoring a trailing ".zst".
func replaceExt(path, ext string) string {
	path = strings.TrimSuffix(path, ".zst")
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// example builds a sample building. typeName may be a registry name or a
// numeric id; empty picks type 5.
func (c *CLI) example(name string, blocks int, typeName string) (*building.Building, error) {
	reg, err := c.registry()
	if err != nil {
		return nil, err
	}
	switch name {
	case "snake":
		if blocks < 1 || blocks > 0xFFFF {
			return nil, fmt.Errorf("--blocks must be in 1..65535, got %d", blocks)
		}
		id := uint8(5)
		if typeName != "" {
			if n, ok := reg.Lookup(typeName); ok {
				id = n
			} else if n, err := strconv.ParseUint(typeName, 10, 8); err == nil {
				id = uint8(n)
			} else {
				return nil, fmt.Errorf("unknown block type %q", typeName)
			}
		}
		return building.Snake(blocks, id), nil
	case "vehicle":
		mathID, ok := reg.MathID()
		if !ok {
			return nil, fmt.Errorf("type table defines no math type")
		}
		return building.Vehicle(mathID), nil
	}
	return nil, fmt.Errorf("unknown example %q", name)
}

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func typeCountTable(types []pipeline.TypeCount) string {
	t := newTable("ID", "Type", "Blocks")
	for _, tc := range types {
		t.Row(strconv.Itoa(int(tc.ID)), tc.Name, strconv.Itoa(tc.Count))
	}
	return t.Render()
}
