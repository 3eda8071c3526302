package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/structio/pkg/blocktype"
	"github.com/matzehuels/structio/pkg/building"
	sio "github.com/matzehuels/structio/pkg/io"
)

var detailBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)

func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <file>",
		Short: "Browse the blocks of a structure interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.codecOptions()
			if err != nil {
				return err
			}
			b, _, err := sio.Import(args[0], "", opts...)
			if err != nil {
				return err
			}
			reg, err := c.registry()
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(NewBlockListModel(b, reg), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// BlockListModel is the bubbletea model for browsing blocks.
type BlockListModel struct {
	Building *building.Building
	Registry *blocktype.Registry
	Cursor   int
	Height   int
	Offset   int
}

// NewBlockListModel creates a block list model.
func NewBlockListModel(b *building.Building, reg *blocktype.Registry) BlockListModel {
	if reg == nil {
		reg = blocktype.Default()
	}
	return BlockListModel{Building: b, Registry: reg, Height: 15}
}

func (m BlockListModel) Init() tea.Cmd {
	return nil
}

func (m BlockListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := len(m.Building.Blocks)
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.Cursor = max(m.Cursor-1, 0)
		case "down", "j":
			m.Cursor = max(min(m.Cursor+1, n-1), 0)
		case "pgup":
			m.Cursor = max(m.Cursor-m.Height, 0)
		case "pgdown":
			m.Cursor = max(min(m.Cursor+m.Height, n-1), 0)
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(n-1, 0)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-16, 5)
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m, nil
}

func (m BlockListModel) View() string {
	var sb strings.Builder
	blocks := m.Building.Blocks

	sb.WriteString(StyleTitle.Render(fmt.Sprintf("%d blocks in %d roots", len(blocks), len(m.Building.Roots))))
	sb.WriteString("\n")
	sb.WriteString(StyleDim.Render("↑/↓ navigate  pgup/pgdn page  q quit"))
	sb.WriteString("\n\n")
	if len(blocks) == 0 {
		return sb.String()
	}

	end := min(m.Offset+m.Height, len(blocks))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		blk := &blocks[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, strconv.Itoa(i), m.Registry.Name(blk.Type), strconv.Itoa(blk.Root), blk.Name, strconv.Itoa(len(blk.Connections))})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Type", "Root", "Name", "Links").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	sb.WriteString(t.Render())
	sb.WriteString("\n")
	sb.WriteString(detailBoxStyle.Render(blockDetail(&blocks[m.Cursor], m.Cursor, m.Registry)))
	sb.WriteString("\n")
	sb.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(blocks))))
	return sb.String()
}

// blockDetail renders every field of one block.
func blockDetail(blk *building.Block, i int, reg *blocktype.Registry) string {
	lines := []string{
		fmt.Sprintf("block %d · %s (id %d) · root %d", i, reg.Name(blk.Type), blk.Type, blk.Root),
		fmt.Sprintf("position (%.3f, %.3f, %.3f)  rotation (%.1f, %.1f, %.1f)",
			blk.Position[0], blk.Position[1], blk.Position[2], blk.Rotation[0], blk.Rotation[1], blk.Rotation[2]),
		fmt.Sprintf("enable %.2f / %.2f", blk.EnableState, blk.EnableStateCurrent),
	}
	if blk.Name != "" {
		lines = append(lines, "name "+strconv.Quote(blk.Name))
	}
	if blk.Color != nil {
		lines = append(lines, "color "+sio.FormatColor(*blk.Color))
	}
	if len(blk.Connections) > 0 {
		lines = append(lines, fmt.Sprintf("connections %v", blk.Connections))
	}
	if blk.Load != nil {
		lines = append(lines, fmt.Sprintf("load → %d", *blk.Load))
	}
	if md := blk.Metadata; md != nil {
		lines = append(lines, fmt.Sprintf("metadata: %d toggles, %d values, %d field groups, %d dropdowns, %d colors, %d gradients, %d vectors",
			len(md.Toggles), len(md.Values), len(md.Fields), len(md.Dropdowns), len(md.Colors), len(md.Gradients), len(md.Vectors)))
		if mb, ok := md.TypeSettings.(building.MathBlock); ok {
			lines = append(lines, fmt.Sprintf("math %q order %v slots %v", mb.Function, mb.IncomingConnectionsOrder, mb.Slots))
		}
	}
	return strings.Join(lines, "\n")
}
