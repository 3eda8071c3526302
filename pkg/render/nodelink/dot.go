package nodelink

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/structio/pkg/building"
)

// Namer resolves block type ids to display names. *blocktype.Registry
// satisfies it.
type Namer interface {
	Name(id uint8) string
}

// Options configures link graph rendering.
type Options struct {
	// Names labels blocks by type name. When nil, the numeric id is shown.
	Names Namer
	// Loads draws load links as dashed arrows.
	Loads bool
	// Detailed adds position and enable state to block labels.
	Detailed bool
}

const graphDefaults = `  rankdir=LR;
  bgcolor="transparent";
  compound=true;
  node [shape=box, style="rounded,filled", fillcolor=white, fontsize=14, margin="0.15,0.05"];
`

type edge struct {
	from, to int
	load     bool
}

// ToDOT converts the link graph of b to Graphviz DOT. Every root becomes a
// cluster; connections are drawn once per pair without arrowheads.
// References that do not name an existing block are skipped.
func ToDOT(b *building.Building, opts Options) string {
	var sb strings.Builder
	sb.WriteString("digraph G {\n")
	sb.WriteString(graphDefaults)

	for r := range b.Roots {
		fmt.Fprintf(&sb, "\n  subgraph cluster_%d {\n    label=\"root %d\";\n    style=\"rounded,dashed\";\n", r, r)
		for _, i := range b.RootBlocks(r) {
			fmt.Fprintf(&sb, "    b%d [%s];\n", i, nodeAttrs(&b.Blocks[i], i, opts))
		}
		sb.WriteString("  }\n")
	}

	sb.WriteString("\n")
	for _, e := range edges(b, opts.Loads) {
		style := "dir=none"
		if e.load {
			style = "style=dashed, color=grey40"
		}
		fmt.Fprintf(&sb, "  b%d -> b%d [%s];\n", e.from, e.to, style)
	}
	sb.WriteString("}\n")
	return sb.String()
}

// edges lists each undirected connection once, lower index first, followed
// by the load links when loads is set.
func edges(b *building.Building, loads bool) []edge {
	n := len(b.Blocks)
	valid := func(j int) bool { return j >= 0 && j < n }

	var out []edge
	seen := make(map[edge]bool)
	for i := range b.Blocks {
		for _, j := range b.Blocks[i].Connections {
			if !valid(j) || j == i {
				continue
			}
			e := edge{from: min(i, j), to: max(i, j)}
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	if loads {
		for i := range b.Blocks {
			if l := b.Blocks[i].Load; l != nil && valid(*l) {
				out = append(out, edge{from: i, to: *l, load: true})
			}
		}
	}
	return out
}

func nodeLabel(blk *building.Block, i int, opts Options) string {
	typ := strconv.Itoa(int(blk.Type))
	if opts.Names != nil {
		typ = opts.Names.Name(blk.Type)
	}
	lines := []string{fmt.Sprintf("#%d %s", i, typ)}
	if blk.Name != "" {
		lines = append(lines, blk.Name)
	}
	if opts.Detailed {
		p := blk.Position
		lines = append(lines,
			fmt.Sprintf("(%.2f, %.2f, %.2f)", p[0], p[1], p[2]),
			fmt.Sprintf("enable %.2f", blk.EnableState))
	}
	return strings.Join(lines, "\n")
}

func nodeAttrs(blk *building.Block, i int, opts Options) string {
	attrs := "label=" + strconv.Quote(nodeLabel(blk, i, opts))
	if c := blk.Color; c != nil {
		attrs += fmt.Sprintf(", fillcolor=\"#%02x%02x%02x\"", c[0], c[1], c[2])
		// Rec. 601 luma
		if 0.299*float64(c[0])+0.587*float64(c[1])+0.114*float64(c[2]) < 127.5 {
			attrs += ", fontcolor=white"
		}
	}
	return attrs
}
