// Package nodelink renders the link graph of a building as a node-link
// diagram.
//
// Blocks become boxes grouped into one cluster per root. Connections are
// undirected edges; load links, when enabled, are dashed arrows from the
// loading block to its target. Block colors carry over as fill colors.
//
//	dot := nodelink.ToDOT(b, nodelink.Options{Names: blocktype.Default(), Loads: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source is plain text and can also be fed to the graphviz CLI.
package nodelink
