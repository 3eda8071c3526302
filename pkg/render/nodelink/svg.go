package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	"github.com/goccy/go-graphviz"
)

// RenderSVG lays out a DOT graph with the embedded Graphviz and returns SVG
// that scales with its container.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var svgOpenTag = regexp.MustCompile(`<svg\b[^>]*\bviewBox="[0-9.]+\s+[0-9.]+\s+([0-9.]+)\s+([0-9.]+)"[^>]*>`)

// normalizeViewBox rewrites the root element to a zero-origin viewBox with
// unitless width and height. Input without a usable viewBox is returned as
// is.
func normalizeViewBox(svg []byte) []byte {
	loc := svgOpenTag.FindSubmatchIndex(svg)
	if loc == nil {
		return svg
	}
	var w, h float64
	if _, err := fmt.Sscan(string(svg[loc[2]:loc[3]])+" "+string(svg[loc[4]:loc[5]]), &w, &h); err != nil || w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	out := make([]byte, 0, len(svg))
	out = append(out, svg[:loc[0]]...)
	out = append(out, tag...)
	return append(out, svg[loc[1]:]...)
}
