package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings such as the inspected file name.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleHighlight renders values the user is likely to copy.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed    = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconCached = "cached"
	iconFresh  = "fresh"
)

// statusIcons are the leading markers of one-line status messages.
var statusIcons = map[string]string{
	"success": lipgloss.NewStyle().Foreground(colorGreen).Render("✓"),
	"error":   lipgloss.NewStyle().Foreground(colorRed).Render("✗"),
	"warning": lipgloss.NewStyle().Foreground(colorYellow).Render("!"),
	"info":    lipgloss.NewStyle().Foreground(colorGray).Render("›"),
}

// stdout receives human-oriented output. Machine-readable output (JSON,
// DOT, completion scripts) goes to the command's own writer instead.
var stdout io.Writer = os.Stdout

func status(kind, format string, args ...any) {
	fmt.Fprintln(stdout, statusIcons[kind]+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { status("success", format, args...) }
func printError(format string, args ...any)   { status("error", format, args...) }
func printInfo(format string, args ...any)    { status("info", format, args...) }

func printWarning(format string, args ...any) {
	status("warning", "%s", StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints "v6 · 2 roots · 40 blocks · fresh".
func printStats(version uint8, roots, blocks int, cached bool) {
	sep := StyleDim.Render(" · ")
	parts := []string{
		StyleDim.Render(fmt.Sprintf("v%d", version)),
		StyleDim.Render(fmt.Sprintf("%d roots", roots)),
		StyleDim.Render(fmt.Sprintf("%d blocks", blocks)),
		styleComputed.Render(iconFresh),
	}
	if cached {
		parts[3] = styleCached.Render(iconCached)
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, sep))
}

func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}
