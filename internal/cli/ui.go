package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// statusOut receives status lines. Command payloads (decoded lists, store
// paths) go to the cobra command's own output instead.
var statusOut io.Writer = os.Stdout

// =============================================================================
// Palette and Styles
// =============================================================================

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
	// StyleTitle is used for view headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight marks names the user chose, such as a Neo4j list name.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink marks URLs and cross-reference targets.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// Status icons, each with its own color.
var (
	iconSuccess = lipgloss.NewStyle().Foreground(colorGreen).Render("✓")
	iconError   = lipgloss.NewStyle().Foreground(colorRed).Render("✗")
	iconWarning = lipgloss.NewStyle().Foreground(colorYellow).Render("!")
	iconInfo    = lipgloss.NewStyle().Foreground(colorGray).Render("›")
)

const iconArrow = "→"

var (
	styleSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// =============================================================================
// Status Lines
// =============================================================================

func status(icon, msg string) {
	fmt.Fprintln(statusOut, icon+" "+msg)
}

func printSuccess(format string, args ...any) {
	status(iconSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	status(iconError, fmt.Sprintf(format, args...))
}

// printWarning is used for recoverable input problems, such as entries
// dropped at the node limit.
func printWarning(format string, args ...any) {
	status(iconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	status(iconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile names a file a command wrote.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(statusOut, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep suggests a follow-up randlist invocation.
func printNextStep(description, cmd string) {
	fmt.Fprintln(statusOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// List Statistics
// =============================================================================

// printStats prints the size of a list on one line, for example
// "3 nodes · 2 cross-refs · 31 bytes". Zero cross-reference and byte counts
// are left out; the node count is always shown.
func printStats(nodeCount, crossRefCount, byteCount int) {
	fmt.Fprintln(statusOut, "  "+statsLine(nodeCount, crossRefCount, byteCount))
}

func statsLine(nodeCount, crossRefCount, byteCount int) string {
	parts := []string{StyleDim.Render(plural(nodeCount, "node"))}
	if crossRefCount > 0 {
		parts = append(parts, StyleDim.Render(plural(crossRefCount, "cross-ref")))
	}
	if byteCount > 0 {
		parts = append(parts, StyleDim.Render(plural(byteCount, "byte")))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
