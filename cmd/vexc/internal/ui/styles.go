// Package ui holds the terminal styling and interactive screens of vexc.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions
var (
	// Colors
	primaryColor   = lipgloss.Color("#42b883") // Vue green
	secondaryColor = lipgloss.Color("#64748b") // Gray
	successColor   = lipgloss.Color("#10b981") // Green
	warningColor   = lipgloss.Color("#f59e0b") // Yellow
	errorColor     = lipgloss.Color("#ef4444") // Red
	mutedColor     = lipgloss.Color("#94a3b8") // Muted gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	selectedStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 2)

	addedStyle = lipgloss.NewStyle().
			Foreground(successColor)

	removedStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)

// Success renders a completed step
func Success(format string, args ...interface{}) string {
	return successStyle.Render("✓ ") + fmt.Sprintf(format, args...)
}

// Failure renders a failed step
func Failure(format string, args ...interface{}) string {
	return errorStyle.Render("✗ ") + fmt.Sprintf(format, args...)
}

// Warning renders a non-fatal problem
func Warning(format string, args ...interface{}) string {
	return warningStyle.Render("! ") + fmt.Sprintf(format, args...)
}

// Muted renders secondary information
func Muted(s string) string {
	return mutedStyle.Render(s)
}

// Title renders a heading
func Title(s string) string {
	return titleStyle.Render(s)
}

// Summary is the outcome of one compile run
type Summary struct {
	Compiled int
	Cached   int
	Skipped  int
	Failed   int
	Elapsed  string
}

// RenderSummary boxes the totals of a compile run
func RenderSummary(s Summary) string {
	var lines []string
	status := successStyle.Render("Build complete")
	if s.Failed > 0 {
		status = errorStyle.Render("Build failed")
	}
	lines = append(lines, status)
	lines = append(lines, fmt.Sprintf("%-10s %d", "compiled", s.Compiled))
	lines = append(lines, fmt.Sprintf("%-10s %d", "cached", s.Cached))
	if s.Skipped > 0 {
		lines = append(lines, fmt.Sprintf("%-10s %d", "unchanged", s.Skipped))
	}
	if s.Failed > 0 {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("%-10s %d", "failed", s.Failed)))
	}
	if s.Elapsed != "" {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("%-10s %s", "time", s.Elapsed)))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// DiffLine is one line of a line diff
type DiffLine struct {
	Op   int // -1 removed, 0 kept, 1 added
	Text string
}

// RenderDiff colors a line diff the way unified diffs read
func RenderDiff(header string, lines []DiffLine) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render(header))
	b.WriteByte('\n')
	for _, l := range lines {
		switch {
		case l.Op < 0:
			b.WriteString(removedStyle.Render("- " + l.Text))
		case l.Op > 0:
			b.WriteString(addedStyle.Render("+ " + l.Text))
		default:
			b.WriteString(mutedStyle.Render("  " + l.Text))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
