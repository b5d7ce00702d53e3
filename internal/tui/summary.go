package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type SummaryRow struct {
	Label string
	Value string
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		labelWidth = max(labelWidth, len(row.Label))
		valueWidth = max(valueWidth, len(row.Value))
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}
	for _, row := range rows {
		line := fmt.Sprintf("%s | %s",
			labelStyle.Render(padRight(row.Label, labelWidth)),
			valueStyle.Render(padRight(row.Value, valueWidth)))
		lines = append(lines, line)
	}
	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

// TargetRow is one line of the target listing: file name, full path, and the
// errors recorded for it, if any.
type TargetRow struct {
	Name string
	Path string
	Info string
}

// RenderTargets lays the rows out as three aligned columns.
func RenderTargets(rows []TargetRow) string {
	if len(rows) == 0 {
		return dimStyle.Render("No images found")
	}

	nameWidth := len("Filename")
	pathWidth := len("Path")
	for _, row := range rows {
		nameWidth = max(nameWidth, len(row.Name))
		pathWidth = max(pathWidth, len(row.Path))
	}

	header := fmt.Sprintf("%s  %s  %s", padRight("Filename", nameWidth), padRight("Path", pathWidth), "Info")
	lines := []string{titleStyle.Render(header)}
	for _, row := range rows {
		info := row.Info
		if info != "" {
			info = errorStyle.Render(info)
		}
		lines = append(lines, strings.TrimRight(fmt.Sprintf("%s  %s  %s",
			padRight(row.Name, nameWidth), padRight(row.Path, pathWidth), info), " "))
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

var (
	valueStyle = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(ColorError)
)
