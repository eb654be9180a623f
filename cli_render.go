package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/modkit/modkit/internal/registry"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))
	enabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))
	disabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)
	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	successIcon = enabledStyle.Render("✓")
	infoIcon    = pathStyle.Render("•")
)

func statusLabel(enabled bool) string {
	if enabled {
		return enabledStyle.Render("enabled")
	}
	return disabledStyle.Render("disabled")
}

func providerLabel(provider *string) string {
	if provider == nil {
		return warnStyle.Render("(unreadable)")
	}
	return *provider
}

// renderModuleTable 以表格形式输出模块列表。
func renderModuleTable(w io.Writer, modules []registry.Descriptor) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("模块", "状态", "Provider", "路径").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, m := range modules {
		t.Row(m.Name, statusLabel(m.Enabled), providerLabel(m.Provider), m.Path)
	}
	fmt.Fprintln(w, t.String())
}

// renderKeyValues 输出两列的键值表。
func renderKeyValues(w io.Writer, title string, rows [][2]string) {
	fmt.Fprintln(w, titleStyle.Render(title))
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(_, _ int) lipgloss.Style { return cellStyle })
	for _, r := range rows {
		t.Row(r[0], r[1])
	}
	fmt.Fprintln(w, t.String())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
