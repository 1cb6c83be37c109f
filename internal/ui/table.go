package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// StatusSummary is what `callserver status` shows about a running server.
type StatusSummary struct {
	Server      string
	Connections int
	Rooms       int
}

// ICEServerRow is one entry of the ICE server table.
type ICEServerRow struct {
	URLs     []string
	Username string
}

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case row%2 == 0:
				return TableRowStyle
			default:
				return TableRowAltStyle
			}
		})
}

// StatusView renders the status snapshot as a two column table.
func StatusView(s StatusSummary) string {
	rows := [][]string{
		{"Server", s.Server},
		{"Connections", fmt.Sprintf("%d", s.Connections)},
		{"Rooms", fmt.Sprintf("%d", s.Rooms)},
	}
	return newTable([]string{"Metric", "Value"}, rows).Render()
}

// ICEServersView renders the ICE servers a browser would receive.
func ICEServersView(servers []ICEServerRow) string {
	if len(servers) == 0 {
		return MutedStyle.Render("No ICE servers configured")
	}
	rows := make([][]string, 0, len(servers))
	for i, s := range servers {
		user := s.Username
		if user == "" {
			user = "-"
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), strings.Join(s.URLs, "\n"), user})
	}
	return newTable([]string{"#", "URLs", "Username"}, rows).Render()
}
