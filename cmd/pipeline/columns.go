package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hylla/pipeline/internal/app"
	"github.com/spf13/cobra"
)

// newColumnsCommand builds the columns subcommand.
func newColumnsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "Print the column set with item counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(opts, "columns", false)
			if err != nil {
				return err
			}
			defer rt.Close(opts.stderr)
			snap, err := rt.loadBoard(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderColumnTable(snap.Columns))
			return nil
		},
	}
}

// renderColumnTable renders columns in board order with a swatch of each tag colour.
func renderColumnTable(columns []app.SnapshotColumn) string {
	rows := make([][]string, 0, len(columns))
	for idx, column := range columns {
		swatch := "-"
		if column.Color != "" {
			swatch = lipgloss.NewStyle().Foreground(lipgloss.Color(column.Color)).Render("●") + " " + column.Color
		}
		rows = append(rows, []string{
			strconv.Itoa(idx + 1),
			column.ID,
			column.Name,
			swatch,
			strconv.Itoa(column.ItemCount),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("#", "ID", "Name", "Color", "Items").
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true).Foreground(lipgloss.Color("230"))
			}
			if col == 0 || col == 4 {
				return style.Align(lipgloss.Right)
			}
			return style
		}).
		Rows(rows...)
	return t.Render()
}
