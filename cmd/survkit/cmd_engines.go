package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"survkit/internal/engine"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List known survival engines",
	RunE:  runEngines,
}

var (
	cellStyle       = lipgloss.NewStyle().PaddingRight(2)
	headerCellStyle = cellStyle.Bold(true).Underline(true)
)

func runEngines(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), renderEngines(registry.List()))
	return nil
}

func renderEngines(descs []engine.Descriptor) string {
	header := []string{"ENGINE", "PACKAGE", "STRATA", "PREDICTS", "PATH"}
	rows := make([][]string, 0, len(descs))
	for _, d := range descs {
		predicts := make([]string, len(d.Predicts))
		for i, p := range d.Predicts {
			predicts[i] = string(p)
		}
		path := d.PathParam
		if path == "" {
			path = "-"
		}
		rows = append(rows, []string{d.ID, d.Package, d.Strata.String(), strings.Join(predicts, ","), path})
	}

	t := table.New().
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		})
	return t.Render()
}
