// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/merge"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/summary"
	"github.com/jeffreyalanwang/grade-conversion-script/pkg/types"
)

var (
	headStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E5C07B"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
)

// printWarnings writes one line per merge warning.
func printWarnings(w io.Writer, warnings []merge.Warning) {
	for _, wr := range warnings {
		fmt.Fprintf(w, "%s %s\n", warnStyle.Render("warning:"), wr.String())
	}
}

// summaryTable renders per-assignment statistics as a bordered table.
func summaryTable(stats []summary.Assignment) string {
	rows := make([][]string, len(stats))
	for i, s := range stats {
		rows[i] = []string{
			s.Assignment,
			fmt.Sprint(s.Count),
			fmt.Sprint(s.Missing),
			types.FormatNumber(round(s.Mean)),
			types.FormatNumber(round(s.Median)),
			types.FormatNumber(s.Min),
			types.FormatNumber(s.Max),
			types.FormatNumber(round(s.StdDev)),
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("assignment", "scored", "missing", "mean", "median", "min", "max", "std dev").
		Rows(rows...).
		String()
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}
