// ABOUTME: Final results rendering for the terminal
// ABOUTME: Produces the per-session and aggregate tables shown after a run
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/echolat/echolat-go/internal/orchestrator"
	"github.com/echolat/echolat-go/internal/timing"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	tableStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Summary renders the final results of a run. regionName annotates the
// region hint when a lookup provider resolved it; pass "" otherwise.
func Summary(result *orchestrator.Result, regionName string) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Sessions"))
	b.WriteString("\n")
	for _, o := range result.Sessions {
		if o.Failed() {
			b.WriteString(failStyle.Render(fmt.Sprintf("  %2d  failed: %v", o.Session, o.Err)))
			b.WriteString("\n")
			continue
		}
		avg := o.Result.Average
		b.WriteString(fmt.Sprintf("  %2d  %3d samples  rtt %7.2fms  proc %6.2fms  up %7.2fms  down %7.2fms  offset %+7.2fms\n",
			o.Session, len(o.Result.Samples), avg.RTT, avg.Proc, avg.Uplink, avg.Downlink, avg.Offset))
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("Aggregate (%d samples)", result.Aggregate.Count)))
	if regionName != "" {
		b.WriteString(headerStyle.Render("  " + regionName))
	}
	b.WriteString("\n")
	b.WriteString(tableStyle.Render(aggregateTable(result.Aggregate)))
	b.WriteString("\n")

	return b.String()
}

// aggregateTable formats the per-metric statistics grid.
func aggregateTable(agg timing.AggregateStats) string {
	rows := []struct {
		name  string
		stats timing.MetricStats
	}{
		{"rtt", agg.RTT},
		{"proc", agg.Proc},
		{"uplink", agg.Uplink},
		{"downlink", agg.Downlink},
		{"offset", agg.Offset},
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-9s %10s %10s %10s %10s\n", "metric", "mean", "min", "max", "stddev"))
	for i, r := range rows {
		b.WriteString(fmt.Sprintf("%-9s %9.2f %9.2f %9.2f %9.2f",
			r.name, r.stats.Mean, r.stats.Min, r.stats.Max, r.stats.StdDev))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
