package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rocketmc/internal/analysis"
	"github.com/san-kum/rocketmc/internal/campaign"
	"github.com/san-kum/rocketmc/internal/storage"
)

var (
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
	headerCells = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).PaddingRight(2)
)

// table lays rows out in left-aligned columns sized to their widest cell.
func table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	render := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = style.Width(widths[i] + 2).Render(c)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}

	lines := []string{render(header, headerCells)}
	for _, row := range rows {
		lines = append(lines, render(row, cellStyle))
	}
	return strings.Join(lines, "\n")
}

func RenderReport(r *campaign.Report) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("Campaign "+r.ID) + "\n")
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n",
		MetricLabel.Render("iterations"), MetricValue.Render(fmt.Sprint(r.Iterations)),
		MetricLabel.Render("workers"), MetricValue.Render(fmt.Sprint(r.Workers)),
		MetricLabel.Render("elapsed"), MetricValue.Render(r.Elapsed().Round(time.Millisecond).String()))
	fmt.Fprintf(&b, "%s  %s  %s\n\n",
		StatusOK.Render(fmt.Sprintf("%d succeeded", r.Succeeded)),
		StatusFailed.Render(fmt.Sprintf("%d failed", r.Failed)),
		StatusCancelled.Render(fmt.Sprintf("%d cancelled", r.Cancelled)))

	rows := make([][]string, 0, len(r.PerWorker))
	for _, w := range r.PerWorker {
		rows = append(rows, []string{
			fmt.Sprint(w.ID),
			fmt.Sprint(w.Assigned),
			fmt.Sprint(w.Attempted),
			fmt.Sprint(w.Succeeded),
			fmt.Sprint(w.Failed),
			fmt.Sprint(w.Cancelled),
			stateStyle(w.State).Render(string(w.State)),
		})
	}
	tbl := table([]string{"worker", "assigned", "attempted", "ok", "failed", "cancelled", "state"}, rows)
	b.WriteString(tbl)

	if kinds := r.FailureKinds(); len(kinds) > 0 {
		b.WriteString("\n" + Separator(lipgloss.Width(tbl)) + "\n")
		b.WriteString(MetricLabel.Render("failures") + "\n")
		for _, k := range kinds {
			fmt.Fprintf(&b, "  %-10s %d\n", k, r.Failures[k])
		}
	}
	return b.String()
}

func RenderSummary(stats map[string]analysis.Stats) string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		s := stats[name]
		rows = append(rows, []string{
			name,
			fmt.Sprint(s.N),
			fmt.Sprintf("%.2f", s.Mean),
			fmt.Sprintf("%.2f", s.StdDev),
			fmt.Sprintf("%.2f", s.Min),
			fmt.Sprintf("%.2f", s.Max),
		})
	}
	return table([]string{"metric", "n", "mean", "stddev", "min", "max"}, rows)
}

func RenderManifests(runs []storage.Manifest) string {
	rows := make([][]string, 0, len(runs))
	for _, m := range runs {
		ok, failed, cancelled := "-", "-", "-"
		if m.Report != nil {
			ok = fmt.Sprint(m.Report.Succeeded)
			failed = fmt.Sprint(m.Report.Failed)
			cancelled = fmt.Sprint(m.Report.Cancelled)
		}
		preset := "-"
		if m.Config != nil && m.Config.Name != "" {
			preset = m.Config.Name
		}
		rows = append(rows, []string{
			m.Name,
			shortID(m.ID),
			m.Timestamp.Format("2006-01-02 15:04"),
			preset,
			ok, failed, cancelled,
		})
	}
	return table([]string{"campaign", "id", "finished", "preset", "ok", "failed", "cancelled"}, rows)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
