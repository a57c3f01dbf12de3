package plot

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Blue,
	asciigraph.Yellow,
	asciigraph.Cyan,
	asciigraph.Magenta,
}

// View renders the TUI.
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "loading..."
	}

	statusBarH := 2
	mainH := a.height - statusBarH - 2
	listW := a.width/4 - 2
	chartW := a.width - listW - 8

	list := a.renderList(mainH)
	listPane := paneStyle.Width(listW).Height(mainH).Render(
		titleStyle.Render(" Measurements ") + "\n" + list,
	)

	chart := a.renderChart(chartW, mainH-4)
	chartPane := paneStyle.Width(chartW + 4).Height(mainH).Render(chart)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, listPane, chartPane)
	statusBar := a.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, topRow, statusBar)
}

func (a App) renderList(h int) string {
	charts := a.filteredCharts()
	if len(charts) == 0 {
		return dimStyle.Render("no measurements")
	}

	var b strings.Builder
	maxVisible := h - 2
	start := 0
	if a.selectedIdx >= maxVisible {
		start = a.selectedIdx - maxVisible + 1
	}
	for i := start; i < len(charts) && i-start < maxVisible; i++ {
		line := fmt.Sprintf("%s (%d)", charts[i].Measurement, len(charts[i].Series))
		if i == a.selectedIdx {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (a App) renderChart(w, h int) string {
	chart, ok := a.selectedChart()
	if !ok {
		return dimStyle.Render("nothing to plot")
	}

	var data [][]float64
	var legends []string
	for _, s := range chart.Series {
		data = append(data, s.Values)
		legends = append(legends, s.Field)
	}
	if len(data) == 0 {
		return dimStyle.Render("no numeric fields in " + chart.Measurement)
	}

	colors := make([]asciigraph.AnsiColor, len(data))
	for i := range colors {
		colors[i] = seriesColors[i%len(seriesColors)]
	}
	graph := asciigraph.PlotMany(data,
		asciigraph.Height(max(h-4, 4)),
		asciigraph.Width(max(w-12, 20)),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption(chart.TimeRange()),
	)
	return titleStyle.Render(" "+chart.Measurement+" ") + "\n\n" + graph
}

func (a App) renderStatusBar() string {
	if a.mode == ModeSearch {
		return " / " + a.search.View()
	}
	counts := fmt.Sprintf(" %d/%d ", a.selectedIdx+1, len(a.filteredCharts()))
	return dimStyle.Render(counts) + helpStyle.Render("j/k: select · /: filter · q: quit")
}
