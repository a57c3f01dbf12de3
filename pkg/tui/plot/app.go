package plot

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/auxspace/telhelp/pkg/telemetry"
)

// Mode identifies the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
)

// App is the root Bubble Tea model: a measurement list on the left and
// the selected measurement's chart on the right.
type App struct {
	charts      []Chart
	selectedIdx int
	mode        Mode
	search      textinput.Model
	width       int
	height      int
}

// New builds the TUI model from the corrected record sequence.
func New(recs []telemetry.Record) App {
	si := textinput.New()
	si.Placeholder = "filter measurements..."
	si.CharLimit = 64

	return App{
		charts: Build(recs),
		search: si,
		mode:   ModeNormal,
	}
}

// Show runs the plot TUI over the given records until the user quits.
func Show(recs []telemetry.Record) error {
	p := tea.NewProgram(New(recs), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		if a.mode == ModeSearch {
			return a.updateSearch(msg)
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return a, tea.Quit
		case "j", "down":
			if a.selectedIdx < len(a.filteredCharts())-1 {
				a.selectedIdx++
			}
		case "k", "up":
			if a.selectedIdx > 0 {
				a.selectedIdx--
			}
		case "/":
			a.mode = ModeSearch
			a.search.Focus()
			return a, textinput.Blink
		}
	}
	return a, nil
}

func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.mode = ModeNormal
		a.search.Blur()
		a.selectedIdx = 0
		return a, nil
	case "esc":
		a.mode = ModeNormal
		a.search.Blur()
		a.search.SetValue("")
		a.selectedIdx = 0
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if a.selectedIdx >= len(a.filteredCharts()) {
		a.selectedIdx = 0
	}
	return a, cmd
}

func (a App) filteredCharts() []Chart {
	query := strings.ToLower(strings.TrimSpace(a.search.Value()))
	if query == "" {
		return a.charts
	}
	var out []Chart
	for _, c := range a.charts {
		if strings.Contains(strings.ToLower(c.Measurement), query) {
			out = append(out, c)
		}
	}
	return out
}

func (a App) selectedChart() (Chart, bool) {
	charts := a.filteredCharts()
	if len(charts) == 0 || a.selectedIdx >= len(charts) {
		return Chart{}, false
	}
	return charts[a.selectedIdx], true
}
