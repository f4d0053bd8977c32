// Package statsui provides the Bubble Tea race history interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typerace/internal/model"
	"github.com/verte-zerg/typerace/internal/stats"
	"github.com/verte-zerg/typerace/internal/store"
)

const (
	tabOverview = iota
	tabRaces
	tabPlaces
)

const (
	fallbackWidth = 80
	maxBarWidth   = 40
)

var (
	accent = lipgloss.Color("#C89A3A")
	muted  = lipgloss.Color("#4A4A4A")

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B0B0B0")).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(muted)
	activeTabStyle = tabStyle.
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			BorderForeground(accent)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle  = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(muted)
	cardLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	barStyle       = lipgloss.NewStyle().Foreground(accent)
	winBarStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig
	keys  keyMap

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	places    viewport.Model
	races     table.Model

	width  int
	height int

	filtering bool
	filter    filterForm
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store:    st,
		cfg:      cfg,
		keys:     defaultKeyMap(),
		tabs:     []string{"Overview", "Races", "Places"},
		overview: viewport.New(0, 0),
		places:   viewport.New(0, 0),
		races: table.New(
			table.WithColumns(raceColumns()),
			table.WithStyles(raceTableStyles()),
			table.WithHeight(1),
		),
		filter: newFilterForm(),
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderContent()
		return m, nil
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Prev):
		m.selectTab(m.activeTab - 1)
		return m, tea.ClearScreen
	case key.Matches(msg, m.keys.Next):
		m.selectTab(m.activeTab + 1)
		return m, tea.ClearScreen
	case key.Matches(msg, m.keys.Wider):
		m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
		m.refreshReport()
		return m, nil
	case key.Matches(msg, m.keys.Narrower):
		m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
		m.refreshReport()
		return m, nil
	case key.Matches(msg, m.keys.Settings):
		m.filtering = true
		return m, m.filter.load(m.cfg)
	case key.Matches(msg, m.keys.Top):
		if m.activeTab == tabRaces {
			m.races.GotoTop()
		} else {
			m.activeViewport().GotoTop()
		}
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		if m.activeTab == tabRaces {
			m.races.GotoBottom()
		} else {
			m.activeViewport().GotoBottom()
		}
		return m, nil
	}
	var cmd tea.Cmd
	if m.activeTab == tabRaces {
		m.races, cmd = m.races.Update(msg)
		return m, cmd
	}
	vp := m.activeViewport()
	*vp, cmd = vp.Update(msg)
	return m, cmd
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.filtering = false
		return m, nil
	case tea.KeyEnter:
		cfg, err := m.filter.config()
		if err != nil {
			m.filter.err = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filtering = false
		m.refreshReport()
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.filter.setFocus(m.filter.focus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.filter.setFocus(m.filter.focus - 1)
	}
	return m, m.filter.update(msg)
}

func (m *Model) activeViewport() *viewport.Model {
	if m.activeTab == tabPlaces {
		return &m.places
	}
	return &m.overview
}

func (m *Model) selectTab(idx int) {
	n := len(m.tabs)
	m.activeTab = (idx%n + n) % n
	if m.activeTab == tabRaces {
		m.races.Focus()
	} else {
		m.races.Blur()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	return lipgloss.JoinVertical(lipgloss.Left, header, fit(m.renderBody(), m.width, bodyHeight), footer)
}

func (m *Model) bodyHeight() int {
	h := m.height - lipgloss.Height(m.renderHeader()) - lipgloss.Height(m.renderFooter())
	if h < 1 {
		return 1
	}
	return h
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	h := m.bodyHeight()
	m.overview.Width, m.overview.Height = m.width, h
	m.places.Width, m.places.Height = m.width, h
	m.races.SetWidth(m.width)
	m.races.SetHeight(h - 1)
	m.filter.setWidth(m.width)
}

func (m *Model) renderHeader() string {
	tabs := make([]string, 0, len(m.tabs))
	for i, name := range m.tabs {
		style := tabStyle
		if i == m.activeTab {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(name))
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(dateLayout)
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = fmt.Sprintf("%d", m.cfg.Last)
	}
	settings := fmt.Sprintf("since=%s  last=%s  window=%d", since, last, m.cfg.CurveWindow)
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		dimStyle.MaxWidth(m.width).Render(settings),
	)
}

func (m *Model) renderFooter() string {
	if m.filtering {
		return dimStyle.Render("tab: next field  enter: apply  esc: cancel")
	}
	help := dimStyle.Render(m.keys.help())
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	switch {
	case m.filtering:
		return m.filter.view()
	case m.activeTab == tabRaces:
		if len(m.report.Races) == 0 {
			return "No races found."
		}
		return m.races.View()
	default:
		return m.activeViewport().View()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.report = report
	m.races.SetRows(raceRows(report.Races))
	m.resize()
	m.renderContent()
}

func (m *Model) renderContent() {
	width := m.width
	if width <= 0 {
		width = fallbackWidth
	}
	m.overview.SetContent(renderOverview(m.report, width))
	m.places.SetContent(renderPlaces(m.report.PlaceCounts, width))
}

func renderOverview(report stats.Report, width int) string {
	if len(report.Races) == 0 {
		return "No races found."
	}
	sum := report.Summary
	cards := []string{
		card("Races", fmt.Sprintf("%d", sum.Races)),
		card("Wins", fmt.Sprintf("%d (%.0f%%)", sum.Wins, sum.WinRate()*100)),
		card("Avg Place", fmt.Sprintf("%.2f", sum.AvgPlace)),
		card("Avg WPM", fmt.Sprintf("%.1f", sum.AvgWPM)),
		card("Best WPM", fmt.Sprintf("%d", sum.BestWPM)),
		card("Avg Acc", fmt.Sprintf("%.1f%%", sum.AvgAccuracy)),
	}
	var grid string
	if width < fallbackWidth {
		grid = lipgloss.JoinVertical(lipgloss.Left, cards...)
	} else {
		grid = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...),
			lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...),
		)
	}

	var buf bytes.Buffer
	if err := stats.RenderCurves(&buf, report.Races, report.CurveWindow, width); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return grid + "\n\n" + strings.TrimRight(buf.String(), "\n")
}

// renderPlaces charts how often each place was taken across all races.
func renderPlaces(counts map[int]int, width int) string {
	maxPlace, maxCount := 0, 0
	for place, n := range counts {
		if place > maxPlace {
			maxPlace = place
		}
		if n > maxCount {
			maxCount = n
		}
	}
	if maxCount == 0 {
		return "No races found."
	}
	barWidth := width - 12
	if barWidth > maxBarWidth {
		barWidth = maxBarWidth
	}
	if barWidth < 1 {
		barWidth = 1
	}
	lines := []string{dimStyle.Render("All-time finishing places")}
	for place := 1; place <= maxPlace; place++ {
		n := counts[place]
		style := barStyle
		if place == 1 {
			style = winBarStyle
		}
		bar := style.Render(strings.Repeat("█", n*barWidth/maxCount))
		lines = append(lines, fmt.Sprintf("%-5s %s %d", stats.Ordinal(place), bar, n))
	}
	return strings.Join(lines, "\n")
}

func card(label, value string) string {
	return cardStyle.Render(cardLabelStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func raceColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 16},
		{Title: "Place", Width: 5},
		{Title: "WPM", Width: 4},
		{Title: "Accuracy", Width: 8},
		{Title: "Errors", Width: 6},
		{Title: "Time", Width: 6},
		{Title: "Winner", Width: 10},
	}
}

func raceRows(races []model.RaceRecord) []table.Row {
	_, cells := stats.RaceTable(races)
	rows := make([]table.Row, len(cells))
	for i, row := range cells {
		rows[i] = table.Row(row)
	}
	return rows
}

func raceTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(muted).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(accent).
		Bold(true)
	return styles
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return n / 5 * 5
}

// fit clips s to width x height and pads it out to fill the area.
func fit(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	clipped := lipgloss.NewStyle().MaxWidth(width).MaxHeight(height).Render(s)
	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, clipped)
}
