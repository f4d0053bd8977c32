package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typerace/internal/race"
	"github.com/verte-zerg/typerace/internal/stats"
)

const (
	laneNameWidth = 10
	minLaneWidth  = 10
	maxLaneWidth  = 60
	laneFill      = "█"
	laneTrack     = "░"
)

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	humanLaneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	laneStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	trackStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3A3A"))
	winStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	resultStyle      = lipgloss.NewStyle().
				Padding(0, 2).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#C89A3A"))
)

// View implements tea.Model.
func (m *Model) View() string {
	passage := m.race.Passage()
	if len(passage) == 0 {
		return ""
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 80
	}

	sections := []string{
		m.renderStatus(),
		renderLanes(m.race.Competitors(), contentWidth),
		m.renderPassage(contentWidth),
		m.renderPanel(),
	}
	if m.errMsg != "" {
		sections = append(sections, incorrectStyle.Render(m.errMsg))
	}
	content := lipgloss.NewStyle().Width(contentWidth).Render(strings.Join(sections, "\n\n"))
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderStatus() string {
	eval := m.race.Evaluation()
	segments := []string{
		fmt.Sprintf("Time %s", stats.FormatClock(m.race.ElapsedSeconds())),
		fmt.Sprintf("WPM %d", m.race.LiveWPM()),
		fmt.Sprintf("Accuracy %d%%", eval.Accuracy),
		fmt.Sprintf("Errors %d", eval.Errors),
		fmt.Sprintf("Place %s/%d", stats.Ordinal(m.race.Place()), len(m.race.Profiles())+1),
	}
	return statusStyle.Render(strings.Join(segments, "  "))
}

// renderLanes draws one progress bar per competitor in a stable order.
func renderLanes(competitors []race.Competitor, width int) string {
	laneWidth := width - laneNameWidth - 6
	if laneWidth < minLaneWidth {
		laneWidth = minLaneWidth
	}
	if laneWidth > maxLaneWidth {
		laneWidth = maxLaneWidth
	}
	lines := make([]string, 0, len(competitors))
	for _, c := range competitors {
		filled := c.Percent * laneWidth / 100
		if filled > laneWidth {
			filled = laneWidth
		}
		style := laneStyle
		if c.IsHuman() {
			style = humanLaneStyle
		}
		name := runewidth.FillRight(runewidth.Truncate(c.Name, laneNameWidth, ""), laneNameWidth)
		bar := style.Render(strings.Repeat(laneFill, filled)) +
			trackStyle.Render(strings.Repeat(laneTrack, laneWidth-filled))
		lines = append(lines, fmt.Sprintf("%s %s %3d%%", style.Render(name), bar, c.Percent))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderPassage(width int) string {
	passage := m.race.Passage()
	typed := m.race.Typed()
	cursorIndex := -1
	if m.race.State() != race.Ended && len(typed) < len(passage) {
		cursorIndex = len(typed)
	}
	styled := buildStyledRunes(passage, race.Marks(passage, typed), cursorIndex)
	return wrapStyledRunes(styled, width)
}

func (m *Model) renderPanel() string {
	switch m.race.State() {
	case race.Idle:
		return footerStyle.Render("Start typing or " + helpLine(m.keys.Start, m.keys.Reset, m.keys.Quit))
	case race.Running:
		return footerStyle.Render(helpLine(m.keys.Finish, m.keys.Reset, m.keys.Quit))
	default:
		res, ok := m.race.Result()
		if !ok {
			return ""
		}
		next := m.keys.Start
		next.SetHelp("enter", "next race")
		return renderResult(res) + "\n" + footerStyle.Render(helpLine(next, m.keys.Quit))
	}
}

func renderResult(res race.Result) string {
	headline := fmt.Sprintf("You finished %s of %d. %s won the race.", stats.Ordinal(res.Place), len(res.Standings), res.Winner.Name)
	if res.Place == 1 {
		headline = winStyle.Render(fmt.Sprintf("1st place! Congratulations, you won the race of %d.", len(res.Standings)))
	}
	details := fmt.Sprintf("WPM %d  Accuracy %d%%  Errors %d  Time %s",
		res.Stats.WPM, res.Stats.Accuracy, res.Stats.Errors, stats.FormatClock(res.Stats.ElapsedSeconds))
	return resultStyle.Render(headline + "\n" + details)
}

func (m *Model) renderFooter() string {
	if m.summary.Races == 0 {
		if m.store == nil {
			return footerStyle.Render("History off")
		}
		return footerStyle.Render("No races yet")
	}
	last := m.history[len(m.history)-1]
	segments := []string{
		fmt.Sprintf("Races %d", m.summary.Races),
		fmt.Sprintf("Wins %d (%.0f%%)", m.summary.Wins, m.summary.WinRate()*100),
		fmt.Sprintf("Last %d WPM · %s", last.WPM, stats.Ordinal(last.Place)),
		fmt.Sprintf("Best %d WPM", m.summary.BestWPM),
		fmt.Sprintf("Avg %.1f WPM · %.1f%%", m.summary.AvgWPM, m.summary.AvgAccuracy),
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
