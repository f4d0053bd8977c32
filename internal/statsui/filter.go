package statsui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typerace/internal/model"
)

const dateLayout = "2006-01-02"

// filterForm edits the since/last/window settings of the history view.
type filterForm struct {
	inputs []textinput.Model
	focus  int
	err    string
}

func newFilterForm() filterForm {
	prompts := []string{"Since (YYYY-MM-DD): ", "Last N races: ", "Curve window: "}
	f := filterForm{inputs: make([]textinput.Model, len(prompts))}
	for i, prompt := range prompts {
		in := textinput.New()
		in.Prompt = prompt
		in.Cursor.SetMode(cursor.CursorBlink)
		f.inputs[i] = in
	}
	return f
}

func (f *filterForm) load(cfg model.StatsConfig) tea.Cmd {
	values := []string{"", "", strconv.Itoa(cfg.CurveWindow)}
	if cfg.Since != nil {
		values[0] = cfg.Since.Format(dateLayout)
	}
	if cfg.Last > 0 {
		values[1] = strconv.Itoa(cfg.Last)
	}
	for i, v := range values {
		f.inputs[i].SetValue(v)
	}
	f.err = ""
	return f.setFocus(0)
}

func (f *filterForm) setFocus(idx int) tea.Cmd {
	n := len(f.inputs)
	f.focus = (idx%n + n) % n
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.focus {
			cmd = f.inputs[i].Focus()
			continue
		}
		f.inputs[i].Blur()
	}
	return cmd
}

func (f *filterForm) setWidth(width int) {
	for i := range f.inputs {
		w := width - len(f.inputs[i].Prompt) - 2
		if w < 10 {
			w = 10
		}
		f.inputs[i].Width = w
	}
}

func (f *filterForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *filterForm) config() (model.StatsConfig, error) {
	return parseFilter(f.inputs[0].Value(), f.inputs[1].Value(), f.inputs[2].Value())
}

func (f *filterForm) view() string {
	lines := []string{"Filters (enter to apply, esc to cancel)"}
	for _, in := range f.inputs {
		lines = append(lines, in.View())
	}
	if f.err != "" {
		lines = append(lines, errorStyle.Render(f.err))
	}
	return strings.Join(lines, "\n")
}

func parseFilter(sinceInput, lastInput, windowInput string) (model.StatsConfig, error) {
	cfg := model.StatsConfig{CurveWindow: 1}
	if s := strings.TrimSpace(sinceInput); s != "" {
		parsed, err := time.ParseInLocation(dateLayout, s, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &parsed
	}
	if s := strings.TrimSpace(lastInput); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 0 {
			return cfg, fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		cfg.Last = parsed
	}
	if s := strings.TrimSpace(windowInput); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 {
			return cfg, fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		cfg.CurveWindow = parsed
	}
	return cfg, nil
}
