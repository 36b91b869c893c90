// Package tui provides the interactive terminal play mode: one settlement
// on screen, advancing on a clock or a keypress, with the steward's actions
// bound to keys.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/talgya/steadhold/internal/engine"
)

// App owns the bubbletea program around a running engine.
type App struct {
	Eng      *engine.Engine
	Interval time.Duration
}

// Run blocks until the player quits.
func (a *App) Run() error {
	interval := a.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	m := model{eng: a.Eng, interval: interval, playing: true, snap: a.Eng.Snapshot()}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// --- Styles ---
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	eventStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	barFill     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	barFillLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	barFillWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

type tickMsg time.Time

type model struct {
	eng      *engine.Engine
	snap     engine.Snapshot
	interval time.Duration
	playing  bool
	status   string
}

func (m model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.playing && !m.snap.Ended && m.snap.Event == nil {
			m.eng.Step()
			m.snap = m.eng.Snapshot()
		}
		return m, m.tickCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case " ":
			if !m.snap.Ended {
				m.eng.Step()
				m.snap = m.eng.Snapshot()
				m.status = ""
			}
			return m, nil

		case "p":
			m.playing = !m.playing
			if m.playing {
				m.status = "clock running"
			} else {
				m.status = "clock paused"
			}
			return m, nil

		case "1", "2", "3":
			return m.handleNumber(msg.String()), nil

		case "f":
			if m.eng.BuildFarm() {
				m.status = "farm raised"
			} else {
				m.status = "not enough material for a farm"
			}
			m.snap = m.eng.Snapshot()
			return m, nil

		case "r":
			m.eng.DeclareRationing()
			m.snap = m.eng.Snapshot()
			m.status = "rationing declared"
			return m, nil

		case "e":
			m.eng.DeclareFeast()
			m.snap = m.eng.Snapshot()
			m.status = "feast declared"
			return m, nil
		}
	}
	return m, nil
}

// handleNumber resolves a pending event option when one is on screen,
// otherwise applies a labor preset.
func (m model) handleNumber(key string) model {
	idx := int(key[0] - '1')
	if m.snap.Event != nil {
		if m.eng.ResolveEvent(idx) {
			m.status = "decision made"
		} else {
			m.status = "that option is not available"
		}
		m.snap = m.eng.Snapshot()
		return m
	}

	presets := []engine.Preset{engine.PresetHarvest, engine.PresetBalanced, engine.PresetWorkshop}
	if idx < len(presets) {
		m.eng.ApplyPreset(presets[idx])
		m.snap = m.eng.Snapshot()
		m.status = fmt.Sprintf("labor preset: %s", presets[idx])
	}
	return m
}

func meterBar(v float64) string {
	const width = 20
	filled := int(v / 100 * width)
	if filled > width {
		filled = width
	}
	style := barFill
	switch {
	case v < 30:
		style = barFillLow
	case v < 55:
		style = barFillWarn
	}
	return style.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", width-filled))
}

func (m model) View() string {
	s := m.snap
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("STEADHOLD - day %d", s.Day)))
	b.WriteString(dimStyle.Render(fmt.Sprintf("   %s · %s settlers", s.Status, humanize.Comma(int64(s.Population)))))
	if !m.playing {
		b.WriteString(alertStyle.Render("   [paused]"))
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %s %5.1f\n", labelStyle.Render("morale     "), meterBar(s.Morale), s.Morale))
	b.WriteString(fmt.Sprintf("%s %s %5.1f\n", labelStyle.Render("legitimacy "), meterBar(s.Legitimacy), s.Legitimacy))
	b.WriteString(fmt.Sprintf("%s %s %5.1f\n", labelStyle.Render("subsistence"), meterBar(100-s.PressureSub), s.PressureSub))
	b.WriteString(fmt.Sprintf("%s %s %5.1f\n", labelStyle.Render("security   "), meterBar(100-s.PressureSec), s.PressureSec))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("stocks  ") + fmt.Sprintf(
		"food %s (%+.1f/day)   material %s   tooling %s\n",
		humanize.FtoaWithDigits(s.Food, 1), s.Rates.FoodPerDay-s.Rates.FoodDemandPerDay,
		humanize.FtoaWithDigits(s.Material, 1),
		humanize.FtoaWithDigits(s.Tooling, 1)))
	b.WriteString(labelStyle.Render("labor   ") + fmt.Sprintf(
		"food %d · material %d · tooling %d   farms %d\n",
		s.LaborFood, s.LaborMaterial, s.LaborTooling, s.Farms))
	if s.HungerStreak > 0 {
		b.WriteString(alertStyle.Render(fmt.Sprintf("hunger  %d days unfed\n", s.HungerStreak)))
	}
	if s.RationingDaysLeft > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("policy  rationing, %d days left\n", s.RationingDaysLeft)))
	}
	if s.FeastingDaysLeft > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("policy  feasting, %d days left\n", s.FeastingDaysLeft)))
	}
	b.WriteString("\n")

	if s.Ended {
		b.WriteString(alertStyle.Render(fmt.Sprintf("THE RUN HAS ENDED: %s\n", s.EndReason)))
		b.WriteString(dimStyle.Render("q to leave\n"))
		return b.String()
	}

	if s.Event != nil {
		b.WriteString(eventStyle.Render(s.Event.Title) + "\n")
		b.WriteString(s.Event.Text + "\n")
		for i, opt := range s.Event.Options {
			line := fmt.Sprintf("  %d. %s", i+1, opt.Label)
			if !opt.Available {
				line += dimStyle.Render("  (unavailable)")
			}
			b.WriteString(line + "\n")
		}
		b.WriteString(dimStyle.Render("the day holds its breath until you choose\n"))
	} else {
		b.WriteString(dimStyle.Render("space step · p pause · 1/2/3 presets · f farm · r ration · e feast · q quit\n"))
	}

	if m.status != "" {
		b.WriteString("\n" + goodStyle.Render(m.status) + "\n")
	}
	return b.String()
}
