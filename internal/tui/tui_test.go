package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/talgya/steadhold/internal/engine"
	"github.com/talgya/steadhold/internal/tuning"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	eng := engine.New("tui-test-seed", tuning.Default())
	return model{eng: eng, interval: time.Second, playing: true, snap: eng.Snapshot()}
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t)
	for _, k := range []string{"q"} {
		_, cmd := m.Update(key(k))
		if cmd == nil {
			t.Errorf("%q did not quit", k)
		}
	}
}

func TestSpaceStepsOneDay(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(key(" "))
	got := next.(model)
	if got.snap.Day != 2 {
		t.Errorf("day = %d after step, want 2", got.snap.Day)
	}
}

func TestPauseToggle(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(key("p"))
	got := got1(t, next)
	if got.playing {
		t.Error("p did not pause")
	}

	day := got.snap.Day
	next, _ = got.Update(tickMsg(time.Now()))
	got = got1(t, next)
	if got.snap.Day != day {
		t.Error("paused clock still advanced the day")
	}
}

func got1(t *testing.T, m tea.Model) model {
	t.Helper()
	got, ok := m.(model)
	if !ok {
		t.Fatalf("unexpected model type %T", m)
	}
	return got
}

func TestNumberAppliesPreset(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(key("1"))
	got := got1(t, next)
	pop := got.snap.Population
	if got.snap.LaborFood != int(float64(pop)*0.80) {
		t.Errorf("harvest preset not applied: %+v", got.snap)
	}
}

func TestNumberResolvesPendingEvent(t *testing.T) {
	m := newTestModel(t)
	st := m.eng.ExportState()
	st.ActiveEvent = &engine.PendingEvent{Kind: engine.EventWanderers}
	m.eng.RestoreState(st)
	m.snap = m.eng.Snapshot()

	next, _ := m.Update(key("2")) // turn them away
	got := got1(t, next)
	if got.snap.Event != nil {
		t.Error("number key did not resolve the pending event")
	}
}

func TestTickWaitsOnPendingEvent(t *testing.T) {
	m := newTestModel(t)
	st := m.eng.ExportState()
	st.ActiveEvent = &engine.PendingEvent{Kind: engine.EventWanderers}
	m.eng.RestoreState(st)
	m.snap = m.eng.Snapshot()

	day := m.snap.Day
	next, _ := m.Update(tickMsg(time.Now()))
	got := got1(t, next)
	if got.snap.Day != day {
		t.Error("clock advanced past an unresolved event")
	}
}

func TestViewShowsEndBanner(t *testing.T) {
	m := newTestModel(t)
	st := m.eng.ExportState()
	st.Ended = true
	st.EndReason = engine.EndVictory
	m.eng.RestoreState(st)
	m.snap = m.eng.Snapshot()

	if view := m.View(); !strings.Contains(view, "ENDED") || !strings.Contains(view, "victory") {
		t.Errorf("end banner missing:\n%s", view)
	}
}

func TestViewShowsEventOptions(t *testing.T) {
	m := newTestModel(t)
	st := m.eng.ExportState()
	st.ActiveEvent = &engine.PendingEvent{Kind: engine.EventSmith}
	st.Material = 10 // smith present, crate unaffordable
	m.eng.RestoreState(st)
	m.snap = m.eng.Snapshot()

	view := m.View()
	if !strings.Contains(view, "smith") && !strings.Contains(view, "Smith") {
		t.Errorf("event title missing:\n%s", view)
	}
	if !strings.Contains(view, "unavailable") {
		t.Errorf("unaffordable option not marked:\n%s", view)
	}
}
