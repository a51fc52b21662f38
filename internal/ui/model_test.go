// ABOUTME: Tests for the progress TUI model
// ABOUTME: Verifies progress tracking and quit on completion
package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestModelTracksProgress(t *testing.T) {
	m := NewModel("localhost:8947", "SJC", 2, 10)

	updated, _ := m.Update(ProgressMsg{Session: 1, Collected: 4})
	m = updated.(Model)

	if m.collected[1] != 4 {
		t.Errorf("expected 4 collected for session 1, got %d", m.collected[1])
	}

	view := m.View()
	if !strings.Contains(view, "session  1") {
		t.Errorf("expected session line in view:\n%s", view)
	}
	if !strings.Contains(view, "4/10") {
		t.Errorf("expected progress count in view:\n%s", view)
	}
}

func TestModelQuitsWhenDone(t *testing.T) {
	m := NewModel("localhost:8947", "", 1, 5)

	_, cmd := m.Update(DoneMsg{})
	if cmd == nil {
		t.Fatal("expected quit command on DoneMsg")
	}
}

func TestModelQuitsOnKey(t *testing.T) {
	m := NewModel("localhost:8947", "", 1, 5)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command on q")
	}
}

func TestProgressBarBounds(t *testing.T) {
	if bar := progressBar(0, 10); strings.Contains(bar, "█") {
		t.Errorf("expected empty bar, got %q", bar)
	}
	// Overshoot must not panic or exceed the bar width.
	_ = progressBar(15, 10)
	_ = progressBar(1, 0)
}
