package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestSpinnerModel(t *testing.T) {
	var m tea.Model = spinnerModel{message: "rendering"}
	if !strings.Contains(m.View(), "rendering") {
		t.Errorf("View() = %q", m.View())
	}

	next, cmd := m.Update(spinnerTick{})
	if next.(spinnerModel).frame != 1 || cmd == nil {
		t.Error("tick should advance the frame and schedule another tick")
	}

	stopped, cmd := next.Update(spinnerStop{})
	if stopped.View() != "" || cmd == nil {
		t.Error("stop should clear the view and quit")
	}
}

func TestSpinnerNoTerminal(t *testing.T) {
	s := startSpinner(context.Background(), "x")
	s.Stop()
	s.StopWithSuccess("done")
}
