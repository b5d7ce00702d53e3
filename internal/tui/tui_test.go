package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestModelFollowsUpdates(t *testing.T) {
	updates := make(chan Update, 1)
	m := NewModel(updates, nil)

	next, cmd := m.Update(updateMsg(Update{Phase: PhaseDiscover, Matches: 4, Scanned: 10}))
	if cmd == nil {
		t.Fatalf("model stopped listening after an update")
	}
	if view := next.View(); !strings.Contains(view, "4 images found") || !strings.Contains(view, "Files scanned: 10") {
		t.Fatalf("discovery view = %q", view)
	}

	next, _ = next.Update(updateMsg(Update{Phase: PhaseConvert, Current: "/src/a.png", Handled: 1, Total: 3}))
	if view := next.View(); !strings.Contains(view, "Images: 1/3") || !strings.Contains(view, "a.png") {
		t.Fatalf("conversion view = %q", view)
	}

	next, cmd = next.Update(doneMsg{})
	if cmd == nil || next.View() != "" {
		t.Fatalf("model did not quit on done")
	}
}

func TestModelCancelsOnce(t *testing.T) {
	calls := 0
	var model tea.Model = NewModel(make(chan Update), func() { calls++ })

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	if calls != 1 {
		t.Fatalf("cancel called %d times", calls)
	}
	if !strings.Contains(model.View(), "Canceling") {
		t.Fatalf("view does not show cancellation: %q", model.View())
	}
}

func TestListenForUpdatesReportsClose(t *testing.T) {
	updates := make(chan Update)
	close(updates)
	if _, ok := listenForUpdates(updates)().(doneMsg); !ok {
		t.Fatalf("closed channel did not produce doneMsg")
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary([]SummaryRow{
		{Label: "Images converted", Value: "12"},
		{Label: "Errors", Value: "1"},
	})
	lines := strings.Split(out, "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "---") {
		t.Fatalf("summary = %q", out)
	}
	if !strings.Contains(out, "Images converted") || !strings.Contains(out, "12") {
		t.Fatalf("summary missing rows: %q", out)
	}
}

func TestRenderTargets(t *testing.T) {
	if out := RenderTargets(nil); !strings.Contains(out, "No images found") {
		t.Fatalf("empty listing = %q", out)
	}

	out := RenderTargets([]TargetRow{
		{Name: "a.png", Path: "/src/a.png"},
		{Name: "b.jpg", Path: "/src/deep/b.jpg", Info: "ImageOpenError"},
	})
	lines := strings.Split(out, "\n")
	if len(lines) != 3 || !strings.Contains(lines[2], "ImageOpenError") || !strings.HasSuffix(lines[1], "/src/a.png") {
		t.Fatalf("listing = %q", out)
	}
}
