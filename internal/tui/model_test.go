package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// testFiles writes n tiny PGM files and returns their paths.
func testFiles(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, "img"+string(rune('a'+i))+".pgm")
		if err := os.WriteFile(paths[i], []byte("P5 2 2 255\n\x00\x55\xaa\xff"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

// newTestModel builds a model, applies a window size and completes the
// initial load.
func newTestModel(t *testing.T, files []string) Model {
	t.Helper()
	m := NewModel(context.Background(), ViewerOptions{Files: files}, nil, nil)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 12})
	m = updated.(Model)

	msg := m.loadCmd(m.index)()
	updated, _ = m.Update(msg)
	return updated.(Model)
}

// step delivers a key press and the load message it triggers, if any.
func step(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	updated, cmd := m.Update(k)
	m = updated.(Model)
	if cmd != nil {
		if msg := cmd(); msg != nil {
			updated, _ = m.Update(msg)
			m = updated.(Model)
		}
	}
	return m
}

func TestModel_InitialView(t *testing.T) {
	m := newTestModel(t, testFiles(t, 3))

	view := m.View()
	if !strings.Contains(view, "imga.pgm") {
		t.Errorf("view should show the first file name:\n%s", view)
	}
	if !strings.Contains(view, "1/3") {
		t.Errorf("view should show the position indicator:\n%s", view)
	}
	if !strings.Contains(view, "▀") {
		t.Error("view should contain rendered image cells")
	}
}

func TestModel_Paging(t *testing.T) {
	files := testFiles(t, 3)
	m := newTestModel(t, files)

	right := tea.KeyMsg{Type: tea.KeyRight}
	left := tea.KeyMsg{Type: tea.KeyLeft}

	t.Run("next advances", func(t *testing.T) {
		m := step(t, m, right)
		if m.index != 1 {
			t.Errorf("index = %d, want 1", m.index)
		}
		if !strings.Contains(m.View(), "2/3") {
			t.Error("position indicator should update")
		}
	})

	t.Run("prev at start stays", func(t *testing.T) {
		m := step(t, m, left)
		if m.index != 0 {
			t.Errorf("index = %d, want 0", m.index)
		}
	})

	t.Run("next clamps at end", func(t *testing.T) {
		m := m
		for range 5 {
			m = step(t, m, right)
		}
		if m.index != 2 {
			t.Errorf("index = %d, want last file 2", m.index)
		}
	})

	t.Run("home and end jump", func(t *testing.T) {
		m := step(t, m, tea.KeyMsg{Type: tea.KeyEnd})
		if m.index != 2 {
			t.Errorf("index after end = %d, want 2", m.index)
		}
		m = step(t, m, tea.KeyMsg{Type: tea.KeyHome})
		if m.index != 0 {
			t.Errorf("index after home = %d, want 0", m.index)
		}
	})
}

func TestModel_QuitKeys(t *testing.T) {
	m := newTestModel(t, testFiles(t, 1))

	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Fatalf("key %v should produce a command", k)
		}
		if msg := cmd(); msg == nil {
			t.Errorf("key %v should quit", k)
		}
	}
}

func TestModel_DecodeErrorShowsPanel(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "broken.pgm")
	if err := os.WriteFile(bad, []byte("P5 9 9 255\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := newTestModel(t, []string{bad})

	view := m.View()
	if !strings.Contains(view, "cannot display image") {
		t.Errorf("view should show the error panel:\n%s", view)
	}
	if !strings.Contains(view, "broken.pgm") {
		t.Error("header should still show the file name")
	}
}

func TestModel_StaleLoadIgnored(t *testing.T) {
	files := testFiles(t, 2)
	m := newTestModel(t, files)
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRight})

	// A late result for the file we already paged past must not repaint.
	stale := m.loadCmd(0)()
	updated, _ := m.Update(stale)
	m = updated.(Model)

	if m.index != 1 {
		t.Errorf("index = %d, want 1", m.index)
	}
	if !strings.Contains(m.View(), "2/2") {
		t.Error("view should still show the second file")
	}
}

func TestModel_ResizeInvalidatesRender(t *testing.T) {
	m := newTestModel(t, testFiles(t, 1))
	before := m.View()

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 6})
	m = updated.(Model)
	after := m.View()

	if before == after {
		t.Error("view should change after a resize")
	}
	if !strings.Contains(after, "▀") {
		t.Error("resized view should still contain image cells")
	}
}
