package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/daunroda/internal/models"
	"github.com/desertthunder/daunroda/internal/shared"
)

func testItem() models.ReviewItem {
	return models.ReviewItem{
		Job: models.DownloadJob{
			Playlist:  "Road Trip",
			Track:     models.Track{Title: "Lover", Artists: []string{"A"}},
			Candidate: models.Candidate{ExternalID: "v1", DisplayTitle: "Lover (Live)"},
		},
		Reason: models.ForbiddenWording(),
	}
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPromptModel(t *testing.T) {
	t.Run("view shows the question and link", func(t *testing.T) {
		m := newPromptModel(testItem(), 3, nil)
		view := m.View()

		for _, want := range []string{
			"Review #3",
			"Found A - Lover on YouTube (named Lover (Live))",
			"https://music.youtube.com/watch?v=v1",
		} {
			if !strings.Contains(view, want) {
				t.Errorf("expected view to contain %q, got:\n%s", want, view)
			}
		}
	})

	tests := []struct {
		name        string
		msg         tea.KeyMsg
		wantAnswer  bool
		wantAborted bool
	}{
		{name: "y approves", msg: keyPress("y"), wantAnswer: true},
		{name: "n declines", msg: keyPress("n")},
		{name: "enter declines", msg: tea.KeyMsg{Type: tea.KeyEnter}},
		{name: "q aborts", msg: keyPress("q"), wantAborted: true},
		{name: "ctrl+c aborts", msg: tea.KeyMsg{Type: tea.KeyCtrlC}, wantAborted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newPromptModel(testItem(), 1, nil)
			_, cmd := m.Update(tt.msg)

			if !m.done {
				t.Fatal("expected the prompt to be done")
			}
			if m.answer != tt.wantAnswer || m.aborted != tt.wantAborted {
				t.Errorf("answer=%v aborted=%v", m.answer, m.aborted)
			}
			if cmd == nil {
				t.Fatal("expected a quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected tea.QuitMsg")
			}
		})
	}

	t.Run("other keys are ignored", func(t *testing.T) {
		m := newPromptModel(testItem(), 1, nil)
		if _, cmd := m.Update(keyPress("x")); cmd != nil || m.done {
			t.Error("expected no-op for unbound key")
		}
	})

	t.Run("o opens the candidate", func(t *testing.T) {
		var opened string
		m := newPromptModel(testItem(), 1, func(url string) error {
			opened = url
			return nil
		})

		_, cmd := m.Update(keyPress("o"))
		if cmd == nil {
			t.Fatal("expected a command")
		}
		msg := cmd()
		if opened != "https://music.youtube.com/watch?v=v1" {
			t.Errorf("unexpected url %q", opened)
		}

		m.Update(msg)
		if m.done {
			t.Error("opening the link should not answer the prompt")
		}
		if !strings.Contains(m.View(), "Opened https://music.youtube.com/watch?v=v1") {
			t.Errorf("expected status line, got:\n%s", m.View())
		}
	})

	t.Run("open failure is shown", func(t *testing.T) {
		m := newPromptModel(testItem(), 1, func(string) error { return errors.New("no browser") })
		_, cmd := m.Update(keyPress("o"))
		m.Update(cmd())

		if !strings.Contains(m.View(), "no browser") {
			t.Errorf("expected error in view, got:\n%s", m.View())
		}
	})
}

func TestPrompt(t *testing.T) {
	t.Run("answers from input", func(t *testing.T) {
		var out bytes.Buffer
		p := NewPrompt(strings.NewReader("y"), &out)

		ok, err := p.Confirm(context.Background(), testItem())
		if err != nil {
			t.Fatalf("Confirm failed: %v", err)
		}
		if !ok {
			t.Error("expected approval")
		}
	})

	t.Run("quit aborts the review", func(t *testing.T) {
		var out bytes.Buffer
		p := NewPrompt(strings.NewReader("q"), &out)

		_, err := p.Confirm(context.Background(), testItem())
		if !errors.Is(err, shared.ErrReviewAborted) {
			t.Errorf("expected ErrReviewAborted, got %v", err)
		}
	})

	t.Run("WithOpener ignores nil", func(t *testing.T) {
		p := NewPrompt(nil, nil).WithOpener(nil)
		if p.open == nil {
			t.Error("expected default opener to be kept")
		}
	})
}
