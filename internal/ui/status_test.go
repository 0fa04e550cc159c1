package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/nowplay/internal/services"
	tu "github.com/desertthunder/nowplay/internal/testing/playermock"
)

func TestModel(t *testing.T) {
	t.Run("Initial View Shows Spinner", func(t *testing.T) {
		m := NewModel(context.Background(), &tu.MockPlayer{}, time.Second)
		if !strings.Contains(m.View(), "fetching playback") {
			t.Errorf("expected loading view, got %q", m.View())
		}
	})

	t.Run("Playback Message Renders Track", func(t *testing.T) {
		m := NewModel(context.Background(), &tu.MockPlayer{}, time.Second)

		updated, _ := m.Update(playbackMsg{view: &services.NowPlayingView{
			IsPlaying:  true,
			Track:      "Song",
			Artist:     "Artist",
			Album:      "Album",
			ProgressMS: 65000,
			DurationMS: 180000,
		}})

		out := updated.View()
		for _, want := range []string{"Song", "Artist", "Album", "1:05 / 3:00"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected view to contain %q, got %q", want, out)
			}
		}
	})

	t.Run("Nothing Playing", func(t *testing.T) {
		m := NewModel(context.Background(), &tu.MockPlayer{}, time.Second)

		updated, _ := m.Update(playbackMsg{view: &services.NowPlayingView{}})

		if !strings.Contains(updated.View(), "Nothing playing") {
			t.Errorf("expected idle view, got %q", updated.View())
		}
	})

	t.Run("Error View", func(t *testing.T) {
		m := NewModel(context.Background(), &tu.MockPlayer{}, time.Second)

		updated, _ := m.Update(playbackMsg{err: errors.New("boom")})

		if !strings.Contains(updated.View(), "boom") {
			t.Errorf("expected error view, got %q", updated.View())
		}
	})

	t.Run("Quit Key", func(t *testing.T) {
		m := NewModel(context.Background(), &tu.MockPlayer{}, time.Second)

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if msg := cmd(); msg != tea.Quit() {
			t.Errorf("expected tea.Quit, got %v", msg)
		}
	})

	t.Run("Tick Triggers Fetch", func(t *testing.T) {
		player := &tu.MockPlayer{View: &services.NowPlayingView{IsPlaying: true, Track: "Song"}}
		m := NewModel(context.Background(), player, time.Second)

		_, cmd := m.Update(tickMsg(time.Now()))
		if cmd == nil {
			t.Fatal("expected fetch command")
		}

		msg, ok := cmd().(playbackMsg)
		if !ok {
			t.Fatalf("expected playbackMsg, got %T", msg)
		}
		if player.Calls != 1 {
			t.Errorf("expected one fetch, got %d", player.Calls)
		}
	})
}
