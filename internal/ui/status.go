package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/nowplay/internal/formatter"
	"github.com/desertthunder/nowplay/internal/services"
)

const defaultPollInterval = 2 * time.Second

// keyMap defines the key bindings for the status view.
type keyMap struct {
	quit    key.Binding
	refresh key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

type tickMsg time.Time

type playbackMsg struct {
	view *services.NowPlayingView
	err  error
}

// Model represents the status view state.
type Model struct {
	ctx      context.Context
	player   services.Player
	interval time.Duration
	spinner  spinner.Model
	keys     keyMap
	view     *services.NowPlayingView
	err      error
	loaded   bool
}

// NewModel creates a status model polling player every interval.
func NewModel(ctx context.Context, player services.Player, interval time.Duration) Model {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.accent

	return Model{
		ctx:      ctx,
		player:   player,
		interval: interval,
		spinner:  sp,
		keys:     newKeyMap(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m Model) fetch() tea.Cmd {
	return func() tea.Msg {
		view, err := m.player.NowPlaying(m.ctx)
		return playbackMsg{view: view, err: err}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.refresh):
			return m, m.fetch()
		}
	case tickMsg:
		return m, m.fetch()
	case playbackMsg:
		m.loaded = true
		m.view = msg.view
		m.err = msg.err
		return m, m.tick()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	help := styles.dim.Render("q quit · r refresh")

	if !m.loaded {
		return fmt.Sprintf("\n %s fetching playback...\n\n %s\n", m.spinner.View(), help)
	}

	if m.err != nil {
		return fmt.Sprintf("\n %s %v\n\n %s\n", styles.err.Render("error:"), m.err, help)
	}

	if m.view == nil || (!m.view.IsPlaying && m.view.Track == "") {
		return fmt.Sprintf("\n %s\n\n %s\n", styles.dim.Render("Nothing playing"), help)
	}

	state := styles.accent.Render("▶")
	if !m.view.IsPlaying {
		state = styles.dim.Render("⏸")
	}

	body := fmt.Sprintf(" %s %s\n %s", state, styles.text.Render(m.view.Track), styles.dim.Render(m.view.Artist))
	if m.view.Album != "" {
		body += styles.dim.Render(" · " + m.view.Album)
	}
	if progress := formatter.Progress(m.view); progress != "" {
		body += "\n " + styles.dim.Render(progress)
	}

	return fmt.Sprintf("\n%s\n\n %s\n", body, help)
}
