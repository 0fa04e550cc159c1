// package playermock contains a shared test double for [services.Player]
package playermock

import (
	"context"

	"github.com/desertthunder/nowplay/internal/services"
)

// MockPlayer is a test double for [services.Player]
type MockPlayer struct {
	View  *services.NowPlayingView
	Err   error
	Calls int
}

func (m *MockPlayer) NowPlaying(ctx context.Context) (*services.NowPlayingView, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.View == nil {
		return &services.NowPlayingView{}, nil
	}
	return m.View, nil
}

func (m *MockPlayer) Name() string { return "mock" }
