// package services defines interface Player for reading playback state from HTTP APIs
package services

import (
	"context"
	"strings"
)

// Player defines the interface for music service providers that can report the account's current playback.
type Player interface {
	// NowPlaying retrieves a normalized snapshot of the account's current playback.
	// A provider reporting nothing playing is a normal outcome, not an error.
	NowPlaying(ctx context.Context) (*NowPlayingView, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// NowPlayingView is the normalized, transport-agnostic playback snapshot.
//
// String fields default to empty and numeric fields to zero when the provider
// omits them. A paused track with an item still present keeps its metadata
// with IsPlaying false; there is no separate paused flag.
type NowPlayingView struct {
	IsPlaying  bool   `json:"is_playing"`
	Track      string `json:"track"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	ArtworkURL string `json:"artwork_url"`
	URL        string `json:"url"`
	ID         string `json:"id"`
	ProgressMS int    `json:"progress_ms"`
	DurationMS int    `json:"duration_ms"`
}

// JoinArtists joins artist names with ", " for display.
func JoinArtists(names []string) string {
	return strings.Join(names, ", ")
}
