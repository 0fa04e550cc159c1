// package formatter renders playback snapshots as plain text
package formatter

import (
	"fmt"

	"github.com/desertthunder/nowplay/internal/services"
)

// PlainLine renders "<track> — <artist>" for an actively playing snapshot.
//
// Returns the empty string when nothing is playing or the snapshot is nil,
// matching the relay's empty-body contract for the .txt endpoint.
func PlainLine(view *services.NowPlayingView) string {
	if view == nil || !view.IsPlaying || view.Track == "" {
		return ""
	}
	if view.Artist == "" {
		return view.Track
	}
	return fmt.Sprintf("%s — %s", view.Track, view.Artist)
}

// FormatDuration renders milliseconds as m:ss.
func FormatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Progress renders "<elapsed> / <total>" for a snapshot with a known duration.
func Progress(view *services.NowPlayingView) string {
	if view == nil || view.DurationMS <= 0 {
		return ""
	}
	return fmt.Sprintf("%s / %s", FormatDuration(view.ProgressMS), FormatDuration(view.DurationMS))
}
