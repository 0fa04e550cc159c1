// Spotify API implementation of [Player]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/get-the-users-currently-playing-track
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/nowplay/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL  = "https://accounts.spotify.com/api/token"
	spotifyPlayerURL = "https://api.spotify.com/v1/me/player/currently-playing"

	// tokenSafetyMargin is subtracted from the cached expiry so a token is
	// never presented upstream moments before it lapses.
	tokenSafetyMargin = 30 * time.Second

	defaultUpstreamPerSecond = 5.0
)

// UpstreamError reports a non-success HTTP status from a Spotify endpoint.
type UpstreamError struct {
	Op     string // "auth" for the token exchange, "fetch" for the playback read
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("spotify %s error: status %d", e.Op, e.Status)
}

func (e *UpstreamError) Unwrap() error {
	if e.Op == "auth" {
		return shared.ErrAuthFailed
	}
	return shared.ErrAPIRequest
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	ExternalURLs externalURLs    `json:"external_urls"`
}

// SpotifyCurrentlyPlaying represents the currently-playing response.
//
// Item is a pointer because the API sends null when nothing is loaded in the player.
type SpotifyCurrentlyPlaying struct {
	IsPlaying  bool          `json:"is_playing"`
	ProgressMS int           `json:"progress_ms"`
	Item       *SpotifyTrack `json:"item"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// SpotifyClient implements the [Player] interface against the Spotify Web API.
//
// It owns the process-wide access token cache; construct one instance and share it.
type SpotifyClient struct {
	clientID     string
	clientSecret string
	refreshToken string
	scope        string

	tokenURL   string
	playerURL  string
	httpClient *http.Client
	limiter    *rate.Limiter

	mu    sync.Mutex
	token *oauth2.Token
}

// SpotifyOpts contains configuration options for creating a SpotifyClient.
type SpotifyOpts struct {
	Credentials       shared.CredentialsConfig
	HTTPClient        *http.Client
	UpstreamPerSecond float64

	// TokenURL and PlayerURL override the API endpoints, used by tests.
	TokenURL  string
	PlayerURL string
}

// NewSpotifyClient creates a Spotify client with the given credentials.
func NewSpotifyClient(opts SpotifyOpts) (*SpotifyClient, error) {
	if opts.Credentials.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}
	if opts.Credentials.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}
	if opts.Credentials.RefreshToken == "" {
		return nil, fmt.Errorf("%w: refresh_token", shared.ErrMissingCredentials)
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.UpstreamPerSecond <= 0 {
		opts.UpstreamPerSecond = defaultUpstreamPerSecond
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.PlayerURL == "" {
		opts.PlayerURL = spotifyPlayerURL
	}

	return &SpotifyClient{
		clientID:     opts.Credentials.ClientID,
		clientSecret: opts.Credentials.ClientSecret,
		refreshToken: opts.Credentials.RefreshToken,
		scope:        opts.Credentials.Scope,
		tokenURL:     opts.TokenURL,
		playerURL:    opts.PlayerURL,
		httpClient:   opts.HTTPClient,
		limiter:      rate.NewLimiter(rate.Limit(opts.UpstreamPerSecond), 1),
	}, nil
}

func (s *SpotifyClient) Name() string {
	return "Spotify"
}

// cachedToken returns the cached access token if it is still inside the safety margin.
func (s *SpotifyClient) cachedToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil || s.token.AccessToken == "" {
		return "", false
	}
	if !time.Now().Before(s.token.Expiry.Add(-tokenSafetyMargin)) {
		return "", false
	}
	return s.token.AccessToken, true
}

// EnsureAccessToken returns a valid access token, refreshing via the token
// endpoint when the cached one is absent or expiring.
//
// Overlapping callers may both observe an expired cache and both exchange;
// the later response overwrites the earlier one. The lock only guards the
// cache itself, never a network call.
func (s *SpotifyClient) EnsureAccessToken(ctx context.Context) (string, error) {
	if token, ok := s.cachedToken(); ok {
		return token, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", s.refreshToken)
	if s.scope != "" {
		form.Set("scope", s.scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UpstreamError{Op: "auth", Status: resp.StatusCode}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}
	if tr.AccessToken == "" || tr.ExpiresIn <= 0 {
		return "", fmt.Errorf("%w: missing access_token or expires_in", shared.ErrMalformedResponse)
	}

	token := &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		Expiry:      time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	return token.AccessToken, nil
}

// NowPlaying retrieves and normalizes the account's current playback.
//
// A 204 from the player endpoint means nothing is playing and yields a
// zero-valued view rather than an error.
func (s *SpotifyClient) NowPlaying(ctx context.Context) (*NowPlayingView, error) {
	token, err := s.EnsureAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.playerURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return &NowPlayingView{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Op: "fetch", Status: resp.StatusCode}
	}

	var playing SpotifyCurrentlyPlaying
	if err := json.NewDecoder(resp.Body).Decode(&playing); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	return normalize(&playing), nil
}

// normalize maps the Spotify wire payload to the relay's stable view.
func normalize(playing *SpotifyCurrentlyPlaying) *NowPlayingView {
	if playing.Item == nil {
		return &NowPlayingView{}
	}

	names := make([]string, 0, len(playing.Item.Artists))
	for _, artist := range playing.Item.Artists {
		names = append(names, artist.Name)
	}

	artwork := ""
	if len(playing.Item.Album.Images) > 0 {
		artwork = playing.Item.Album.Images[0].URL
	}

	return &NowPlayingView{
		IsPlaying:  playing.IsPlaying,
		Track:      playing.Item.Name,
		Artist:     JoinArtists(names),
		Album:      playing.Item.Album.Name,
		ArtworkURL: artwork,
		URL:        playing.Item.ExternalURLs.Spotify,
		ID:         playing.Item.ID,
		ProgressMS: playing.ProgressMS,
		DurationMS: playing.Item.DurationMS,
	}
}
