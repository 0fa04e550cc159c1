// Package services defines the [Player] interface for playback-status providers and implements it for Spotify.
//
// # Player Interface
//
// A provider reports the account's current playback as a [NowPlayingView], a flat snapshot
// that serializes to the relay's stable JSON shape.
//
// # Spotify Implementation
//
// [SpotifyClient] exchanges a long-lived refresh token for short-lived access tokens
// at the accounts endpoint and reads the player's currently-playing endpoint.
//
// The access token is cached in memory with its expiry; a refresh is triggered only when
// the cached token is absent or within 30 seconds of expiring. The cache is mutex guarded
// for memory safety, but overlapping refreshes are tolerated: two callers may both observe
// an expired token and both exchange, with the later response overwriting the earlier one.
//
// Outbound calls pass through a [rate.Limiter] so a burst of inbound traffic cannot
// exhaust the upstream quota.
//
// # Error Handling
//
// Upstream failures are reported as [*UpstreamError] values carrying the HTTP status,
// unwrapping to sentinels from the shared package:
//   - [shared.ErrAuthFailed] : the token exchange was rejected
//   - [shared.ErrAPIRequest] : the playback read was rejected
//   - [shared.ErrMalformedResponse] : the exchange succeeded but the body was unusable
//
// A 204 from the currently-playing endpoint means nothing is playing and is mapped to
// a zero-valued view, not an error.
package services
