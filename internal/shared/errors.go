package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Upstream errors
	ErrAuthFailed        = fmt.Errorf("token refresh failed")
	ErrAPIRequest        = fmt.Errorf("API request failed")
	ErrMalformedResponse = fmt.Errorf("malformed upstream response")

	// Gate errors
	ErrUnauthorized = fmt.Errorf("unauthorized")
	ErrRateLimited  = fmt.Errorf("rate limited")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
