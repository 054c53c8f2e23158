package client

import "errors"

// Sentinel errors for provider operations.
var (
	ErrNotConnected        = errors.New("search provider not connected")
	ErrMissingAPIKey       = errors.New("YouTube API key is required")
	ErrYtDlpNotInstalled   = errors.New("yt-dlp not installed")
	ErrUnsupportedProvider = errors.New("unsupported search provider")
)

// ProviderError wraps a failed query with the provider and term it belongs to.
type ProviderError struct {
	Provider string
	Term     string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + " search for '" + e.Term + "': " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }
