package sources

import (
	"context"
	"errors"
)

var (
	ErrInvalidReference   = errors.New("invalid track reference")
	ErrResolutionFailed   = errors.New("track resolution failed")
	ErrCatalogFetchFailed = errors.New("catalog fetch failed")
	ErrSinkAttachFailed   = errors.New("voice sink attach failed")
	ErrNotConnected       = errors.New("not connected to a voice channel")
)

// UserMessage maps an error to the short status line shown in Discord.
// Error details stay in the logs.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidReference):
		return "Invalid URL. Please provide a valid YouTube or Spotify link."
	case errors.Is(err, ErrNotConnected):
		return "You need to join a voice channel first!"
	case errors.Is(err, ErrCatalogFetchFailed):
		return "Failed to retrieve Spotify tracks."
	case errors.Is(err, ErrResolutionFailed):
		return "Could not find a playable stream for that track."
	case errors.Is(err, ErrSinkAttachFailed):
		return "Could not start playback in the voice channel."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Playback was interrupted."
	default:
		return "Something went wrong while handling that request."
	}
}
