package sources

import "context"

type Resolver interface {
	// Resolve turns a free-text query or a media page URL into one playable stream
	Resolve(ctx context.Context, queryOrURL string) (*ResolvedAudio, error)
}

type Catalog interface {
	// FetchPlaylist returns the playlist metadata and its playable tracks in catalog order
	FetchPlaylist(ctx context.Context, playlistID string) (*PlaylistSnapshot, error)

	// FetchTrack returns metadata for a single catalog track
	FetchTrack(ctx context.Context, trackID string) (*TrackDescriptor, error)
}
