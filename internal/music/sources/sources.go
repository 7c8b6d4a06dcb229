package sources

import "strings"

// TrackDescriptor is catalog metadata for one track. It carries no stream
// URL; the resolver turns SearchQuery into one.
type TrackDescriptor struct {
	Title     string
	Artists   []string
	CatalogID string
	Position  int // 1-based catalog position, 0 when unknown
}

// Playable reports whether the descriptor has enough metadata to search for.
func (d TrackDescriptor) Playable() bool {
	if strings.TrimSpace(d.Title) == "" {
		return false
	}
	for _, a := range d.Artists {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return false
}

// ArtistLine joins artist names the way they are shown to users.
func (d TrackDescriptor) ArtistLine() string {
	return strings.Join(d.Artists, ", ")
}

// SearchQuery is the free-text query handed to the resolver.
func (d TrackDescriptor) SearchQuery() string {
	return strings.TrimSpace(d.Title + " " + d.ArtistLine())
}

// ResolvedAudio is a playable stream. The stream URL usually expires within
// hours, so it is used once and never stored.
type ResolvedAudio struct {
	Title     string
	StreamURL string
	PageURL   string
}

// PlaylistSnapshot is fetched once per play and never refreshed mid-iteration.
type PlaylistSnapshot struct {
	ID         string
	Title      string
	CoverImage string
	Tracks     []TrackDescriptor
	Total      int // catalog item count before filtering
}
