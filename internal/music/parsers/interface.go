package parsers

import (
	"context"

	"github.com/keshon/domme-music/internal/music/sources"
)

// Extractor turns a media page or a search query into a direct audio stream
// URL without downloading the media.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, pageURL string) (*sources.ResolvedAudio, error)
	Search(ctx context.Context, query string) (*sources.ResolvedAudio, error)
}
