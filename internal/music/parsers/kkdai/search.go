package kkdai

import (
	"context"
	"errors"
	"fmt"

	"github.com/keshon/domme-music/internal/music/parsers"

	"github.com/ppalone/ytsearch"
	"github.com/raitonoberu/ytmusic"
)

// Searcher finds the page URL of the best match for a free-text query.
type Searcher interface {
	FirstVideoURL(ctx context.Context, query string) (string, error)
}

// SearchChain asks each searcher in turn and returns the first hit.
type SearchChain []Searcher

func (c SearchChain) FirstVideoURL(ctx context.Context, query string) (string, error) {
	var errs []error
	for _, s := range c {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		u, err := s.FirstVideoURL(ctx, query)
		if err == nil {
			return u, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", parsers.ErrNoResults
	}
	return "", errors.Join(errs...)
}

// DefaultSearchChain tries plain YouTube search first, then YouTube Music.
func DefaultSearchChain() SearchChain {
	return SearchChain{NewYouTubeSearcher(), YouTubeMusicSearcher{}}
}

type YouTubeSearcher struct {
	client *ytsearch.Client
}

func NewYouTubeSearcher() *YouTubeSearcher {
	return &YouTubeSearcher{client: ytsearch.NewClient(nil)}
}

func (s *YouTubeSearcher) FirstVideoURL(ctx context.Context, query string) (string, error) {
	res, err := s.client.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("youtube search: %w", err)
	}
	for _, v := range res.Results {
		if v.VideoID != "" {
			return watchURL(v.VideoID), nil
		}
	}
	return "", fmt.Errorf("youtube search: %w", parsers.ErrNoResults)
}

type YouTubeMusicSearcher struct{}

func (YouTubeMusicSearcher) FirstVideoURL(ctx context.Context, query string) (string, error) {
	res, err := ytmusic.TrackSearch(query).Next()
	if err != nil {
		return "", fmt.Errorf("youtube music search: %w", err)
	}
	for _, v := range res.Tracks {
		if v.VideoID != "" {
			return watchURL(v.VideoID), nil
		}
	}
	return "", fmt.Errorf("youtube music search: %w", parsers.ErrNoResults)
}
