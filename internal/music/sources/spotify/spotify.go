package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keshon/domme-music/internal/logging"
	"github.com/keshon/domme-music/internal/music/sources"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

const pageLimit = 100

// api is the part of *spotify.Client the catalog needs.
type api interface {
	GetPlaylist(ctx context.Context, playlistID spotify.ID, opts ...spotify.RequestOption) (*spotify.FullPlaylist, error)
	GetPlaylistItems(ctx context.Context, playlistID spotify.ID, opts ...spotify.RequestOption) (*spotify.PlaylistItemPage, error)
	GetTrack(ctx context.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullTrack, error)
}

// Catalog reads public Spotify playlists and tracks with an app-only token.
type Catalog struct {
	client api
	log    zerolog.Logger
}

// New performs the client-credentials exchange once and fails on bad
// credentials.
func New(ctx context.Context, clientID, clientSecret string) (*Catalog, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("spotify client id and secret are required")
	}

	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	if _, err := cfg.Token(ctx); err != nil {
		return nil, fmt.Errorf("spotify token exchange: %w", err)
	}

	return newCatalog(spotify.New(cfg.Client(ctx))), nil
}

func newCatalog(client api) *Catalog {
	return &Catalog{client: client, log: logging.Component("spotify")}
}

func (c *Catalog) FetchPlaylist(ctx context.Context, playlistID string) (*sources.PlaylistSnapshot, error) {
	id := spotify.ID(playlistID)

	meta, err := c.client.GetPlaylist(ctx, id, spotify.Fields("name,images"))
	if err != nil {
		return nil, fmt.Errorf("%w: playlist %s: %w", sources.ErrCatalogFetchFailed, playlistID, err)
	}

	snap := &sources.PlaylistSnapshot{
		ID:    playlistID,
		Title: meta.Name,
	}
	if len(meta.Images) > 0 {
		snap.CoverImage = meta.Images[0].URL
	}

	offset := 0
	for {
		page, err := c.client.GetPlaylistItems(ctx, id, spotify.Limit(pageLimit), spotify.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("%w: playlist %s items at %d: %w", sources.ErrCatalogFetchFailed, playlistID, offset, err)
		}

		for i, item := range page.Items {
			if item.Track.Track == nil {
				continue
			}
			d := descriptor(item.Track.Track)
			d.Position = offset + i + 1
			if !d.Playable() {
				c.log.Debug().Str("playlist", playlistID).Int("position", d.Position).Msg("skipping item without title or artist")
				continue
			}
			snap.Tracks = append(snap.Tracks, d)
		}

		snap.Total = max(snap.Total, int(page.Total), offset+len(page.Items))
		if len(page.Items) < pageLimit {
			break
		}
		offset += pageLimit
	}

	c.log.Info().Str("playlist", playlistID).Str("title", snap.Title).
		Int("tracks", len(snap.Tracks)).Int("total", snap.Total).Msg("playlist fetched")
	return snap, nil
}

func (c *Catalog) FetchTrack(ctx context.Context, trackID string) (*sources.TrackDescriptor, error) {
	t, err := c.client.GetTrack(ctx, spotify.ID(trackID))
	if err != nil {
		return nil, fmt.Errorf("%w: track %s: %w", sources.ErrCatalogFetchFailed, trackID, err)
	}
	d := descriptor(t)
	return &d, nil
}

func descriptor(t *spotify.FullTrack) sources.TrackDescriptor {
	artists := lo.FilterMap(t.Artists, func(a spotify.SimpleArtist, _ int) (string, bool) {
		name := strings.TrimSpace(a.Name)
		return name, name != ""
	})
	return sources.TrackDescriptor{
		Title:     strings.TrimSpace(t.Name),
		Artists:   artists,
		CatalogID: string(t.ID),
	}
}
