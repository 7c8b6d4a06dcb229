// Package commands holds the diagnostic CLI. It exercises the reference
// classifier, the source resolver and the Spotify catalog without a Discord
// connection.
package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/keshon/domme-music/internal/config"
	"github.com/keshon/domme-music/internal/logging"
	"github.com/keshon/domme-music/internal/music/reference"
	"github.com/keshon/domme-music/internal/music/source_resolver"
	"github.com/keshon/domme-music/internal/music/sources"
	"github.com/keshon/domme-music/internal/music/sources/spotify"

	"github.com/spf13/cobra"
)

const defaultTimeout = 60 * time.Second

// Root returns the domme-music command tree.
func Root() *cobra.Command {
	var timeout time.Duration

	root := &cobra.Command{
		Use:          "domme-music",
		Short:        "Diagnostics for the domme-music Discord bot",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Parse()
			if err != nil {
				return err
			}
			return logging.SetupWriter(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
		},
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "give up after this long")

	withTimeout := func(cmd *cobra.Command) (context.Context, context.CancelFunc) {
		return context.WithTimeout(cmd.Context(), timeout)
	}

	root.AddCommand(
		classifyCmd(),
		resolveCmd(withTimeout),
		playlistCmd(withTimeout),
	)
	return root
}

type ctxFactory func(cmd *cobra.Command) (context.Context, context.CancelFunc)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <reference>",
		Short: "Show how a /play argument is classified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := reference.Classify(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "kind:  %s\nvalue: %s\n", ref.Kind, ref.Value)
			if ref.Kind == reference.Invalid {
				return sources.ErrInvalidReference
			}
			return nil
		},
	}
}

func resolveCmd(newCtx ctxFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <query-or-url>",
		Short: "Resolve a page URL or search query into a stream URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Parse()
			if err != nil {
				return err
			}
			r, err := source_resolver.New(source_resolver.Options{
				Backends:   cfg.ResolverBackends,
				YTDLPAge:   cfg.YTDLPAgeLimit,
				KKDAIProxy: cfg.KKDAIProxy,
			})
			if err != nil {
				return err
			}

			ctx, cancel := newCtx(cmd)
			defer cancel()

			audio, err := r.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			printAudio(cmd.OutOrStdout(), audio)
			return nil
		},
	}
}

func playlistCmd(newCtx ctxFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "playlist <id-or-url>",
		Short: "List the playable tracks of a Spotify playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if ref := reference.Classify(id); ref.Kind == reference.CatalogPlaylist {
				id = ref.Value
			}

			cfg, err := config.Parse()
			if err != nil {
				return err
			}

			ctx, cancel := newCtx(cmd)
			defer cancel()

			catalog, err := spotify.New(ctx, cfg.SpotifyClientID, cfg.SpotifyClientSecret)
			if err != nil {
				return err
			}
			snap, err := catalog.FetchPlaylist(ctx, id)
			if err != nil {
				return err
			}
			printPlaylist(cmd.OutOrStdout(), snap)
			return nil
		},
	}
}

func printAudio(w io.Writer, a *sources.ResolvedAudio) {
	fmt.Fprintf(w, "title:  %s\npage:   %s\nstream: %s\n", a.Title, a.PageURL, a.StreamURL)
}

func printPlaylist(w io.Writer, snap *sources.PlaylistSnapshot) {
	fmt.Fprintf(w, "%s (%d playable of %d)\n", snap.Title, len(snap.Tracks), snap.Total)
	if snap.CoverImage != "" {
		fmt.Fprintf(w, "cover: %s\n", snap.CoverImage)
	}
	for _, t := range snap.Tracks {
		fmt.Fprintf(w, "%3d. %s by %s\n", t.Position, t.Title, t.ArtistLine())
	}
}
