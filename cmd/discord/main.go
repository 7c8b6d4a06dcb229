// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/keshon/domme-music/internal/chatlog"
	"github.com/keshon/domme-music/internal/config"
	"github.com/keshon/domme-music/internal/discord"
	"github.com/keshon/domme-music/internal/logging"
	"github.com/keshon/domme-music/internal/metrics"
	"github.com/keshon/domme-music/internal/music/source_resolver"
	"github.com/keshon/domme-music/internal/music/sources/spotify"
	"github.com/keshon/domme-music/internal/music/stream"

	"github.com/rs/zerolog/log"
)

const appName = "domme-music"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration, see .env.example")
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}
	l := logging.Component("main")
	l.Info().Str("version", appVersion()).Msgf("starting %s", appName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := spotify.New(ctx, cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	if err != nil {
		l.Fatal().Err(err).Msg("spotify authentication failed")
	}

	resolver, err := source_resolver.New(source_resolver.Options{
		Backends:   cfg.ResolverBackends,
		YTDLPAge:   cfg.YTDLPAgeLimit,
		KKDAIProxy: cfg.KKDAIProxy,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("failed to build source resolver")
	}
	l.Info().Strs("backends", resolver.Backends()).Msg("source resolver ready")

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				l.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	chat := chatlog.New(cfg.ChatLogPath)
	defer chat.Close()

	bot, err := discord.New(cfg, discord.Deps{
		Resolver: resolver,
		Catalog:  catalog,
		Filters:  stream.DefaultFilters().Override(cfg.AudioInputOptions, cfg.AudioOutputOptions, cfg.AudioFilters),
		Metrics:  m,
		ChatLog:  chat,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("failed to create bot")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		l.Info().Msg("received shutdown signal")
		if err := <-errCh; err != nil {
			l.Warn().Err(err).Msg("errors during shutdown")
		}
	case err := <-errCh:
		if err != nil {
			l.Error().Err(err).Msg("discord bot error")
			stop()
			os.Exit(1)
		}
	}

	l.Info().Msg("discord bot exited cleanly")
}

func appVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "unknown"
	}
	return bi.Main.Version
}
