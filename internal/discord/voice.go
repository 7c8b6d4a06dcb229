package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keshon/domme-music/internal/bot"
	"github.com/keshon/domme-music/internal/music/player"
	"github.com/keshon/domme-music/internal/music/stream"

	"github.com/google/uuid"
)

var errNotInVoice = errors.New("user not in any voice channel")

// GetOrCreateSession returns the playback session of guildID.
func (b *Bot) GetOrCreateSession(guildID string) *player.Session {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.sessions[guildID]; ok {
		return s
	}

	var m player.Metrics
	if b.deps.Metrics != nil {
		m = b.deps.Metrics
	}
	s := player.New(guildID, player.Options{
		Resolver:     b.deps.Resolver,
		Catalog:      b.deps.Catalog,
		Filters:      b.deps.Filters,
		PollInterval: b.cfg.PollInterval,
		Metrics:      m,
	})
	b.sessions[guildID] = s
	return s
}

func (b *Bot) allSessions() []*player.Session {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*player.Session, 0, len(b.sessions))
	for _, s := range b.sessions {
		out = append(out, s)
	}
	return out
}

// FindUserVoiceState looks the user up in the guild's cached voice states.
func (b *Bot) FindUserVoiceState(guildID, userID string) (*bot.VoiceState, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving guild: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return &bot.VoiceState{
				ChannelID: vs.ChannelID,
				UserID:    vs.UserID,
			}, nil
		}
	}
	return nil, errNotInVoice
}

// JoinVoice connects to channelID, attaches a voice sink to the guild
// session and returns the channel name.
func (b *Bot) JoinVoice(guildID, channelID string) (string, error) {
	vc, err := b.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return "", fmt.Errorf("join voice channel %s: %w", channelID, err)
	}
	b.GetOrCreateSession(guildID).Attach(stream.NewDiscordSink(vc))

	name := channelID
	if ch, err := b.dg.State.Channel(channelID); err == nil {
		name = ch.Name
	}
	b.log.Info().Str("guild", guildID).Str("channel", name).Msg("joined voice channel")
	return name, nil
}

// StartPlayback runs fn as the guild's playback job.
func (b *Bot) StartPlayback(guildID string, fn func(ctx context.Context) error) error {
	runID := uuid.NewString()
	log := b.log.With().Str("guild", guildID).Str("run", runID).Logger()

	return b.jobs.StartAsync(playbackJob(guildID), func(ctx context.Context) error {
		start := time.Now()
		log.Debug().Msg("playback started")
		err := fn(ctx)
		log.Debug().Err(err).Dur("took", time.Since(start)).Msg("playback finished")
		return err
	})
}

func playbackJob(guildID string) string {
	return "playback:" + guildID
}
