package bot

import (
	"context"

	"github.com/keshon/domme-music/internal/music/player"
)

// BotVoice is what music commands need from the running bot.
type BotVoice interface {
	GetOrCreateSession(guildID string) *player.Session
	FindUserVoiceState(guildID, userID string) (*VoiceState, error)
	// JoinVoice connects the guild session to channelID and returns the
	// channel name.
	JoinVoice(guildID, channelID string) (string, error)
	// StartPlayback runs fn as the guild's playback job. It fails when the
	// guild already has one running.
	StartPlayback(guildID string, fn func(ctx context.Context) error) error
}

type VoiceState struct {
	ChannelID string
	UserID    string
}
