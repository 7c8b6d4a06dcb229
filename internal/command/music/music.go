package music

import (
	"errors"

	"github.com/keshon/domme-music/internal/bot"
	"github.com/keshon/domme-music/internal/command"
	"github.com/keshon/domme-music/pkg/cmd"
	"github.com/keshon/domme-music/pkg/jobmgr"
)

const category = "🎵 Music"

const (
	msgJoinVoiceFirst  = "You need to join a voice channel first!"
	msgNotConnected    = "The bot is not connected to a voice channel."
	msgAlreadyJoined   = "Already connected to a voice channel."
	msgStopped         = "Playback stopped and queue cleared."
	msgAlreadyPlaying  = "A playlist is already playing here. Use /stop first."
	msgVoiceJoinFailed = "Could not join your voice channel."
)

// Register adds /play, /stop and /join to r.
func Register(r *cmd.Registry, b bot.BotVoice, mws ...cmd.Middleware) error {
	return errors.Join(
		command.Register(r, &PlayCommand{Bot: b}, mws...),
		command.Register(r, &StopCommand{Bot: b}, mws...),
		command.Register(r, &JoinCommand{Bot: b}, mws...),
	)
}

func playbackRejected(err error) string {
	if errors.Is(err, jobmgr.ErrAlreadyRunning) {
		return msgAlreadyPlaying
	}
	return "Could not start playback."
}
