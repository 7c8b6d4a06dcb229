package music

import (
	"context"
	"errors"
	"fmt"

	"github.com/keshon/domme-music/internal/bot"
	"github.com/keshon/domme-music/internal/command"
	"github.com/keshon/domme-music/internal/logging"
	"github.com/keshon/domme-music/internal/music/reference"
	"github.com/keshon/domme-music/internal/music/sources"

	"github.com/bwmarrin/discordgo"
)

type PlayCommand struct {
	Bot bot.BotVoice
}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play a song from YouTube or Spotify." }
func (c *PlayCommand) Category() string    { return category }
func (c *PlayCommand) GuildOnly() bool     { return true }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "url",
				Description: "YouTube link, Spotify track or Spotify playlist",
				Required:    true,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx context.Context, sc *command.SlashInteractionContext) error {
	s, e := sc.Session, sc.Event
	url := command.StringOption(e, "url")

	if reference.Classify(url).Kind == reference.Invalid {
		return bot.RespondEphemeral(s, e, sources.UserMessage(sources.ErrInvalidReference))
	}

	session := c.Bot.GetOrCreateSession(e.GuildID)
	var voiceChannel string
	if !session.Connected() {
		vs, err := c.Bot.FindUserVoiceState(e.GuildID, command.InvokingUser(e).ID)
		if err != nil {
			return bot.RespondEphemeral(s, e, msgJoinVoiceFirst)
		}
		voiceChannel = vs.ChannelID
	}

	if err := bot.RespondDeferred(s, e); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	if voiceChannel != "" {
		if _, err := c.Bot.JoinVoice(e.GuildID, voiceChannel); err != nil {
			_ = bot.FollowupEphemeral(s, e, msgVoiceJoinFailed)
			return fmt.Errorf("join voice: %w", err)
		}
	}

	ch := bot.NewInteractionChannel(s, e)
	log := logging.Component("play").With().Str("guild", e.GuildID).Str("url", url).Logger()

	err := c.Bot.StartPlayback(e.GuildID, func(jobCtx context.Context) error {
		err := session.Play(jobCtx, url, ch)
		if err == nil {
			return nil
		}
		log.Warn().Err(err).Msg("play failed")
		if errors.Is(err, context.Canceled) {
			return err
		}
		if ferr := ch.Fail(jobCtx, sources.UserMessage(err)); ferr != nil {
			log.Warn().Err(ferr).Msg("failed to report play error")
		}
		return err
	})
	if err != nil {
		return bot.FollowupEphemeral(s, e, playbackRejected(err))
	}
	return nil
}
