package music

import (
	"context"
	"fmt"

	"github.com/keshon/domme-music/internal/bot"
	"github.com/keshon/domme-music/internal/command"

	"github.com/bwmarrin/discordgo"
)

type JoinCommand struct {
	Bot bot.BotVoice
}

func (c *JoinCommand) Name() string        { return "join" }
func (c *JoinCommand) Description() string { return "Join a voice channel." }
func (c *JoinCommand) Category() string    { return category }
func (c *JoinCommand) GuildOnly() bool     { return true }

func (c *JoinCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *JoinCommand) Run(ctx context.Context, sc *command.SlashInteractionContext) error {
	s, e := sc.Session, sc.Event

	vs, err := c.Bot.FindUserVoiceState(e.GuildID, command.InvokingUser(e).ID)
	if err != nil {
		return bot.RespondEphemeral(s, e, msgJoinVoiceFirst)
	}

	if c.Bot.GetOrCreateSession(e.GuildID).Connected() {
		return bot.Respond(s, e, msgAlreadyJoined)
	}

	// joining can take several seconds, longer than the interaction deadline
	if err := bot.RespondDeferred(s, e); err != nil {
		return fmt.Errorf("failed to defer response: %w", err)
	}

	name, err := c.Bot.JoinVoice(e.GuildID, vs.ChannelID)
	if err != nil {
		_ = bot.FollowupEphemeral(s, e, msgVoiceJoinFailed)
		return fmt.Errorf("join voice: %w", err)
	}
	return bot.Followup(s, e, fmt.Sprintf("Joined %s.", name))
}
