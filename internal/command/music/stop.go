package music

import (
	"context"

	"github.com/keshon/domme-music/internal/bot"
	"github.com/keshon/domme-music/internal/command"

	"github.com/bwmarrin/discordgo"
)

type StopCommand struct {
	Bot bot.BotVoice
}

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop the music." }
func (c *StopCommand) Category() string    { return category }
func (c *StopCommand) GuildOnly() bool     { return true }

func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *StopCommand) Run(ctx context.Context, sc *command.SlashInteractionContext) error {
	s, e := sc.Session, sc.Event

	session := c.Bot.GetOrCreateSession(e.GuildID)
	if !session.Connected() {
		return bot.RespondEphemeral(s, e, msgNotConnected)
	}

	stopErr := session.Stop()
	if err := bot.Respond(s, e, msgStopped); err != nil {
		return err
	}
	return stopErr
}
