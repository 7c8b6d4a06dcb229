package command

import (
	"context"
	"errors"

	"github.com/keshon/domme-music/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// SlashInteractionContext is what the gateway passes to a slash command.
type SlashInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
}

// SlashProvider describes how a command is registered with Discord.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// DiscordMeta lets middleware read command metadata through wrappers.
type DiscordMeta interface {
	Category() string
	GuildOnly() bool
}

// DiscordCommand is implemented by every slash command.
type DiscordCommand interface {
	Name() string
	Description() string
	Category() string
	GuildOnly() bool
	SlashDefinition() *discordgo.ApplicationCommand
	Run(ctx context.Context, sc *SlashInteractionContext) error
}

// DiscordAdapter lets a DiscordCommand live in a cmd.Registry.
type DiscordAdapter struct {
	Cmd DiscordCommand
}

func (a *DiscordAdapter) Name() string        { return a.Cmd.Name() }
func (a *DiscordAdapter) Description() string { return a.Cmd.Description() }
func (a *DiscordAdapter) Category() string    { return a.Cmd.Category() }
func (a *DiscordAdapter) GuildOnly() bool     { return a.Cmd.GuildOnly() }

func (a *DiscordAdapter) SlashDefinition() *discordgo.ApplicationCommand {
	return a.Cmd.SlashDefinition()
}

func (a *DiscordAdapter) Run(ctx context.Context, inv *cmd.Invocation) error {
	sc, ok := cmd.DataAs[*SlashInteractionContext](inv)
	if !ok {
		return errors.New("slash command invoked without an interaction")
	}
	return a.Cmd.Run(ctx, sc)
}

// Register adds dc to r wrapped in mws.
func Register(r *cmd.Registry, dc DiscordCommand, mws ...cmd.Middleware) error {
	return r.Register(cmd.Apply(&DiscordAdapter{Cmd: dc}, mws...))
}

// Definition returns the slash definition of c, looking through middleware.
func Definition(c cmd.Command) *discordgo.ApplicationCommand {
	sp, ok := cmd.Root(c).(SlashProvider)
	if !ok {
		return nil
	}
	def := sp.SlashDefinition()
	if def != nil && def.Type == 0 {
		def.Type = discordgo.ChatApplicationCommand
	}
	return def
}

// Meta returns the metadata of c, looking through middleware.
func Meta(c cmd.Command) (DiscordMeta, bool) {
	m, ok := cmd.Root(c).(DiscordMeta)
	return m, ok
}

// StringOption returns the value of a top-level string option.
func StringOption(e *discordgo.InteractionCreate, name string) string {
	if e == nil || e.Interaction == nil || e.Type != discordgo.InteractionApplicationCommand {
		return ""
	}
	for _, opt := range e.ApplicationCommandData().Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

// InvokingUser returns the member's user for guild interactions and the
// plain user for DMs.
func InvokingUser(e *discordgo.InteractionCreate) *discordgo.User {
	if e.Member != nil && e.Member.User != nil {
		return e.Member.User
	}
	if e.User != nil {
		return e.User
	}
	return &discordgo.User{ID: "unknown", Username: "Unknown"}
}
