// Package middleware holds the cross-cutting wrappers applied to every slash
// command at registration.
package middleware

import (
	"context"
	"time"

	"github.com/keshon/domme-music/internal/bot"
	"github.com/keshon/domme-music/internal/command"
	"github.com/keshon/domme-music/internal/logging"
	"github.com/keshon/domme-music/pkg/cmd"
)

const msgGuildOnly = "This command only works inside a server."

// respondEphemeral is swapped out in tests.
var respondEphemeral = func(sc *command.SlashInteractionContext, content string) error {
	return bot.RespondEphemeral(sc.Session, sc.Event, content)
}

// WithGuildOnly answers DM invocations of guild-only commands with a short
// notice instead of running them.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			meta, ok := command.Meta(c)
			if !ok || !meta.GuildOnly() {
				return c.Run(ctx, inv)
			}
			sc, ok := cmd.DataAs[*command.SlashInteractionContext](inv)
			if ok && sc.Event != nil && sc.Event.GuildID == "" {
				return respondEphemeral(sc, msgGuildOnly)
			}
			return c.Run(ctx, inv)
		})
	}
}

// WithCommandLogger logs every slash command run with who ran it, where and
// how it ended.
func WithCommandLogger() cmd.Middleware {
	log := logging.Component("command")
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			ev := log.Info()
			if err != nil {
				ev = log.Warn().Err(err)
			}
			ev = ev.Str("command", c.Name()).Dur("took", time.Since(start))
			if sc, ok := cmd.DataAs[*command.SlashInteractionContext](inv); ok && sc.Event != nil {
				user := command.InvokingUser(sc.Event)
				ev = ev.Str("guild", sc.Event.GuildID).
					Str("channel", sc.Event.ChannelID).
					Str("user_id", user.ID).
					Str("user", user.Username)
			}
			ev.Msg("command handled")
			return err
		})
	}
}

// Timer is the part of the metrics registry the command middleware uses.
type Timer interface {
	CommandTimer(command string) func(error)
}

// WithMetrics records the count and duration of every run.
func WithMetrics(m Timer) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		if m == nil {
			return c
		}
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			done := m.CommandTimer(c.Name())
			err := c.Run(ctx, inv)
			done(err)
			return err
		})
	}
}
