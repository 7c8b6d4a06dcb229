package discord

import (
	"fmt"

	"github.com/keshon/domme-music/internal/command"

	"github.com/bwmarrin/discordgo"
)

// definitions collects the slash definitions of every registered command.
func (b *Bot) definitions() []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range b.registry.All() {
		if def := command.Definition(c); def != nil {
			defs = append(defs, def)
		}
	}
	return defs
}

// registerCommands pushes the command set to guildID, or globally when
// guildID is empty. Unchanged sets are skipped.
func (b *Bot) registerCommands(appID, guildID string) error {
	defs := b.definitions()
	hash := hashCommands(defs)
	log := b.log.With().Str("guild", guildID).Logger()

	if b.cache.load(appID, guildID) == hash {
		log.Info().Int("commands", len(defs)).Msg("slash commands unchanged, skipping registration")
		return nil
	}

	created, err := b.dg.ApplicationCommandBulkOverwrite(appID, guildID, defs)
	if err != nil {
		return fmt.Errorf("overwrite commands: %w", err)
	}
	if err := b.cache.save(appID, guildID, hash); err != nil {
		log.Warn().Err(err).Msg("failed to save command cache")
	}
	log.Info().Int("commands", len(created)).Msg("slash commands registered")
	return nil
}
