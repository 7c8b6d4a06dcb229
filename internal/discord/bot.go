package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/keshon/domme-music/internal/chatlog"
	"github.com/keshon/domme-music/internal/command"
	"github.com/keshon/domme-music/internal/command/music"
	"github.com/keshon/domme-music/internal/config"
	"github.com/keshon/domme-music/internal/logging"
	"github.com/keshon/domme-music/internal/metrics"
	"github.com/keshon/domme-music/internal/middleware"
	"github.com/keshon/domme-music/internal/music/player"
	"github.com/keshon/domme-music/internal/music/sources"
	"github.com/keshon/domme-music/internal/music/stream"
	"github.com/keshon/domme-music/pkg/cmd"
	"github.com/keshon/domme-music/pkg/jobmgr"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Deps are the services the bot hands to every guild session.
type Deps struct {
	Resolver sources.Resolver
	Catalog  sources.Catalog
	Filters  stream.FilterConfig
	Metrics  *metrics.Metrics
	ChatLog  *chatlog.Logger
}

// Bot is the Discord side of the music bot. It owns one playback session
// per guild.
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	deps     Deps
	registry *cmd.Registry
	cache    *commandCache
	log      zerolog.Logger

	ctx  context.Context
	jobs *jobmgr.Manager

	mu       sync.Mutex
	sessions map[string]*player.Session
}

func New(cfg *config.Config, deps Deps) (*Bot, error) {
	b := &Bot{
		cfg:      cfg,
		deps:     deps,
		registry: cmd.NewRegistry(),
		cache:    newCommandCache(cfg.CommandCacheDir),
		log:      logging.Component("discord"),
		ctx:      context.Background(),
		sessions: make(map[string]*player.Session),
	}

	b.jobs = jobmgr.NewManager(b.ctx, b.reportJob)

	mws := []cmd.Middleware{middleware.WithGuildOnly(), middleware.WithCommandLogger()}
	if deps.Metrics != nil {
		mws = append(mws, middleware.WithMetrics(deps.Metrics))
	}
	if err := music.Register(b.registry, b, mws...); err != nil {
		return nil, fmt.Errorf("register commands: %w", err)
	}
	return b, nil
}

// Run connects to Discord and blocks until ctx is cancelled. Running
// playback jobs are stopped and every voice connection is closed before it
// returns.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg
	b.ctx = ctx
	b.jobs = jobmgr.NewManager(ctx, b.reportJob)

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onMessageCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, cleaning up")

	b.jobs.StopAll()
	var errs []error
	for _, s := range b.allSessions() {
		if err := s.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("guild %s: %w", s.GuildID(), err))
		}
	}
	b.jobs.Wait()

	if err := dg.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close session: %w", err))
	}
	return errors.Join(errs...)
}

func (b *Bot) reportJob(event string) {
	b.log.Debug().Str("event", event).Msg("playback job")
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if err := b.registerCommands(r.User.ID, b.cfg.GuildID); err != nil {
		b.log.Error().Err(err).Str("guild", b.cfg.GuildID).Msg("failed to register slash commands")
	}
	b.log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("discord bot is running")
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	name := i.ApplicationCommandData().Name
	c, ok := b.registry.Get(name)
	if !ok {
		b.log.Warn().Str("command", name).Msg("unknown command")
		return
	}

	inv := &cmd.Invocation{Data: &command.SlashInteractionContext{Session: s, Event: i}}
	// commands answer the user themselves; the logger middleware records errors
	_ = c.Run(b.ctx, inv)
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if b.deps.ChatLog == nil || m.Author == nil || m.Author.Bot {
		return
	}
	if err := b.deps.ChatLog.Append(m.Author.Username, m.Content); err != nil {
		b.log.Warn().Err(err).Msg("failed to append chat log")
	}
}
