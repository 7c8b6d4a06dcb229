package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	GuildID      string `env:"DISCORD_GUILD_ID"`

	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`

	ChatLogPath string `env:"CHAT_LOG_PATH" envDefault:"Chat.logs"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"console"`
	MetricsAddr string `env:"METRICS_ADDR"`

	CommandCacheDir string `env:"COMMAND_CACHE_DIR" envDefault:"data/commands"`

	PollInterval     time.Duration `env:"PLAYBACK_POLL_INTERVAL" envDefault:"1s"`
	ResolverBackends []string      `env:"RESOLVER_BACKENDS" envDefault:"ytdlp,kkdai" envSeparator:","`
	YTDLPAgeLimit    int           `env:"YTDLP_AGE_LIMIT" envDefault:"0"`
	KKDAIProxy       string        `env:"KKDAI_PROXY"`

	AudioInputOptions  string   `env:"AUDIO_INPUT_OPTIONS"`
	AudioOutputOptions string   `env:"AUDIO_OUTPUT_OPTIONS"`
	AudioFilters       []string `env:"AUDIO_FILTERS" envSeparator:","`
}

// Load reads the bot configuration. The Discord token and the Spotify
// credentials are required.
func Load() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	var missing []string
	if cfg.DiscordToken == "" {
		missing = append(missing, "DISCORD_TOKEN")
	}
	if cfg.SpotifyClientID == "" {
		missing = append(missing, "SPOTIFY_CLIENT_ID")
	}
	if cfg.SpotifyClientSecret == "" {
		missing = append(missing, "SPOTIFY_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("config: %s not set", strings.Join(missing, ", "))
	}
	return cfg, nil
}

// Parse reads the environment without requiring any credentials.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("config: PLAYBACK_POLL_INTERVAL must be positive, got %s", cfg.PollInterval)
	}
	if cfg.YTDLPAgeLimit < 0 {
		return nil, fmt.Errorf("config: YTDLP_AGE_LIMIT must not be negative, got %d", cfg.YTDLPAgeLimit)
	}
	return &cfg, nil
}
