package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var (
	ErrMissingToken = errors.New("no bot token found in DISCORD_TOKEN or DISCORD_BOT_TOKEN")
	ErrMissingIDs   = errors.New("missing CLIENT_ID or GUILD_ID")
)

// Config is read from the process environment, optionally seeded from a .env file.
type Config struct {
	DiscordToken    string `env:"DISCORD_TOKEN"`
	DiscordBotToken string `env:"DISCORD_BOT_TOKEN"`
	ClientID        string `env:"CLIENT_ID"`
	GuildID         string `env:"GUILD_ID"`

	Port              int    `env:"PORT" envDefault:"3000" validate:"gte=1,lte=65535"`
	StoragePath       string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFile           string `env:"LOG_FILE"`
	InitSlashCommands bool   `env:"INIT_SLASH_COMMANDS" envDefault:"true"`

	// EnvFile is the .env file that was loaded, empty when none was found.
	EnvFile string
}

// Load reads .env (when present) and parses the environment into a Config.
// Missing credentials are not an error here; see CheckBot.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	var loaded string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
		loaded = f
		break
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.EnvFile = loaded

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Token returns the bot token; DISCORD_TOKEN wins over DISCORD_BOT_TOKEN.
func (c *Config) Token() string {
	if c.DiscordToken != "" {
		return c.DiscordToken
	}
	return c.DiscordBotToken
}

// TokenSource names the variable Token was taken from.
func (c *Config) TokenSource() string {
	switch {
	case c.DiscordToken != "":
		return "DISCORD_TOKEN"
	case c.DiscordBotToken != "":
		return "DISCORD_BOT_TOKEN"
	default:
		return ""
	}
}

// MaskedToken is safe to log: the first ten characters only.
func (c *Config) MaskedToken() string {
	t := c.Token()
	if len(t) <= 10 {
		return "***"
	}
	return t[:10] + "..."
}

// CheckBot reports why the bot must not log in, or nil when it can.
func (c *Config) CheckBot() error {
	if c.Token() == "" {
		return ErrMissingToken
	}
	if c.ClientID == "" || c.GuildID == "" {
		return ErrMissingIDs
	}
	return nil
}

// HealthAddr is the listen address of the health server, on all interfaces.
func (c *Config) HealthAddr() string {
	return net.JoinHostPort("0.0.0.0", strconv.Itoa(c.Port))
}
