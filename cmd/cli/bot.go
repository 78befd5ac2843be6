package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/invisible-bot/internal/command"
	"github.com/keshon/invisible-bot/internal/perms"
)

// applicationID extracts the bot's user id, which equals its application id,
// from the first segment of a bot token.
func applicationID(token string) (string, error) {
	token = strings.TrimPrefix(strings.TrimSpace(token), "Bot ")
	first, _, ok := strings.Cut(token, ".")
	if !ok || first == "" {
		return "", errors.New("token does not look like a bot token")
	}
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(first, "="))
	if err != nil {
		return "", fmt.Errorf("failed to decode token: %w", err)
	}
	id := string(raw)
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", errors.New("token does not encode an application id")
		}
	}
	return id, nil
}

type BotinfoCmd struct{}

func (c *BotinfoCmd) Run(g *Globals) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	token := cfg.Token()
	if token == "" {
		return errors.New("no bot token: set DISCORD_TOKEN or DISCORD_BOT_TOKEN")
	}

	id, err := applicationID(token)
	if err != nil {
		return err
	}
	bits, _ := perms.Preset("invisible")

	fmt.Fprintf(g.out, "Token source: %s (%s)\n", cfg.TokenSource(), cfg.MaskedToken())
	fmt.Fprintf(g.out, "Application id: %s\n\n", id)
	fmt.Fprintln(g.out, "Set these variables:")
	fmt.Fprintf(g.out, "  CLIENT_ID=%s\n", id)
	if cfg.GuildID != "" {
		fmt.Fprintf(g.out, "  GUILD_ID=%s\n", cfg.GuildID)
	} else {
		fmt.Fprintln(g.out, "  GUILD_ID=<your server id>")
	}
	fmt.Fprintln(g.out)
	fmt.Fprintln(g.out, "Invite:")
	fmt.Fprintln(g.out, perms.InviteURL(id, bits, cfg.GuildID))
	return nil
}

type StatusCmd struct{}

func (c *StatusCmd) Run(g *Globals) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	if cfg.Token() == "" {
		return errors.New("no bot token: set DISCORD_TOKEN or DISCORD_BOT_TOKEN")
	}

	s, err := discordgo.New("Bot " + cfg.Token())
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	me, err := s.User("@me")
	if err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}
	guilds, err := s.UserGuilds(200, "", "", false)
	if err != nil {
		return fmt.Errorf("failed to list guilds: %w", err)
	}

	fmt.Fprintf(g.out, "Bot: %s (%s)\n", command.UserTag(me), me.ID)
	fmt.Fprintf(g.out, "Servers: %d\n", len(guilds))
	found := false
	for _, ug := range guilds {
		marker := " "
		if ug.ID == cfg.GuildID {
			marker = "*"
			found = true
		}
		fmt.Fprintf(g.out, " %s %s (%s)\n", marker, ug.Name, ug.ID)
	}
	if cfg.GuildID != "" && !found {
		fmt.Fprintf(g.out, "\nThe bot is not in GUILD_ID %s; invite it first.\n", cfg.GuildID)
	}
	return nil
}
