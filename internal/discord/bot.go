// Package discord connects the command registry to the Discord gateway.
package discord

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/keshon/invisible-bot/internal/command/invisible"
	"github.com/keshon/invisible-bot/internal/config"
	"github.com/keshon/invisible-bot/internal/middleware"
	"github.com/keshon/invisible-bot/internal/storage"
	"github.com/keshon/invisible-bot/pkg/cmd"
)

// Intents the bot needs: guild roles and channels, plus members for role
// assignment and member counts.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

// Bot owns the gateway session and the command registry.
type Bot struct {
	dg         *discordgo.Session
	cfg        *config.Config
	storage    *storage.Storage
	log        *zap.Logger
	registry   *cmd.Registry
	dispatcher *Dispatcher

	ctx       context.Context
	connected atomic.Bool
}

// NewRegistry returns a registry with every command behind the journal,
// guild-only and administrator middlewares.
func NewRegistry() (*cmd.Registry, error) {
	reg := cmd.NewRegistry()
	err := invisible.Register(reg,
		middleware.WithCommandLogger(),
		middleware.WithGuildOnly(),
		middleware.WithAdministrator(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}
	return reg, nil
}

// NewBot prepares a session for cfg. st may be nil.
func NewBot(cfg *config.Config, st *storage.Storage, log *zap.Logger) (*Bot, error) {
	if err := cfg.CheckBot(); err != nil {
		return nil, err
	}

	dg, err := discordgo.New("Bot " + cfg.Token())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = Intents
	dg.LogLevel = discordgo.LogWarning

	reg, err := NewRegistry()
	if err != nil {
		return nil, err
	}

	b := &Bot{
		dg:       dg,
		cfg:      cfg,
		storage:  st,
		log:      log,
		registry: reg,
		ctx:      context.Background(),
	}
	b.dispatcher = NewDispatcher(reg, liveSession{dg}, st, log)

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onConnect)
	dg.AddHandler(b.onDisconnect)
	dg.AddHandler(b.onResumed)
	dg.AddHandler(b.onInteractionCreate)
	return b, nil
}

// Connected reports whether the gateway session is ready.
func (b *Bot) Connected() bool {
	return b != nil && b.connected.Load()
}

// Run opens the gateway and blocks until ctx is done, then closes the session.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx

	b.log.Info("Attempting to login", zap.String("token", b.cfg.MaskedToken()))
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	<-ctx.Done()
	b.log.Info("Shutdown signal received, closing Discord session")
	b.connected.Store(false)
	if err := b.dg.Close(); err != nil {
		return fmt.Errorf("failed to close Discord session: %w", err)
	}
	return nil
}
