package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/keshon/invisible-bot/internal/config"
	"github.com/keshon/invisible-bot/internal/discord"
	"github.com/keshon/invisible-bot/internal/health"
	"github.com/keshon/invisible-bot/internal/logger"
	"github.com/keshon/invisible-bot/internal/storage"
	v "github.com/keshon/invisible-bot/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck
	logger.RedirectDiscordgo(log)

	log.Info("Starting "+v.AppName, zap.String("version", v.AppVersion))
	log.Debug("Environment",
		zap.Bool("discord_token", cfg.DiscordToken != ""),
		zap.Bool("discord_bot_token", cfg.DiscordBotToken != ""),
		zap.Bool("client_id", cfg.ClientID != ""),
		zap.Bool("guild_id", cfg.GuildID != ""),
		zap.Int("port", cfg.Port),
		zap.String("env_file", cfg.EnvFile),
	)
	if tok := cfg.Token(); tok != "" {
		log.Debug("Token", zap.Int("length", len(tok)), zap.String("prefix", cfg.MaskedToken()), zap.String("source", cfg.TokenSource()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := newApp(ctx, cfg, log)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	err = app.run(ctx, sig)
	cancel()
	app.wait()
	app.close()

	if err != nil {
		log.Error("Service failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info(v.AppName + " exited cleanly")
}

type runner interface {
	Run(ctx context.Context) error
}

// service is a long-running part of the process, stopped by ctx.
type service struct {
	name string
	runner
}

type serviceError struct {
	name string
	err  error
}

// app holds the long-lived handles of the process.
type app struct {
	log      *zap.Logger
	storage  *storage.Storage
	services []service

	wg sync.WaitGroup
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) *app {
	a := &app{log: log}

	st, err := storage.New(ctx, cfg.StoragePath)
	if err != nil {
		log.Warn("Command journal disabled", zap.String("path", cfg.StoragePath), zap.Error(err))
	} else {
		a.storage = st
	}

	var status health.BotStatus
	bot, err := discord.NewBot(cfg, a.storage, log)
	switch {
	case errors.Is(err, config.ErrMissingToken), errors.Is(err, config.ErrMissingIDs):
		log.Error("Bot login skipped, health server continues", zap.Error(err))
	case err != nil:
		log.Error("Bot setup failed, health server continues", zap.Error(err))
	default:
		status = bot
	}

	a.services = append(a.services, service{name: "health server", runner: health.NewServer(cfg.HealthAddr(), status, log)})
	if status != nil {
		a.services = append(a.services, service{name: "bot", runner: bot})
	}
	return a
}

// start launches every service. The returned channel carries services that
// stopped with an error before ctx was done.
func (a *app) start(ctx context.Context) <-chan serviceError {
	errCh := make(chan serviceError, len(a.services))
	for _, s := range a.services {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := s.Run(ctx); err != nil {
				errCh <- serviceError{name: s.name, err: err}
			}
		}()
	}
	return errCh
}

// run blocks until a signal arrives or no service is left running. A failed
// service is logged while another one still runs.
func (a *app) run(ctx context.Context, sig <-chan os.Signal) error {
	errCh := a.start(ctx)
	running := len(a.services)

	for {
		select {
		case s := <-sig:
			a.log.Info("Received signal, shutting down gracefully", zap.String("signal", s.String()))
			return nil
		case se := <-errCh:
			running--
			if running == 0 {
				return fmt.Errorf("%s: %w", se.name, se.err)
			}
			a.log.Error("Service stopped, process keeps running", zap.String("service", se.name), zap.Error(se.err))
		}
	}
}

func (a *app) wait() {
	a.wg.Wait()
}

// close runs after ctx is cancelled, so the journal's saver has stopped.
func (a *app) close() {
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			a.log.Warn("Failed to close storage", zap.Error(err))
		}
	}
}
