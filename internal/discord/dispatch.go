package discord

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/keshon/invisible-bot/internal/command"
	"github.com/keshon/invisible-bot/internal/storage"
	"github.com/keshon/invisible-bot/pkg/cmd"
)

const genericErrorMessage = "❌ An error occurred while executing the command."

// Dispatcher routes slash interactions to registered commands.
type Dispatcher struct {
	registry *cmd.Registry
	session  command.Session
	storage  *storage.Storage
	log      *zap.Logger
}

func NewDispatcher(reg *cmd.Registry, s command.Session, st *storage.Storage, log *zap.Logger) *Dispatcher {
	return &Dispatcher{registry: reg, session: s, storage: st, log: log}
}

// Handle runs the command named by the interaction. Failures are logged and
// answered with a generic ephemeral message; commands that already answered a
// rejection are left alone.
func (d *Dispatcher) Handle(ctx context.Context, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.CommandType != 0 && data.CommandType != discordgo.ChatApplicationCommand {
		return
	}

	kind, ok := command.ParseKind(data.Name)
	if !ok {
		d.log.Warn("Unknown command", zap.String("command", data.Name), zap.String("guild", i.GuildID))
		return
	}
	c, ok := d.registry.Get(kind.String())
	if !ok {
		d.log.Error("No handler registered", zap.Stringer("kind", kind))
		return
	}

	sc := &command.SlashInteractionContext{
		Session: d.session,
		Event:   i,
		Storage: d.storage,
		Logger:  d.log,
	}

	err := run(ctx, c, sc)
	if err == nil || errors.Is(err, command.ErrRejected) {
		return
	}

	d.log.Error("Error handling command",
		zap.String("command", data.Name),
		zap.String("guild", i.GuildID),
		zap.Error(err),
	)
	if rerr := sc.ReplyEphemeral(ctx, genericErrorMessage); rerr != nil {
		d.log.Error("Failed to report command error", zap.String("command", data.Name), zap.Error(rerr))
	}
}

func run(ctx context.Context, c cmd.Command, sc *command.SlashInteractionContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in /%s: %v\n%s", c.Name(), r, debug.Stack())
		}
	}()
	return c.Run(ctx, &cmd.Invocation{Data: sc})
}
