package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/keshon/invisible-bot/internal/command"
	"github.com/keshon/invisible-bot/internal/storage"
	"github.com/keshon/invisible-bot/pkg/cmd"
)

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// WithCommandLogger logs every execution and appends it to the guild's journal.
// Journal failures are logged and never change the command's result.
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			v, ok := inv.Data.(*command.SlashInteractionContext)
			if !ok {
				return err
			}

			outcome := OutcomeOK
			switch {
			case errors.Is(err, command.ErrRejected):
				outcome = OutcomeRejected
			case err != nil:
				outcome = OutcomeError
			}

			user := v.Invoker()
			if v.Logger != nil {
				v.Logger.Info("Command executed",
					zap.String("command", c.Name()),
					zap.String("guild", v.Event.GuildID),
					zap.String("user_id", user.ID),
					zap.String("outcome", outcome),
					zap.Duration("took", time.Since(start)),
				)
			}

			if v.Storage != nil && v.Event.GuildID != "" {
				rec := storage.CommandRecord{
					ChannelID: v.Event.ChannelID,
					UserID:    user.ID,
					Username:  command.UserTag(user),
					Command:   c.Name(),
					Options:   describeOptions(v.Event),
					Outcome:   outcome,
					Datetime:  time.Now().UTC(),
				}
				if jerr := v.Storage.AppendCommand(v.Event.GuildID, rec); jerr != nil && v.Logger != nil {
					v.Logger.Warn("Failed to journal command", zap.String("command", c.Name()), zap.Error(jerr))
				}
			}
			return err
		})
	}
}

// describeOptions renders options as "name=value" pairs for the journal.
func describeOptions(e *discordgo.InteractionCreate) string {
	if e.Type != discordgo.InteractionApplicationCommand {
		return ""
	}
	var parts []string
	for _, opt := range e.ApplicationCommandData().Options {
		if opt.Value == nil {
			continue
		}
		if s, ok := opt.Value.(string); ok {
			parts = append(parts, opt.Name+"="+s)
		}
	}
	return strings.Join(parts, " ")
}
