package middleware

import (
	"context"
	"fmt"

	"github.com/keshon/invisible-bot/internal/command"
	"github.com/keshon/invisible-bot/pkg/cmd"
)

const guildOnlyMessage = "❌ This command can only be used in a server."

// WithGuildOnly refuses commands invoked outside a guild (e.g. in DMs).
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			v, ok := inv.Data.(*command.SlashInteractionContext)
			if !ok || v.Event.GuildID != "" {
				return c.Run(ctx, inv)
			}
			if err := v.RespondEphemeral(ctx, guildOnlyMessage); err != nil {
				return err
			}
			return fmt.Errorf("/%s outside a guild: %w", c.Name(), command.ErrRejected)
		})
	}
}
