package middleware

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/keshon/invisible-bot/internal/command"
	"github.com/keshon/invisible-bot/pkg/cmd"
)

const adminRequiredMessage = "❌ You need Administrator permissions to use this command."

// IsAdministrator reports whether the interaction's member holds the
// Administrator permission. Discord computes Member.Permissions for the
// invoking member on every interaction, owner and role grants included.
func IsAdministrator(m *discordgo.Member) bool {
	return m != nil && m.Permissions&discordgo.PermissionAdministrator != 0
}

// WithAdministrator rejects invokers without the Administrator permission
// before the command runs.
func WithAdministrator() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			v, ok := inv.Data.(*command.SlashInteractionContext)
			if !ok {
				return c.Run(ctx, inv)
			}
			if IsAdministrator(v.Event.Member) {
				return c.Run(ctx, inv)
			}

			if v.Logger != nil {
				user := v.Invoker()
				v.Logger.Info("Rejected non-administrator",
					zap.String("command", c.Name()),
					zap.String("guild", v.Event.GuildID),
					zap.String("user_id", user.ID),
				)
			}
			if err := v.RespondEphemeral(ctx, adminRequiredMessage); err != nil {
				return err
			}
			return fmt.Errorf("/%s requires administrator: %w", c.Name(), command.ErrRejected)
		})
	}
}
