package command

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/keshon/invisible-bot/internal/storage"
	"github.com/keshon/invisible-bot/pkg/cmd"
)

// Session is the part of the Discord API the commands use. *discordgo.Session
// satisfies it once CachedGuild is added (see internal/discord).
type Session interface {
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)

	// CachedGuild returns the guild with its roles, channels and members as
	// currently known to the gateway cache.
	CachedGuild(guildID string) (*discordgo.Guild, error)
}

// SlashInteractionContext is what the runtime passes when executing a slash command.
type SlashInteractionContext struct {
	Session Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage // nil when the journal is disabled
	Logger  *zap.Logger

	replied atomic.Bool
}

// Replied reports whether the initial interaction response was sent.
func (c *SlashInteractionContext) Replied() bool { return c.replied.Load() }

// RespondEphemeral sends the initial response, visible to the invoker only.
func (c *SlashInteractionContext) RespondEphemeral(ctx context.Context, content string) error {
	err := c.Session.InteractionRespond(c.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to respond to interaction: %w", err)
	}
	c.replied.Store(true)
	return nil
}

// FollowupEphemeral sends an additional ephemeral message after the initial response.
func (c *SlashInteractionContext) FollowupEphemeral(ctx context.Context, content string) error {
	_, err := c.Session.FollowupMessageCreate(c.Event.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send followup: %w", err)
	}
	return nil
}

// ReplyEphemeral answers the interaction: as the initial response when none was
// sent yet, as a followup otherwise.
func (c *SlashInteractionContext) ReplyEphemeral(ctx context.Context, content string) error {
	if c.Replied() {
		return c.FollowupEphemeral(ctx, content)
	}
	return c.RespondEphemeral(ctx, content)
}

// Invoker is the user who ran the command.
func (c *SlashInteractionContext) Invoker() *discordgo.User {
	if c.Event.Member != nil && c.Event.Member.User != nil {
		return c.Event.Member.User
	}
	if c.Event.User != nil {
		return c.Event.User
	}
	return &discordgo.User{ID: "unknown", Username: "Unknown"}
}

// SlashProvider is how a command describes itself to Discord.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// DiscordCommand is what the individual commands implement.
type DiscordCommand interface {
	SlashProvider
	Kind() Kind
	Description() string
	Run(ctx context.Context, sc *SlashInteractionContext) error
}

// DiscordAdapter adapts a DiscordCommand to cmd.Command so it can live in the
// universal registry.
type DiscordAdapter struct {
	Cmd DiscordCommand
}

func (a *DiscordAdapter) Name() string        { return a.Cmd.Kind().String() }
func (a *DiscordAdapter) Description() string { return a.Cmd.Description() }
func (a *DiscordAdapter) Kind() Kind          { return a.Cmd.Kind() }

func (a *DiscordAdapter) SlashDefinition() *discordgo.ApplicationCommand {
	return a.Cmd.SlashDefinition()
}

func (a *DiscordAdapter) Run(ctx context.Context, inv *cmd.Invocation) error {
	sc, ok := inv.Data.(*SlashInteractionContext)
	if !ok {
		return fmt.Errorf("%s: %w (%T)", a.Name(), cmd.ErrUnsupportedInvocation, inv.Data)
	}
	return a.Cmd.Run(ctx, sc)
}

// RegisterCommand adds a Discord command to reg with middlewares applied, first
// middleware outermost.
func RegisterCommand(reg *cmd.Registry, discordCmd DiscordCommand, mws ...cmd.Middleware) error {
	return reg.Register(cmd.Apply(&DiscordAdapter{Cmd: discordCmd}, mws...))
}

// Definitions returns the slash definitions of every registered command.
func Definitions(reg *cmd.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range reg.All() {
		sp, ok := cmd.Root(c).(SlashProvider)
		if !ok {
			continue
		}
		if def := sp.SlashDefinition(); def != nil {
			if def.Type == 0 {
				def.Type = discordgo.ChatApplicationCommand
			}
			defs = append(defs, def)
		}
	}
	return defs
}
