package invisible

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/invisible-bot/internal/command"
)

var hexColor = regexp.MustCompile(`(?i)^#[0-9A-F]{6}$`)

// ParseColor validates a "#RRGGBB" string and returns its integer value.
func ParseColor(s string) (int, bool) {
	if !hexColor.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseInt(s[1:], 16, 32)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

type CreateRoleCommand struct{}

func (c *CreateRoleCommand) Kind() command.Kind  { return command.KindCreateInvisibleRole }
func (c *CreateRoleCommand) Description() string { return "Create an invisible role" }

func (c *CreateRoleCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Kind().String(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "name",
				Description: "Name of the invisible role",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "color",
				Description: "Hex color code for the role (e.g., #ff0000)",
				Required:    false,
			},
		},
	}
}

func (c *CreateRoleCommand) Run(ctx context.Context, sc *command.SlashInteractionContext) error {
	opts := command.ParseOptions(sc.Event.ApplicationCommandData())
	name := strings.TrimSpace(opts.String("name"))
	colorHex := opts.String("color")

	if name == "" {
		if err := sc.RespondEphemeral(ctx, "❌ Role name cannot be empty."); err != nil {
			return err
		}
		return fmt.Errorf("empty role name: %w", command.ErrRejected)
	}

	params := &discordgo.RoleParams{
		Name:        name,
		Hoist:       new(bool),
		Mentionable: new(bool),
		Permissions: new(int64),
	}

	colorLabel := "Default"
	if colorHex != "" {
		color, ok := ParseColor(colorHex)
		if !ok {
			if err := sc.RespondEphemeral(ctx, "❌ Invalid color format. Please use hex format like #ff0000"); err != nil {
				return err
			}
			return fmt.Errorf("invalid color %q: %w", colorHex, command.ErrRejected)
		}
		params.Color = &color
		colorLabel = colorHex
	}

	reason := "Invisible role created by " + command.UserTag(sc.Invoker())
	role, err := sc.Session.GuildRoleCreate(sc.Event.GuildID, params,
		discordgo.WithAuditLogReason(reason), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to create role %q: %w", name, err)
	}

	return sc.RespondEphemeral(ctx, fmt.Sprintf(
		"✅ Created invisible role: **%s**\n"+
			"📋 Role ID: `%s`\n"+
			"🎨 Color: %s\n"+
			"👻 This role is invisible (not hoisted) and non-mentionable.",
		role.Name, role.ID, colorLabel))
}
