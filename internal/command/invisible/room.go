package invisible

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/invisible-bot/internal/command"
)

const (
	RoomText  = "text"
	RoomVoice = "voice"
)

const (
	everyoneDeny = discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionVoiceConnect

	roleAllow = discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionReadMessageHistory

	roleAllowVoice = discordgo.PermissionVoiceConnect | discordgo.PermissionVoiceSpeak
)

// RoomOverwrites hides a channel from @everyone (whose role id equals the guild
// id) and opens it to roleID.
func RoomOverwrites(guildID, roleID string, voice bool) []*discordgo.PermissionOverwrite {
	allow := int64(roleAllow)
	if voice {
		allow |= roleAllowVoice
	}
	return []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: everyoneDeny},
		{ID: roleID, Type: discordgo.PermissionOverwriteTypeRole, Allow: allow},
	}
}

type CreateRoomCommand struct{}

func (c *CreateRoomCommand) Kind() command.Kind  { return command.KindCreateInvisibleRoom }
func (c *CreateRoomCommand) Description() string { return "Create an invisible room (channel)" }

func (c *CreateRoomCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Kind().String(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "name",
				Description: "Name of the invisible channel",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "Role that can access the invisible channel",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "type",
				Description: "Channel type",
				Required:    false,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Text Channel", Value: RoomText},
					{Name: "Voice Channel", Value: RoomVoice},
				},
			},
		},
	}
}

func (c *CreateRoomCommand) Run(ctx context.Context, sc *command.SlashInteractionContext) error {
	opts := command.ParseOptions(sc.Event.ApplicationCommandData())
	name := opts.String("name")
	role := opts.Role("role")
	if role == nil {
		return fmt.Errorf("missing role option")
	}

	// Anything but "voice" falls back to text.
	roomType := RoomText
	channelType := discordgo.ChannelTypeGuildText
	if opts.String("type") == RoomVoice {
		roomType = RoomVoice
		channelType = discordgo.ChannelTypeGuildVoice
	}

	guildID := sc.Event.GuildID
	reason := fmt.Sprintf("Invisible %s channel created by %s", roomType, command.UserTag(sc.Invoker()))
	ch, err := sc.Session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 channelType,
		PermissionOverwrites: RoomOverwrites(guildID, role.ID, roomType == RoomVoice),
	}, discordgo.WithAuditLogReason(reason), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to create %s channel %q: %w", roomType, name, err)
	}

	return sc.RespondEphemeral(ctx, fmt.Sprintf(
		"✅ Created invisible %s channel: %s\n"+
			"📋 Channel ID: `%s`\n"+
			"🔒 Only users with the **%s** role can see and access this channel.\n"+
			"👻 This channel is invisible to everyone else.",
		roomType, ch.Mention(), ch.ID, role.Name))
}
