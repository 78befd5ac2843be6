package commandtest

import (
	"github.com/bwmarrin/discordgo"
)

// Admin returns a guild member holding the Administrator permission.
func Admin(id, username string) *discordgo.Member {
	return &discordgo.Member{
		User:        &discordgo.User{ID: id, Username: username},
		Permissions: discordgo.PermissionAdministrator | discordgo.PermissionManageRoles,
	}
}

// Member returns a guild member without Administrator.
func Member(id, username string, roles ...string) *discordgo.Member {
	return &discordgo.Member{
		User:        &discordgo.User{ID: id, Username: username},
		Roles:       roles,
		Permissions: discordgo.PermissionSendMessages | discordgo.PermissionViewChannel,
	}
}

// EventBuilder assembles a slash command interaction.
type EventBuilder struct {
	i    *discordgo.Interaction
	data discordgo.ApplicationCommandInteractionData
}

// NewEvent starts a slash command interaction for name in guildID, invoked by member.
func NewEvent(name, guildID string, member *discordgo.Member) *EventBuilder {
	return &EventBuilder{
		i: &discordgo.Interaction{
			ID:        "interaction-1",
			Type:      discordgo.InteractionApplicationCommand,
			GuildID:   guildID,
			ChannelID: "channel-1",
			Member:    member,
		},
		data: discordgo.ApplicationCommandInteractionData{
			ID:          "command-1",
			Name:        name,
			CommandType: discordgo.ChatApplicationCommand,
			Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
				Users: map[string]*discordgo.User{},
				Roles: map[string]*discordgo.Role{},
			},
		},
	}
}

func (b *EventBuilder) String(name, value string) *EventBuilder {
	b.data.Options = append(b.data.Options, &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	})
	return b
}

func (b *EventBuilder) Role(name string, r *discordgo.Role) *EventBuilder {
	b.data.Options = append(b.data.Options, &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionRole,
		Value: r.ID,
	})
	b.data.Resolved.Roles[r.ID] = r
	return b
}

func (b *EventBuilder) User(name string, u *discordgo.User) *EventBuilder {
	b.data.Options = append(b.data.Options, &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionUser,
		Value: u.ID,
	})
	b.data.Resolved.Users[u.ID] = u
	return b
}

// DM turns the interaction into a direct-message one: no guild, no member.
func (b *EventBuilder) DM() *EventBuilder {
	if b.i.Member != nil {
		b.i.User = b.i.Member.User
	}
	b.i.GuildID = ""
	b.i.Member = nil
	return b
}

func (b *EventBuilder) Build() *discordgo.InteractionCreate {
	b.i.Data = b.data
	return &discordgo.InteractionCreate{Interaction: b.i}
}
