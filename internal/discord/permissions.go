package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/invisible-bot/internal/perms"
)

// allPermissions sets every bit, including ones newer than discordgo.PermissionAll.
const allPermissions = ^int64(0)

// guildPermissions computes a member's guild-level permissions from the
// @everyone role and the member's roles. Owners and administrators get all.
func guildPermissions(g *discordgo.Guild, m *discordgo.Member) int64 {
	if m == nil || m.User == nil {
		return 0
	}
	if m.User.ID == g.OwnerID {
		return allPermissions
	}

	held := make(map[string]struct{}, len(m.Roles)+1)
	held[g.ID] = struct{}{}
	for _, id := range m.Roles {
		held[id] = struct{}{}
	}

	var bits int64
	for _, r := range g.Roles {
		if _, ok := held[r.ID]; ok {
			bits |= r.Permissions
		}
	}
	if bits&discordgo.PermissionAdministrator != 0 {
		return allPermissions
	}
	return bits
}

// missingPermissions lists what the bot member lacks from the "invisible" preset.
func missingPermissions(g *discordgo.Guild, botMember *discordgo.Member) []perms.Permission {
	need, _ := perms.Preset("invisible")
	return perms.Decode(need &^ guildPermissions(g, botMember))
}
