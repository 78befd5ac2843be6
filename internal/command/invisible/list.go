package invisible

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/invisible-bot/internal/command"
)

// MaxMessageLength is Discord's content limit for a single message.
const MaxMessageLength = 2000

// RoleEntry is a role classified as invisible together with its member count.
type RoleEntry struct {
	Role    *discordgo.Role
	Members int
}

// InvisibleRoles lists roles that are not hoisted, excluding @everyone,
// integration-managed roles and administrator roles. Member counts come from
// the guild's cached members.
func InvisibleRoles(g *discordgo.Guild) []RoleEntry {
	counts := make(map[string]int)
	for _, m := range g.Members {
		for _, id := range m.Roles {
			counts[id]++
		}
	}

	var out []RoleEntry
	for _, r := range g.Roles {
		if r == nil || r.ID == g.ID || r.Managed || r.Hoist {
			continue
		}
		if r.Permissions&discordgo.PermissionAdministrator != 0 {
			continue
		}
		out = append(out, RoleEntry{Role: r, Members: counts[r.ID]})
	}
	return out
}

// InvisibleChannels lists text and voice channels whose @everyone overwrite
// denies ViewChannel.
func InvisibleChannels(g *discordgo.Guild) []*discordgo.Channel {
	var out []*discordgo.Channel
	for _, ch := range g.Channels {
		if ch == nil {
			continue
		}
		if ch.Type != discordgo.ChannelTypeGuildText && ch.Type != discordgo.ChannelTypeGuildVoice {
			continue
		}
		for _, ow := range ch.PermissionOverwrites {
			if ow.ID == g.ID && ow.Type == discordgo.PermissionOverwriteTypeRole &&
				ow.Deny&discordgo.PermissionViewChannel != 0 {
				out = append(out, ch)
				break
			}
		}
	}
	return out
}

// FormatList renders the listing as Discord markdown.
func FormatList(roles []RoleEntry, channels []*discordgo.Channel) string {
	var b strings.Builder
	b.WriteString("## 👻 Invisible Elements\n\n")

	b.WriteString("### 🎭 Invisible Roles:\n")
	if len(roles) == 0 {
		b.WriteString("*No invisible roles found.*\n\n")
	} else {
		for _, e := range roles {
			plural := "s"
			if e.Members == 1 {
				plural = ""
			}
			fmt.Fprintf(&b, "• **%s** (%d member%s)\n", e.Role.Name, e.Members, plural)
			fmt.Fprintf(&b, "  📋 ID: `%s`\n", e.Role.ID)
		}
		b.WriteString("\n")
	}

	b.WriteString("### 🔒 Invisible Channels:\n")
	if len(channels) == 0 {
		b.WriteString("*No invisible channels found.*\n")
	} else {
		for _, ch := range channels {
			glyph := "💬"
			if ch.Type == discordgo.ChannelTypeGuildVoice {
				glyph = "🔊"
			}
			fmt.Fprintf(&b, "• %s **%s**\n", glyph, ch.Name)
			fmt.Fprintf(&b, "  📋 ID: `%s`\n", ch.ID)
		}
	}
	return b.String()
}

// SplitMessage breaks content into chunks of at most limit bytes, cutting at
// line boundaries. A single line longer than limit is cut mid-line.
func SplitMessage(content string, limit int) []string {
	if len(content) <= limit {
		return []string{content}
	}

	var chunks []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(content, "\n") {
		for len(line) > limit {
			if cur.Len() > 0 {
				chunks = append(chunks, cur.String())
				cur.Reset()
			}
			cut := limit
			for cut > 0 && !utf8RuneStart(line[cut]) {
				cut--
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if cur.Len()+len(line) > limit {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }

type ListCommand struct{}

func (c *ListCommand) Kind() command.Kind  { return command.KindListInvisible }
func (c *ListCommand) Description() string { return "List all invisible roles and channels" }

func (c *ListCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Kind().String(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *ListCommand) Run(ctx context.Context, sc *command.SlashInteractionContext) error {
	guild, err := sc.Session.CachedGuild(sc.Event.GuildID)
	if err != nil {
		return fmt.Errorf("failed to load guild %s: %w", sc.Event.GuildID, err)
	}

	content := FormatList(InvisibleRoles(guild), InvisibleChannels(guild))
	for i, chunk := range SplitMessage(content, MaxMessageLength) {
		if i == 0 {
			err = sc.RespondEphemeral(ctx, chunk)
		} else {
			err = sc.FollowupEphemeral(ctx, chunk)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
