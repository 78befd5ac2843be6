package perms

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const oauthAuthorizeURL = "https://discord.com/api/oauth2/authorize"

// DefaultScopes are the OAuth2 scopes a slash-command bot needs.
var DefaultScopes = []string{"bot", "applications.commands"}

// Presets are named permission sets for common bot roles. "invisible" is what
// this bot needs to create roles and channels and answer commands.
var Presets = map[string][]string{
	"essential": {
		"view_channels", "send_messages", "read_message_history",
		"embed_links", "use_external_emojis", "add_reactions", "use_slash_commands",
	},
	"utility": {
		"view_channels", "send_messages", "read_message_history",
		"embed_links", "attach_files", "use_external_emojis",
		"add_reactions", "use_slash_commands", "send_messages_in_threads",
	},
	"moderation": {
		"view_channels", "send_messages", "read_message_history", "embed_links",
		"manage_messages", "kick_members", "ban_members", "timeout_members",
		"manage_roles", "manage_nicknames", "view_audit_log", "use_slash_commands",
	},
	"music": {
		"view_channels", "send_messages", "connect", "speak", "use_voice_activity",
		"embed_links", "add_reactions", "use_slash_commands", "priority_speaker",
	},
	"admin": {
		"view_channels", "send_messages", "read_message_history", "embed_links",
		"manage_server", "manage_channels", "manage_roles", "manage_messages",
		"kick_members", "ban_members", "view_audit_log", "use_slash_commands",
	},
	"invisible": {
		"manage_roles", "manage_channels", "view_channels", "send_messages", "use_slash_commands",
	},
}

// PresetNames returns the preset names sorted.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Preset returns the bitfield of a named preset.
func Preset(name string) (int64, bool) {
	names, ok := Presets[strings.ToLower(name)]
	if !ok {
		return 0, false
	}
	bits, _ := Calculate(names)
	return bits, true
}

// InviteURL builds the OAuth2 URL that adds the bot to a guild. guildID is
// optional and preselects the guild; no scopes means DefaultScopes.
func InviteURL(clientID string, bits int64, guildID string, scopes ...string) string {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("permissions", strconv.FormatInt(bits, 10))
	q.Set("scope", strings.Join(scopes, " "))
	if guildID != "" {
		q.Set("guild_id", guildID)
	}
	return oauthAuthorizeURL + "?" + q.Encode()
}
