// Package perms decodes, composes and assesses Discord permission bitfields.
package perms

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Category string

const (
	General Category = "General"
	Text    Category = "Text"
	Voice   Category = "Voice"
	Other   Category = "Other"
)

// Categories in display order.
var Categories = []Category{General, Text, Voice, Other}

// Permission is a single named bit of a Discord permission integer.
type Permission struct {
	Name     string
	Bit      int64
	Category Category
}

// DisplayName turns "read_message_history" into "Read Message History".
func (p Permission) DisplayName() string {
	return cases.Title(language.English).String(strings.ReplaceAll(p.Name, "_", " "))
}

// All permissions, ordered by bit.
var All = []Permission{
	{"create_instant_invite", 1 << 0, General},
	{"kick_members", 1 << 1, General},
	{"ban_members", 1 << 2, General},
	{"administrator", 1 << 3, General},
	{"manage_channels", 1 << 4, General},
	{"manage_server", 1 << 5, General},
	{"add_reactions", 1 << 6, Text},
	{"view_audit_log", 1 << 7, General},
	{"priority_speaker", 1 << 8, Voice},
	{"stream", 1 << 9, Voice},
	{"view_channels", 1 << 10, Text},
	{"send_messages", 1 << 11, Text},
	{"send_tts_messages", 1 << 12, Text},
	{"manage_messages", 1 << 13, Text},
	{"embed_links", 1 << 14, Text},
	{"attach_files", 1 << 15, Text},
	{"read_message_history", 1 << 16, Text},
	{"mention_everyone", 1 << 17, Text},
	{"use_external_emojis", 1 << 18, Text},
	{"view_server_insights", 1 << 19, General},
	{"connect", 1 << 20, Voice},
	{"speak", 1 << 21, Voice},
	{"mute_members", 1 << 22, Voice},
	{"deafen_members", 1 << 23, Voice},
	{"move_members", 1 << 24, Voice},
	{"use_voice_activity", 1 << 25, Voice},
	{"change_nickname", 1 << 26, General},
	{"manage_nicknames", 1 << 27, General},
	{"manage_roles", 1 << 28, General},
	{"manage_webhooks", 1 << 29, General},
	{"manage_emojis_and_stickers", 1 << 30, General},
	{"use_slash_commands", 1 << 31, Text},
	{"request_to_speak", 1 << 32, Voice},
	{"manage_events", 1 << 33, General},
	{"manage_threads", 1 << 34, Text},
	{"create_public_threads", 1 << 35, Text},
	{"create_private_threads", 1 << 36, Text},
	{"use_external_stickers", 1 << 37, Text},
	{"send_messages_in_threads", 1 << 38, Text},
	{"use_embedded_activities", 1 << 39, Voice},
	{"timeout_members", 1 << 40, General},
	{"view_creator_monetization_analytics", 1 << 41, Other},
	{"use_soundboard", 1 << 42, Voice},
	{"create_expressions", 1 << 43, Other},
	{"create_events", 1 << 44, Other},
	{"use_external_sounds", 1 << 45, Voice},
	{"send_voice_messages", 1 << 46, Text},
}

var byName = func() map[string]Permission {
	m := make(map[string]Permission, len(All))
	for _, p := range All {
		m[p.Name] = p
	}
	return m
}()

// Lookup finds a permission by its snake_case name.
func Lookup(name string) (Permission, bool) {
	p, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Decode lists the known permissions set in bits, ordered by bit.
func Decode(bits int64) []Permission {
	var out []Permission
	for _, p := range All {
		if bits&p.Bit != 0 {
			out = append(out, p)
		}
	}
	return out
}

// Categorize groups decoded permissions; empty categories are omitted.
func Categorize(ps []Permission) map[Category][]Permission {
	out := make(map[Category][]Permission)
	for _, p := range ps {
		out[p.Category] = append(out[p.Category], p)
	}
	for c := range out {
		sort.Slice(out[c], func(i, j int) bool { return out[c][i].Name < out[c][j].Name })
	}
	return out
}

// Calculate ORs the named permissions together and returns names it did not know.
func Calculate(names []string) (bits int64, unknown []string) {
	for _, n := range names {
		p, ok := Lookup(n)
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		bits |= p.Bit
	}
	return bits, unknown
}

// Comparison splits two permission sets.
type Comparison struct {
	Common []Permission
	OnlyA  []Permission
	OnlyB  []Permission
}

func Compare(a, b int64) Comparison {
	return Comparison{
		Common: Decode(a & b),
		OnlyA:  Decode(a &^ b),
		OnlyB:  Decode(b &^ a),
	}
}
