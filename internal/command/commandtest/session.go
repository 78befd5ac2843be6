// Package commandtest provides an in-memory command.Session and interaction
// builders for tests.
package commandtest

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ErrNotFound mimics Discord's 404 for unknown members or guilds.
var ErrNotFound = errors.New("404 Not Found")

type RoleCreate struct {
	GuildID string
	Params  *discordgo.RoleParams
	Reason  string
}

type ChannelCreate struct {
	GuildID string
	Data    discordgo.GuildChannelCreateData
	Reason  string
}

type RoleAdd struct {
	GuildID, UserID, RoleID string
	Reason                  string
}

// Session records every call and serves members and guilds from memory.
// Set the *Err fields to make the matching call fail.
type Session struct {
	mu sync.Mutex

	Guilds  map[string]*discordgo.Guild
	Members map[string]*discordgo.Member // key: guildID + "/" + userID

	RoleCreates    []RoleCreate
	ChannelCreates []ChannelCreate
	RoleAdds       []RoleAdd
	Responses      []*discordgo.InteractionResponse
	Followups      []*discordgo.WebhookParams
	MemberFetches  int

	RoleCreateErr    error
	ChannelCreateErr error
	RoleAddErr       error
	RespondErr       error

	nextID int
}

func NewSession() *Session {
	return &Session{
		Guilds:  make(map[string]*discordgo.Guild),
		Members: make(map[string]*discordgo.Member),
		nextID:  1000,
	}
}

func (s *Session) id() string {
	s.nextID++
	return fmt.Sprintf("%d", s.nextID)
}

// AddMember makes a member fetchable through GuildMember.
func (s *Session) AddMember(guildID string, m *discordgo.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Members[guildID+"/"+m.User.ID] = m
}

// Mutations counts calls that change guild state.
func (s *Session) Mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.RoleCreates) + len(s.ChannelCreates) + len(s.RoleAdds)
}

// LastContent is the content of the latest response or followup.
func (s *Session) LastContent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.Followups); n > 0 {
		return s.Followups[n-1].Content
	}
	if n := len(s.Responses); n > 0 && s.Responses[n-1].Data != nil {
		return s.Responses[n-1].Data.Content
	}
	return ""
}

// auditReason applies the request options the way discordgo does and reads
// back the audit log header.
func auditReason(options []discordgo.RequestOption) string {
	req, _ := http.NewRequest(http.MethodPost, "https://discord.invalid/", nil)
	cfg := &discordgo.RequestConfig{Request: req}
	for _, opt := range options {
		opt(cfg)
	}
	reason, err := url.PathUnescape(cfg.Request.Header.Get("X-Audit-Log-Reason"))
	if err != nil {
		return cfg.Request.Header.Get("X-Audit-Log-Reason")
	}
	return reason
}

func (s *Session) GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RoleCreateErr != nil {
		return nil, s.RoleCreateErr
	}
	s.RoleCreates = append(s.RoleCreates, RoleCreate{GuildID: guildID, Params: data, Reason: auditReason(options)})

	role := &discordgo.Role{ID: s.id(), Name: data.Name}
	if data.Color != nil {
		role.Color = *data.Color
	}
	if data.Hoist != nil {
		role.Hoist = *data.Hoist
	}
	if data.Mentionable != nil {
		role.Mentionable = *data.Mentionable
	}
	if data.Permissions != nil {
		role.Permissions = *data.Permissions
	}
	if g, ok := s.Guilds[guildID]; ok {
		g.Roles = append(g.Roles, role)
	}
	return role, nil
}

func (s *Session) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ChannelCreateErr != nil {
		return nil, s.ChannelCreateErr
	}
	s.ChannelCreates = append(s.ChannelCreates, ChannelCreate{GuildID: guildID, Data: data, Reason: auditReason(options)})

	ch := &discordgo.Channel{
		ID:                   s.id(),
		GuildID:              guildID,
		Name:                 data.Name,
		Type:                 data.Type,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	if g, ok := s.Guilds[guildID]; ok {
		g.Channels = append(g.Channels, ch)
	}
	return ch, nil
}

func (s *Session) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MemberFetches++
	m, ok := s.Members[guildID+"/"+userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	cp.Roles = slices.Clone(m.Roles)
	return &cp, nil
}

func (s *Session) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RoleAddErr != nil {
		return s.RoleAddErr
	}
	s.RoleAdds = append(s.RoleAdds, RoleAdd{GuildID: guildID, UserID: userID, RoleID: roleID, Reason: auditReason(options)})
	if m, ok := s.Members[guildID+"/"+userID]; ok && !slices.Contains(m.Roles, roleID) {
		m.Roles = append(m.Roles, roleID)
	}
	return nil
}

func (s *Session) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RespondErr != nil {
		return s.RespondErr
	}
	s.Responses = append(s.Responses, resp)
	return nil
}

func (s *Session) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Followups = append(s.Followups, data)
	return &discordgo.Message{ID: s.id(), Content: data.Content}, nil
}

func (s *Session) CachedGuild(guildID string) (*discordgo.Guild, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.Guilds[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}
