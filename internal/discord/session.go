package discord

import (
	"fmt"
	"slices"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/invisible-bot/internal/command"
)

// liveSession backs command.Session with a real discordgo session.
type liveSession struct {
	*discordgo.Session
}

var _ command.Session = liveSession{}

// CachedGuild returns a snapshot of the guild from the gateway state, falling
// back to REST when the guild is not cached yet.
func (s liveSession) CachedGuild(guildID string) (*discordgo.Guild, error) {
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil {
			s.State.RLock()
			snap := *g
			snap.Roles = slices.Clone(g.Roles)
			snap.Channels = slices.Clone(g.Channels)
			snap.Members = slices.Clone(g.Members)
			s.State.RUnlock()
			return &snap, nil
		}
	}

	g, err := s.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild: %w", err)
	}
	if g.Channels, err = s.GuildChannels(guildID); err != nil {
		return nil, fmt.Errorf("failed to fetch guild channels: %w", err)
	}
	if g.Members, err = s.GuildMembers(guildID, "", 1000); err != nil {
		return nil, fmt.Errorf("failed to fetch guild members: %w", err)
	}
	return g, nil
}
