package discord

import (
	"context"
	"slices"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/keshon/invisible-bot/internal/command"
	"github.com/keshon/invisible-bot/internal/perms"
)

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.connected.Store(true)

	guildIDs := make([]string, 0, len(r.Guilds))
	for _, g := range r.Guilds {
		guildIDs = append(guildIDs, g.ID)
	}
	b.log.Info("Logged in",
		zap.String("user", command.UserTag(r.User)),
		zap.String("user_id", r.User.ID),
		zap.Int("guilds", len(r.Guilds)),
	)
	if !slices.Contains(guildIDs, b.cfg.GuildID) {
		b.log.Warn("Bot is not a member of the configured guild", zap.String("guild", b.cfg.GuildID))
	}

	if !b.cfg.InitSlashCommands {
		b.log.Info("Registering slash commands skipped")
		return
	}
	go b.registerCommands(b.ctx, r.User.ID)
}

// onGuildCreate checks the bot's own permissions once the configured guild is
// available in the state.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.ID != b.cfg.GuildID || s.State == nil || s.State.User == nil {
		return
	}
	me, err := s.State.Member(g.ID, s.State.User.ID)
	if err != nil {
		return
	}
	if missing := missingPermissions(g.Guild, me); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, p := range missing {
			names[i] = p.DisplayName()
		}
		b.log.Warn("Bot is missing permissions in the configured guild",
			zap.String("guild", g.ID),
			zap.Strings("missing", names),
			zap.String("risk", perms.Risk(guildPermissions(g.Guild, me)).String()),
		)
	}
}

func (b *Bot) onConnect(_ *discordgo.Session, _ *discordgo.Connect) {
	b.log.Debug("Gateway connected")
}

func (b *Bot) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	b.connected.Store(false)
	b.log.Warn("Gateway disconnected")
}

func (b *Bot) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	b.connected.Store(true)
	b.log.Info("Gateway session resumed")
}

func (b *Bot) onInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	b.dispatcher.Handle(b.ctx, i)
}

func (b *Bot) registerCommands(ctx context.Context, appID string) {
	if b.cfg.ClientID != "" {
		appID = b.cfg.ClientID
	}
	b.log.Info("Started refreshing application (/) commands", zap.String("guild", b.cfg.GuildID))

	res, err := syncCommands(ctx, b.dg, appID, b.cfg.GuildID, command.Definitions(b.registry), newRegistrationLimiter(), b.log)
	if err != nil {
		b.log.Error("Failed to register slash commands", zap.String("guild", b.cfg.GuildID), zap.Error(err))
		return
	}
	b.log.Info("Successfully reloaded application (/) commands",
		zap.Strings("created", res.Created),
		zap.Strings("deleted", res.Deleted),
		zap.Int("unchanged", res.Unchanged),
	)
}
