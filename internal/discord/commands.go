package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// commandAPI is the slice of discordgo used to sync guild commands.
type commandAPI interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandCreate(appID, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
}

// registrationRate paces command writes below Discord's create limit.
const registrationRate = 40

// SyncResult counts what a sync changed.
type SyncResult struct {
	Created   []string
	Deleted   []string
	Unchanged int
}

// syncCommands makes the guild's commands match wanted: commands that are no
// longer wanted are deleted, new or changed ones are created (Discord upserts
// by name), identical ones are left alone.
func syncCommands(ctx context.Context, api commandAPI, appID, guildID string, wanted []*discordgo.ApplicationCommand, limiter *rate.Limiter, log *zap.Logger) (SyncResult, error) {
	var res SyncResult

	remote, err := api.ApplicationCommands(appID, guildID, discordgo.WithContext(ctx))
	if err != nil {
		return res, fmt.Errorf("failed to list guild commands: %w", err)
	}
	remoteByName := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, c := range remote {
		remoteByName[c.Name] = c
	}

	wantedNames := make(map[string]struct{}, len(wanted))
	for _, def := range wanted {
		wantedNames[def.Name] = struct{}{}
	}

	for _, rc := range remote {
		if _, ok := wantedNames[rc.Name]; ok {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return res, err
		}
		if err := api.ApplicationCommandDelete(appID, guildID, rc.ID, discordgo.WithContext(ctx)); err != nil {
			log.Error("Failed to delete obsolete command", zap.String("guild", guildID), zap.String("command", rc.Name), zap.Error(err))
			continue
		}
		res.Deleted = append(res.Deleted, rc.Name)
	}

	for _, def := range wanted {
		if rc, ok := remoteByName[def.Name]; ok && hashCommand(rc) == hashCommand(def) {
			res.Unchanged++
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return res, err
		}
		if _, err := api.ApplicationCommandCreate(appID, guildID, def, discordgo.WithContext(ctx)); err != nil {
			return res, fmt.Errorf("failed to create command %s: %w", def.Name, err)
		}
		res.Created = append(res.Created, def.Name)
	}
	return res, nil
}

func newRegistrationLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Second/registrationRate), 1)
}
