// Package invisible implements the invisible role and channel commands.
package invisible

import (
	"github.com/keshon/invisible-bot/internal/command"
	"github.com/keshon/invisible-bot/pkg/cmd"
)

// Commands returns one command per command.Kind.
func Commands() []command.DiscordCommand {
	return []command.DiscordCommand{
		&CreateRoleCommand{},
		&CreateRoomCommand{},
		NewAssignRoleCommand(),
		&ListCommand{},
	}
}

// Register adds every command to reg, wrapped with mws.
func Register(reg *cmd.Registry, mws ...cmd.Middleware) error {
	for _, c := range Commands() {
		if err := command.RegisterCommand(reg, c, mws...); err != nil {
			return err
		}
	}
	return nil
}
