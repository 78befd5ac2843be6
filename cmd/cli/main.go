package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/keshon/invisible-bot/internal/config"
	v "github.com/keshon/invisible-bot/internal/version"
)

// Globals is bound into every command's Run.
type Globals struct {
	EnvFile string `help:"Path to a .env file." default:".env" type:"path"`

	out io.Writer
}

func (g *Globals) config() (*config.Config, error) {
	return config.Load(g.EnvFile)
}

type cli struct {
	Globals

	Perms   PermsCmd   `cmd:"" help:"Decode, compare and list Discord permissions."`
	Invite  InviteCmd  `cmd:"" help:"Print the OAuth2 URL that adds the bot to a server."`
	Botinfo BotinfoCmd `cmd:"" help:"Show the application id derived from the bot token."`
	Status  StatusCmd  `cmd:"" help:"Log in over REST and list the servers the bot is in."`
	History HistoryCmd `cmd:"" help:"Dump a server's command journal as JSON."`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("invisible-cli"),
		kong.Description(v.AppName+" operator tools"),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	c.Globals.out = os.Stdout
	err := ctx.Run(&c.Globals)
	ctx.FatalIfErrorf(err)
}
