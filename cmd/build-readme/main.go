package main

import (
	"fmt"
	"os"

	"github.com/keshon/invisible-bot/internal/discord"
	"github.com/keshon/invisible-bot/internal/docs"
)

func main() {
	reg, err := discord.NewRegistry()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := docs.UpdateReadme(reg, "README.md.tmpl", "README.md"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
