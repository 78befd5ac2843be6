package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/keshon/invisible-bot/internal/perms"
)

type PermsCmd struct {
	Decode PermsDecodeCmd `cmd:"" help:"Decode a permission integer, or compare two."`
	List   PermsListCmd   `cmd:"" help:"List every permission and the presets."`
}

type PermsDecodeCmd struct {
	Bits []int64 `arg:"" help:"One permission integer, or two to compare."`
}

func (c *PermsDecodeCmd) Run(g *Globals) error {
	switch len(c.Bits) {
	case 1:
		writeDecoded(g.out, c.Bits[0])
	case 2:
		writeComparison(g.out, c.Bits[0], c.Bits[1])
	default:
		return fmt.Errorf("expected one or two permission integers, got %d", len(c.Bits))
	}
	return nil
}

func writeDecoded(w io.Writer, bits int64) {
	fmt.Fprintf(w, "Permission integer: %d\n", bits)
	fmt.Fprintf(w, "Hex: 0x%x\n", bits)
	fmt.Fprintf(w, "Risk: %s\n\n", perms.Risk(bits))

	decoded := perms.Decode(bits)
	if len(decoded) == 0 {
		fmt.Fprintln(w, "No permissions set.")
		return
	}

	byCat := perms.Categorize(decoded)
	for _, cat := range perms.Categories {
		ps := byCat[cat]
		if len(ps) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s (%d):\n", cat, len(ps))
		for _, p := range ps {
			fmt.Fprintf(w, "  - %s\n", p.DisplayName())
		}
	}

	if summary := perms.Summary(bits); len(summary) > 0 {
		fmt.Fprintln(w)
		for _, s := range summary {
			fmt.Fprintln(w, s)
		}
	}
}

func writeComparison(w io.Writer, a, b int64) {
	cmp := perms.Compare(a, b)
	section := func(title string, ps []perms.Permission) {
		fmt.Fprintf(w, "%s (%d):\n", title, len(ps))
		for _, p := range ps {
			fmt.Fprintf(w, "  - %s\n", p.DisplayName())
		}
	}
	section("Common", cmp.Common)
	section(fmt.Sprintf("Only in %d", a), cmp.OnlyA)
	section(fmt.Sprintf("Only in %d", b), cmp.OnlyB)
}

type PermsListCmd struct{}

func (c *PermsListCmd) Run(g *Globals) error {
	for _, p := range perms.All {
		fmt.Fprintf(g.out, "%-40s %-8s %d\n", p.Name, p.Category, p.Bit)
	}
	fmt.Fprintln(g.out)
	fmt.Fprintln(g.out, "Presets:")
	for _, name := range perms.PresetNames() {
		bits, _ := perms.Preset(name)
		fmt.Fprintf(g.out, "  %-12s %d (%s)\n", name, bits, strings.Join(perms.Presets[name], ", "))
	}
	return nil
}

type InviteCmd struct {
	ClientID string   `help:"Application id." env:"CLIENT_ID"`
	GuildID  string   `help:"Preselect this server." env:"GUILD_ID"`
	Preset   string   `help:"Permission preset." default:"invisible"`
	Perm     []string `help:"Individual permission names; overrides --preset."`
	Bits     int64    `help:"Raw permission integer; overrides --preset and --perm."`
	Scope    []string `help:"OAuth2 scopes." default:"bot,applications.commands"`
}

func (c *InviteCmd) Run(g *Globals) error {
	clientID := c.ClientID
	if clientID == "" {
		cfg, err := g.config()
		if err != nil {
			return err
		}
		clientID = cfg.ClientID
	}
	if clientID == "" {
		return fmt.Errorf("no client id: pass --client-id or set CLIENT_ID")
	}

	bits, err := c.permissions()
	if err != nil {
		return err
	}

	fmt.Fprintf(g.out, "Permissions: %d (%s)\n", bits, perms.Risk(bits))
	fmt.Fprintln(g.out, perms.InviteURL(clientID, bits, c.GuildID, c.Scope...))
	return nil
}

func (c *InviteCmd) permissions() (int64, error) {
	if c.Bits != 0 {
		return c.Bits, nil
	}
	if len(c.Perm) > 0 {
		bits, unknown := perms.Calculate(c.Perm)
		if len(unknown) > 0 {
			return 0, fmt.Errorf("unknown permissions: %s", strings.Join(unknown, ", "))
		}
		return bits, nil
	}
	bits, ok := perms.Preset(c.Preset)
	if !ok {
		return 0, fmt.Errorf("unknown preset %q (have %s)", c.Preset, strings.Join(perms.PresetNames(), ", "))
	}
	return bits, nil
}
