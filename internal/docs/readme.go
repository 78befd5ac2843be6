// Package docs renders the command reference into README.md.
package docs

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/invisible-bot/internal/command"
	"github.com/keshon/invisible-bot/internal/version"
	"github.com/keshon/invisible-bot/pkg/cmd"
)

var optionTypes = map[discordgo.ApplicationCommandOptionType]string{
	discordgo.ApplicationCommandOptionString: "string",
	discordgo.ApplicationCommandOptionRole:   "role",
	discordgo.ApplicationCommandOptionUser:   "user",
}

// RenderCommands lists every registered slash command with its options.
func RenderCommands(reg *cmd.Registry) string {
	var buf bytes.Buffer
	for _, def := range command.Definitions(reg) {
		fmt.Fprintf(&buf, "* **`/%s`**\n  %s\n", def.Name, def.Description)
		for _, o := range def.Options {
			typ := optionTypes[o.Type]
			if typ == "" {
				typ = o.Type.String()
			}
			req := "optional"
			if o.Required {
				req = "required"
			}
			fmt.Fprintf(&buf, "  * `%s` (%s, %s): %s", o.Name, typ, req, o.Description)
			if len(o.Choices) > 0 {
				buf.WriteString(". One of")
				for i, c := range o.Choices {
					sep := ","
					if i == 0 {
						sep = ""
					}
					fmt.Fprintf(&buf, "%s `%v`", sep, c.Value)
				}
			}
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

// UpdateReadme executes the template at tmplPath with the command reference
// and writes the result to outPath.
func UpdateReadme(reg *cmd.Registry, tmplPath, outPath string) error {
	tmplData, err := os.ReadFile(tmplPath)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}
	tmpl, err := template.New("readme").Parse(string(tmplData))
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	var out bytes.Buffer
	err = tmpl.Execute(&out, map[string]any{
		"AppName":        version.AppName,
		"AppDescription": version.AppDescription,
		"AppVersion":     version.AppVersion,
		"Commands":       RenderCommands(reg),
	})
	if err != nil {
		return fmt.Errorf("failed to render readme: %w", err)
	}
	return os.WriteFile(outPath, out.Bytes(), 0644)
}
