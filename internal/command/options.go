package command

import (
	"github.com/bwmarrin/discordgo"
)

// Options indexes the top-level options of a slash command by name.
type Options struct {
	data   discordgo.ApplicationCommandInteractionData
	byName map[string]*discordgo.ApplicationCommandInteractionDataOption
}

// ParseOptions returns the options of data keyed by name.
func ParseOptions(data discordgo.ApplicationCommandInteractionData) Options {
	o := Options{data: data, byName: make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options))}
	for _, opt := range data.Options {
		o.byName[opt.Name] = opt
	}
	return o
}

// String returns a string option, or "" when it was not supplied.
func (o Options) String(name string) string {
	opt, ok := o.byName[name]
	if !ok {
		return ""
	}
	s, _ := opt.Value.(string)
	return s
}

func (o Options) id(name string) string {
	return o.String(name)
}

// Role returns the resolved role for a role option, or nil when it was not
// supplied. A role missing from the resolved data comes back with its id only.
func (o Options) Role(name string) *discordgo.Role {
	id := o.id(name)
	if id == "" {
		return nil
	}
	if o.data.Resolved != nil {
		if r, ok := o.data.Resolved.Roles[id]; ok && r != nil {
			return r
		}
	}
	return &discordgo.Role{ID: id, Name: "<@&" + id + ">"}
}

// User returns the resolved user for a user option, or nil when it was not supplied.
func (o Options) User(name string) *discordgo.User {
	id := o.id(name)
	if id == "" {
		return nil
	}
	if o.data.Resolved != nil {
		if u, ok := o.data.Resolved.Users[id]; ok && u != nil {
			return u
		}
	}
	return &discordgo.User{ID: id, Username: "<@" + id + ">"}
}

// UserTag renders a user the way Discord shows them: name#discriminator for
// legacy accounts, the bare username otherwise.
func UserTag(u *discordgo.User) string {
	if u == nil {
		return "Unknown"
	}
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}
