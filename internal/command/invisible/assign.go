package invisible

import (
	"context"
	"fmt"
	"slices"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/invisible-bot/internal/command"
	"github.com/keshon/invisible-bot/pkg/keymu"
)

type assignKey struct {
	guildID, userID, roleID string
}

// AssignRoleCommand serializes assignments of the same role to the same member
// so two concurrent invocations cannot both pass the "already has" check.
type AssignRoleCommand struct {
	locks *keymu.Map[assignKey]
}

func NewAssignRoleCommand() *AssignRoleCommand {
	return &AssignRoleCommand{locks: keymu.New[assignKey]()}
}

func (c *AssignRoleCommand) Kind() command.Kind  { return command.KindAssignInvisibleRole }
func (c *AssignRoleCommand) Description() string { return "Assign invisible role to a user" }

func (c *AssignRoleCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Kind().String(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "User to assign the role to",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "Invisible role to assign",
				Required:    true,
			},
		},
	}
}

func (c *AssignRoleCommand) Run(ctx context.Context, sc *command.SlashInteractionContext) error {
	opts := command.ParseOptions(sc.Event.ApplicationCommandData())
	user := opts.User("user")
	role := opts.Role("role")
	if user == nil || role == nil {
		return fmt.Errorf("missing user or role option")
	}

	guildID := sc.Event.GuildID
	if c.locks != nil {
		unlock := c.locks.Lock(assignKey{guildID, user.ID, role.ID})
		defer unlock()
	}

	member, err := sc.Session.GuildMember(guildID, user.ID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to fetch member %s: %w", user.ID, err)
	}

	tag := command.UserTag(user)
	if slices.Contains(member.Roles, role.ID) {
		return sc.RespondEphemeral(ctx, fmt.Sprintf("❌ %s already has the **%s** role.", tag, role.Name))
	}

	reason := "Invisible role assigned by " + command.UserTag(sc.Invoker())
	err = sc.Session.GuildMemberRoleAdd(guildID, user.ID, role.ID,
		discordgo.WithAuditLogReason(reason), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to add role %s to %s: %w", role.ID, user.ID, err)
	}

	return sc.RespondEphemeral(ctx, fmt.Sprintf(
		"✅ Successfully assigned the **%s** role to %s\n"+
			"👻 This role is invisible and won't show in the member list.",
		role.Name, tag))
}
