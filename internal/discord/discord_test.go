package discord

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"

	"github.com/keshon/invisible-bot/internal/command"
	"github.com/keshon/invisible-bot/internal/command/commandtest"
	"github.com/keshon/invisible-bot/internal/config"
	"github.com/keshon/invisible-bot/pkg/cmd"
)

type funcCommand struct {
	name string
	run  func(ctx context.Context, inv *cmd.Invocation) error
}

func (f *funcCommand) Name() string        { return f.name }
func (f *funcCommand) Description() string { return f.name }
func (f *funcCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	return f.run(ctx, inv)
}

func dispatcherWith(t *testing.T, s *commandtest.Session, c cmd.Command) (*Dispatcher, *observer.ObservedLogs) {
	t.Helper()
	reg := cmd.NewRegistry()
	require.NoError(t, reg.Register(c))
	core, logs := observer.New(zap.DebugLevel)
	return NewDispatcher(reg, s, nil, zap.New(core)), logs
}

func adminEvent(name string) *discordgo.InteractionCreate {
	return commandtest.NewEvent(name, "g1", commandtest.Admin("u1", "alice")).Build()
}

func TestDispatchPlatformErrorRepliesGeneric(t *testing.T) {
	s := commandtest.NewSession()
	d, logs := dispatcherWith(t, s, &funcCommand{name: "list-invisible", run: func(context.Context, *cmd.Invocation) error {
		return errors.New("HTTP 500")
	}})

	d.Handle(context.Background(), adminEvent("list-invisible"))
	require.Len(t, s.Responses, 1)
	assert.Equal(t, genericErrorMessage, s.Responses[0].Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, s.Responses[0].Data.Flags)
	assert.Empty(t, s.Followups)
	assert.Equal(t, 1, logs.FilterMessage("Error handling command").Len())
}

func TestDispatchErrorAfterReplyUsesFollowup(t *testing.T) {
	s := commandtest.NewSession()
	d, _ := dispatcherWith(t, s, &funcCommand{name: "list-invisible", run: func(ctx context.Context, inv *cmd.Invocation) error {
		sc := inv.Data.(*command.SlashInteractionContext)
		require.NoError(t, sc.RespondEphemeral(ctx, "part one"))
		return errors.New("followup failed")
	}})

	d.Handle(context.Background(), adminEvent("list-invisible"))
	require.Len(t, s.Responses, 1)
	require.Len(t, s.Followups, 1)
	assert.Equal(t, genericErrorMessage, s.Followups[0].Content)
}

func TestDispatchRejectedIsNotReportedTwice(t *testing.T) {
	s := commandtest.NewSession()
	d, _ := dispatcherWith(t, s, &funcCommand{name: "create-invisible-role", run: func(ctx context.Context, inv *cmd.Invocation) error {
		sc := inv.Data.(*command.SlashInteractionContext)
		require.NoError(t, sc.RespondEphemeral(ctx, "❌ nope"))
		return command.ErrRejected
	}})

	d.Handle(context.Background(), adminEvent("create-invisible-role"))
	assert.Len(t, s.Responses, 1)
	assert.Empty(t, s.Followups)
}

func TestDispatchRecoversPanics(t *testing.T) {
	s := commandtest.NewSession()
	d, logs := dispatcherWith(t, s, &funcCommand{name: "list-invisible", run: func(context.Context, *cmd.Invocation) error {
		panic("boom")
	}})

	assert.NotPanics(t, func() { d.Handle(context.Background(), adminEvent("list-invisible")) })
	assert.Equal(t, genericErrorMessage, s.LastContent())
	assert.Equal(t, 1, logs.FilterMessage("Error handling command").Len())
}

func TestDispatchIgnoresUnknownCommands(t *testing.T) {
	s := commandtest.NewSession()
	ran := false
	d, logs := dispatcherWith(t, s, &funcCommand{name: "ping", run: func(context.Context, *cmd.Invocation) error {
		ran = true
		return nil
	}})

	d.Handle(context.Background(), adminEvent("ping"))
	assert.False(t, ran)
	assert.Empty(t, s.Responses)
	assert.Equal(t, 1, logs.FilterMessage("Unknown command").Len())
}

func TestDispatchIgnoresComponentInteractions(t *testing.T) {
	s := commandtest.NewSession()
	d, _ := dispatcherWith(t, s, &funcCommand{name: "list-invisible", run: func(context.Context, *cmd.Invocation) error {
		t.Fatal("should not run")
		return nil
	}})

	d.Handle(context.Background(), &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: "x"},
	}})
	assert.Empty(t, s.Responses)
}

func TestDispatchEndToEnd(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	s := commandtest.NewSession()
	d := NewDispatcher(reg, s, nil, zap.NewNop())

	e := commandtest.NewEvent("create-invisible-role", "g1", commandtest.Admin("u1", "alice")).
		String("name", "Ghosts").String("color", "#AB12CD").Build()
	d.Handle(context.Background(), e)
	require.Len(t, s.RoleCreates, 1)
	assert.Contains(t, s.LastContent(), "Ghosts")

	e = commandtest.NewEvent("create-invisible-role", "g1", commandtest.Member("u2", "bob")).
		String("name", "Ghosts").Build()
	d.Handle(context.Background(), e)
	assert.Len(t, s.RoleCreates, 1)
	assert.Equal(t, "❌ You need Administrator permissions to use this command.", s.LastContent())

	s.RoleCreateErr = errors.New("Missing Permissions")
	e = commandtest.NewEvent("create-invisible-role", "g1", commandtest.Admin("u1", "alice")).
		String("name", "Ghosts").Build()
	d.Handle(context.Background(), e)
	assert.Equal(t, genericErrorMessage, s.LastContent())
}

func TestNewRegistryDefinitions(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	var names []string
	for _, def := range command.Definitions(reg) {
		names = append(names, def.Name)
		assert.Equal(t, discordgo.ChatApplicationCommand, def.Type)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"assign-invisible-role", "create-invisible-role", "create-invisible-room", "list-invisible"}, names)
}

func TestNewBotRequiresCredentials(t *testing.T) {
	_, err := NewBot(&config.Config{ClientID: "1", GuildID: "2"}, nil, zap.NewNop())
	assert.ErrorIs(t, err, config.ErrMissingToken)

	_, err = NewBot(&config.Config{DiscordToken: "t", GuildID: "2"}, nil, zap.NewNop())
	assert.ErrorIs(t, err, config.ErrMissingIDs)
}

func TestConnectedOnNilBot(t *testing.T) {
	var b *Bot
	assert.False(t, b.Connected())
}

type fakeCommandAPI struct {
	mu      sync.Mutex
	remote  []*discordgo.ApplicationCommand
	created []string
	deleted []string
	listErr error
}

func (f *fakeCommandAPI) ApplicationCommands(_, _ string, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	return f.remote, f.listErr
}

func (f *fakeCommandAPI) ApplicationCommandCreate(_, _ string, c *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, c.Name)
	return c, nil
}

func (f *fakeCommandAPI) ApplicationCommandDelete(_, _, id string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func wantedDefinitions(t *testing.T) []*discordgo.ApplicationCommand {
	reg, err := NewRegistry()
	require.NoError(t, err)
	return command.Definitions(reg)
}

func TestSyncCommandsFreshGuild(t *testing.T) {
	api := &fakeCommandAPI{}
	res, err := syncCommands(context.Background(), api, "app", "g1", wantedDefinitions(t), rate.NewLimiter(rate.Inf, 1), zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, res.Created, 4)
	assert.Len(t, api.created, 4)
	assert.Zero(t, res.Unchanged)
}

func TestSyncCommandsSkipsUnchangedAndDeletesObsolete(t *testing.T) {
	wanted := wantedDefinitions(t)
	remote := []*discordgo.ApplicationCommand{{ID: "old", Name: "ping", Description: "Check bot latency", Type: discordgo.ChatApplicationCommand}}
	for i, def := range wanted {
		cp := *def
		cp.ID = "id-" + def.Name
		cp.Version = "v1"
		if i == 0 {
			cp.Description = "outdated"
		}
		remote = append(remote, &cp)
	}
	api := &fakeCommandAPI{remote: remote}

	res, err := syncCommands(context.Background(), api, "app", "g1", wanted, rate.NewLimiter(rate.Inf, 1), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{wanted[0].Name}, res.Created)
	assert.Equal(t, []string{"ping"}, res.Deleted)
	assert.Equal(t, []string{"old"}, api.deleted)
	assert.Equal(t, 3, res.Unchanged)
}

func TestSyncCommandsListFailure(t *testing.T) {
	api := &fakeCommandAPI{listErr: errors.New("401 Unauthorized")}
	_, err := syncCommands(context.Background(), api, "app", "g1", wantedDefinitions(t), rate.NewLimiter(rate.Inf, 1), zap.NewNop())
	assert.Error(t, err)
	assert.Empty(t, api.created)
}

func TestHashCommandIgnoresIDsAndOptionOrder(t *testing.T) {
	a := &discordgo.ApplicationCommand{Name: "x", Description: "d", Options: []*discordgo.ApplicationCommandOption{
		{Name: "b", Type: discordgo.ApplicationCommandOptionRole, Description: "b"},
		{Name: "a", Type: discordgo.ApplicationCommandOptionString, Description: "a", Required: true},
	}}
	b := &discordgo.ApplicationCommand{ID: "1", Version: "2", Name: "x", Description: "d", Type: discordgo.ChatApplicationCommand, Options: []*discordgo.ApplicationCommandOption{
		{Name: "a", Type: discordgo.ApplicationCommandOptionString, Description: "a", Required: true},
		{Name: "b", Type: discordgo.ApplicationCommandOptionRole, Description: "b"},
	}}
	assert.Equal(t, hashCommand(a), hashCommand(b))

	b.Options[0].Required = false
	assert.NotEqual(t, hashCommand(a), hashCommand(b))
}

func TestGuildPermissions(t *testing.T) {
	g := &discordgo.Guild{
		ID:      "g1",
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "g1", Permissions: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages},
			{ID: "r-bot", Permissions: discordgo.PermissionManageRoles},
			{ID: "r-admin", Permissions: discordgo.PermissionAdministrator},
		},
	}

	bot := &discordgo.Member{User: &discordgo.User{ID: "bot"}, Roles: []string{"r-bot"}}
	assert.Equal(t, int64(discordgo.PermissionViewChannel|discordgo.PermissionSendMessages|discordgo.PermissionManageRoles), guildPermissions(g, bot))

	missing := missingPermissions(g, bot)
	var names []string
	for _, p := range missing {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, "manage_channels")
	assert.NotContains(t, names, "manage_roles")

	admin := &discordgo.Member{User: &discordgo.User{ID: "a"}, Roles: []string{"r-admin"}}
	assert.Equal(t, allPermissions, guildPermissions(g, admin))
	assert.NotZero(t, guildPermissions(g, admin)&discordgo.PermissionUseSlashCommands)
	assert.Empty(t, missingPermissions(g, admin))

	owner := &discordgo.Member{User: &discordgo.User{ID: "owner"}}
	assert.Equal(t, allPermissions, guildPermissions(g, owner))
	assert.Empty(t, missingPermissions(g, owner))
	assert.Zero(t, guildPermissions(g, nil))
}
