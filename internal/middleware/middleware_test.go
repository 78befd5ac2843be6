package middleware

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/keshon/invisible-bot/internal/command"
	"github.com/keshon/invisible-bot/internal/command/commandtest"
	"github.com/keshon/invisible-bot/internal/storage"
	"github.com/keshon/invisible-bot/pkg/cmd"
)

type probe struct {
	name string
	ran  int
	err  error
}

func (p *probe) Name() string        { return p.name }
func (p *probe) Description() string { return "probe" }
func (p *probe) Run(ctx context.Context, inv *cmd.Invocation) error {
	p.ran++
	return p.err
}

func invocation(s *commandtest.Session, e *discordgo.InteractionCreate) (*cmd.Invocation, *command.SlashInteractionContext) {
	sc := &command.SlashInteractionContext{Session: s, Event: e}
	return &cmd.Invocation{Data: sc}, sc
}

func TestIsAdministrator(t *testing.T) {
	assert.True(t, IsAdministrator(commandtest.Admin("1", "a")))
	assert.False(t, IsAdministrator(commandtest.Member("2", "b")))
	assert.False(t, IsAdministrator(nil))
	assert.True(t, IsAdministrator(&discordgo.Member{Permissions: discordgo.PermissionAdministrator}))
}

func TestWithAdministratorAllowsAdmins(t *testing.T) {
	p := &probe{name: "list-invisible"}
	c := cmd.Apply(p, WithAdministrator())
	s := commandtest.NewSession()
	inv, _ := invocation(s, commandtest.NewEvent("list-invisible", "g", commandtest.Admin("1", "alice")).Build())

	require.NoError(t, c.Run(context.Background(), inv))
	assert.Equal(t, 1, p.ran)
	assert.Empty(t, s.Responses)
}

func TestWithAdministratorRejects(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := &probe{name: "list-invisible"}
	c := cmd.Apply(p, WithAdministrator())
	s := commandtest.NewSession()
	inv, sc := invocation(s, commandtest.NewEvent("list-invisible", "g", commandtest.Member("2", "bob")).Build())
	sc.Logger = zap.New(core)

	err := c.Run(context.Background(), inv)
	assert.ErrorIs(t, err, command.ErrRejected)
	assert.Zero(t, p.ran)
	assert.True(t, sc.Replied())
	require.Len(t, s.Responses, 1)
	assert.Equal(t, adminRequiredMessage, s.Responses[0].Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, s.Responses[0].Data.Flags)
	assert.Equal(t, 1, logs.FilterMessage("Rejected non-administrator").Len())
}

func TestWithAdministratorRespondFailure(t *testing.T) {
	p := &probe{name: "x"}
	c := cmd.Apply(p, WithAdministrator())
	s := commandtest.NewSession()
	s.RespondErr = errors.New("unknown interaction")
	inv, _ := invocation(s, commandtest.NewEvent("x", "g", commandtest.Member("2", "bob")).Build())

	err := c.Run(context.Background(), inv)
	require.Error(t, err)
	assert.NotErrorIs(t, err, command.ErrRejected)
	assert.Zero(t, p.ran)
}

func TestWithGuildOnly(t *testing.T) {
	p := &probe{name: "x"}
	c := cmd.Apply(p, WithGuildOnly(), WithAdministrator())
	s := commandtest.NewSession()
	inv, _ := invocation(s, commandtest.NewEvent("x", "g", commandtest.Admin("1", "alice")).DM().Build())

	assert.ErrorIs(t, c.Run(context.Background(), inv), command.ErrRejected)
	assert.Zero(t, p.ran)
	assert.Equal(t, guildOnlyMessage, s.LastContent())
}

func TestMiddlewaresPassUnknownInvocations(t *testing.T) {
	p := &probe{name: "x"}
	c := cmd.Apply(p, WithCommandLogger(), WithGuildOnly(), WithAdministrator())
	require.NoError(t, c.Run(context.Background(), &cmd.Invocation{Data: "cli"}))
	assert.Equal(t, 1, p.ran)
}

func TestWithCommandLoggerJournals(t *testing.T) {
	st, err := storage.New(t.Context(), filepath.Join(t.TempDir(), "journal.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	ok := &probe{name: "create-invisible-role"}
	failing := &probe{name: "list-invisible", err: errors.New("boom")}
	s := commandtest.NewSession()

	run := func(c cmd.Command, member *discordgo.Member) {
		e := commandtest.NewEvent(c.Name(), "g1", member).String("name", "Ghosts").Build()
		inv, sc := invocation(s, e)
		sc.Storage = st
		sc.Logger = log
		_ = c.Run(context.Background(), inv)
	}

	run(cmd.Apply(ok, WithCommandLogger(), WithAdministrator()), commandtest.Admin("1", "alice"))
	run(cmd.Apply(ok, WithCommandLogger(), WithAdministrator()), commandtest.Member("2", "bob"))
	run(cmd.Apply(failing, WithCommandLogger(), WithAdministrator()), commandtest.Admin("1", "alice"))

	history, err := st.CommandHistory("g1")
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, "create-invisible-role", history[0].Command)
	assert.Equal(t, OutcomeOK, history[0].Outcome)
	assert.Equal(t, "alice", history[0].Username)
	assert.Equal(t, "name=Ghosts", history[0].Options)

	assert.Equal(t, OutcomeRejected, history[1].Outcome)
	assert.Equal(t, "2", history[1].UserID)

	assert.Equal(t, "list-invisible", history[2].Command)
	assert.Equal(t, OutcomeError, history[2].Outcome)

	assert.Equal(t, 3, logs.FilterMessage("Command executed").Len())
}

func TestWithCommandLoggerWithoutStorage(t *testing.T) {
	p := &probe{name: "x"}
	c := cmd.Apply(p, WithCommandLogger())
	s := commandtest.NewSession()
	inv, _ := invocation(s, commandtest.NewEvent("x", "g", commandtest.Admin("1", "alice")).Build())

	require.NoError(t, c.Run(context.Background(), inv))
	assert.Equal(t, 1, p.ran)
}
