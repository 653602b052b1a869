package commands_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskman/internal/commands"
	"taskman/internal/credential"
	"taskman/internal/exitcode"
)

func loggedOut() *env {
	e := newEnv()
	e.creds = credential.NewMemoryStore("")
	return e
}

func TestLoginCommand(t *testing.T) {
	e := loggedOut()
	e.svc.AddUser("ada", "secret")

	stdout, stderr, code := runCommand(t, &commands.LoginCmd{}, e, "-u", "ada", "--password", "secret")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "ok\n", stdout)
	tok, ok := e.creds.Get()
	assert.True(t, ok)
	assert.Equal(t, "token-ada", tok)
}

func TestLoginCommand_InvalidCredentials(t *testing.T) {
	e := loggedOut()
	e.svc.AddUser("ada", "secret")

	stdout, stderr, code := runCommand(t, &commands.LoginCmd{}, e, "--username", "ada", "--password", "wrong")

	assert.Equal(t, exitcode.AuthError, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "error: invalid username or password\n", stderr)
	_, ok := e.creds.Get()
	assert.False(t, ok)
}

func TestLoginCommand_BackendDown(t *testing.T) {
	e := loggedOut()
	e.svc.LoginErr = errors.New("connection refused")

	_, stderr, code := runCommand(t, &commands.LoginCmd{}, e, "-u", "ada", "--password", "x")

	assert.Equal(t, exitcode.BackendError, code)
	assert.Equal(t, "error: backend error: connection refused\n", stderr)
}

func TestLoginCommand_MissingValuesWithoutTerminal(t *testing.T) {
	defer commands.SetStdinIsTerminal(false)()
	e := loggedOut()

	_, stderr, code := runCommand(t, &commands.LoginCmd{}, e, "-u", "ada")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: username and password required\n", stderr)
	_, ok := e.creds.Get()
	assert.False(t, ok)
}

func TestLoginCommand_FlagsReset(t *testing.T) {
	defer commands.SetStdinIsTerminal(false)()
	e := loggedOut()
	e.svc.AddUser("ada", "secret")
	cmd := &commands.LoginCmd{}

	_, _, code := runCommand(t, cmd, e, "-u", "ada", "--password", "secret")
	require.Equal(t, exitcode.Success, code)

	// a second parse must not see the previous password
	_, stderr, code := runCommand(t, cmd, e, "-u", "ada")
	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: username and password required\n", stderr)
}

func TestRegisterCommand(t *testing.T) {
	e := loggedOut()

	stdout, stderr, code := runCommand(t, &commands.RegisterCmd{}, e, "--username", "ada", "--email", "ada@example.com", "--password", "secret")

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "ok (run: taskman login)\n", stdout)
	_, ok := e.creds.Get()
	assert.False(t, ok, "register does not log in")

	_, stderr, code = runCommand(t, &commands.LoginCmd{}, e, "-u", "ada", "--password", "secret")
	assert.Equal(t, exitcode.Success, code, stderr)
}

func TestRegisterCommand_Duplicate(t *testing.T) {
	e := loggedOut()
	e.svc.AddUser("ada", "secret")

	_, stderr, code := runCommand(t, &commands.RegisterCmd{}, e, "--username", "ada", "--email", "a@example.com", "--password", "x")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: rejected by server: request failed: 400 Bad Request: username: A user with that username already exists.\n", stderr)
}

func TestRegisterCommand_MissingEmailWithoutTerminal(t *testing.T) {
	defer commands.SetStdinIsTerminal(false)()

	_, stderr, code := runCommand(t, &commands.RegisterCmd{}, loggedOut(), "--username", "ada", "--password", "x")

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: username, email and password required\n", stderr)
}

func TestLogoutCommand(t *testing.T) {
	e := newEnv()

	stdout, stderr, code := runCommand(t, &commands.LogoutCmd{}, e)
	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	assert.Equal(t, "ok\n", stdout)
	_, ok := e.creds.Get()
	assert.False(t, ok)

	stdout, _, code = runCommand(t, &commands.LogoutCmd{}, e)
	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "not logged in\n", stdout)
}

func TestLogoutCommand_Quiet(t *testing.T) {
	e := newEnv()
	e.quiet = true

	stdout, _, code := runCommand(t, &commands.LogoutCmd{}, e)

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stdout)
}

func TestTUICommand_RequiresTerminal(t *testing.T) {
	defer commands.SetStdinIsTerminal(false)()

	_, stderr, code := runCommand(t, &commands.TUICmd{}, newEnv())

	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "terminal")
}

func TestRegistry_RejectsTakenNames(t *testing.T) {
	r := commands.NewRegistry()
	require.NoError(t, r.Register(&commands.ListCmd{}))

	assert.Error(t, r.Register(&commands.ListCmd{}))
	assert.Error(t, r.Register(aliasCmd{VersionCmd: &commands.VersionCmd{}, name: "ls"}))
	assert.Error(t, r.Register(aliasCmd{VersionCmd: &commands.VersionCmd{}, name: "other", aliases: []string{"list"}}))

	cmd, ok := r.Find("ls")
	require.True(t, ok)
	assert.Equal(t, "list", cmd.Name())
}

func TestRegistry_Default(t *testing.T) {
	r := commands.NewRegistry()
	_, ok := r.Default()
	assert.False(t, ok)

	require.NoError(t, r.Register(&commands.ListCmd{}))
	r.SetDefault("list")
	cmd, ok := r.Default()
	require.True(t, ok)
	assert.Equal(t, "list", cmd.Name())
}

func TestRegistry_WriteSummary(t *testing.T) {
	r := commands.NewRegistry()
	require.NoError(t, r.Register(&commands.RmCmd{}))
	require.NoError(t, r.Register(&commands.ListCmd{}))

	var buf bytes.Buffer
	r.WriteSummary(&buf)

	assert.Equal(t, "  list (ls)    List tasks\n  rm (delete)  Delete a task\n", buf.String())
}

type aliasCmd struct {
	*commands.VersionCmd
	name    string
	aliases []string
}

func (c aliasCmd) Name() string      { return c.name }
func (c aliasCmd) Aliases() []string { return c.aliases }
