package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"

	"taskman/internal/config"
	"taskman/internal/exitcode"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	username string
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in and store the credential" }
func (c *LoginCmd) Usage() string     { return "taskman login [--username <name>] [--password <pass>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.username, "u", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, deps Deps, args []string, out, errOut io.Writer) int {
	username, password := c.username, c.password
	err := promptMissing(
		field{title: "Username", value: &username},
		field{title: "Password", value: &password, secret: true},
	)
	if code, done := promptFailed(err, errOut, "username and password required"); done {
		return code
	}

	token, err := deps.Auth.Login(ctx, username, password)
	if err != nil {
		deps.Logger.Warn().Err(err).Str("username", username).Msg("login failed")
		return fail(errOut, err)
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := deps.Creds.Set(token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}

	deps.Logger.Info().Str("username", username).Msg("logged in")
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// RegisterCmd creates an account. It does not log in.
type RegisterCmd struct {
	username string
	email    string
	password string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "taskman register [--username <name>] [--email <addr>] [--password <pass>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.username, "u", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, deps Deps, args []string, out, errOut io.Writer) int {
	username, email, password := c.username, c.email, c.password
	err := promptMissing(
		field{title: "Username", value: &username},
		field{title: "Email", value: &email},
		field{title: "Password", value: &password, secret: true},
	)
	if code, done := promptFailed(err, errOut, "username, email and password required"); done {
		return code
	}

	if err := deps.Auth.Register(ctx, username, email, password); err != nil {
		return fail(errOut, err)
	}

	deps.Logger.Info().Str("username", username).Msg("registered")
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok (run: taskman login)")
	}
	return exitcode.Success
}

// promptFailed reports a prompt error. done is false when err is nil.
func promptFailed(err error, errOut io.Writer, missing string) (code int, done bool) {
	switch {
	case err == nil:
		return 0, false
	case errors.Is(err, huh.ErrUserAborted):
		fmt.Fprintln(errOut, "error: cancelled")
	case errors.Is(err, errNoTTY):
		fmt.Fprintf(errOut, "error: %s\n", missing)
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return exitcode.UserError, true
}
