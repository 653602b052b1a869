package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskman/internal/config"
	"taskman/internal/exitcode"
	"taskman/internal/tui"
)

func init() {
	Register(&TUICmd{})
}

// TUICmd starts the interactive view. It handles login itself, so it does
// not need a stored credential up front.
type TUICmd struct{}

func (c *TUICmd) Name() string      { return "tui" }
func (c *TUICmd) Aliases() []string { return []string{"ui"} }
func (c *TUICmd) Synopsis() string  { return "Interactive task view" }
func (c *TUICmd) Usage() string     { return "taskman tui" }
func (c *TUICmd) NeedsAuth() bool   { return false }

func (c *TUICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TUICmd) Run(ctx context.Context, cfg *config.Config, deps Deps, args []string, out, errOut io.Writer) int {
	if !stdinIsTerminal() {
		fmt.Fprintln(errOut, "error: tui needs a terminal")
		return exitcode.UserError
	}
	if err := tui.Run(ctx, deps.Tasks, deps.Auth, deps.Creds); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
