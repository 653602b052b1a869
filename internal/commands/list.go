package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskman/internal/config"
	"taskman/internal/exitcode"
	"taskman/internal/output"
	"taskman/internal/service"
)

func init() {
	Register(&ListCmd{})
	DefaultRegistry.SetDefault("list")
}

// ListCmd implements the list command.
// Handles both `taskman` (no args) and `taskman list`.
type ListCmd struct {
	page   int
	title  string
	status string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "taskman list [--page <n>] [--title <text>] [--status pending|completed]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.page, "page", 1, "")
	fs.StringVar(&c.title, "title", "", "")
	fs.StringVar(&c.status, "status", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, deps Deps, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	page := c.page
	if page < 1 {
		fmt.Fprintf(errOut, "error: invalid page number: %d\n", page)
		return exitcode.UserError
	}
	status, err := service.ParseStatus(c.status)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	ctrl := newSession(deps, errOut)
	if err := ctrl.Drive(ctx, ctrl.SetFilter(service.Filter{Title: c.title, Status: status})); err != nil {
		return fail(errOut, err)
	}

	if page != 1 {
		eff := ctrl.SetPage(page)
		if eff == nil {
			fmt.Fprintf(errOut, "error: page out of range: %d (of %d)\n", page, ctrl.State().LastPage())
			return exitcode.UserError
		}
		if err := ctrl.Drive(ctx, eff); err != nil {
			return fail(errOut, err)
		}
	}

	state := ctrl.State()
	if len(state.Tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	for _, task := range state.Tasks {
		output.FormatTask(out, task)
	}
	if !cfg.Quiet {
		output.FormatPageFooter(out, state.Page, state.PageCount)
	}
	return exitcode.Success
}
