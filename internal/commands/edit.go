package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskman/internal/config"
	"taskman/internal/exitcode"
	"taskman/internal/service"
)

func init() {
	Register(&EditCmd{})
	Register(&DoneCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct {
	fields draftFlags
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "taskman edit [--title <text>] [--description <text>] [--priority low|medium|high] [--status pending|completed] <id>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fields.register(fs, true)
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, deps Deps, args []string, out, errOut io.Writer) int {
	id, err := parseID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !c.fields.changed() {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}
	return runEdit(ctx, cfg, deps, id, c.fields.apply, out, errOut)
}

// DoneCmd marks a task completed.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "taskman done <id>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, deps Deps, args []string, out, errOut io.Writer) int {
	id, err := parseID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return runEdit(ctx, cfg, deps, id, func(d service.Draft) (service.Draft, error) {
		d.Status = service.StatusCompleted
		return d, nil
	}, out, errOut)
}

// runEdit fetches the task, opens it in the form, applies change and submits.
func runEdit(ctx context.Context, cfg *config.Config, deps Deps, id service.ID, change func(service.Draft) (service.Draft, error), out, errOut io.Writer) int {
	s := newSession(deps, errOut)

	task, err := s.get(ctx, id)
	if err != nil {
		if service.IsNotFound(err) {
			fmt.Fprintf(errOut, "error: task not found: %s\n", id)
			return exitcode.UserError
		}
		return fail(errOut, err)
	}

	s.OpenEditForm(task)
	draft, err := change(s.State().Form.Draft)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	s.SetDraft(draft)

	if err := s.submit(ctx); err != nil {
		return fail(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
