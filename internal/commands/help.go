package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskman/internal/config"
	"taskman/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskman help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, deps Deps, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	fmt.Fprintln(out, "\nCommands:")
	DefaultRegistry.WriteSummary(out)
	return exitcode.Success
}

const helpText = `Usage:
  taskman                                   List tasks (page 1, no filter)
  taskman list [common flags] [--page <n>] [--title <text>] [--status pending|completed]
  taskman show [common flags] <id>
  taskman add [common flags] [--description <text>] [--priority <p>] [--status <s>] <title...>
  taskman edit [common flags] [--title <text>] [--description <text>] [--priority <p>] [--status <s>] <id>
  taskman done [common flags] <id>
  taskman rm [common flags] <id>
  taskman tui [common flags]
  taskman login [common flags] [--username <name>] [--password <pass>]
  taskman register [common flags] [--username <name>] [--email <addr>] [--password <pass>]
  taskman logout [common flags]
  taskman help
  taskman version

Common flags:
  --config <dir>       Override config directory
  --api-url <url>      Override the task API address
  --log-level <level>  Log level (trace, debug, info, warn, error)
  --quiet              Suppress informational output
  --debug              Log at debug level
`
