// Package cli parses the command line and dispatches to registered commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog/log"

	"taskman/internal/commands"
	"taskman/internal/config"
	"taskman/internal/credential"
	"taskman/internal/exitcode"
	"taskman/internal/logging"
	"taskman/internal/service"
)

// ServiceFactory creates the task API client from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, creds credential.Store) (service.Backend, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		cmd, ok := d.registry.Default()
		if !ok {
			fmt.Fprint(errOut, "error: no command given (run: taskman help)\n")
			return exitcode.UserError
		}
		return d.dispatchCommand(ctx, cmd, nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	apiURL    string
	logLevel  string
	quiet     bool
	debug     bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configDir, "config", "", "")
	fs.StringVar(&f.apiURL, "api-url", "", "")
	fs.StringVar(&f.logLevel, "log-level", "", "")
	fs.BoolVar(&f.quiet, "quiet", false, "")
	fs.BoolVar(&f.quiet, "q", false, "")
	fs.BoolVar(&f.debug, "debug", false, "")
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	var common commonFlags
	common.register(fs)

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", describeFlagError(err))
		return exitcode.UserError
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := loadConfig(common)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	logger, closeLog, err := logging.New(cfg.EffectiveLogLevel(), cfg.LogPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: logging: %v\n", err)
		return exitcode.UserError
	}
	defer closeLog()
	log.Logger = logger

	cliLog := logging.Component("cli")
	cliLog.Debug().
		Str("cmd", cmd.Name()).
		Str("api_url", cfg.APIURL).
		Msg("dispatch")

	creds := credential.NewFileStore(cfg.TokenPath())

	// Check auth requirements
	if cmd.NeedsAuth() {
		if _, ok := creds.Get(); !ok {
			fmt.Fprintln(errOut, "error: not logged in (run: taskman login)")
			return exitcode.AuthError
		}
	}

	deps := commands.Deps{
		Creds:  creds,
		Logger: cliLog,
	}
	if d.factory != nil {
		backend, err := d.factory(ctx, cfg, creds)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
		deps.Tasks = backend
		deps.Auth = backend
	}

	code := cmd.Run(ctx, cfg, deps, positionalArgs, out, errOut)
	cliLog.Debug().Str("cmd", cmd.Name()).Int("code", code).Msg("done")
	return code
}

// loadConfig reads config for the chosen directory and applies flag overrides.
func loadConfig(common commonFlags) (*config.Config, error) {
	cfg, err := config.Load(common.configDir)
	if err != nil {
		return nil, err
	}
	if common.apiURL != "" {
		cfg.APIURL = common.apiURL
	}
	if common.logLevel != "" {
		cfg.LogLevel = common.logLevel
	}
	cfg.Quiet = common.quiet
	cfg.Debug = common.debug

	if err := cfg.Validate(); err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			parts := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				parts = append(parts, fmt.Sprintf("%s: %v", fe.Field, fe.Err))
			}
			return nil, fmt.Errorf("invalid config: %s", strings.Join(parts, "; "))
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func describeFlagError(err error) string {
	errStr := err.Error()

	// Missing flag value
	if strings.HasPrefix(errStr, "flag needs an argument:") {
		flagPart := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		return "flag needs an argument: " + flagPart
	}

	// Unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		return "unknown flag: " + strings.TrimPrefix(errStr, "flag provided but not defined: ")
	}

	return errStr
}
