package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ccmlink-io/ccmlink/pkg/log"
)

// RunFunc is the application's entry point, invoked after flags and the
// config file are loaded and validated.
type RunFunc func() error

// CliOptions abstracts a command's full option tree.
type CliOptions interface {
	// AddFlags registers the option tree on fs.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)

	// Validate checks the final option values.
	Validate() []error
}

// CompletableOptions lets an option tree fill in derived defaults after
// loading and before validation.
type CompletableOptions interface {
	Complete() error
}

// App wraps a cobra command with the standard plumbing every binary in this
// repo shares: flag registration, config file loading with live reload,
// validation and structured logging setup.
type App struct {
	name        string
	brief       string
	description string
	options     CliOptions
	runFunc     RunFunc
	noConfig    bool
	cmdArgs     cobra.PositionalArgs
	cmd         *cobra.Command
}

// Option configures an App during NewApp.
type Option func(*App)

// WithDescription sets the long help text.
func WithDescription(desc string) Option {
	return func(a *App) { a.description = desc }
}

// WithOptions attaches the command's option tree.
func WithOptions(opts CliOptions) Option {
	return func(a *App) { a.options = opts }
}

// WithRunFunc sets the entry point.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) { a.runFunc = run }
}

// WithDefaultValidArgs rejects all positional arguments.
func WithDefaultValidArgs() Option {
	return func(a *App) {
		a.cmdArgs = func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if len(arg) > 0 {
					return fmt.Errorf("%q does not take any arguments, got %q", cmd.CommandPath(), args)
				}
			}
			return nil
		}
	}
}

// WithNoConfig disables the --config flag and config file loading.
func WithNoConfig() Option {
	return func(a *App) { a.noConfig = true }
}

// NewApp creates an App with the given name and one-line summary.
func NewApp(name, brief string, opts ...Option) *App {
	a := &App{
		name:  name,
		brief: brief,
	}
	for _, o := range opts {
		o(a)
	}
	a.buildCommand()
	return a
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:           a.name,
		Short:         a.brief,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          a.cmdArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd)
		},
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	if a.options != nil {
		a.options.AddFlags(cmd.Flags())
	}
	if !a.noConfig {
		addConfigFlag(a.name, cmd.Flags())
	}

	a.cmd = cmd
}

func (a *App) run(cmd *cobra.Command) error {
	if !a.noConfig {
		if err := loadConfig(cmd.Flags()); err != nil {
			return err
		}
	}

	if c, ok := a.options.(CompletableOptions); ok {
		if err := c.Complete(); err != nil {
			return err
		}
	}

	if a.options != nil {
		if errs := a.options.Validate(); len(errs) > 0 {
			return aggregateErrors(errs)
		}
	}

	log.Info("Starting application", "name", a.name)
	printFlags(cmd.Flags())

	if a.runFunc != nil {
		return a.runFunc()
	}
	return nil
}

// Run parses the command line and executes the application.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Command exposes the underlying cobra command for tests.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

func aggregateErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msg := "invalid configuration:"
	for _, err := range errs {
		msg += "\n  - " + err.Error()
	}
	return fmt.Errorf("%s", msg)
}
