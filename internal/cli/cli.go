// Package cli implements the chargen command-line interface on cobra.
//
// Every subcommand builds a parameter map from its flags and runs it through the
// shared CommandExecutor, so the CLI, the HTTP API and the TUI agree on validation
// and error codes. Rendered templates go to stdout; counts, statuses and errors go
// to stderr so output can be piped into a file.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dpshade/character-template/internal/clipboard"
	"github.com/dpshade/character-template/internal/commands"
	"github.com/dpshade/character-template/internal/config"
	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/logger"
	"github.com/dpshade/character-template/internal/service"
)

// CLI provides the command-line interface
type CLI struct {
	version string
	out     io.Writer
	errOut  io.Writer
	in      io.Reader

	prompter  Prompter
	clipboard clipboard.Copier

	configPath string
	logLevel   string

	cfg          *config.Config
	log          *zap.Logger
	service      *service.Service
	executor     *commands.CommandExecutor
	errorHandler *errors.CLIErrorHandler
}

// Options configures a CLI. Nil streams default to the process stdio.
type Options struct {
	Version   string
	Out       io.Writer
	Err       io.Writer
	In        io.Reader
	Prompter  Prompter
	Clipboard clipboard.Copier
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	c := &CLI{
		version:      opts.Version,
		out:          opts.Out,
		errOut:       opts.Err,
		in:           opts.In,
		prompter:     opts.Prompter,
		clipboard:    opts.Clipboard,
		log:          zap.NewNop(),
		errorHandler: errors.NewCLIErrorHandler(nil, false),
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	if c.errOut == nil {
		c.errOut = os.Stderr
	}
	if c.in == nil {
		c.in = os.Stdin
	}
	if c.prompter == nil {
		c.prompter = newSurveyPrompter()
	}
	if c.version == "" {
		c.version = "dev"
	}
	return c
}

// Execute runs the CLI with the process arguments and returns the exit code
func Execute(version string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := NewCLI(Options{Version: version})
	return c.Run(ctx, os.Args[1:])
}

// Run executes args and returns the exit code
func (c *CLI) Run(ctx context.Context, args []string) int {
	root := c.RootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	defer c.log.Sync()
	if err != nil {
		fmt.Fprintln(c.errOut, c.errorHandler.HandleError(err))
		return 1
	}
	return 0
}

// RootCommand builds the command tree
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "chargen",
		Short: "Generate F++/S++/P++ character templates",
		Long: `chargen renders character sheet templates in three formats and counts
their approximate tokens.

Formats:
  F++   Appearance & style
  S++   Role/Scenario details
  P++   Personality & logic

Running chargen without a command starts the interactive editor.`,
		Annotations:   map[string]string{"interactive": "true"},
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd)
		},
	}

	root.SetOut(c.out)
	root.SetErr(c.errOut)
	root.SetIn(c.in)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		c.generateCommand(),
		c.countCommand(),
		c.formatsCommand(),
		c.skeletonCommand(),
		c.referenceCommand(),
		c.traitsCommand(),
		c.serveCommand(),
		c.tuiCommand(),
		c.envCommand(),
		c.versionCommand(),
	)

	return root
}

// setup loads configuration and builds the service for the command about to run
func (c *CLI) setup(cmd *cobra.Command) error {
	if cmd.Annotations["skipSetup"] == "true" {
		return nil
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	c.cfg = cfg

	logCfg := cfg.Log.Logger()
	if cmd.Annotations["interactive"] == "true" {
		// the terminal belongs to the UI; log to a file or nowhere
		logCfg.OutputPath = cfg.Log.File
	}
	if cmd.Annotations["interactive"] == "true" && logCfg.OutputPath == "" {
		c.log = zap.NewNop()
	} else {
		c.log = logger.Must(logCfg)
	}

	verbose := c.log.Core().Enabled(zap.DebugLevel)
	c.errorHandler = errors.NewCLIErrorHandler(c.log, verbose)

	c.service, err = service.NewService(service.Options{
		Counter:   cfg.Counter(),
		ExportDir: cfg.Export.Dir,
		Clipboard: c.clipboard,
		Logger:    c.log,
		Version:   c.version,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageFailure, "Failed to initialize service")
	}
	c.executor = commands.NewCommandExecutor(c.service)

	c.log.Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("token_strategy", cfg.Tokens.Strategy),
		zap.String("export_dir", cfg.Export.Dir),
	)
	return nil
}

// execute runs a named command and turns a failed result into an error
func (c *CLI) execute(ctx context.Context, name string, params map[string]interface{}) (*commands.CommandResult, error) {
	result, err := c.executor.Execute(ctx, name, params)
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// status prints an informational line to stderr
func (c *CLI) status(format string, args ...interface{}) {
	fmt.Fprintf(c.errOut, format+"\n", args...)
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipSetup": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.out, "chargen version %s\n", c.version)
		},
	}
}

func (c *CLI) envCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "env",
		Short:       "Describe the environment variables read at startup",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipSetup": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(c.out, config.Usage())
		},
	}
}
