package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Makepad-fr/tada/internal/app"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

const (
	tuiWidth    = 80
	tuiHeight   = 20
	progressLen = 28
)

// usageError marks a mistake on the command line rather than at runtime.
type usageError struct {
	err  error
	hint string
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(hint, format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...), hint: hint}
}

// runner carries what PersistentPreRunE builds for the subcommands.
type runner struct {
	cfgFile string
	verbose bool

	v       *viper.Viper
	cfg     config.Config
	log     *zap.Logger
	backend store.Backend
	store   *store.ItemStore
}

// NewRootCmd builds the command tree. Without a subcommand it starts the TUI.
func NewRootCmd() *cobra.Command { return (&runner{}).rootCmd() }

func (r *runner) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tada",
		Short: "tada - a single todo list for your terminal",
		Long: `tada keeps one todo list and shows it either as a full screen list
(run without arguments) or through the scripted subcommands below.

Configuration sources, highest first:
  1. flags
  2. environment variables (TADA_*, e.g. TADA_STORAGE_BACKEND=sqlite)
  3. config file (--config, ./tada.yaml or ~/.tada/tada.yaml)
  4. defaults`,
		Args:              noArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: r.setup,
		RunE:              r.runTUI,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err, hint: "Hint: run `tada --help`"}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&r.cfgFile, "config", "", "config file (default ./tada.yaml or ~/.tada/tada.yaml)")
	flags.String("backend", config.BackendJSON, "storage backend (json|sqlite|memory)")
	flags.String("data", "", "data file for the json and sqlite backends")
	flags.String("key", config.DefaultKey, "storage key the list is kept under")
	flags.String("order", config.OrderNewestFirst, "display order (newest-first|oldest-first)")
	flags.String("theme", "classic", "colour theme (classic|neon|mono)")
	flags.String("color", "auto", "colour output (auto|always|never)")
	flags.String("log-file", "", "write a JSON log to this file")
	flags.BoolVarP(&r.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		r.addCmd(),
		r.lsCmd(),
		r.doneCmd(),
		r.rmCmd(),
		r.clearCmd(),
		r.exportCmd(),
	)
	return root
}

// flagKeys maps persistent flags onto config keys.
var flagKeys = map[string]string{
	"backend":  config.KeyBackend,
	"data":     config.KeyPath,
	"key":      config.KeyListKey,
	"order":    config.KeyOrder,
	"theme":    config.KeyTheme,
	"color":    config.KeyColor,
	"log-file": config.KeyLogFile,
}

func (r *runner) setup(cmd *cobra.Command, _ []string) error {
	r.v = config.New(r.cfgFile)
	for name, key := range flagKeys {
		if err := r.v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return err
		}
	}
	cfg, err := config.Load(r.v)
	if err != nil {
		return &usageError{err: err, hint: "Hint: check --config and the TADA_* environment"}
	}
	r.cfg = cfg

	ui.SetTheme(cfg.UI.Theme)
	ui.SetColorMode(cfg.UI.Color)

	if r.log, err = logging.New(cfg.Log, r.verbose); err != nil {
		return err
	}
	if r.backend, err = store.Open(cfg.Storage); err != nil {
		return err
	}
	r.store = store.New(r.backend, store.WithKey(cfg.Storage.Key), store.WithLogger(r.log))
	r.log.Debug("configured",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("key", cfg.Storage.Key),
		zap.String("config", r.v.ConfigFileUsed()),
	)
	return nil
}

func (r *runner) close() {
	if r.backend != nil {
		if err := r.backend.Close(); err != nil {
			r.log.Warn("close backend", zap.Error(err))
		}
		r.backend = nil
	}
	if r.log != nil {
		_ = r.log.Sync()
	}
}

func (r *runner) order() tui.DisplayOrder { return tui.ParseOrder(r.cfg.View.Order) }

func (r *runner) runTUI(*cobra.Command, []string) error {
	view := tui.NewListView(tuiWidth, tuiHeight, r.order())
	ctrl := app.New(r.store, view, app.WithLogger(r.log))
	return tui.Run(ctrl, view)
}

// Execute runs the command line in args and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	r := &runner{}
	root := r.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteC()
	r.close()
	if err == nil {
		return ExitOK
	}

	ui.Fail(stderr, err.Error())
	var ue *usageError
	if errors.As(err, &ue) {
		if ue.hint != "" {
			ui.Hint(stderr, ue.hint)
		} else if cmd != nil {
			ui.Hint(stderr, cmd.UseLine())
		}
		return ExitUsage
	}
	return ExitError
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("Hint: run `tada --help` for the list of subcommands", "unknown command %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: "+cmd.UseLine(), "%s: accepts %d arg(s), received %d", cmd.Name(), n, len(args))
		}
		return nil
	}
}
