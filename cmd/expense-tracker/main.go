package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/example/expense-tracker/internal/config"
	"github.com/example/expense-tracker/internal/shell"
	"github.com/example/expense-tracker/internal/storage"
	"github.com/example/expense-tracker/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	cli     = &app{}
	rootCmd = newRootCmd(cli)
)

func main() {
	err := rootCmd.Execute()
	cli.close()
	if err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// reportedError marks a failure that was already shown to the user
type reportedError struct {
	error
}

// rootOptions holds the global flags of one command tree
type rootOptions struct {
	cfgFile   string
	storePath string
	backend   string
	debug     bool
}

// app is the session shared by every command: configuration, logger and
// the store handle, opened on first use.
type app struct {
	fs  afero.Fs
	now func() time.Time

	cfg    *config.Config
	logger *log.Logger
	ledger *store.Store
	closer io.Closer
}

func newRootCmd(a *app) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "expense-tracker",
		Short: "Record purchases and track spending against a budget",
		Long: `Expense Tracker keeps a list of purchases (item name, price, date) in a
local file, shows them as a table, and totals them against your budget.

Example:
  expense-tracker save --name Coffee --price 3.50 --today
  expense-tracker total-balance --budget 5000
  expense-tracker shell`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(opts, cmd.ErrOrStderr())
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Expense Tracker v%s\n", version)
			fmt.Fprintln(cmd.OutOrStdout(), "Use --help for available commands")
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./expense-tracker.toml)")
	cmd.PersistentFlags().StringVar(&opts.storePath, "store", "", "store location, overrides store.path")
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "store backend: file, sqlite or bolt")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newListCmd(a),
		newSaveCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newShowCmd(a),
		newTotalSpentCmd(a),
		newTotalBalanceCmd(a),
		newTodayCmd(a),
		newExportCmd(a),
		newShellCmd(a),
	)

	return cmd
}

// setup loads configuration and the logger once per session
func (a *app) setup(opts *rootOptions, logOut io.Writer) error {
	if a.cfg != nil {
		return nil
	}

	// Try to load .env from current directory (ignore error if not found)
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(opts.cfgFile)
	if err != nil {
		return err
	}
	if opts.storePath != "" {
		cfg.Store.Path = opts.storePath
	}
	if opts.backend != "" {
		cfg.Store.Backend = opts.backend
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid configuration: log.level: %w", err)
	}
	if opts.debug {
		level = log.DebugLevel
	}

	a.cfg = cfg
	a.logger = log.NewWithOptions(logOut, log.Options{
		Prefix: "expense-tracker",
		Level:  level,
	})
	if a.fs == nil {
		a.fs = afero.NewOsFs()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return nil
}

// openLedger opens the store on first use
func (a *app) openLedger() (*store.Store, error) {
	if a.ledger != nil {
		return a.ledger, nil
	}

	a.logger.Debug("opening store", "backend", a.cfg.Store.Backend, "path", a.cfg.Store.Path)
	adapter, closer, err := openAdapter(a.fs, a.cfg.Store)
	if err != nil {
		return nil, err
	}

	ledger, err := store.Initialize(adapter, a.logger)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}

	a.ledger = ledger
	a.closer = closer
	return ledger, nil
}

func (a *app) close() {
	if a.closer == nil {
		return
	}
	if err := a.closer.Close(); err != nil {
		a.logger.Warn("failed to close store", "err", err)
	}
	a.closer = nil
}

func openAdapter(fs afero.Fs, sc config.StoreConfig) (store.Adapter, io.Closer, error) {
	switch sc.Backend {
	case config.BackendSQLite:
		db, err := storage.OpenSQL(sc.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case config.BackendBolt:
		db, err := storage.OpenBolt(sc.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	default:
		return storage.NewFileAdapter(fs, sc.Path), nil, nil
	}
}

// run dispatches action against the session store
func (a *app) run(cmd *cobra.Command, action shell.Action) error {
	ledger, err := a.openLedger()
	if err != nil {
		return a.fail(cmd, err)
	}

	a.logger.Debug("dispatch", "action", action.Name())
	if err := shell.Dispatch(ledger, action, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
		return reportedError{err}
	}
	return nil
}

// fail shows err to the user and marks it as reported
func (a *app) fail(cmd *cobra.Command, err error) error {
	if rerr := shell.ErrorView(err).Render(cmd.ErrOrStderr()); rerr != nil {
		return rerr
	}
	return reportedError{err}
}
