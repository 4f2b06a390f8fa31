// Package cli wires configuration, storage and services into the contactbook command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/contactbook/internal/application/service"
	"github.com/eshaffer321/contactbook/internal/infrastructure/config"
	"github.com/eshaffer321/contactbook/internal/infrastructure/logging"
	"github.com/eshaffer321/contactbook/internal/infrastructure/storage"
)

// app holds state shared by all subcommands once the root pre-run has loaded config.
type app struct {
	configPath string
	dbPath     string
	verbose    bool
	clock      service.Clock

	cfg      *config.Config
	location *time.Location
}

// NewRootCommand builds the contactbook command tree.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(version, service.RealClock{})
}

func newRootCommand(version string, clock service.Clock) *cobra.Command {
	a := &app{clock: clock}

	root := &cobra.Command{
		Use:     "contactbook",
		Short:   "Contact book with upcoming birthday lookups",
		Version: version,
		Long: `contactbook stores contacts in SQLite and answers "whose birthday is coming up?".

It can run as an HTTP API (serve) or be used directly from the command line
to list upcoming birthdays and to import or export vCard files.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "config.yaml", "config file; environment variables are used when it is missing")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (overrides config)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.newServeCommand(),
		a.newBirthdaysCommand(),
		a.newImportCommand(),
		a.newExportCommand(),
	)
	return root
}

// setup loads .env files and configuration before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	config.LoadDotEnv()

	a.cfg = config.LoadOrEnv_WithPath(a.configPath)
	if a.dbPath != "" {
		a.cfg.Storage.DatabasePath = a.dbPath
	}
	if a.verbose {
		a.cfg.Observability.Logging.Level = "debug"
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	loc, err := a.cfg.Birthdays.Location()
	if err != nil {
		return fmt.Errorf("birthdays timezone: %w", err)
	}
	a.location = loc
	return nil
}

func (a *app) logger(cmd *cobra.Command, system string) *slog.Logger {
	return logging.NewLoggerTo(cmd.ErrOrStderr(), a.cfg.Observability.Logging).With("system", system)
}

// openService opens the database and builds the contact service on top of it.
// The returned close func releases the database.
func (a *app) openService(logger *slog.Logger) (*service.ContactService, func(), error) {
	store, err := storage.NewStorage(a.cfg.Storage.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w", a.cfg.Storage.DatabasePath, err)
	}
	svc := service.NewContactService(store, a.clock, a.location, logger)
	return svc, func() { _ = store.Close() }, nil
}

// Execute runs the root command with ctx, which is cancelled on SIGINT/SIGTERM by the caller.
func Execute(ctx context.Context, version string) error {
	return NewRootCommand(version).ExecuteContext(ctx)
}
