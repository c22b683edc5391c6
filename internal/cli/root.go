package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/config"
	"github.com/spec-kit/ticketapp/internal/observability"
	"github.com/spec-kit/ticketapp/internal/persistence"
	"github.com/spec-kit/ticketapp/internal/repository"
	"github.com/spec-kit/ticketapp/internal/service"
)

// StoreOpener builds the store a command runs against.
type StoreOpener func(ctx context.Context, cfg config.Config, logger *zap.Logger) (persistence.Store, error)

// Options lets callers replace how configuration and storage are obtained.
type Options struct {
	Version    string
	LoadConfig func() (*config.Config, error)
	OpenStore  StoreOpener
}

type flags struct {
	profile string
	storage string
	format  string
}

// app is the state shared by the subcommands of one invocation.
type app struct {
	opts   Options
	flags  flags
	cfg    *config.Config
	logger *zap.Logger
	store  persistence.Store
}

// NewRootCommand assembles ticketctl.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}
	if opts.OpenStore == nil {
		opts.OpenStore = persistence.Open
	}
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:   "ticketctl",
		Short: "Operator tool for ticketapp profiles",
		Long: `ticketctl inspects and moves the persisted state of ticketapp
profiles: the user directory, embedded tickets and the active session.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			return a.loadConfig()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVarP(&a.flags.profile, "profile", "p", "", "profile id (UUID) to operate on")
	root.PersistentFlags().StringVar(&a.flags.storage, "storage", "", "storage driver override (memory, redis, postgres)")
	root.PersistentFlags().StringVarP(&a.flags.format, "format", "f", "", "output format: json or yaml")

	root.AddCommand(
		newExportCmd(a),
		newImportCmd(a),
		newStatsCmd(a),
		newUsersCmd(a),
		newMigrateCmd(a),
		newVersionCmd(a),
	)
	return root
}

// Execute runs ticketctl with the default configuration sources.
func Execute(version string) error {
	return NewRootCommand(Options{Version: version}).Execute()
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ticketctl %s\n", a.opts.Version)
		},
	}
}

func (a *app) loadConfig() error {
	cfg, err := a.opts.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.flags.storage != "" {
		cfg.Storage.Driver = a.flags.storage
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	// stdout carries command output.
	cfg.Logger.Output = "stderr"
	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// openStore connects lazily so commands like migrate --list need no backend.
func (a *app) openStore(ctx context.Context) (persistence.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := a.opts.OpenStore(ctx, *a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", a.cfg.Storage.Driver, err)
	}
	a.store = store
	return store, nil
}

func (a *app) snapshots(ctx context.Context) (*service.SnapshotService, error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	return service.NewSnapshotService(
		repository.NewDirectoryRepository(store),
		repository.NewSessionRepository(store),
		a.logger,
	), nil
}

func (a *app) profileID() (string, error) {
	if a.flags.profile == "" {
		return "", fmt.Errorf("--profile is required")
	}
	id, err := uuid.Parse(a.flags.profile)
	if err != nil {
		return "", fmt.Errorf("invalid profile id %q: %w", a.flags.profile, err)
	}
	return id.String(), nil
}

func (a *app) close() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}
