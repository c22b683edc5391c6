package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticketapp/internal/config"
	"github.com/spec-kit/ticketapp/internal/persistence"
)

func newMigrateCmd(a *app) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := persistence.MigrationNames()
			if err != nil {
				return err
			}
			if list {
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			if a.cfg.Storage.Driver != config.StoragePostgres {
				return fmt.Errorf("migrate needs the postgres driver, got %q", a.cfg.Storage.Driver)
			}

			// persistence.Open would migrate on connect; migrate here explicitly.
			a.cfg.Postgres.RunMigrations = false
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			pg, ok := store.(*persistence.Postgres)
			if !ok {
				return fmt.Errorf("storage %T is not postgres", store)
			}
			if err := persistence.RunMigrations(cmd.Context(), pg.PoolHandle(), a.logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", len(names))
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "print the embedded migrations without applying them")
	return cmd
}
