package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticketapp/internal/service"
)

func newExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a profile snapshot",
		Long: `Export writes the user directory and session of a profile.
Paths ending in .yaml or .yml produce YAML, anything else JSON; a trailing
.zst compresses the file with zstd.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profileID, err := a.profileID()
			if err != nil {
				return err
			}
			format, err := formatFor(output, a.flags.format)
			if err != nil {
				return err
			}
			snapshots, err := a.snapshots(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := snapshots.Export(cmd.Context(), profileID)
			if err != nil {
				return err
			}
			if err := writeFile(cmd.OutOrStdout(), output, format, snap); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d user(s) to %s\n", len(snap.Users), output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file (default stdout)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace a profile with a snapshot",
		Long: `Import replaces the user directory and session of a profile with
the snapshot in file ("-" reads stdin). Emails must be unique and the
session, if any, must belong to an imported user.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profileID, err := a.profileID()
			if err != nil {
				return err
			}
			path := args[0]
			format, err := formatFor(path, a.flags.format)
			if err != nil {
				return err
			}
			var snap service.Snapshot
			if err := readFile(cmd.InOrStdin(), path, format, &snap); err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			snapshots, err := a.snapshots(cmd.Context())
			if err != nil {
				return err
			}
			if err := snapshots.Import(cmd.Context(), profileID, snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d user(s) into profile %s\n", len(snap.Users), profileID)
			return nil
		},
	}
}
