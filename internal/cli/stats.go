package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show ticket counts for one user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profileID, err := a.profileID()
			if err != nil {
				return err
			}
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			snapshots, err := a.snapshots(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := snapshots.StatsByEmail(cmd.Context(), profileID, email)
			if err != nil {
				return err
			}
			if a.flags.format != "" {
				format, err := formatFor("", a.flags.format)
				if err != nil {
					return err
				}
				return encode(cmd.OutOrStdout(), format, stats)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total:       %d\n", stats.Total)
			fmt.Fprintf(out, "Open:        %d\n", stats.Open)
			fmt.Fprintf(out, "In Progress: %d\n", stats.InProgress)
			fmt.Fprintf(out, "Closed:      %d\n", stats.Closed)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email of the user")
	return cmd
}

func newUsersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the users of a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profileID, err := a.profileID()
			if err != nil {
				return err
			}
			snapshots, err := a.snapshots(cmd.Context())
			if err != nil {
				return err
			}
			users, err := snapshots.Users(cmd.Context(), profileID)
			if err != nil {
				return err
			}
			if a.flags.format != "" {
				format, err := formatFor("", a.flags.format)
				if err != nil {
					return err
				}
				return encode(cmd.OutOrStdout(), format, users)
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users found.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EMAIL\tNAME\tTICKETS\tOPEN\tSESSION")
			for _, u := range users {
				session := ""
				if u.LoggedIn {
					session = "active"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", u.Email, u.Name, u.Stats.Total, u.Stats.Open, session)
			}
			return tw.Flush()
		},
	}
}
