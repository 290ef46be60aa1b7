package cli

import (
	"fmt"
	"time"

	"terrepro/internal/database"

	"github.com/spf13/cobra"
)

func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage stored browser sessions",
	}
	cmd.AddCommand(newSessionsPruneCommand(rootOpts))
	cmd.AddCommand(newSessionsStatsCommand(rootOpts))
	return cmd
}

func newSessionsPruneCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "prune",
		Short:        "Delete expired sessions and their CSRF tokens",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}

			db, store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := store.Prune(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to prune sessions: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired session(s)\n", n)
			return nil
		},
	}
}

func newSessionsStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "stats",
		Short:        "Show session store counters",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}

			db, _, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := database.GetSessionStats(cmd.Context(), db, time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Active sessions:  %d\n", stats.ActiveSessions)
			fmt.Fprintf(out, "Expired sessions: %d\n", stats.ExpiredSessions)
			fmt.Fprintf(out, "Logins (24h):     %d\n", stats.RecentLogins)
			fmt.Fprintf(out, "CSRF tokens:      %d\n", stats.PendingCSRF)
			return nil
		},
	}
}
