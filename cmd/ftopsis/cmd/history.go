package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Ftopsis/internal/store"
)

func newHistoryCommand(root *rootOptions) *cobra.Command {
	var filter store.RunFilter
	var status string

	c := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.load()
			if err != nil {
				return err
			}
			if status != "" {
				st := store.RunStatus(status)
				filter.Status = &st
			}

			s, err := historyStore(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer s.Close()

			runs, err := s.ListRuns(cmd.Context(), filter)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN ID\tMODE\tKIND\tSTATUS\tSOURCE\tCREATED")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, dash(r.Mode), dash(r.Kind), r.Status, dash(r.Source), r.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	c.Flags().IntVarP(&filter.Limit, "limit", "l", 20, "maximum runs to list")
	c.Flags().StringVar(&status, "status", "", "only runs with this status")
	c.Flags().StringVar(&filter.Mode, "mode", "", "only runs with this mode")
	c.Flags().StringVar(&filter.Source, "source", "", "only runs from this source")
	return c
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
