package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently archived quiz entries.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := envFrom(cmd)
			if err != nil {
				return err
			}
			if e.cfg.DB.DSN == "" {
				return fmt.Errorf("history requires db.dsn")
			}
			comps, err := buildComponents(cmd.Context(), e.cfg, e.logger, true)
			if err != nil {
				return err
			}
			defer comps.Close()

			entries, err := comps.archive.RecentEntries(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ACCEPTED\tSOURCE\tSTRATEGY\tNAME\tIMAGE")
			for _, entry := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					entry.AcceptedAt.Format(time.RFC3339),
					entry.Source,
					entry.Strategy,
					entry.Name,
					entry.ImageURL,
				)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to list")
	return cmd
}
