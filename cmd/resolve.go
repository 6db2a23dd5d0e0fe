package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/portrait-quiz/internal/portrait"
)

func newResolveCmd() *cobra.Command {
	var showHint bool

	cmd := &cobra.Command{
		Use:   "resolve <title>",
		Short: "Find a stable portrait for one article title.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := envFrom(cmd)
			if err != nil {
				return err
			}
			comps, err := buildComponents(cmd.Context(), e.cfg, e.logger, false)
			if err != nil {
				return err
			}
			defer comps.Close()

			title := args[0]
			res, err := comps.resolver.Resolve(cmd.Context(), title)
			if errors.Is(err, portrait.ErrNotFound) {
				return fmt.Errorf("no stable portrait found for %q", title)
			}
			if err != nil {
				return fmt.Errorf("resolve %q: %w", title, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "title:    %s\n", res.Title)
			fmt.Fprintf(out, "image:    %s\n", res.URL)
			fmt.Fprintf(out, "strategy: %s\n", res.Strategy)
			fmt.Fprintf(out, "aliases:  %v\n", portrait.MakeAliases(title))
			if showHint {
				extract, err := comps.wiki.Extract(cmd.Context(), title)
				if err != nil {
					return fmt.Errorf("extract %q: %w", title, err)
				}
				fmt.Fprintf(out, "hint:     %s\n", comps.masker.Mask(title, extract))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showHint, "hint", false, "also print the masked biography hint")
	return cmd
}
