package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLsCommand(app *App) *cobra.Command {
	sel := &selectionFlags{}

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List checks after applying filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			crit, err := sel.criteria()
			if err != nil {
				return err
			}
			cfg, err := app.setup()
			if err != nil {
				return err
			}

			svc := app.service(cfg)
			selected, err := svc.ListMatching(cmd.Context(), sel.tagFilter(), crit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d check(s) matched.\n", len(selected))
			for _, c := range selected {
				fmt.Fprintf(out, "- %s  [%s]  tags='%s'  slug='%s'  uuid=%s\n",
					c.DisplayName(), c.Status, c.Tags, c.Slug, c.UUID)
			}
			return nil
		},
	}

	sel.register(cmd)
	return cmd
}
