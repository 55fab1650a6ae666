package cli

import (
	"fmt"
	"io"

	"github.com/opengovern/campaign-bridge/services"
	"github.com/spf13/cobra"
)

func (a *app) templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template"},
		Short:   "Browse email templates",
	}

	var opts services.ListOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			page, err := a.svc.Templates.List(ctx, opts)
			if err != nil {
				return err
			}
			return a.render(page, func(w io.Writer) {
				row(w, "ID", "NAME", "CREATED")
				for _, t := range page.Items {
					row(w, t.ID, t.Name, formatTime(&t.CreatedAt))
				}
				fmt.Fprintf(w, "\n%d templates\n", page.Total)
			})
		},
	}
	addListFlags(list, &opts, false)
	cmd.AddCommand(list)
	return cmd
}
