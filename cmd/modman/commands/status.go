package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/modman/internal/app"
	"go.trai.ch/modman/internal/ui/report"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the enabled packages of a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if watch {
				return c.app.Watch(cmd.Context(), c.paths, c.profile, func(rep *app.StatusReport, err error) {
					if err != nil {
						_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
						return
					}
					_ = c.print(cmd, rep, func(r *report.Renderer) { r.Status(rep) })
				})
			}

			rep, err := c.app.Status(cmd.Context(), c.paths, c.profile)
			if err != nil {
				return err
			}
			return c.print(cmd, rep, func(r *report.Renderer) { r.Status(rep) })
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Show the status again whenever the catalog or plugins change")

	return cmd
}
