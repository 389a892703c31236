package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/modman/internal/ui/report"
)

func (c *CLI) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <package>",
		Short: "Explain why each variant of a package is or is not compatible",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.app.Check(cmd.Context(), c.paths, c.profile, args[0])
			if err != nil {
				return err
			}
			return c.print(cmd, rep, func(r *report.Renderer) { r.Check(rep) })
		},
	}
}
