// Package cli implements the giftora command tree.
package cli

import "github.com/spf13/cobra"

// NewRootCmd builds the giftora root command tree.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "giftora",
		Short:         "Greeting-card template catalog and editable-markup toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newServeCmd(version))
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newTransformCmd())
	cmd.AddCommand(newComposeCmd())
	cmd.AddCommand(newVersionCmd(version))

	return cmd
}
