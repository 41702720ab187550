package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"giftora/internal/config"
	"giftora/internal/database"
)

func newMigrateCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.Connect(cfg.DSN())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db); err != nil {
				return err
			}
			if seed {
				if err := database.Seed(db); err != nil {
					return err
				}
			}

			version, err := database.Version(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d\n", version)
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "Insert default categories and a sample template")

	return cmd
}
