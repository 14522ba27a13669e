package cmd

import (
	"github.com/spf13/cobra"

	"github.com/traPtitech/rolegate/migration"
)

// migrateCommand マイグレーション実行コマンド
func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Execute database schema migration only",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLogger()
			defer logger.Sync()

			engine, err := c.getDatabase(logger)
			if err != nil {
				return err
			}
			db, err := engine.DB()
			if err != nil {
				return err
			}
			defer db.Close()

			return migration.Migrate(engine)
		},
	}
}
