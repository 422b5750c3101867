package cli

import (
	"github.com/mroshb/trivia_bot/internal/database"
	"github.com/mroshb/trivia_bot/pkg/logger"
	"github.com/spf13/cobra"
)

func newMigrateCmd(envFile *string) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(*envFile)
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := database.Connect(cfg)
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return err
			}
			if seed {
				return database.SeedQuestions(db)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "seed the starter questions into an empty bank")
	return cmd
}
