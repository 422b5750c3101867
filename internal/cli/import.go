package cli

import (
	"fmt"
	"os"

	"github.com/mroshb/trivia_bot/internal/database"
	"github.com/mroshb/trivia_bot/internal/importer"
	"github.com/mroshb/trivia_bot/internal/repositories"
	"github.com/mroshb/trivia_bot/internal/security"
	"github.com/mroshb/trivia_bot/pkg/logger"
	"github.com/spf13/cobra"
)

const maxWorkbookSize = 20 << 20

func newImportCmd(envFile *string) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import-questions <file.xlsx>",
		Short: "Import questions from an Excel workbook into the local bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !security.ValidateFileType(path, []string{".xlsx"}) {
				return fmt.Errorf("%s: only .xlsx workbooks are supported", path)
			}
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if !security.ValidateFileSize(info.Size(), maxWorkbookSize) {
				return fmt.Errorf("%s: file is empty or larger than %d bytes", path, maxWorkbookSize)
			}

			result, err := importer.OpenFile(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, skipped := range result.Skipped {
				fmt.Fprintf(out, "skipped %v\n", skipped)
			}
			fmt.Fprintf(out, "%d questions read, %d rows skipped\n", len(result.Questions), len(result.Skipped))
			if dryRun {
				return nil
			}

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
			if err := repositories.NewQuestionRepository(db).CreateQuestions(cmd.Context(), result.Questions); err != nil {
				return err
			}
			fmt.Fprintf(out, "Successfully imported %d questions.\n", len(result.Questions))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the workbook without writing to the database")
	return cmd
}
