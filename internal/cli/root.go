package cli

import (
	"context"
	"errors"
	"io/fs"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mroshb/trivia_bot/internal/config"
	"github.com/mroshb/trivia_bot/pkg/logger"
	"github.com/spf13/cobra"
)

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "trivia-bot",
		Short:         "Timed multiplayer trivia for Telegram chats",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")

	run := newRunCmd(&envFile)
	cmd.AddCommand(run)
	cmd.AddCommand(newMigrateCmd(&envFile))
	cmd.AddCommand(newImportCmd(&envFile))

	// Running the binary without a subcommand starts the bot.
	cmd.RunE = run.RunE
	return cmd
}

// setup loads the dotenv file and configuration and starts the logger.
func setup(envFile string) (*config.Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger.Init(cfg.LogLevel, cfg.AppEnv)

	if err := cfg.ValidateProductionSecurity(); err != nil {
		return nil, err
	}
	return cfg, nil
}
