package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mroshb/trivia_bot/internal/cache"
	"github.com/mroshb/trivia_bot/internal/config"
	"github.com/mroshb/trivia_bot/internal/database"
	"github.com/mroshb/trivia_bot/internal/handlers"
	"github.com/mroshb/trivia_bot/internal/middleware"
	"github.com/mroshb/trivia_bot/internal/repositories"
	"github.com/mroshb/trivia_bot/internal/services"
	"github.com/mroshb/trivia_bot/internal/services/opentdb"
	"github.com/mroshb/trivia_bot/internal/trivia"
	"github.com/mroshb/trivia_bot/pkg/logger"
	"github.com/mroshb/trivia_bot/telegram"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newRunCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(*envFile)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runBot(cmd.Context(), cfg)
		},
	}
}

func runBot(ctx context.Context, cfg *config.Config) error {
	logger.Info("Starting Trivia Bot...", "env", cfg.AppEnv, "source", cfg.QuestionSource)

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	if err := database.SeedQuestions(db); err != nil {
		logger.Warn("Failed to seed questions", "error", err)
	}

	redisClient, err := cache.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	questionRepo := repositories.NewQuestionRepository(db)
	scoreRepo := repositories.NewScoreRepository(db)
	roundRepo := repositories.NewRoundRepository(db)

	var source trivia.QuestionSource
	var categories *services.CategoryService
	switch cfg.QuestionSource {
	case config.SourceOpenTDB:
		client := opentdb.NewClient(cfg.TriviaAPIURL,
			opentdb.WithTokenStore(cache.NewTokenStore(redisClient)),
			opentdb.WithCategoryCache(cache.NewJSONCache(redisClient, "trivia:opentdb:categories:", 24*time.Hour)),
		)
		source = services.NewQuestionService(client, questionRepo)
		categories = services.NewRemoteCategoryService(client)
	default:
		source = services.NewQuestionService(questionRepo, nil)
		categories = services.NewLocalCategoryService(questionRepo)
	}

	bot, err := telegram.InitBot(cfg)
	if err != nil {
		return err
	}

	manager := trivia.NewManager(trivia.ManagerConfig{
		Source:     source,
		Scores:     scoreRepo,
		Recorder:   roundRepo,
		Presenters: bot.Presenter,
		Lock:       cache.NewChatLock(redisClient, instanceID()),
		Settings: trivia.Settings{
			AnswerWindow: cfg.AnswerWindow(),
			RoundDelay:   cfg.RoundDelay(),
			LiveCount:    cfg.LiveCount,
		},
	})

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerUser, time.Minute)
	defer rateLimiter.Stop()

	h := handlers.NewHandlerManager(cfg, manager, scoreRepo, categories, rateLimiter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(gctx, h)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down gracefully...")
		manager.Shutdown()
		logger.Info("All games finished")
		return nil
	})

	logger.Info("Bot started successfully", "env", cfg.AppEnv)
	return g.Wait()
}

// instanceID tags the chat locks this process holds.
func instanceID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "trivia-bot"
	}
	return fmt.Sprintf("%s-%s", host, uuid.NewString())
}
