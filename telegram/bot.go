package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mroshb/trivia_bot/internal/config"
	"github.com/mroshb/trivia_bot/internal/handlers"
	"github.com/mroshb/trivia_bot/internal/security"
	"github.com/mroshb/trivia_bot/internal/trivia"
	"github.com/mroshb/trivia_bot/pkg/logger"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	config   *config.Config
	handlers *handlers.HandlerManager
	ctx      context.Context

	// Worker pool for parallel processing
	workerChans []chan tgbotapi.Update
	workers     sync.WaitGroup
}

func InitBot(cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	if cfg.AppEnv == "development" {
		api.Debug = true
	}

	logger.Info("Authorized on account", "username", api.Self.UserName)

	return &Bot{
		api:         api,
		config:      cfg,
		workerChans: make([]chan tgbotapi.Update, cfg.WorkerCount),
	}, nil
}

// Presenter returns the presenter that draws rounds in chatID.
func (b *Bot) Presenter(chatID int64) trivia.Presenter {
	return NewPresenter(b.api, chatID)
}

// Run dispatches updates to h until ctx is done.
func (b *Bot) Run(ctx context.Context, h *handlers.HandlerManager) error {
	b.ctx = ctx
	b.handlers = h

	for i := range b.workerChans {
		b.workerChans[i] = make(chan tgbotapi.Update, 100)
		b.workers.Add(1)
		go b.startWorker(b.workerChans[i])
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query"}

	logger.Info("Starting update listener...")
	updates := b.api.GetUpdatesChan(u)

	defer func() {
		for _, ch := range b.workerChans {
			close(ch)
		}
		b.workers.Wait()
		logger.Info("Bot workers stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			logger.Info("Bot stopped receiving updates")
			return nil
		case update, ok := <-updates:
			if !ok {
				return fmt.Errorf("update channel closed")
			}
			b.dispatch(update)
		}
	}
}

// dispatch hashes updates to workers by user so that one user's presses are
// handled in the order they were sent.
func (b *Bot) dispatch(update tgbotapi.Update) {
	var userID int64
	if update.Message != nil && update.Message.From != nil {
		userID = update.Message.From.ID
	} else if update.CallbackQuery != nil {
		userID = update.CallbackQuery.From.ID
	}

	if userID == 0 {
		go b.handleUpdate(update)
		return
	}

	workerIdx := userID % int64(len(b.workerChans))
	if workerIdx < 0 {
		workerIdx = -workerIdx
	}
	b.workerChans[workerIdx] <- update
}

func (b *Bot) startWorker(ch chan tgbotapi.Update) {
	defer b.workers.Done()
	for update := range ch {
		b.handleUpdate(update)
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in handleUpdate", "error", r)
		}
	}()

	if update.Message != nil {
		b.handleMessage(update.Message)
	} else if update.CallbackQuery != nil {
		b.handleCallbackQuery(update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.From == nil {
		return
	}

	if message.IsCommand() {
		b.handleCommand(message.Chat.ID, participantFrom(message.From), message.Command(), message.CommandArguments(), message.Chat.IsPrivate())
		return
	}

	if command, ok := buttonCommands[strings.TrimSpace(message.Text)]; ok {
		b.handleCommand(message.Chat.ID, participantFrom(message.From), command, "", message.Chat.IsPrivate())
	}
}

func (b *Bot) handleCommand(chatID int64, p trivia.Participant, command, args string, private bool) {
	logger.Debug("Received command", "chat_id", chatID, "user_id", p.ID, "command", command)

	switch command {
	case "start", "help":
		var keyboard interface{}
		if private {
			keyboard = MainMenuKeyboard()
		}
		b.sendMessage(chatID, handlers.MsgHelp, keyboard)
	case "play":
		b.handlers.StartQuizGame(b.ctx, chatID, p, strings.TrimSpace(args), b)
	case "stop":
		b.handlers.StopQuizGame(chatID, p, b)
	case "score":
		b.handlers.ShowScore(b.ctx, chatID, p, b)
	case "categories":
		b.handlers.ShowCategories(b.ctx, chatID, b)
	}
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	data := query.Data
	logger.Debug("Callback query", "data", data, "user_id", query.From.ID)

	if query.Message == nil {
		b.AnswerCallbackQuery(query.ID, "", false)
		return
	}
	chatID := query.Message.Chat.ID
	p := participantFrom(query.From)

	switch {
	case strings.HasPrefix(data, handlers.CallbackAnswerPrefix):
		label := strings.TrimPrefix(data, handlers.CallbackAnswerPrefix)
		b.handlers.HandleQuizGameAnswer(query.ID, chatID, query.Message.MessageID, p, label, b)
	case data == handlers.CallbackNoop:
		b.AnswerCallbackQuery(query.ID, handlers.MsgRoundClosed, false)
	case strings.HasPrefix(data, handlers.CallbackCategoryPrefix):
		b.AnswerCallbackQuery(query.ID, "", false)
		category := strings.TrimPrefix(data, handlers.CallbackCategoryPrefix)
		b.handlers.StartQuizGame(b.ctx, chatID, p, category, b)
	default:
		b.AnswerCallbackQuery(query.ID, "", false)
	}
}

func participantFrom(u *tgbotapi.User) trivia.Participant {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if strings.TrimSpace(name) == "" {
		name = u.UserName
	}
	return trivia.Participant{ID: u.ID, DisplayName: security.SanitizeDisplayName(name)}
}

func (b *Bot) sendMessage(chatID int64, text string, keyboard interface{}) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	switch kb := keyboard.(type) {
	case tgbotapi.ReplyKeyboardMarkup:
		msg.ReplyMarkup = kb
	case tgbotapi.InlineKeyboardMarkup:
		msg.ReplyMarkup = kb
	case tgbotapi.ReplyKeyboardRemove:
		msg.ReplyMarkup = kb
	}

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		sentMsg, err := b.api.Send(msg)
		if err != nil {
			logger.Error("Failed to send message", "error", err, "chat_id", chatID, "attempt", i+1)

			// If it's a network error, wait and retry
			if strings.Contains(err.Error(), "connection reset") ||
				strings.Contains(err.Error(), "timeout") ||
				strings.Contains(err.Error(), "network is unreachable") {
				time.Sleep(time.Duration(i+1) * time.Second)
				continue
			}
			return 0 // Non-network error, don't retry
		}
		return sentMsg.MessageID
	}
	return 0
}

// SendMessage sends command replies. Round messages go through Presenter,
// which never retries.
func (b *Bot) SendMessage(chatID int64, text string, keyboard interface{}) int {
	return b.sendMessage(chatID, text, keyboard)
}

func (b *Bot) AnswerCallbackQuery(queryID string, text string, showAlert bool) {
	callback := tgbotapi.NewCallback(queryID, text)
	callback.ShowAlert = showAlert
	if _, err := b.api.Request(callback); err != nil {
		logger.Error("Failed to answer callback query", "error", err, "query_id", queryID)
	}
}
