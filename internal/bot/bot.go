// Package bot is the Telegram front-end of the learning service.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/novalearn/internal/app"
	"github.com/example/novalearn/internal/catalog"
	"github.com/example/novalearn/internal/mentor"
	"github.com/example/novalearn/internal/quiz"
	"github.com/example/novalearn/internal/review"
	"github.com/example/novalearn/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// timeNow is replaced in tests
var timeNow = time.Now

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// Service is the part of the application layer the bot drives
type Service interface {
	Onboard(ctx context.Context, req app.OnboardRequest) (*models.Profile, bool, error)
	ProfileByTelegram(ctx context.Context, telegramID int64) (*models.Profile, error)
	Status(ctx context.Context, userID string) (*app.Status, error)
	Browse(ctx context.Context, q catalog.Query, order catalog.SortField) ([]models.CatalogItem, error)
	CompleteItem(ctx context.Context, userID, ref string) (*models.CatalogItem, app.Outcome, error)
	AwardXP(ctx context.Context, userID string, amount int) (app.Outcome, error)
	DueCards(ctx context.Context, userID string, limit int) ([]models.Flashcard, error)
	ReviewCard(ctx context.Context, userID, cardID string, q review.Quality) (*app.ReviewOutcome, error)
	StartQuiz(ctx context.Context, deckID string, count int) ([]quiz.Question, error)
	FinishQuiz(ctx context.Context, userID, deckID string, questions []quiz.Question, answers []int, took time.Duration) (*app.QuizOutcome, error)
	StartBattle(ctx context.Context, userID, battleID string) (*app.Battle, error)
	SubmitBattle(ctx context.Context, userID string, battle *app.Battle, sub app.BattleSubmission) (*app.BattleOutcome, error)
	AskMentor(ctx context.Context, userID string, kind mentor.Kind, prompt string) (mentor.Response, error)
	Logout(ctx context.Context, userID string) error
}

// sender is the subset of *tgbotapi.BotAPI used to talk to Telegram
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Conversation steps that span several messages
const (
	stateAwaitingQuestion = "awaiting_question"
	stateQuiz             = "quiz"
	stateReview           = "review"
	stateBattle           = "battle"
)

// UserState represents the current state of a user in conversation with the bot
type UserState struct {
	State     string
	Timestamp time.Time

	// quiz
	DeckID    string
	Questions []quiz.Question
	Answers   []int
	Started   time.Time

	// review
	Cards []models.Flashcard
	Index int

	// battle
	Battle *app.Battle
}

// Options holds the bot settings taken from the application config
type Options struct {
	Token        string
	AdminUserIDs []int64
	Config       *BotConfig
}

// Bot represents the Telegram bot application
type Bot struct {
	api          sender
	token        string
	svc          Service
	config       *BotConfig
	adminUserIDs map[int64]bool
	logger       *zap.Logger

	mu         sync.Mutex
	userStates map[int64]*UserState
	userLocks  map[int64]*sync.Mutex
}

// New creates a new bot instance
func New(svc Service, opts Options, logger *zap.Logger) (*Bot, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not set")
	}
	b := newBot(nil, svc, opts, logger)
	b.token = opts.Token
	return b, nil
}

func newBot(api sender, svc Service, opts Options, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	admins := make(map[int64]bool, len(opts.AdminUserIDs))
	for _, id := range opts.AdminUserIDs {
		admins[id] = true
	}
	return &Bot{
		api:          api,
		svc:          svc,
		config:       cfg,
		adminUserIDs: admins,
		logger:       logger.Named("bot"),
		userStates:   make(map[int64]*UserState),
		userLocks:    make(map[int64]*sync.Mutex),
	}
}

// Connect authorizes the bot with Telegram so it can send messages
func (b *Bot) Connect() (*tgbotapi.BotAPI, error) {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	b.mu.Lock()
	b.api = botAPI
	b.mu.Unlock()
	b.logger.Info("authorized on account", zap.String("username", botAPI.Self.UserName))
	return botAPI, nil
}

// Run connects to Telegram and handles updates until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	botAPI, err := b.Connect()
	if err != nil {
		return err
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := botAPI.GetUpdatesChan(updateConfig)

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			botAPI.StopReceivingUpdates()
			b.logger.Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

func (b *Bot) client() (sender, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.api == nil {
		return nil, errors.New("bot is not running")
	}
	return b.api, nil
}

// SendStreakReminder implements the scheduler.Notifier interface
func (b *Bot) SendStreakReminder(_ context.Context, profile models.Profile, streak int) error {
	if profile.TelegramID == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(*profile.TelegramID, formatReminder(streak))
	if err := b.sendMessage(msg); err != nil {
		return err
	}
	b.logger.Debug("sent streak reminder", zap.String("user", profile.ID), zap.Int("streak", streak))
	return nil
}

// isAdmin checks if a user is an admin
func (b *Bot) isAdmin(userID int64) bool {
	return b.adminUserIDs[userID]
}

func (b *Bot) state(userID int64) *UserState {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.userStates[userID]
	if !ok {
		return nil
	}
	if timeNow().Sub(st.Timestamp) > b.config.StateTTL {
		delete(b.userStates, userID)
		return nil
	}
	return st
}

func (b *Bot) setState(userID int64, st *UserState) {
	st.Timestamp = timeNow()
	b.mu.Lock()
	b.userStates[userID] = st
	b.mu.Unlock()
}

func (b *Bot) clearState(userID int64) {
	b.mu.Lock()
	delete(b.userStates, userID)
	b.mu.Unlock()
}

// userLock serializes the updates of one Telegram user, so a conversation
// step is never handled twice
func (b *Bot) userLock(userID int64) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		b.userLocks[userID] = l
	}
	return l
}

func sentFrom(update tgbotapi.Update) *tgbotapi.User {
	switch {
	case update.Message != nil:
		return update.Message.From
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From
	}
	return nil
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if from := sentFrom(update); from != nil {
		l := b.userLock(from.ID)
		l.Lock()
		defer l.Unlock()
	}

	var err error
	switch {
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.handleText(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		b.logger.Error("failed to handle update", zap.Int("update_id", update.UpdateID), zap.Error(err))
	}
}

// sendMessage sends a message, retrying without formatting when Telegram
// rejects the Markdown
func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) error {
	api, err := b.client()
	if err != nil {
		return err
	}
	if _, err = api.Send(msg); err != nil && msg.ParseMode != "" {
		msg.ParseMode = ""
		_, err = api.Send(msg)
	}
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (b *Bot) editMessage(msg tgbotapi.EditMessageTextConfig) error {
	api, err := b.client()
	if err != nil {
		return err
	}
	if _, err := api.Send(msg); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

func (b *Bot) reply(chatID int64, text string, buttons [][]MenuButton) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if len(buttons) > 0 {
		msg.ReplyMarkup = createKeyboard(buttons)
	}
	return b.sendMessage(msg)
}

// replyError tells the user what went wrong in their terms
func (b *Bot) replyError(chatID int64, err error) error {
	text := "❌ Something went wrong. Please try again later."
	switch {
	case errors.Is(err, app.ErrNotOnboarded):
		text = "👋 You haven't picked a domain yet. Use /start to begin."
	case errors.Is(err, app.ErrUnknownItem):
		text = "🤔 I don't know that item. Use /cases to see what is available."
	case errors.Is(err, app.ErrScoredItem):
		text = "⚔️ Battles are scored by your mentor. Use /battle to fight one."
	case errors.Is(err, app.ErrUnknownDomain):
		text = "🤔 I don't know that domain. Use /domains to see the list."
	case errors.Is(err, quiz.ErrEmptyDeck):
		text = "🗂 That deck has no cards yet."
	default:
		b.logger.Error("request failed", zap.Int64("chat", chatID), zap.Error(err))
	}
	return b.reply(chatID, text, nil)
}

// MainMenuButtons returns the buttons shown under most replies
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{{Text: "📊 Progress", CallbackData: "status"}, {Text: "🏥 Cases", CallbackData: "cases"}},
		{{Text: "🗂 Review", CallbackData: "review"}, {Text: "🧠 Mentor", CallbackData: "mentor"}},
	}
}
