package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/novalearn/internal/app"
	"github.com/example/novalearn/internal/catalog"
	"github.com/example/novalearn/internal/database"
	"github.com/example/novalearn/internal/progression"
	"github.com/example/novalearn/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeSender struct {
	mu           sync.Mutex
	sent         []tgbotapi.Chattable
	requests     int
	failMarkdown bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok && f.failMarkdown && m.ParseMode != "" {
		return tgbotapi.Message{}, errors.New("Bad Request: can't parse entities")
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	f.requests++
	f.mu.Unlock()
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// texts returns the text of every sent or edited message
func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeSender) last() string {
	texts := f.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

const (
	userID  int64 = 1001
	adminID int64 = 9
)

func newTestBot(t *testing.T) (*Bot, *fakeSender) {
	t.Helper()
	db, err := database.Connect(database.Options{Type: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = catalog.Seed(context.Background(), database.NewCatalogRepository(db))
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	svc := app.NewService(app.Deps{DB: db, Logger: logger})
	api := &fakeSender{}
	return newBot(api, svc, Options{AdminUserIDs: []int64{adminID}}, logger), api
}

func command(from int64, text string) *tgbotapi.Message {
	name, _, _ := strings.Cut(text, " ")
	return &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: from},
		From:     &tgbotapi.User{ID: from, UserName: "doc"},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}
}

func callback(from int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: from},
		Message: &tgbotapi.Message{MessageID: 77, Chat: &tgbotapi.Chat{ID: from}},
		Data:    data,
	}
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data, action, arg string
	}{
		{"status", "status", ""},
		{"domain:pediatrics", "domain", "pediatrics"},
		{"done:case:chest-pain", "done", "case:chest-pain"},
		{"grade:5", "grade", "5"},
	}
	for _, tt := range tests {
		action, arg := parseCallback(tt.data)
		assert.Equal(t, tt.action, action, tt.data)
		assert.Equal(t, tt.arg, arg, tt.data)
	}
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "▱▱▱▱▱▱▱▱▱▱", progressBar(0))
	assert.Equal(t, "▰▰▰▱▱▱▱▱▱▱", progressBar(2350))
	assert.Equal(t, "▰▰▰▰▰▰▰▰▰▱", progressBar(999))
}

func TestFormatOutcome(t *testing.T) {
	out := app.Outcome{
		Award: progression.Award{
			Granted: true, Amount: 2000, TotalXP: 2300,
			PreviousLevel: 1, Level: 3,
			PreviousRank: progression.RankIntern, Rank: progression.RankResident,
		},
		Unlocked: []models.Achievement{{ID: "rank-resident", Name: "Residency", XPReward: 300}},
	}
	text := formatOutcome("Polytrauma", out)
	assert.Contains(t, text, "+2000 XP")
	assert.Contains(t, text, "2300 XP · Level 3 · Resident")
	assert.Contains(t, text, "Level up!")
	assert.Contains(t, text, "New rank: Resident")
	assert.Contains(t, text, "*Residency* (+300 XP)")

	again := formatOutcome("Polytrauma", app.Outcome{Award: progression.Award{TotalXP: 2300, Level: 3, PreviousLevel: 3,
		Rank: progression.RankResident, PreviousRank: progression.RankResident}})
	assert.Contains(t, again, "already completed")
	assert.NotContains(t, again, "Level up")
}

func TestFormatReminder(t *testing.T) {
	assert.Contains(t, formatReminder(3), "3 days streak")
	assert.Contains(t, formatReminder(1), "1 day streak")
	assert.Contains(t, formatReminder(0), "start a new streak")
}

func TestOnboardingAndCompletion(t *testing.T) {
	ctx := context.Background()
	b, api := newTestBot(t)

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/status")))
	assert.Contains(t, api.last(), "/start")

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/start")))
	assert.Contains(t, api.last(), "Pick a domain")

	require.NoError(t, b.HandleCallback(ctx, callback(userID, "domain:internal-medicine")))
	assert.Contains(t, api.last(), "enrolled in *Internal Medicine*")
	assert.Equal(t, 1, api.requests, "callback is answered")

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/done chest-pain")))
	assert.Contains(t, api.last(), "Acute Chest Pain Assessment")
	assert.Contains(t, api.last(), "+300 XP")
	assert.Contains(t, api.last(), "First Diagnosis")

	require.NoError(t, b.HandleCallback(ctx, callback(userID, "done:case:chest-pain")))
	assert.Contains(t, api.last(), "already completed")

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/status")))
	assert.Contains(t, api.last(), "350 XP")
	assert.Contains(t, api.last(), "Cardiology: 3")
	assert.Contains(t, api.last(), "Completed: 1 item")

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/done unknown-case")))
	assert.Contains(t, api.last(), "I don't know that item")

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/start surgery")))
	assert.Contains(t, api.last(), "Switched your domain to *Surgery*")
}

func TestCasesListsOpenItems(t *testing.T) {
	ctx := context.Background()
	b, api := newTestBot(t)
	require.NoError(t, b.HandleCommand(ctx, command(userID, "/start pediatrics")))

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/cases expert")))
	assert.Contains(t, api.last(), "Difficulty must be one of")

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/cases")))
	msg, ok := api.sent[len(api.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	var data []string
	for _, row := range markup.InlineKeyboard {
		data = append(data, *row[0].CallbackData)
	}
	assert.Equal(t, []string{"done:case:pediatric-fever", "quiz:pediatric-milestones", "main_menu"}, data)
}

func TestReviewSession(t *testing.T) {
	ctx := context.Background()
	b, api := newTestBot(t)
	require.NoError(t, b.HandleCommand(ctx, command(userID, "/start internal-medicine")))

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/review")))
	assert.Contains(t, api.last(), "Card 1 of 5")

	require.NoError(t, b.HandleCallback(ctx, callback(userID, "card_show")))
	edit, ok := api.sent[len(api.sent)-1].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 77, edit.MessageID)
	assert.Contains(t, edit.Text, "60-100 beats per minute")

	require.NoError(t, b.HandleCallback(ctx, callback(userID, "grade:5")))
	texts := api.texts()
	assert.Contains(t, texts[len(texts)-2], "Next review in 1 day")
	assert.Contains(t, api.last(), "Card 2 of 5")

	for i := 0; i < 4; i++ {
		require.NoError(t, b.HandleCallback(ctx, callback(userID, "grade:1")))
	}
	assert.Contains(t, api.last(), "Session complete: 5 cards reviewed")
	assert.Nil(t, b.state(userID))

	require.NoError(t, b.HandleCallback(ctx, callback(userID, "grade:4")))
	assert.Contains(t, api.last(), "expired")
}

func TestQuizSession(t *testing.T) {
	ctx := context.Background()
	b, api := newTestBot(t)
	require.NoError(t, b.HandleCommand(ctx, command(userID, "/start internal-medicine")))

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/quiz")))
	assert.Contains(t, api.last(), "Deck quizzes")

	require.NoError(t, b.HandleCallback(ctx, callback(userID, "quiz:cardiovascular")))
	st := b.state(userID)
	require.NotNil(t, st)
	require.Len(t, st.Questions, 4)
	assert.Contains(t, api.last(), "Question 1 of 4")

	for i := range st.Questions {
		correct := st.Questions[i].CorrectIndex
		require.NoError(t, b.HandleCallback(ctx, callback(userID, "answer:"+string(rune('0'+correct)))))
	}
	assert.Contains(t, api.last(), "Score: 4/4 (100%)")
	assert.Contains(t, api.last(), "+150 XP")
	assert.Nil(t, b.state(userID))
}

func TestQuizFinalAnswerTappedTwice(t *testing.T) {
	ctx := context.Background()
	b, api := newTestBot(t)
	require.NoError(t, b.HandleCommand(ctx, command(userID, "/start internal-medicine")))
	require.NoError(t, b.HandleCallback(ctx, callback(userID, "quiz:cardiovascular")))

	st := b.state(userID)
	require.NotNil(t, st)
	last := len(st.Questions) - 1
	for i := 0; i < last; i++ {
		require.NoError(t, b.HandleCallback(ctx, callback(userID, "answer:"+string(rune('0'+st.Questions[i].CorrectIndex)))))
	}

	final := "answer:" + string(rune('0'+st.Questions[last].CorrectIndex))
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: callback(userID, final)})
		}()
	}
	wg.Wait()

	svc := b.svc.(*app.Service)
	p, err := svc.ProfileByTelegram(ctx, userID)
	require.NoError(t, err)
	history, err := svc.QuizHistory(ctx, p.ID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	var scores, expired int
	for _, text := range api.texts() {
		if strings.Contains(text, "Score:") {
			scores++
		}
		if strings.Contains(text, "expired") {
			expired++
		}
	}
	assert.Equal(t, 1, scores)
	assert.Equal(t, 1, expired)
}

func TestBattle(t *testing.T) {
	ctx := context.Background()
	b, api := newTestBot(t)
	require.NoError(t, b.HandleCommand(ctx, command(userID, "/start emergency-medicine")))

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/cases")))
	msg, ok := api.sent[len(api.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	var data []string
	for _, row := range markup.InlineKeyboard {
		data = append(data, *row[0].CallbackData)
	}
	assert.Contains(t, data, "battle:emergency-chest-pain")

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/done emergency-chest-pain")))
	assert.Contains(t, api.last(), "scored by your mentor")

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/battle")))
	assert.Contains(t, api.last(), "Diagnostic battles")

	require.NoError(t, b.HandleCallback(ctx, callback(userID, "battle:emergency-chest-pain")))
	assert.Contains(t, api.last(), "Emergency Medicine Case Study")
	assert.Contains(t, api.last(), "diagnosis on the first line")
	st := b.state(userID)
	require.NotNil(t, st)
	assert.Equal(t, stateBattle, st.State)

	answer := &tgbotapi.Message{
		Text: "Acute coronary syndrome\nAspirin, ECG within 10 minutes, cath lab",
		Chat: &tgbotapi.Chat{ID: userID},
		From: &tgbotapi.User{ID: userID},
	}
	require.NoError(t, b.handleText(ctx, answer))
	assert.Contains(t, api.last(), "Score: 72/100")
	assert.Contains(t, api.last(), "+180 XP")
	assert.Contains(t, api.last(), "Battle Victor")
	assert.Nil(t, b.state(userID))

	// Without a battle in progress the text is not a submission
	require.NoError(t, b.handleText(ctx, answer))
	assert.Contains(t, api.last(), "I don't understand")

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/battle chest-pain")))
	assert.Contains(t, api.last(), "I don't know that item")
}

func TestMentorConversation(t *testing.T) {
	ctx := context.Background()
	b, api := newTestBot(t)
	require.NoError(t, b.HandleCommand(ctx, command(userID, "/start psychiatry")))

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/mentor")))
	assert.Contains(t, api.last(), "What would you like to ask")

	text := &tgbotapi.Message{Text: "How do SSRIs work?", Chat: &tgbotapi.Chat{ID: userID}, From: &tgbotapi.User{ID: userID}}
	require.NoError(t, b.handleText(ctx, text))
	assert.Contains(t, api.last(), "Psychiatry")
	assert.Nil(t, b.state(userID))

	require.NoError(t, b.handleText(ctx, text))
	assert.Contains(t, api.last(), "I don't understand")
}

func TestGrantRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	b, api := newTestBot(t)
	require.NoError(t, b.HandleCommand(ctx, command(userID, "/start anatomy")))

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/grant 1001 500")))
	assert.Contains(t, api.last(), "only available for administrators")

	require.NoError(t, b.HandleCommand(ctx, command(adminID, "/grant 1001 abc")))
	assert.Contains(t, api.last(), "XP must be a positive number")

	require.NoError(t, b.HandleCommand(ctx, command(adminID, "/grant 1001 500")))
	assert.Contains(t, api.last(), "Granted 500 XP to 1001. They now have 500 XP (Intern)")
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	b, api := newTestBot(t)
	require.NoError(t, b.HandleCommand(ctx, command(userID, "/start surgery")))

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/logout")))
	assert.Contains(t, api.last(), "Are you sure")

	require.NoError(t, b.HandleCallback(ctx, callback(userID, "logout_confirm")))
	assert.Contains(t, api.last(), "were deleted")

	require.NoError(t, b.HandleCommand(ctx, command(userID, "/status")))
	assert.Contains(t, api.last(), "/start")
}

func TestSendStreakReminder(t *testing.T) {
	b, api := newTestBot(t)
	ctx := context.Background()

	require.NoError(t, b.SendStreakReminder(ctx, models.Profile{ID: "cli-user"}, 4))
	assert.Empty(t, api.sent)

	tg := int64(55)
	require.NoError(t, b.SendStreakReminder(ctx, models.Profile{ID: "u", TelegramID: &tg}, 4))
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, tg, msg.ChatID)
	assert.Contains(t, msg.Text, "4 days streak")

	stopped := newBot(nil, nil, Options{}, nil)
	assert.Error(t, stopped.SendStreakReminder(ctx, models.Profile{TelegramID: &tg}, 1))
}

func TestMarkdownFallback(t *testing.T) {
	b, api := newTestBot(t)
	api.failMarkdown = true

	require.NoError(t, b.reply(42, "*unbalanced", nil))
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Empty(t, msg.ParseMode)
}

func TestStateExpires(t *testing.T) {
	b, _ := newTestBot(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = time.Now })

	b.setState(userID, &UserState{State: stateAwaitingQuestion})
	require.NotNil(t, b.state(userID))

	now = now.Add(b.config.StateTTL + time.Second)
	assert.Nil(t, b.state(userID))
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(nil, Options{}, nil)
	assert.Error(t, err)
}
