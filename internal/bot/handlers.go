package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/novalearn/internal/app"
	"github.com/example/novalearn/internal/catalog"
	"github.com/example/novalearn/internal/mentor"
	"github.com/example/novalearn/internal/review"
	"github.com/example/novalearn/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Constants for callback data
const (
	callbackMainMenu      = "main_menu"
	callbackStatus        = "status"
	callbackCases         = "cases"
	callbackReview        = "review"
	callbackMentor        = "mentor"
	callbackHelp          = "help"
	callbackCancelAction  = "cancel"
	callbackShowAnswer    = "card_show"
	callbackConfirmLogout = "logout_confirm"

	// Prefixed callbacks carry an argument after the colon
	prefixDomain = "domain"
	prefixDone   = "done"
	prefixGrade  = "grade"
	prefixQuiz   = "quiz"
	prefixAnswer = "answer"
	prefixBattle = "battle"
)

// parseCallback splits "action:arg" callback data
func parseCallback(data string) (action, arg string) {
	action, arg, _ = strings.Cut(data, ":")
	return action, arg
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message == nil || message.From == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}
	chatID, from := message.Chat.ID, message.From
	arg := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		return b.handleStart(ctx, chatID, from, arg)
	case "help":
		return b.handleHelp(chatID)
	case "status":
		return b.handleStatus(ctx, chatID, from)
	case "domains":
		return b.reply(chatID, formatDomains(), domainButtons())
	case "cases":
		return b.handleCases(ctx, chatID, from, arg)
	case "done":
		if arg == "" {
			return b.reply(chatID, "Usage: `/done <item>`, e.g. `/done chest-pain`", nil)
		}
		return b.complete(ctx, chatID, from, arg)
	case "review":
		return b.handleReview(ctx, chatID, from)
	case "quiz":
		return b.handleQuiz(ctx, chatID, from, arg)
	case "battle":
		return b.handleBattle(ctx, chatID, from, arg)
	case "mentor":
		return b.handleMentor(ctx, chatID, from, arg)
	case "logout":
		return b.reply(chatID, "⚠️ This deletes your profile and all progress. Are you sure?", [][]MenuButton{
			{{Text: "🗑 Yes, log me out", CallbackData: callbackConfirmLogout}, {Text: "Cancel", CallbackData: callbackCancelAction}},
		})
	case "grant":
		if !b.isAdmin(from.ID) {
			return b.reply(chatID, "This command is only available for administrators.", b.MainMenuButtons())
		}
		return b.handleGrant(ctx, chatID, arg)
	default:
		return b.reply(chatID, "Unknown command. Use /help to see what I can do.", b.MainMenuButtons())
	}
}

// HandleCallback handles inline button presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.From == nil || callback.Message.Chat == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}

	// Always answer the callback query to remove the loading state
	if api, err := b.client(); err == nil {
		if _, err := api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
			b.logger.Warn("failed to answer callback", zap.Error(err))
		}
	}

	chatID, from := callback.Message.Chat.ID, callback.From
	action, arg := parseCallback(callback.Data)

	switch action {
	case callbackMainMenu:
		return b.reply(chatID, "🤖 Main menu", b.MainMenuButtons())
	case callbackStatus:
		return b.handleStatus(ctx, chatID, from)
	case callbackCases:
		return b.handleCases(ctx, chatID, from, "")
	case callbackReview:
		return b.handleReview(ctx, chatID, from)
	case callbackMentor:
		return b.handleMentor(ctx, chatID, from, "")
	case callbackHelp:
		return b.handleHelp(chatID)
	case callbackCancelAction:
		b.clearState(from.ID)
		return b.reply(chatID, "❎ Cancelled.", b.MainMenuButtons())
	case callbackShowAnswer:
		return b.handleShowAnswer(chatID, callback.Message.MessageID, from)
	case callbackConfirmLogout:
		return b.handleLogout(ctx, chatID, from)
	case prefixDomain:
		return b.onboard(ctx, chatID, from, arg)
	case prefixDone:
		return b.complete(ctx, chatID, from, arg)
	case prefixGrade:
		q, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid grade in callback data: %w", err)
		}
		return b.handleGrade(ctx, chatID, from, review.Quality(q))
	case prefixQuiz:
		return b.startQuiz(ctx, chatID, from, arg)
	case prefixAnswer:
		idx, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid answer in callback data: %w", err)
		}
		return b.handleAnswer(ctx, chatID, callback.Message.MessageID, from, idx)
	case prefixBattle:
		return b.startBattle(ctx, chatID, from, arg)
	default:
		return b.reply(chatID, "⚠️ Unknown action", nil)
	}
}

// handleText treats free text as the answer to a pending question or battle
func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) error {
	if message.From == nil || message.Chat == nil {
		return nil
	}
	st := b.state(message.From.ID)
	if st != nil && st.State == stateBattle {
		b.clearState(message.From.ID)
		return b.submitBattle(ctx, message.Chat.ID, message.From, st.Battle, message.Text)
	}
	if st == nil || st.State != stateAwaitingQuestion {
		return b.reply(message.Chat.ID, "I don't understand. Use /help to see what I can do.", b.MainMenuButtons())
	}
	b.clearState(message.From.ID)
	p, err := b.svc.ProfileByTelegram(ctx, message.From.ID)
	if err != nil {
		return b.replyError(message.Chat.ID, err)
	}
	return b.askMentor(ctx, message.Chat.ID, p, message.Text)
}

func (b *Bot) handleStart(ctx context.Context, chatID int64, from *tgbotapi.User, domainID string) error {
	if domainID != "" {
		return b.onboard(ctx, chatID, from, domainID)
	}

	p, err := b.svc.ProfileByTelegram(ctx, from.ID)
	switch {
	case err == nil:
		name := p.DomainID
		if d, ok := catalog.DomainByID(p.DomainID); ok {
			name = d.Name
		}
		return b.reply(chatID, fmt.Sprintf("👋 Welcome back! You are studying *%s*.", name), b.MainMenuButtons())
	case !errors.Is(err, app.ErrNotOnboarded):
		return b.replyError(chatID, err)
	}

	text := "👋 Welcome to Nova!\n\n" +
		"Earn XP by solving patient cases, reviewing flashcards and passing deck quizzes. " +
		"Climb from Intern to Nova Surgeon and keep your daily streak alive.\n\n" +
		"Pick a domain to start:"
	return b.reply(chatID, text, domainButtons())
}

func (b *Bot) onboard(ctx context.Context, chatID int64, from *tgbotapi.User, domainID string) error {
	tg := from.ID
	p, created, err := b.svc.Onboard(ctx, app.OnboardRequest{TelegramID: &tg, Username: from.UserName, DomainID: domainID})
	if err != nil {
		return b.replyError(chatID, err)
	}
	d, _ := catalog.DomainByID(p.DomainID)
	if !created {
		return b.reply(chatID, fmt.Sprintf("🔄 Switched your domain to *%s*.", d.Name), b.MainMenuButtons())
	}
	return b.reply(chatID, fmt.Sprintf("🎉 You are enrolled in *%s*. Your streak starts today! 🔥\n\nTry /cases or /review.", d.Name),
		b.MainMenuButtons())
}

func (b *Bot) handleHelp(chatID int64) error {
	text := "📖 *Commands*\n\n" +
		"/start `[domain]` - enroll or switch domain\n" +
		"/status - your XP, level, rank and streak\n" +
		"/domains - list learning domains\n" +
		"/cases `[difficulty]` - patient cases, battles and decks\n" +
		"/done `<item>` - mark a case complete\n" +
		"/battle `[battle]` - diagnose a generated patient against the clock\n" +
		"/review - review due flashcards\n" +
		"/quiz `[deck]` - take a deck quiz\n" +
		"/mentor `[question]` - ask the AI mentor\n" +
		"/logout - delete your profile\n\n" +
		"🏅 Ranks: Intern → Resident (2000 XP) → Consultant (5000 XP) → Nova Surgeon (10000 XP)"
	return b.reply(chatID, text, [][]MenuButton{{{Text: "⬅️ Back to menu", CallbackData: callbackMainMenu}}})
}

func (b *Bot) handleStatus(ctx context.Context, chatID int64, from *tgbotapi.User) error {
	p, err := b.svc.ProfileByTelegram(ctx, from.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	st, err := b.svc.Status(ctx, p.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.reply(chatID, formatStatus(st), b.MainMenuButtons())
}

func (b *Bot) handleCases(ctx context.Context, chatID int64, from *tgbotapi.User, difficulty string) error {
	q := catalog.Query{}
	if difficulty != "" {
		d := models.Difficulty(strings.ToLower(difficulty))
		if d.Order() == 0 {
			return b.reply(chatID, "Difficulty must be one of: beginner, intermediate, advanced", nil)
		}
		q.Difficulty = d
	}

	p, err := b.svc.ProfileByTelegram(ctx, from.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	q.DomainID = p.DomainID
	st, err := b.svc.Status(ctx, p.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	items, err := b.svc.Browse(ctx, q, catalog.SortByDifficulty)
	if err != nil {
		return b.replyError(chatID, err)
	}

	var buttons [][]MenuButton
	for _, it := range items {
		if st.Progress.HasCompleted(it.ItemKey()) {
			continue
		}
		switch it.Kind {
		case models.KindDeck:
			buttons = append(buttons, []MenuButton{{Text: "📝 Quiz: " + it.Title, CallbackData: prefixQuiz + ":" + it.ID}})
		case models.KindBattle:
			buttons = append(buttons, []MenuButton{{Text: "⚔️ Battle: " + it.Title, CallbackData: prefixBattle + ":" + it.ID}})
		default:
			buttons = append(buttons, []MenuButton{{Text: "✅ " + it.Title, CallbackData: prefixDone + ":" + it.ItemKey()}})
		}
	}
	buttons = append(buttons, []MenuButton{{Text: "⬅️ Back to menu", CallbackData: callbackMainMenu}})

	title := fmt.Sprintf("🏥 *%s*", st.Domain.Name)
	return b.reply(chatID, formatItems(title, items, st.Progress), buttons)
}

func (b *Bot) complete(ctx context.Context, chatID int64, from *tgbotapi.User, ref string) error {
	p, err := b.svc.ProfileByTelegram(ctx, from.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	item, out, err := b.svc.CompleteItem(ctx, p.ID, ref)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.reply(chatID, formatOutcome(item.Title, out), b.MainMenuButtons())
}

func (b *Bot) handleReview(ctx context.Context, chatID int64, from *tgbotapi.User) error {
	p, err := b.svc.ProfileByTelegram(ctx, from.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	cards, err := b.svc.DueCards(ctx, p.ID, b.config.ReviewBatch)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if len(cards) == 0 {
		return b.reply(chatID, "🎉 Nothing to review right now. Come back tomorrow!", b.MainMenuButtons())
	}

	b.setState(from.ID, &UserState{State: stateReview, Cards: cards})
	return b.sendCard(chatID, cards, 0)
}

func (b *Bot) sendCard(chatID int64, cards []models.Flashcard, idx int) error {
	return b.reply(chatID, formatCardQuestion(cards[idx], idx+1, len(cards)), [][]MenuButton{
		{{Text: "👀 Show answer", CallbackData: callbackShowAnswer}},
	})
}

func gradeButtons() [][]MenuButton {
	grade := func(text string, q review.Quality) MenuButton {
		return MenuButton{Text: text, CallbackData: fmt.Sprintf("%s:%d", prefixGrade, q)}
	}
	return [][]MenuButton{{
		grade("😵 Again", review.QualityIncorrect),
		grade("😓 Hard", review.QualityCorrectDifficult),
		grade("🙂 Good", review.QualityCorrectHesitation),
		grade("😎 Easy", review.QualityPerfect),
	}}
}

func (b *Bot) handleShowAnswer(chatID int64, messageID int, from *tgbotapi.User) error {
	st := b.state(from.ID)
	if st == nil || st.State != stateReview || st.Index >= len(st.Cards) {
		return b.reply(chatID, "⌛ This review session has expired. Use /review to start a new one.", nil)
	}
	msg := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, formatCardAnswer(st.Cards[st.Index]), createKeyboard(gradeButtons()))
	msg.ParseMode = tgbotapi.ModeMarkdown
	return b.editMessage(msg)
}

func (b *Bot) handleGrade(ctx context.Context, chatID int64, from *tgbotapi.User, q review.Quality) error {
	st := b.state(from.ID)
	if st == nil || st.State != stateReview || st.Index >= len(st.Cards) {
		return b.reply(chatID, "⌛ This review session has expired. Use /review to start a new one.", nil)
	}
	p, err := b.svc.ProfileByTelegram(ctx, from.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	res, err := b.svc.ReviewCard(ctx, p.ID, st.Cards[st.Index].ID, q)
	if err != nil {
		return b.replyError(chatID, err)
	}

	text := fmt.Sprintf("📅 Next review in %s.", plural(res.Progress.Interval, "day", "days"))
	if res.Mastered && res.Award.Granted {
		text += fmt.Sprintf("\n🏆 Card mastered! +%d XP", app.CardMasteryReward)
	}
	for _, a := range res.Unlocked {
		text += fmt.Sprintf("\n🏆 Achievement unlocked: *%s* (+%d XP)", a.Name, a.XPReward)
	}
	if err := b.reply(chatID, text, nil); err != nil {
		return err
	}

	st.Index++
	if st.Index >= len(st.Cards) {
		b.clearState(from.ID)
		return b.reply(chatID, fmt.Sprintf("✅ Session complete: %s reviewed. 🔥 Streak: %s",
			plural(len(st.Cards), "card", "cards"), plural(res.Streak, "day", "days")), b.MainMenuButtons())
	}
	b.setState(from.ID, st)
	return b.sendCard(chatID, st.Cards, st.Index)
}

func (b *Bot) handleQuiz(ctx context.Context, chatID int64, from *tgbotapi.User, deckID string) error {
	if deckID != "" {
		return b.startQuiz(ctx, chatID, from, deckID)
	}
	p, err := b.svc.ProfileByTelegram(ctx, from.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	decks, err := b.svc.Browse(ctx, catalog.Query{Kind: models.KindDeck}, catalog.SortByTitle)
	if err != nil {
		return b.replyError(chatID, err)
	}
	// Decks of the learner's domain first
	var buttons [][]MenuButton
	for _, pass := range []bool{true, false} {
		for _, d := range decks {
			if (d.DomainID == p.DomainID) == pass {
				buttons = append(buttons, []MenuButton{{Text: fmt.Sprintf("📝 %s (%d XP)", d.Title, d.XPReward), CallbackData: prefixQuiz + ":" + d.ID}})
			}
		}
	}
	return b.reply(chatID, "📝 *Deck quizzes*\n\nPass with 70% to complete the deck.", buttons)
}

func (b *Bot) startQuiz(ctx context.Context, chatID int64, from *tgbotapi.User, deckID string) error {
	if _, err := b.svc.ProfileByTelegram(ctx, from.ID); err != nil {
		return b.replyError(chatID, err)
	}
	questions, err := b.svc.StartQuiz(ctx, deckID, b.config.QuizQuestions)
	if err != nil {
		return b.replyError(chatID, err)
	}
	st := &UserState{State: stateQuiz, DeckID: deckID, Questions: questions, Started: timeNow()}
	b.setState(from.ID, st)
	return b.sendQuestion(chatID, st)
}

func (b *Bot) sendQuestion(chatID int64, st *UserState) error {
	idx := len(st.Answers)
	q := st.Questions[idx]
	buttons := make([][]MenuButton, 0, len(q.Options)+1)
	for i, opt := range q.Options {
		buttons = append(buttons, []MenuButton{{Text: opt, CallbackData: fmt.Sprintf("%s:%d", prefixAnswer, i)}})
	}
	buttons = append(buttons, []MenuButton{{Text: "Cancel", CallbackData: callbackCancelAction}})
	text := fmt.Sprintf("❓ *Question %d of %d*\n\n%s", idx+1, len(st.Questions), q.Card.Question)
	return b.reply(chatID, text, buttons)
}

func (b *Bot) handleAnswer(ctx context.Context, chatID int64, messageID int, from *tgbotapi.User, answer int) error {
	st := b.state(from.ID)
	if st == nil || st.State != stateQuiz || len(st.Answers) >= len(st.Questions) {
		return b.reply(chatID, "⌛ This quiz has expired. Use /quiz to start a new one.", nil)
	}
	q := st.Questions[len(st.Answers)]
	if answer < 0 || answer >= len(q.Options) {
		return fmt.Errorf("answer %d out of range", answer)
	}
	st.Answers = append(st.Answers, answer)

	verdict := "✅ Correct!"
	if answer != q.CorrectIndex {
		verdict = fmt.Sprintf("❌ The answer is: %s", q.Options[q.CorrectIndex])
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, fmt.Sprintf("❓ %s\n\n%s", q.Card.Question, verdict))
	if err := b.editMessage(edit); err != nil {
		b.logger.Warn("failed to show quiz verdict", zap.Error(err))
	}

	if len(st.Answers) < len(st.Questions) {
		b.setState(from.ID, st)
		return b.sendQuestion(chatID, st)
	}

	b.clearState(from.ID)
	p, err := b.svc.ProfileByTelegram(ctx, from.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	res, err := b.svc.FinishQuiz(ctx, p.ID, st.DeckID, st.Questions, st.Answers, timeNow().Sub(st.Started))
	if err != nil {
		return b.replyError(chatID, err)
	}

	text := fmt.Sprintf("📝 Score: %d/%d (%d%%)\n", res.Result.Correct, res.Result.Total, res.Result.Percent())
	if !res.Result.Passed {
		text += "Not quite. You need 70% to pass, try again!"
		return b.reply(chatID, text, [][]MenuButton{{{Text: "🔁 Retry", CallbackData: prefixQuiz + ":" + st.DeckID}}})
	}
	return b.reply(chatID, text+"\n"+formatOutcome("deck quiz", res.Outcome), b.MainMenuButtons())
}

func (b *Bot) handleBattle(ctx context.Context, chatID int64, from *tgbotapi.User, battleID string) error {
	if battleID != "" {
		return b.startBattle(ctx, chatID, from, battleID)
	}
	p, err := b.svc.ProfileByTelegram(ctx, from.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	battles, err := b.svc.Browse(ctx, catalog.Query{Kind: models.KindBattle}, catalog.SortByDifficulty)
	if err != nil {
		return b.replyError(chatID, err)
	}
	var buttons [][]MenuButton
	for _, pass := range []bool{true, false} {
		for _, it := range battles {
			if (it.DomainID == p.DomainID) == pass {
				buttons = append(buttons, []MenuButton{{Text: fmt.Sprintf("⚔️ %s (%d XP)", it.Title, it.XPReward), CallbackData: prefixBattle + ":" + it.ID}})
			}
		}
	}
	if len(buttons) == 0 {
		return b.reply(chatID, "⚔️ No battles are available yet.", b.MainMenuButtons())
	}
	return b.reply(chatID, fmt.Sprintf("⚔️ *Diagnostic battles*\n\nScore %d%% on average to win. The better your plan, the more XP.", app.BattlePassScore), buttons)
}

func (b *Bot) startBattle(ctx context.Context, chatID int64, from *tgbotapi.User, battleID string) error {
	p, err := b.svc.ProfileByTelegram(ctx, from.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if api, err := b.client(); err == nil {
		if _, err := api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
			b.logger.Debug("failed to send typing action", zap.Error(err))
		}
	}
	battle, err := b.svc.StartBattle(ctx, p.ID, battleID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	b.setState(from.ID, &UserState{State: stateBattle, Battle: battle})
	return b.reply(chatID, formatBattleCase(battle), [][]MenuButton{
		{{Text: "Cancel", CallbackData: callbackCancelAction}},
	})
}

// submitBattle reads the diagnosis from the first line of text and the
// treatment plan from the rest
func (b *Bot) submitBattle(ctx context.Context, chatID int64, from *tgbotapi.User, battle *app.Battle, text string) error {
	diagnosis, treatment, _ := strings.Cut(strings.TrimSpace(text), "\n")
	p, err := b.svc.ProfileByTelegram(ctx, from.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	res, err := b.svc.SubmitBattle(ctx, p.ID, battle, app.BattleSubmission{
		Diagnosis: strings.TrimSpace(diagnosis),
		Treatment: strings.TrimSpace(treatment),
	})
	if err != nil {
		return b.replyError(chatID, err)
	}

	reply := formatBattleResult(battle, res)
	if !res.Won {
		return b.reply(chatID, reply, [][]MenuButton{{{Text: "🔁 Fight again", CallbackData: prefixBattle + ":" + battle.Item.ID}}})
	}
	return b.reply(chatID, reply+"\n"+formatOutcome(battle.Item.Title, res.Outcome), b.MainMenuButtons())
}

func (b *Bot) handleMentor(ctx context.Context, chatID int64, from *tgbotapi.User, question string) error {
	p, err := b.svc.ProfileByTelegram(ctx, from.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if question != "" {
		return b.askMentor(ctx, chatID, p, question)
	}
	b.setState(from.ID, &UserState{State: stateAwaitingQuestion})
	return b.reply(chatID, "🧠 What would you like to ask your mentor?", [][]MenuButton{
		{{Text: "Cancel", CallbackData: callbackCancelAction}},
	})
}

func (b *Bot) askMentor(ctx context.Context, chatID int64, p *models.Profile, question string) error {
	if api, err := b.client(); err == nil {
		if _, err := api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
			b.logger.Debug("failed to send typing action", zap.Error(err))
		}
	}
	resp, err := b.svc.AskMentor(ctx, p.ID, mentor.KindMentorChat, question)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.reply(chatID, resp.Content, nil)
}

func (b *Bot) handleLogout(ctx context.Context, chatID int64, from *tgbotapi.User) error {
	p, err := b.svc.ProfileByTelegram(ctx, from.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if err := b.svc.Logout(ctx, p.ID); err != nil {
		return b.replyError(chatID, err)
	}
	b.clearState(from.ID)
	return b.reply(chatID, "👋 Your profile and progress were deleted. Use /start to begin again.", nil)
}

// handleGrant lets an administrator award bonus XP: /grant <telegram id> <xp>
func (b *Bot) handleGrant(ctx context.Context, chatID int64, arg string) error {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		return b.reply(chatID, "Usage: `/grant <telegram id> <xp>`", nil)
	}
	target, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return b.reply(chatID, "Telegram id must be a number.", nil)
	}
	amount, err := strconv.Atoi(fields[1])
	if err != nil || amount <= 0 {
		return b.reply(chatID, "XP must be a positive number.", nil)
	}

	p, err := b.svc.ProfileByTelegram(ctx, target)
	if err != nil {
		return b.replyError(chatID, err)
	}
	out, err := b.svc.AwardXP(ctx, p.ID, amount)
	if err != nil {
		return b.replyError(chatID, err)
	}
	b.logger.Info("bonus XP granted", zap.String("user", p.ID), zap.Int("xp", amount))
	return b.reply(chatID, fmt.Sprintf("🎁 Granted %d XP to %d. They now have %d XP (%s).",
		amount, target, out.Award.TotalXP, out.Award.Rank), nil)
}

func domainButtons() [][]MenuButton {
	var rows [][]MenuButton
	var row []MenuButton
	for _, d := range catalog.Domains() {
		row = append(row, MenuButton{Text: d.Name, CallbackData: prefixDomain + ":" + d.ID})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}
