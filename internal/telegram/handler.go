package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/PoluyanbIch/tabibot/internal/leaderboard"
	"github.com/PoluyanbIch/tabibot/internal/quiz"
)

const leaderboardSize = 10

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start", "menu":
		b.sendMenu(chatID)
	case "quiz":
		b.startSession(chatID, quiz.ModeRandom, 0)
	case "chapters":
		b.sendChapters(chatID)
	case "leaderboard":
		b.sendLeaderboard(ctx, chatID)
	case "info":
		b.sendInfo(chatID)
	case "wordbook":
		b.sendWordbook(chatID, msg.CommandArguments())
	default:
		b.send(tgbotapi.NewMessage(chatID, textUnknownCommand))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("answer callback failed", "error", err)
	}
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case data == "menu":
		b.sendMenu(chatID)
	case data == "info":
		b.sendInfo(chatID)
	case data == "leaderboard":
		b.sendLeaderboard(ctx, chatID)
	case data == "chapters":
		b.sendChapters(chatID)
	case data == "wordbook":
		b.sendWordbook(chatID, "")
	case data == "ta":
		state := b.chat(chatID)
		state.timeAttack = !state.timeAttack
		b.sendMenu(chatID)
	case strings.HasPrefix(data, "mode:"):
		mode, err := quiz.ParseMode(strings.TrimPrefix(data, "mode:"))
		if err != nil || mode == quiz.ModeChapter {
			b.logger.Debug("ignoring callback", "data", data)
			return
		}
		b.startSession(chatID, mode, 0)
	case strings.HasPrefix(data, "chapter:"):
		id, err := strconv.Atoi(strings.TrimPrefix(data, "chapter:"))
		if err != nil {
			return
		}
		b.startSession(chatID, quiz.ModeChapter, id)
	case strings.HasPrefix(data, "ans:"):
		b.handleAnswer(chatID, data)
	case strings.HasPrefix(data, "next:"):
		b.handleNext(ctx, chatID, cb.From, strings.TrimPrefix(data, "next:"))
	case data == "retry":
		b.startRetry(chatID)
	case data == "exit":
		b.exitSession(chatID)
	default:
		b.send(tgbotapi.NewMessage(chatID, textUnknownCommand))
	}
}

func (b *Bot) sessionTimeAttack(chatID int64, state *chatState) *quiz.TimeAttack {
	state.seq++
	if !state.timeAttack {
		return nil
	}
	return &quiz.TimeAttack{Duration: b.timeAttack, OnExpire: b.expiryFunc(chatID, state.seq)}
}

// startSession replaces the chat's session. An empty selection is reported
// and the running session, if any, is kept.
func (b *Bot) startSession(chatID int64, mode quiz.Mode, chapterID int) {
	state := b.chat(chatID)
	prevSeq := state.seq
	session, err := b.engine.Start(mode, chapterID, b.sessionTimeAttack(chatID, state))
	if err != nil {
		state.seq = prevSeq
		if errors.Is(err, quiz.ErrEmptyQuestionSet) {
			b.send(tgbotapi.NewMessage(chatID, textEmptyQuestionSet))
			return
		}
		b.logger.Error("start session failed", "chat_id", chatID, "error", err)
		return
	}
	b.install(chatID, state, session, chapterID)
}

func (b *Bot) startRetry(chatID int64) {
	state := b.chat(chatID)
	if len(state.lastWrong) == 0 {
		b.send(tgbotapi.NewMessage(chatID, textNothingToRetry))
		return
	}
	prevSeq := state.seq
	session, err := b.engine.Retry(state.lastWrong, b.sessionTimeAttack(chatID, state))
	if err != nil {
		state.seq = prevSeq
		b.logger.Error("start retry failed", "chat_id", chatID, "error", err)
		return
	}
	b.install(chatID, state, session, state.chapterID)
}

func (b *Bot) install(chatID int64, state *chatState, session *quiz.Session, chapterID int) {
	if state.session != nil {
		state.session.Abandon()
	}
	state.session = session
	state.chapterID = chapterID
	b.logger.Info("session started",
		"chat_id", chatID,
		"session", session.ShortID(),
		"mode", string(session.Mode),
		"questions", session.Len(),
		"time_attack", session.TimeAttack(),
	)
	b.sendQuestion(chatID, session)
}

// activeSession returns the chat's running session when sid names it.
func (b *Bot) activeSession(chatID int64, sid string) *quiz.Session {
	state, ok := b.chats[chatID]
	if !ok || state.session == nil {
		return nil
	}
	s := state.session
	if s.ShortID() != sid || s.Complete() || s.Abandoned() {
		return nil
	}
	return s
}

// handleAnswer parses ans:<sid>:<question>:<option>. Buttons from another
// session or an earlier question are ignored.
func (b *Bot) handleAnswer(chatID int64, data string) {
	parts := strings.Split(data, ":")
	if len(parts) != 4 {
		return
	}
	index, err1 := strconv.Atoi(parts[2])
	option, err2 := strconv.Atoi(parts[3])
	if err1 != nil || err2 != nil {
		return
	}
	session := b.activeSession(chatID, parts[1])
	if session == nil || session.CurrentIndex() != index {
		return
	}
	if !session.Submit(option) {
		return
	}
	b.sendFeedback(chatID, session)
}

func (b *Bot) handleTimeout(ev timeoutEvent) {
	state, ok := b.chats[ev.chatID]
	if !ok || state.session == nil || state.seq != ev.seq {
		return
	}
	if !state.session.HandleTimeout(ev.index) {
		return
	}
	b.logger.Debug("question timed out", "chat_id", ev.chatID, "session", state.session.ShortID(), "index", ev.index)
	b.sendFeedback(ev.chatID, state.session)
}

func (b *Bot) handleNext(ctx context.Context, chatID int64, user *tgbotapi.User, sid string) {
	session := b.activeSession(chatID, sid)
	if session == nil || !session.Advance() {
		return
	}
	if session.Complete() {
		b.finish(ctx, chatID, user, session)
		return
	}
	b.sendQuestion(chatID, session)
}

func (b *Bot) finish(ctx context.Context, chatID int64, user *tgbotapi.User, session *quiz.Session) {
	state := b.chat(chatID)
	result := session.Result()
	state.session = nil
	state.lastWrong = result.Wrong
	state.lastMode = result.Mode

	b.logger.Info("session finished",
		"chat_id", chatID,
		"session", session.ShortID(),
		"score", result.Score,
		"total", result.Total,
		"wrong", len(result.Wrong),
	)

	position := b.record(ctx, user, result)
	b.send(resultMessage(chatID, result, position))
}

// record stores a finished non-retry result and returns the user's new rank,
// or 0 when the result was not an improvement.
func (b *Bot) record(ctx context.Context, user *tgbotapi.User, result quiz.Result) int {
	if b.board == nil || user == nil || result.Mode == quiz.ModeRetry || result.Total == 0 {
		return 0
	}
	improved, err := b.board.Add(ctx, leaderboard.Entry{
		UserID:    user.ID,
		Username:  user.UserName,
		FirstName: user.FirstName,
		Mode:      string(result.Mode),
		Score:     result.Score,
		Total:     result.Total,
	})
	if err != nil {
		b.logger.Warn("record leaderboard entry failed", "user_id", user.ID, "error", err)
		return 0
	}
	if !improved {
		return 0
	}
	position, _, err := b.board.Position(ctx, user.ID)
	if err != nil || position < 1 {
		return 0
	}
	return position
}

func (b *Bot) exitSession(chatID int64) {
	state := b.chat(chatID)
	if state.session != nil {
		state.session.Abandon()
		b.logger.Info("session abandoned", "chat_id", chatID, "session", state.session.ShortID())
		state.session = nil
	}
	msg := tgbotapi.NewMessage(chatID, textExited)
	msg.ReplyMarkup = backKeyboard()
	b.send(msg)
}

func (b *Bot) sendMenu(chatID int64) {
	b.send(menuMessage(chatID, b.chat(chatID).timeAttack))
}

func (b *Bot) sendChapters(chatID int64) {
	b.send(chaptersMessage(chatID, b.engine.Course()))
}

func (b *Bot) sendWordbook(chatID int64, term string) {
	entries := b.engine.Course().SearchPatterns(term)
	b.logger.Debug("wordbook search", "chat_id", chatID, "term", term, "matches", len(entries))
	b.send(wordbookMessage(chatID, strings.TrimSpace(term), entries))
}

func (b *Bot) sendInfo(chatID int64) {
	b.send(infoMessage(chatID))
}

func (b *Bot) sendQuestion(chatID int64, session *quiz.Session) {
	b.send(questionMessage(chatID, session))
}

func (b *Bot) sendFeedback(chatID int64, session *quiz.Session) {
	b.send(feedbackMessage(chatID, session))
}

func (b *Bot) sendLeaderboard(ctx context.Context, chatID int64) {
	if b.board == nil {
		b.send(leaderboardMessage(chatID, nil))
		return
	}
	top, err := b.board.Top(ctx, leaderboardSize)
	if err != nil {
		b.logger.Warn("read leaderboard failed", "error", err)
		b.send(tgbotapi.NewMessage(chatID, textLeaderboardUnavailable))
		return
	}
	b.send(leaderboardMessage(chatID, top))
}
