package telegram

import (
	"context"
	"math/rand/v2"
	"strconv"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PoluyanbIch/tabibot/internal/content"
	"github.com/PoluyanbIch/tabibot/internal/leaderboard"
	"github.com/PoluyanbIch/tabibot/internal/quiz"
)

const testChat = int64(100)

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) last() tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func testCourse() *content.Course {
	return &content.Course{
		Title: "test",
		Chapters: []content.Chapter{
			{ID: 1, Title: "Tokyo", Exercises: []content.Exercise{
				{Question: "A?", Options: []string{"x", "y", "z"}, Answer: 1, Explanation: "because y"},
				{Question: "B?", Options: []string{"p", "q"}, Answer: 0},
			}, Patterns: []content.Pattern{
				{Title: "～ば (~면)", Description: "조건", Examples: []content.Line{{Japanese: "行けば", Korean: "가면"}}},
				{Title: "～ながら (~하면서)", Description: "동시 동작"},
			}},
			{ID: 2, Title: "Empty"},
		},
	}
}

func newTestBot(t *testing.T, ta time.Duration) (*Bot, *fakeSender, *leaderboard.Memory) {
	t.Helper()
	sender := &fakeSender{}
	board := leaderboard.NewMemory()
	engine := quiz.NewEngine(testCourse(), quiz.EngineOptions{Rand: rand.New(rand.NewPCG(1, 2))})
	bot := NewBot(sender, engine, board, Options{TimeAttack: ta})
	t.Cleanup(bot.shutdown)
	return bot, sender, board
}

var testUser = &tgbotapi.User{ID: 42, UserName: "aki", FirstName: "Aki"}

func command(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: testChat},
		From:     testUser,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}}
}

// commandWithArgs builds a command message whose entity covers only the
// command word, as Telegram sends it.
func commandWithArgs(cmd, args string) tgbotapi.Update {
	u := command(cmd + " " + args)
	u.Message.Entities[0].Length = len(cmd)
	return u
}

func callback(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    testUser,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: testChat}},
		Data:    data,
	}}
}

func buttons(msg tgbotapi.MessageConfig) []string {
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		return nil
	}
	var out []string
	for _, row := range markup.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil {
				out = append(out, *b.CallbackData)
			}
		}
	}
	return out
}

func (b *Bot) current(t *testing.T) *quiz.Session {
	t.Helper()
	state := b.chats[testChat]
	require.NotNil(t, state)
	require.NotNil(t, state.session)
	return state.session
}

func answerData(s *quiz.Session, option int) string {
	return "ans:" + s.ShortID() + ":" + strconv.Itoa(s.CurrentIndex()) + ":" + strconv.Itoa(option)
}

func wrongOption(q quiz.Question) int {
	return (q.Answer + 1) % len(q.Options)
}

func TestStartShowsMenu(t *testing.T) {
	bot, sender, _ := newTestBot(t, 0)
	bot.HandleUpdate(context.Background(), command("/start"))

	require.Equal(t, 1, sender.count())
	assert.Contains(t, buttons(sender.last()), "mode:random")
	assert.Contains(t, buttons(sender.last()), "ta")
}

func TestFullQuizFlowRecordsLeaderboard(t *testing.T) {
	bot, sender, board := newTestBot(t, 0)
	ctx := context.Background()

	bot.HandleUpdate(ctx, callback("mode:full"))
	s := bot.current(t)
	assert.Equal(t, quiz.ModeFull, s.Mode)
	assert.Contains(t, sender.last().Text, "A?")

	q, _ := s.Current()
	bot.HandleUpdate(ctx, callback(answerData(s, q.Answer)))
	assert.Contains(t, sender.last().Text, "정답!")
	assert.Contains(t, sender.last().Text, "because y")

	bot.HandleUpdate(ctx, callback("next:"+s.ShortID()))
	assert.Contains(t, sender.last().Text, "B?")

	q, _ = s.Current()
	bot.HandleUpdate(ctx, callback(answerData(s, wrongOption(q))))
	assert.Contains(t, sender.last().Text, "오답!")

	bot.HandleUpdate(ctx, callback("next:"+s.ShortID()))
	result := sender.last()
	assert.Contains(t, result.Text, "1/2")
	assert.Contains(t, result.Text, "새 기록")
	assert.Contains(t, buttons(result), "retry")
	assert.Nil(t, bot.chats[testChat].session)

	pos, entry, err := board.Position(ctx, testUser.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 50, entry.Percentage)
	assert.Equal(t, "full", entry.Mode)
}

func TestDuplicateAnswerIsIgnored(t *testing.T) {
	bot, sender, _ := newTestBot(t, 0)
	ctx := context.Background()

	bot.HandleUpdate(ctx, callback("mode:full"))
	s := bot.current(t)
	q, _ := s.Current()
	data := answerData(s, q.Answer)

	bot.HandleUpdate(ctx, callback(data))
	sent := sender.count()
	bot.HandleUpdate(ctx, callback(data))
	bot.HandleUpdate(ctx, callback(answerData(s, wrongOption(q))))

	assert.Equal(t, sent, sender.count())
	assert.Equal(t, 1, s.Score())
}

func TestStaleButtonsAreIgnored(t *testing.T) {
	bot, sender, _ := newTestBot(t, 0)
	ctx := context.Background()

	bot.HandleUpdate(ctx, callback("mode:full"))
	old := bot.current(t)
	oldData := answerData(old, 0)

	bot.HandleUpdate(ctx, callback("mode:full"))
	fresh := bot.current(t)
	require.NotEqual(t, old.ID, fresh.ID)
	assert.True(t, old.Abandoned())

	sent := sender.count()
	bot.HandleUpdate(ctx, callback(oldData))
	bot.HandleUpdate(ctx, callback("next:"+old.ShortID()))
	bot.HandleUpdate(ctx, callback("next:"+fresh.ShortID()))
	assert.Equal(t, sent, sender.count())
	assert.False(t, fresh.Answered())
}

func TestEmptyChapterKeepsSession(t *testing.T) {
	bot, sender, _ := newTestBot(t, 0)
	ctx := context.Background()

	bot.HandleUpdate(ctx, callback("chapter:1"))
	s := bot.current(t)

	bot.HandleUpdate(ctx, callback("chapter:2"))
	assert.Equal(t, textEmptyQuestionSet, sender.last().Text)
	assert.Same(t, s, bot.current(t))
	assert.False(t, s.Abandoned())

	bot.HandleUpdate(ctx, callback("chapter:99"))
	assert.Equal(t, textEmptyQuestionSet, sender.last().Text)
}

func TestRetryIsNotRecorded(t *testing.T) {
	bot, sender, board := newTestBot(t, 0)
	ctx := context.Background()

	bot.HandleUpdate(ctx, callback("mode:full"))
	s := bot.current(t)
	for !s.Complete() {
		q, _ := s.Current()
		bot.HandleUpdate(ctx, callback(answerData(s, wrongOption(q))))
		bot.HandleUpdate(ctx, callback("next:"+s.ShortID()))
	}
	_, first, err := board.Position(ctx, testUser.ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 0, first.Score)

	bot.HandleUpdate(ctx, callback("retry"))
	retry := bot.current(t)
	assert.Equal(t, quiz.ModeRetry, retry.Mode)
	assert.Equal(t, 2, retry.Len())
	for !retry.Complete() {
		q, _ := retry.Current()
		bot.HandleUpdate(ctx, callback(answerData(retry, q.Answer)))
		bot.HandleUpdate(ctx, callback("next:"+retry.ShortID()))
	}
	assert.Contains(t, sender.last().Text, "리더보드에 기록되지 않아요")

	_, after, err := board.Position(ctx, testUser.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.Score)

	bot.HandleUpdate(ctx, callback("retry"))
	assert.Equal(t, textNothingToRetry, sender.last().Text)
}

func TestExitAbandonsSession(t *testing.T) {
	bot, sender, board := newTestBot(t, 0)
	ctx := context.Background()

	bot.HandleUpdate(ctx, callback("mode:random"))
	s := bot.current(t)
	bot.HandleUpdate(ctx, callback("exit"))

	assert.True(t, s.Abandoned())
	assert.Nil(t, bot.chats[testChat].session)
	assert.Equal(t, textExited, sender.last().Text)

	top, err := board.Top(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestTimeAttackTimeout(t *testing.T) {
	bot, sender, _ := newTestBot(t, 10*time.Millisecond)
	ctx := context.Background()

	bot.HandleUpdate(ctx, callback("ta"))
	assert.Contains(t, buttons(sender.last()), "ta")
	bot.HandleUpdate(ctx, callback("mode:full"))
	s := bot.current(t)
	require.True(t, s.TimeAttack())

	select {
	case ev := <-bot.timeouts:
		bot.handleTimeout(ev)
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not expire")
	}

	assert.Contains(t, sender.last().Text, "시간 초과")
	assert.Equal(t, quiz.Timeout, s.Selected())
	assert.Len(t, s.Wrong(), 1)

	// A late answer for the timed-out question changes nothing.
	sent := sender.count()
	bot.HandleUpdate(ctx, callback(answerData(s, 0)))
	assert.Equal(t, sent, sender.count())
}

func TestTimeoutFromReplacedSessionIsIgnored(t *testing.T) {
	bot, sender, _ := newTestBot(t, time.Hour)
	ctx := context.Background()

	bot.HandleUpdate(ctx, callback("ta"))
	bot.HandleUpdate(ctx, callback("mode:full"))
	staleSeq := bot.chats[testChat].seq
	bot.HandleUpdate(ctx, callback("mode:full"))

	sent := sender.count()
	bot.handleTimeout(timeoutEvent{chatID: testChat, seq: staleSeq, index: 0})
	assert.Equal(t, sent, sender.count())
	assert.False(t, bot.current(t).Answered())
}

func TestLeaderboardAndInfo(t *testing.T) {
	bot, sender, board := newTestBot(t, 0)
	ctx := context.Background()

	bot.HandleUpdate(ctx, command("/leaderboard"))
	assert.Contains(t, sender.last().Text, "아직 기록이 없어요")

	_, err := board.Add(ctx, leaderboard.Entry{UserID: 1, Username: "a<b", Score: 3, Total: 4})
	require.NoError(t, err)
	bot.HandleUpdate(ctx, callback("leaderboard"))
	assert.Contains(t, sender.last().Text, "@a&lt;b")
	assert.Contains(t, sender.last().Text, "75%")

	bot.HandleUpdate(ctx, command("/info"))
	assert.Contains(t, sender.last().Text, "타임어택")

	bot.HandleUpdate(ctx, command("/chapters"))
	assert.Contains(t, buttons(sender.last()), "chapter:1")
	assert.Contains(t, buttons(sender.last()), "chapter:2")

	bot.HandleUpdate(ctx, command("/nope"))
	assert.Equal(t, textUnknownCommand, sender.last().Text)
	assert.Positive(t, sender.requests)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	bot, sender, _ := newTestBot(t, time.Hour)
	updates := make(chan tgbotapi.Update, 4)
	updates <- callback("ta")
	updates <- callback("mode:full")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx, updates) }()

	require.Eventually(t, func() bool { return sender.count() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestWordbookListsPatterns(t *testing.T) {
	bot, sender, _ := newTestBot(t, 0)
	bot.HandleUpdate(context.Background(), command("/wordbook"))

	text := sender.last().Text
	assert.Contains(t, text, "단어장")
	assert.Contains(t, text, "총 <b>2</b>개")
	assert.Contains(t, text, "～ば (~면)")
	assert.Contains(t, text, "行けば")
	assert.Contains(t, text, "～ながら (~하면서)")
}

func TestWordbookSearchTerm(t *testing.T) {
	bot, sender, _ := newTestBot(t, 0)
	bot.HandleUpdate(context.Background(), commandWithArgs("/wordbook", "동시"))

	text := sender.last().Text
	assert.Contains(t, text, "🔎 동시")
	assert.Contains(t, text, "～ながら")
	assert.NotContains(t, text, "行けば")

	bot.HandleUpdate(context.Background(), commandWithArgs("/wordbook", "<nothing>"))
	text = sender.last().Text
	assert.Contains(t, text, "검색 결과가 없습니다.")
	assert.Contains(t, text, "&lt;nothing&gt;")
}

func TestWordbookFromMenu(t *testing.T) {
	bot, sender, _ := newTestBot(t, 0)
	bot.HandleUpdate(context.Background(), command("/start"))
	assert.Contains(t, buttons(sender.last()), "wordbook")

	bot.HandleUpdate(context.Background(), callback("wordbook"))
	assert.Contains(t, sender.last().Text, "총 <b>2</b>개")
	assert.Contains(t, buttons(sender.last()), "menu")
}
