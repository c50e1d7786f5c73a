// Package telegram serves the quiz over the Telegram Bot API.
//
// All chat state is owned by the goroutine running Bot.Run. Countdown
// expiries arrive on a channel that the same loop drains, so session
// mutation never races with user input.
package telegram

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/PoluyanbIch/tabibot/internal/leaderboard"
	"github.com/PoluyanbIch/tabibot/internal/logging"
	"github.com/PoluyanbIch/tabibot/internal/quiz"
)

// Sender is the subset of *tgbotapi.BotAPI the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Options configures a Bot.
type Options struct {
	// TimeAttack is the per-question countdown used when a chat enables
	// time attack.
	TimeAttack time.Duration
	Logger     *slog.Logger
}

// Bot routes updates to per-chat quiz sessions.
type Bot struct {
	api        Sender
	engine     *quiz.Engine
	board      leaderboard.Store
	timeAttack time.Duration
	logger     *slog.Logger

	chats    map[int64]*chatState
	timeouts chan timeoutEvent
	done     chan struct{}
	stopOnce sync.Once
}

type chatState struct {
	session    *quiz.Session
	seq        uint64
	chapterID  int
	lastWrong  []quiz.Question
	lastMode   quiz.Mode
	timeAttack bool
}

type timeoutEvent struct {
	chatID int64
	seq    uint64
	index  int
}

// NewBot returns a bot sending through api.
func NewBot(api Sender, engine *quiz.Engine, board leaderboard.Store, opts Options) *Bot {
	if opts.TimeAttack <= 0 {
		opts.TimeAttack = 15 * time.Second
	}
	return &Bot{
		api:        api,
		engine:     engine,
		board:      board,
		timeAttack: opts.TimeAttack,
		logger:     logging.OrNop(opts.Logger).With("component", "telegram"),
		chats:      make(map[int64]*chatState),
		timeouts:   make(chan timeoutEvent, 16),
		done:       make(chan struct{}),
	}
}

// Listen long-polls the Bot API until ctx is done.
func Listen(ctx context.Context, api *tgbotapi.BotAPI, bot *Bot) error {
	bot.logger.Info("authorised", "account", api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	return bot.Run(ctx, updates)
}

// Run handles updates and countdown expiries until ctx is done or updates is
// closed. Every running countdown is cancelled on return.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	defer b.shutdown()
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		case ev := <-b.timeouts:
			b.handleTimeout(ev)
		}
	}
}

func (b *Bot) shutdown() {
	b.stopOnce.Do(func() {
		close(b.done)
		for _, state := range b.chats {
			if state.session != nil {
				state.session.Abandon()
			}
		}
		b.logger.Info("bot stopped", "chats", len(b.chats))
	})
}

// HandleUpdate processes one update. It must only be called from the
// goroutine that owns the bot.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) chat(chatID int64) *chatState {
	state, ok := b.chats[chatID]
	if !ok {
		state = &chatState{}
		b.chats[chatID] = state
	}
	return state
}

// expiryFunc returns the countdown hook for the session numbered seq. It runs
// on the timer goroutine and only forwards the event to the loop.
func (b *Bot) expiryFunc(chatID int64, seq uint64) func(int) {
	return func(index int) {
		select {
		case b.timeouts <- timeoutEvent{chatID: chatID, seq: seq, index: index}:
		case <-b.done:
		}
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("send failed", "error", err)
	}
}
