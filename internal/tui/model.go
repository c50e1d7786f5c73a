// Package tui plays quiz sessions in the terminal with Bubble Tea.
package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/PoluyanbIch/tabibot/internal/quiz"
)

// Options configures the player.
type Options struct {
	Mode      quiz.Mode
	ChapterID int
	// TimeAttack enables a per-question countdown when positive.
	TimeAttack   time.Duration
	NoColor      bool
	TickInterval time.Duration
}

// Model drives one quiz session and any retry sessions that follow it.
type Model struct {
	engine       *quiz.Engine
	session      *quiz.Session
	result       *quiz.Result
	timeAttack   time.Duration
	seq          int
	expiries     chan expiryMsg
	bar          progress.Model
	tickInterval time.Duration
	noColor      bool
	quitting     bool
	notice       string
}

// expiryMsg reports a countdown that ran out for question index of the
// session numbered seq.
type expiryMsg struct {
	seq   int
	index int
}

// tickMsg refreshes the countdown display.
type tickMsg time.Time

// New starts the first session. It fails with quiz.ErrEmptyQuestionSet when
// the selection has no questions.
func New(engine *quiz.Engine, opts Options) (Model, error) {
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = 200 * time.Millisecond
	}
	m := Model{
		engine:       engine,
		timeAttack:   opts.TimeAttack,
		expiries:     make(chan expiryMsg, 8),
		bar:          progress.New(progress.WithWidth(30), progress.WithoutPercentage(), progress.WithGradient("#FF7CCB", "#FDFF8C")),
		tickInterval: tickInterval,
		noColor:      opts.NoColor,
	}
	mode := opts.Mode
	if mode == "" {
		mode = quiz.ModeRandom
	}
	session, err := engine.Start(mode, opts.ChapterID, m.nextTimeAttack())
	if err != nil {
		return Model{}, err
	}
	m.session = session
	return m, nil
}

func (m *Model) nextTimeAttack() *quiz.TimeAttack {
	m.seq++
	if m.timeAttack <= 0 {
		return nil
	}
	seq, ch := m.seq, m.expiries
	return &quiz.TimeAttack{
		Duration: m.timeAttack,
		OnExpire: func(index int) {
			select {
			case ch <- expiryMsg{seq: seq, index: index}:
			default:
			}
		},
	}
}

// Session returns the session being played, or nil after it finished.
func (m Model) Session() *quiz.Session { return m.session }

// Result returns the last finished session's summary.
func (m Model) Result() *quiz.Result { return m.result }

// Init starts the countdown plumbing when time attack is enabled.
func (m Model) Init() tea.Cmd {
	if m.timeAttack <= 0 {
		return nil
	}
	return tea.Batch(waitForExpiry(m.expiries), tick(m.tickInterval))
}

// Update handles keys, countdown expiries and ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case expiryMsg:
		if m.session != nil && typed.seq == m.seq {
			m.session.HandleTimeout(typed.index)
		}
		return m, waitForExpiry(m.expiries)
	case tickMsg:
		if m.quitting {
			return m, nil
		}
		return m, tick(m.tickInterval)
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(typed.Width-20, 10), 40)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c", "q", "esc":
		if m.session != nil {
			m.session.Abandon()
		}
		m.quitting = true
		return m, tea.Quit
	case "enter", " ":
		return m.advance()
	case "r":
		return m.retry()
	}

	if m.session == nil || m.session.Answered() {
		return m, nil
	}
	runes := key.Runes
	if len(runes) != 1 || runes[0] < '1' || runes[0] > '9' {
		return m, nil
	}
	option := int(runes[0] - '1')
	if q, _ := m.session.Current(); option >= len(q.Options) {
		return m, nil
	}
	m.session.Submit(option)
	return m, nil
}

func (m Model) advance() (tea.Model, tea.Cmd) {
	if m.session == nil || !m.session.Advance() {
		return m, nil
	}
	if m.session.Complete() {
		result := m.session.Result()
		m.result = &result
		m.session = nil
	}
	return m, nil
}

func (m Model) retry() (tea.Model, tea.Cmd) {
	if m.session != nil || m.result == nil {
		return m, nil
	}
	session, err := m.engine.Retry(m.result.Wrong, m.nextTimeAttack())
	if errors.Is(err, quiz.ErrEmptyQuestionSet) {
		m.notice = "다시 풀 틀린 문제가 없어요."
		return m, nil
	}
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.session = session
	m.result = nil
	m.notice = ""
	return m, nil
}

func waitForExpiry(ch <-chan expiryMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}
