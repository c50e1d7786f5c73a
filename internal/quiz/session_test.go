package quiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startFull(t *testing.T, n int, ta *TimeAttack) *Session {
	t.Helper()
	engine := NewEngine(courseWithExercises(n), EngineOptions{Rand: seeded(42)})
	session, err := engine.Start(ModeFull, 0, ta)
	require.NoError(t, err)
	return session
}

func TestSubmitIsIdempotent(t *testing.T) {
	session := startFull(t, 3, nil)
	q, _ := session.Current()

	wrong := (q.Answer + 1) % len(q.Options)
	require.True(t, session.Submit(wrong))
	assert.False(t, session.Submit(wrong))
	assert.False(t, session.Submit(q.Answer))

	assert.Equal(t, 0, session.Score())
	assert.Len(t, session.Wrong(), 1)
	assert.Equal(t, wrong, session.Selected())

	session2 := startFull(t, 3, nil)
	q2, _ := session2.Current()
	require.True(t, session2.Submit(q2.Answer))
	assert.False(t, session2.Submit(q2.Answer))
	assert.Equal(t, 1, session2.Score())
	assert.Empty(t, session2.Wrong())
}

func TestSubmitOutOfRangeCountsAsWrong(t *testing.T) {
	session := startFull(t, 1, nil)
	require.True(t, session.Submit(17))
	assert.Equal(t, 0, session.Score())
	assert.Len(t, session.Wrong(), 1)
}

func TestAdvanceRequiresAnswer(t *testing.T) {
	session := startFull(t, 2, nil)
	assert.False(t, session.Advance())
	assert.Equal(t, 0, session.CurrentIndex())
}

func TestAdvanceThroughSession(t *testing.T) {
	session := startFull(t, 3, nil)

	for i := 0; i < 3; i++ {
		assert.Equal(t, i, session.CurrentIndex())
		q, ok := session.Current()
		require.True(t, ok)
		if i == 1 {
			session.Submit((q.Answer + 1) % len(q.Options))
		} else {
			session.Submit(q.Answer)
		}
		require.True(t, session.Advance())
		if i < 2 {
			assert.False(t, session.Answered())
			assert.Equal(t, Unanswered, session.Selected())
		}
	}

	assert.True(t, session.Complete())
	assert.Equal(t, 2, session.CurrentIndex())
	_, ok := session.Current()
	assert.False(t, ok)

	// Calls after completion change nothing.
	assert.False(t, session.Advance())
	assert.False(t, session.Submit(0))

	res := session.Result()
	assert.Equal(t, 2, res.Score)
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Wrong, 1)
	assert.Equal(t, res.Total-len(res.Wrong), res.Score)
	assert.Equal(t, session.ID, res.SessionID)
}

func TestScoreInvariantHoldsForAnyAnswerPattern(t *testing.T) {
	rng := seeded(99)
	for run := 0; run < 50; run++ {
		session := startFull(t, 1+rng.IntN(12), nil)
		for !session.Complete() {
			if session.Score()+len(session.Wrong()) > session.Len() {
				t.Fatalf("score %d + wrong %d exceeds %d", session.Score(), len(session.Wrong()), session.Len())
			}
			q, _ := session.Current()
			choice := rng.IntN(len(q.Options))
			session.Submit(choice)
			session.Submit(choice) // duplicate UI event
			session.Advance()
		}
		assert.Equal(t, session.Len()-len(session.Wrong()), session.Score())
	}
}

func TestAbandonStopsSession(t *testing.T) {
	fc := installFakeClock(t)
	session := startFull(t, 2, &TimeAttack{Duration: 15 * time.Second})
	require.Equal(t, 1, fc.count())

	session.Abandon()
	assert.True(t, session.Abandoned())
	assert.True(t, fc.timer(0).stopped)
	assert.False(t, session.Submit(0))
	assert.False(t, session.Advance())
	assert.False(t, session.HandleTimeout(0))
}

func TestTimeoutFailsCurrentQuestion(t *testing.T) {
	fc := installFakeClock(t)
	var expired []int
	session := startFull(t, 2, &TimeAttack{
		Duration: 15 * time.Second,
		OnExpire: func(index int) { expired = append(expired, index) },
	})
	require.True(t, session.TimeAttack())
	require.Equal(t, 1, fc.count())
	assert.Equal(t, 15*time.Second, fc.timer(0).d)

	fc.advance(5 * time.Second)
	assert.Equal(t, 10*time.Second, session.Remaining())

	fc.timer(0).fire()
	require.Equal(t, []int{0}, expired)

	require.True(t, session.HandleTimeout(0))
	assert.Equal(t, Timeout, session.Selected())
	assert.True(t, session.Answered())
	assert.Equal(t, 0, session.Score())
	assert.Len(t, session.Wrong(), 1)

	// Late clicks and repeated expiries are ignored.
	assert.False(t, session.Submit(0))
	assert.False(t, session.HandleTimeout(0))
	assert.Len(t, session.Wrong(), 1)
}

func TestAnswerBeforeExpiryWins(t *testing.T) {
	fc := installFakeClock(t)
	var expired []int
	session := startFull(t, 2, &TimeAttack{
		Duration: 15 * time.Second,
		OnExpire: func(index int) { expired = append(expired, index) },
	})

	q, _ := session.Current()
	require.True(t, session.Submit(q.Answer))
	assert.True(t, fc.timer(0).stopped)

	// The timer goroutine raced Stop; the cancelled run must not report.
	fc.timer(0).fire()
	assert.Empty(t, expired)
	assert.False(t, session.HandleTimeout(0))
	assert.Equal(t, 1, session.Score())
	assert.Empty(t, session.Wrong())
}

func TestExpiryQueuedBehindAnswerIsDropped(t *testing.T) {
	fc := installFakeClock(t)
	session := startFull(t, 2, &TimeAttack{Duration: time.Second})

	// Expiry fires, but the answer reaches the session first.
	fc.timer(0).fire()
	q, _ := session.Current()
	require.True(t, session.Submit(q.Answer))
	assert.False(t, session.HandleTimeout(0))
	assert.Equal(t, 1, session.Score())
	assert.Empty(t, session.Wrong())
}

func TestStaleTimerCannotTouchNextQuestion(t *testing.T) {
	fc := installFakeClock(t)
	var expired []int
	session := startFull(t, 3, &TimeAttack{
		Duration: 15 * time.Second,
		OnExpire: func(index int) { expired = append(expired, index) },
	})

	q, _ := session.Current()
	session.Submit(q.Answer)
	require.True(t, session.Advance())
	require.Equal(t, 2, fc.count(), "advance restarts the countdown")
	assert.Equal(t, 15*time.Second, session.Remaining())

	fc.timer(0).fire()
	assert.Empty(t, expired)
	assert.False(t, session.HandleTimeout(0))
	assert.False(t, session.Answered())

	fc.timer(1).fire()
	require.Equal(t, []int{1}, expired)
	assert.True(t, session.HandleTimeout(1))
	assert.Equal(t, 1, session.Score())
	assert.Len(t, session.Wrong(), 1)
}

func TestTimeoutFromAnotherSessionIsIgnored(t *testing.T) {
	installFakeClock(t)
	first := startFull(t, 2, &TimeAttack{Duration: time.Second})
	first.Abandon()

	second := startFull(t, 2, &TimeAttack{Duration: time.Second})
	// An expiry tagged 0 from the abandoned session reaches the new one while
	// its own countdown is still running.
	assert.False(t, second.HandleTimeout(0))
	assert.False(t, second.Answered())
}

func TestHandleTimeoutWithoutTimeAttack(t *testing.T) {
	session := startFull(t, 1, nil)
	assert.False(t, session.TimeAttack())
	assert.False(t, session.HandleTimeout(0))
	assert.Zero(t, session.Remaining())
}

func TestCompletionCancelsCountdown(t *testing.T) {
	fc := installFakeClock(t)
	session := startFull(t, 1, &TimeAttack{Duration: time.Second})
	q, _ := session.Current()
	session.Submit(q.Answer)
	require.True(t, session.Advance())
	assert.True(t, session.Complete())
	assert.Equal(t, 1, fc.count())
	assert.Zero(t, session.Remaining())
}

func TestCountdownWithRealTimer(t *testing.T) {
	fired := make(chan int, 1)
	cd := NewCountdown(10*time.Millisecond, func(tag int) { fired <- tag })
	cd.Start(4)

	select {
	case tag := <-fired:
		assert.Equal(t, 4, tag)
	case <-time.After(2 * time.Second):
		t.Fatal("countdown never fired")
	}
	assert.Equal(t, CountdownExpired, cd.State())
	assert.Zero(t, cd.Remaining())
}

func TestCountdownRestartCancelsPrevious(t *testing.T) {
	fc := installFakeClock(t)
	var tags []int
	cd := NewCountdown(time.Second, func(tag int) { tags = append(tags, tag) })
	assert.Equal(t, CountdownIdle, cd.State())
	assert.Equal(t, -1, cd.Tag())

	cd.Start(0)
	cd.Start(1)
	assert.True(t, fc.timer(0).stopped)
	assert.Equal(t, 1, cd.Tag())
	assert.Equal(t, CountdownRunning, cd.State())

	fc.timer(0).fire()
	assert.Empty(t, tags)

	cd.Cancel()
	assert.Equal(t, CountdownCancelled, cd.State())
	fc.timer(1).fire()
	assert.Empty(t, tags)

	cd.Start(2)
	fc.timer(2).fire()
	fc.timer(2).fire()
	assert.Equal(t, []int{2}, tags, "a run expires at most once")
	assert.Equal(t, "expired", cd.State().String())
}
