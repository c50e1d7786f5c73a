package quiz

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/PoluyanbIch/tabibot/internal/content"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// fire runs the callback even after Stop, like a runtime timer whose
// goroutine was already on its way when Stop was called.
func (t *fakeTimer) fire() { t.f() }

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) timer(i int) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timers[i]
}

func (c *fakeClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func installFakeClock(t *testing.T) *fakeClock {
	t.Helper()
	fc := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	origStart, origClock := startTimer, clock
	startTimer = func(d time.Duration, f func()) stopper {
		fc.mu.Lock()
		defer fc.mu.Unlock()
		ft := &fakeTimer{d: d, f: f}
		fc.timers = append(fc.timers, ft)
		return ft
	}
	clock = func() time.Time {
		fc.mu.Lock()
		defer fc.mu.Unlock()
		return fc.now
	}
	t.Cleanup(func() {
		startTimer = origStart
		clock = origClock
	})
	return fc
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// exampleCourse is the two-question chapter used throughout the tests.
func exampleCourse() *content.Course {
	return &content.Course{
		Title: "example",
		Chapters: []content.Chapter{{
			ID:    1,
			Title: "Chapter One",
			Exercises: []content.Exercise{
				{Question: "A?", Options: []string{"x", "y", "z", "w"}, Answer: 2},
				{Question: "B?", Options: []string{"p", "q"}, Answer: 0},
			},
		}},
	}
}

// courseWithExercises builds a course with n exercises spread over chapters of
// three exercises each.
func courseWithExercises(n int) *content.Course {
	course := &content.Course{Title: "generated"}
	for i := 0; i < n; i++ {
		if i%3 == 0 {
			id := len(course.Chapters) + 1
			course.Chapters = append(course.Chapters, content.Chapter{ID: id, Title: "Chapter " + string(rune('A'+id-1))})
		}
		ch := &course.Chapters[len(course.Chapters)-1]
		ch.Exercises = append(ch.Exercises, content.Exercise{
			Question: "Q" + string(rune('a'+i)) + "?",
			Options:  []string{"o1", "o2", "o3", "o4"},
			Answer:   i % 4,
		})
	}
	return course
}

func indexOf(options []string, text string) int {
	for i, o := range options {
		if o == text {
			return i
		}
	}
	return -1
}
