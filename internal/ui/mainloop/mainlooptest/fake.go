// Package mainlooptest provides a deterministic main loop for tests: a
// manual clock and a dispatcher that runs posted work inline.
package mainlooptest

import (
	"sort"
	"time"

	"github.com/bnema/deskview/internal/application/port"
)

// Loop implements port.Scheduler and port.Dispatcher without goroutines.
// Post runs work immediately unless work is already running, in which
// case it is queued and drained before Post returns to the outer caller.
// Background work also runs inline.
type Loop struct {
	now     time.Time
	timers  []*Timer
	seq     int
	queue   []func()
	running bool
}

var (
	_ port.Scheduler  = (*Loop)(nil)
	_ port.Dispatcher = (*Loop)(nil)
)

// New returns a loop whose clock starts at a fixed instant.
func New() *Loop {
	return &Loop{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// Timer is a manual-clock deferred task.
type Timer struct {
	loop    *Loop
	at      time.Time
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

// Stop cancels the task.
func (t *Timer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.loop.remove(t)
	return true
}

// Delay is how far in the future the timer fires, measured from now.
func (t *Timer) Delay() time.Duration {
	return t.at.Sub(t.loop.now)
}

// AfterFunc schedules fn at now+d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) port.Timer {
	l.seq++
	t := &Timer{loop: l, at: l.now.Add(d), seq: l.seq, fn: fn}
	l.timers = append(l.timers, t)
	return t
}

// Now returns the manual clock.
func (l *Loop) Now() time.Time {
	return l.now
}

// Post runs fn inline, or queues it if called from running work.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.queue = append(l.queue, fn)
	l.drain()
}

// Background runs fn inline.
func (l *Loop) Background(fn func()) {
	if fn != nil {
		fn()
	}
}

// Pending returns the armed timers ordered by firing time.
func (l *Loop) Pending() []*Timer {
	out := make([]*Timer, len(l.timers))
	copy(out, l.timers)
	sort.Slice(out, func(i, j int) bool {
		if out[i].at.Equal(out[j].at) {
			return out[i].seq < out[j].seq
		}
		return out[i].at.Before(out[j].at)
	})
	return out
}

// Advance moves the clock forward by d, firing every due timer in order.
func (l *Loop) Advance(d time.Duration) {
	target := l.now.Add(d)
	for {
		pending := l.Pending()
		if len(pending) == 0 || pending[0].at.After(target) {
			break
		}
		t := pending[0]
		l.now = t.at
		l.remove(t)
		t.fired = true
		l.Post(t.fn)
	}
	l.now = target
}

// FireNext advances the clock to the next timer and fires it. It reports
// whether a timer was pending.
func (l *Loop) FireNext() bool {
	pending := l.Pending()
	if len(pending) == 0 {
		return false
	}
	l.Advance(pending[0].at.Sub(l.now))
	return true
}

func (l *Loop) drain() {
	if l.running {
		return
	}
	l.running = true
	defer func() { l.running = false }()
	for len(l.queue) > 0 {
		fn := l.queue[0]
		l.queue = l.queue[1:]
		fn()
	}
}

func (l *Loop) remove(t *Timer) {
	for i, candidate := range l.timers {
		if candidate == t {
			l.timers = append(l.timers[:i], l.timers[i+1:]...)
			return
		}
	}
}
