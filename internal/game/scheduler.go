package game

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs the engine's timers: one-shot deferred transitions and the
// per-second countdown. Callbacks run on the scheduler's goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (cancel func())
	Every(d time.Duration, f func()) (stop func())
}

type realScheduler struct{}

// RealScheduler is backed by the time package.
func RealScheduler() Scheduler { return realScheduler{} }

func (realScheduler) AfterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

func (realScheduler) Every(d time.Duration, f func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				f()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// ManualScheduler is a deterministic Scheduler driven by Advance.
// It doubles as the session clock through Now.
type ManualScheduler struct {
	mu      sync.Mutex
	base    time.Time
	now     time.Duration
	seq     int
	pending []*manualEvent
}

type manualEvent struct {
	at      time.Duration
	every   time.Duration // > 0 for tickers
	seq     int
	f       func()
	stopped bool
}

// NewManualScheduler starts the clock at base.
func NewManualScheduler(base time.Time) *ManualScheduler {
	return &ManualScheduler{base: base}
}

// Now returns the simulated wall-clock time.
func (m *ManualScheduler) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.base.Add(m.now)
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) func() {
	ev := m.add(d, 0, f)
	return func() { m.stop(ev) }
}

func (m *ManualScheduler) Every(d time.Duration, f func()) func() {
	ev := m.add(d, d, f)
	return func() { m.stop(ev) }
}

func (m *ManualScheduler) add(d, every time.Duration, f func()) *manualEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	ev := &manualEvent{at: m.now + d, every: every, seq: m.seq, f: f}
	m.pending = append(m.pending, ev)
	return ev
}

func (m *ManualScheduler) stop(ev *manualEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev.stopped = true
	m.compact()
}

// compact drops stopped events; callers hold mu.
func (m *ManualScheduler) compact() {
	live := m.pending[:0]
	for _, ev := range m.pending {
		if !ev.stopped {
			live = append(live, ev)
		}
	}
	m.pending = live
}

// Advance moves the clock forward by d, firing due callbacks in time order.
// Callbacks run without the scheduler lock held, so they may schedule or cancel.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	for {
		m.compact()
		sort.SliceStable(m.pending, func(i, j int) bool {
			if m.pending[i].at != m.pending[j].at {
				return m.pending[i].at < m.pending[j].at
			}
			return m.pending[i].seq < m.pending[j].seq
		})
		if len(m.pending) == 0 || m.pending[0].at > target {
			break
		}
		ev := m.pending[0]
		m.now = ev.at
		if ev.every > 0 {
			ev.at += ev.every
		} else {
			ev.stopped = true
		}
		m.mu.Unlock()
		ev.f()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// Timers reports live one-shot callbacks.
func (m *ManualScheduler) Timers() int { return m.count(false) }

// Tickers reports live repeating callbacks.
func (m *ManualScheduler) Tickers() int { return m.count(true) }

func (m *ManualScheduler) count(tickers bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.pending {
		if !ev.stopped && (ev.every > 0) == tickers {
			n++
		}
	}
	return n
}
