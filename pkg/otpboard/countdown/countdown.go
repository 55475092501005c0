// Package countdown tracks where "now" sits inside a TOTP period.
//
// Most accounts share the dashboard default period, so they share one global
// Timer. Accounts with any other period get their own local Timer. The two are
// never mixed: a card reading the global remaining value for a 60 s account
// would show a code that looks stuck or skips a cycle.
package countdown

import (
	"context"
	"time"
)

// Mode tells whether a timer is the shared one or belongs to a single account
type Mode string

const (
	ModeGlobal Mode = "global"
	ModeLocal  Mode = "local"
)

// DefaultTickInterval is how often running timers wake up
const DefaultTickInterval = time.Second

// Remaining returns the whole seconds left in the current period, in [1, period].
// It is never 0: at a boundary the new period has just started.
func Remaining(period int, now time.Time) int {
	if period <= 0 {
		return 0
	}
	p := int64(period)
	return int(p - mod(now.Unix(), p))
}

// Progress converts remaining seconds into a percentage in (0, 100]
func Progress(remaining, period int) float64 {
	if period <= 0 {
		return 0
	}
	return 100 * float64(remaining) / float64(period)
}

// IsBoundary reports whether now is the first second of a new period
func IsBoundary(period int, now time.Time) bool {
	if period <= 0 {
		return false
	}
	return mod(now.Unix(), int64(period)) == 0
}

func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// Clock supplies wall-clock time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time { return c.T }

// Snapshot is the timer state at one instant
type Snapshot struct {
	Period    int       `json:"period"`
	Remaining int       `json:"remaining"`
	Progress  float64   `json:"progress"`
	Counter   int64     `json:"counter"`
	Boundary  bool      `json:"boundary"`
	Mode      Mode      `json:"mode"`
	At        time.Time `json:"-"`
}

// Timer computes countdown state for one period
type Timer struct {
	period int
	mode   Mode
	clock  Clock
}

// NewTimer creates a timer for period seconds
func NewTimer(period int, mode Mode, clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Timer{period: period, mode: mode, clock: clock}
}

// Period returns the timer period in seconds
func (t *Timer) Period() int { return t.period }

// Mode returns whether this is the global or a local timer
func (t *Timer) Mode() Mode { return t.mode }

// Now returns the timer's current time
func (t *Timer) Now() time.Time { return t.clock.Now() }

// SnapshotAt returns the state at now
func (t *Timer) SnapshotAt(now time.Time) Snapshot {
	rem := Remaining(t.period, now)
	var counter int64
	if t.period > 0 {
		counter = (now.Unix() - mod(now.Unix(), int64(t.period))) / int64(t.period)
	}
	return Snapshot{
		Period:    t.period,
		Remaining: rem,
		Progress:  Progress(rem, t.period),
		Counter:   counter,
		Boundary:  IsBoundary(t.period, now),
		Mode:      t.mode,
		At:        now,
	}
}

// Snapshot returns the state at the clock's current time
func (t *Timer) Snapshot() Snapshot {
	return t.SnapshotAt(t.clock.Now())
}

// Run wakes every interval until ctx is done and calls fn with the current state.
// regenerate is true on the first call and whenever a new period has started,
// including when a tick was delayed past the exact boundary second.
func (t *Timer) Run(ctx context.Context, interval time.Duration, fn func(s Snapshot, regenerate bool)) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	last := t.Snapshot()
	fn(last, true)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := t.Snapshot()
			fn(s, s.Counter != last.Counter)
			last = s
		}
	}
}
