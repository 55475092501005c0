package countdown

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemainingRange(t *testing.T) {
	for _, period := range []int{1, 15, 30, 60, 90} {
		for unix := int64(0); unix < 500; unix++ {
			rem := Remaining(period, time.Unix(unix, 0))
			assert.GreaterOrEqual(t, rem, 1)
			assert.LessOrEqual(t, rem, period)
		}
	}
}

func TestRemainingValues(t *testing.T) {
	assert.Equal(t, 30, Remaining(30, time.Unix(60, 0)))
	assert.Equal(t, 1, Remaining(30, time.Unix(59, 0)))
	assert.Equal(t, 20, Remaining(30, time.Unix(70, 0)))
	assert.Equal(t, 45, Remaining(60, time.Unix(75, 0)))
	// Sub-second offsets stay in the same second
	assert.Equal(t, 1, Remaining(30, time.Unix(59, 999_000_000)))
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 100.0, Progress(30, 30))
	assert.InDelta(t, 100.0/30, Progress(1, 30), 1e-9)
	assert.Equal(t, 50.0, Progress(30, 60))
	assert.Equal(t, 0.0, Progress(5, 0))

	for unix := int64(0); unix < 120; unix++ {
		p := Progress(Remaining(30, time.Unix(unix, 0)), 30)
		assert.Greater(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
	}
}

func TestIsBoundary(t *testing.T) {
	assert.True(t, IsBoundary(30, time.Unix(60, 0)))
	assert.False(t, IsBoundary(30, time.Unix(59, 0)))
	assert.False(t, IsBoundary(60, time.Unix(90, 0)))
	assert.True(t, IsBoundary(60, time.Unix(120, 0)))
	assert.False(t, IsBoundary(0, time.Unix(120, 0)))
}

func TestSnapshotCounter(t *testing.T) {
	timer := NewTimer(30, ModeGlobal, nil)

	s := timer.SnapshotAt(time.Unix(59, 0))
	assert.Equal(t, int64(1), s.Counter)
	assert.Equal(t, 1, s.Remaining)
	assert.False(t, s.Boundary)

	s = timer.SnapshotAt(time.Unix(60, 0))
	assert.Equal(t, int64(2), s.Counter)
	assert.Equal(t, 30, s.Remaining)
	assert.True(t, s.Boundary)
	assert.Equal(t, ModeGlobal, s.Mode)
}

func TestSchedulerModes(t *testing.T) {
	clock := FixedClock{T: time.Unix(75, 0)}
	s := NewScheduler(30, clock)

	assert.Equal(t, ModeGlobal, s.ModeFor(30))
	assert.Equal(t, ModeGlobal, s.ModeFor(0))
	assert.Equal(t, ModeLocal, s.ModeFor(60))

	global := s.TimerFor(30)
	assert.Same(t, s.Global(), global)

	local := s.TimerFor(60)
	assert.NotSame(t, s.Global(), local)
	assert.Equal(t, ModeLocal, local.Mode())

	// The local timer must report its own values, not the global ones
	gs := global.Snapshot()
	ls := local.Snapshot()
	assert.Equal(t, 15, gs.Remaining)
	assert.Equal(t, 45, ls.Remaining)
	assert.Equal(t, 60, ls.Period)
	assert.InDelta(t, 75.0, ls.Progress, 1e-9)

	// Each caller gets its own local timer
	assert.NotSame(t, local, s.TimerFor(60))
}

type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(time.Second)
	return t
}

func TestRunRegeneratesAtBoundary(t *testing.T) {
	clock := &steppingClock{now: time.Unix(57, 0)}
	timer := NewTimer(30, ModeGlobal, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type call struct {
		unix  int64
		regen bool
	}
	var (
		mu    sync.Mutex
		calls []call
	)
	done := make(chan struct{})

	go func() {
		timer.Run(ctx, time.Millisecond, func(s Snapshot, regenerate bool) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, call{s.At.Unix(), regenerate})
			if len(calls) == 5 {
				cancel()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timer did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(calls), 5)
	assert.Equal(t, call{57, true}, calls[0])
	assert.Equal(t, call{58, false}, calls[1])
	assert.Equal(t, call{59, false}, calls[2])
	assert.Equal(t, call{60, true}, calls[3])
	assert.Equal(t, call{61, false}, calls[4])
}
