package countdown

// Scheduler hands out timers: the shared global timer for the default period
// and a fresh local timer for anything else.
type Scheduler struct {
	defaultPeriod int
	clock         Clock
	global        *Timer
}

// NewScheduler creates a scheduler around the dashboard default period
func NewScheduler(defaultPeriod int, clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		defaultPeriod: defaultPeriod,
		clock:         clock,
		global:        NewTimer(defaultPeriod, ModeGlobal, clock),
	}
}

// DefaultPeriod returns the period of the global timer
func (s *Scheduler) DefaultPeriod() int { return s.defaultPeriod }

// Global returns the shared timer
func (s *Scheduler) Global() *Timer { return s.global }

// ModeFor returns which kind of timer an account with period uses
func (s *Scheduler) ModeFor(period int) Mode {
	if period <= 0 || period == s.defaultPeriod {
		return ModeGlobal
	}
	return ModeLocal
}

// TimerFor returns the global timer for the default period and a new local timer otherwise.
// Local timers are owned by the caller and live as long as it holds them.
func (s *Scheduler) TimerFor(period int) *Timer {
	if s.ModeFor(period) == ModeGlobal {
		return s.global
	}
	return NewTimer(period, ModeLocal, s.clock)
}
