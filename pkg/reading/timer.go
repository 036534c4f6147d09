package reading

import (
	"sync"
	"time"
)

// AutoAdvanceDelay is how long a finished chapter waits before moving on.
const AutoAdvanceDelay = 5 * time.Second

// Stopper is satisfied by *time.Timer.
type Stopper interface {
	Stop() bool
}

// Scheduler runs f once after d. The default uses time.AfterFunc; tests swap
// in a manual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Handle identifies one scheduled action.
type Handle struct {
	stop Stopper
}

// AutoAdvanceTimer holds at most one pending action.
type AutoAdvanceTimer struct {
	mu      sync.Mutex
	sched   Scheduler
	pending *Handle
}

func NewAutoAdvanceTimer(sched Scheduler) *AutoAdvanceTimer {
	if sched == nil {
		sched = realScheduler{}
	}
	return &AutoAdvanceTimer{sched: sched}
}

// Schedule replaces any pending action with action, run after delay.
func (t *AutoAdvanceTimer) Schedule(delay time.Duration, action func()) *Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelLocked(t.pending)

	h := &Handle{}
	h.stop = t.sched.AfterFunc(delay, func() {
		t.mu.Lock()
		if t.pending != h {
			// canceled or replaced after the underlying timer fired
			t.mu.Unlock()
			return
		}
		t.pending = nil
		t.mu.Unlock()

		action()
	})
	t.pending = h
	return h
}

// Cancel stops h if it is still the pending action. Safe on fired, canceled
// or nil handles.
func (t *AutoAdvanceTimer) Cancel(h *Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked(h)
}

func (t *AutoAdvanceTimer) CancelPending() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked(t.pending)
}

func (t *AutoAdvanceTimer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

func (t *AutoAdvanceTimer) cancelLocked(h *Handle) {
	if h == nil || t.pending != h {
		return
	}
	t.pending = nil
	if h.stop != nil {
		h.stop.Stop()
	}
}
