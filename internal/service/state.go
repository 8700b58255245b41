package service

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// LoadState is the observable loading state.
type LoadState string

// Load states.
const (
	StateIdle    LoadState = "idle"
	StateLoading LoadState = "loading"
	StateLoaded  LoadState = "loaded"
	StateFailed  LoadState = "failed"
)

// StateView is a snapshot of the loading state.
type StateView struct {
	State       LoadState
	Error       *PresentedError
	LastUpdated time.Time
	// Humanized is LastUpdated relative to now, e.g. "5 minutes ago".
	Humanized string
	// NextFetch is when the fetch throttle next admits a network fetch; zero means now.
	NextFetch      time.Time
	NextFetchHuman string
}

// stateTracker records the outcome of the last explicit fetch.
type stateTracker struct {
	mu      sync.Mutex
	state   LoadState
	lastErr error
}

func newStateTracker() *stateTracker {
	return &stateTracker{state: StateIdle}
}

func (t *stateTracker) succeed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateLoaded
	t.lastErr = nil
}

func (t *stateTracker) fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateFailed
	t.lastErr = err
}

// dismiss clears a failure: loaded when data exists, idle otherwise.
func (t *stateTracker) dismiss(hasData bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateFailed {
		return
	}
	t.lastErr = nil
	if hasData {
		t.state = StateLoaded
	} else {
		t.state = StateIdle
	}
}

func (t *stateTracker) snapshot() (LoadState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state, t.lastErr
}

// Humanize renders how long ago t was relative to now.
func Humanize(now, t time.Time) string {
	if t.IsZero() {
		return "Never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	default:
		return t.Format("Jan 2, 2006 at 3:04 PM")
	}
}

// HumanizeNext renders when t arrives relative to now. Zero or past times read "Now".
func HumanizeNext(now, t time.Time) string {
	d := t.Sub(now)
	switch {
	case t.IsZero() || d <= 0:
		return "Now"
	case d < time.Minute:
		return "in under a minute"
	case d < time.Hour:
		return "in " + strings.TrimSuffix(plural(int(d/time.Minute), "minute"), " ago")
	case d < 24*time.Hour:
		return "in " + strings.TrimSuffix(plural(int(d/time.Hour), "hour"), " ago")
	default:
		return t.Format("Jan 2, 2006 at 3:04 PM")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
