package nav

import (
	"sync"
	"time"
)

// DefaultMinDwell is how long the overlay stays visible at minimum. An
// overlay that flashes for a few milliseconds reads as a glitch, not as a
// loading indicator.
const DefaultMinDwell = 250 * time.Millisecond

// Loader is the navigation loading overlay with hide hysteresis
type Loader struct {
	mu        sync.Mutex
	visible   bool
	shownAt   time.Time
	minDwell  time.Duration
	hideTimer *time.Timer

	now func() time.Time
}

// NewLoader creates a loader with the default minimum dwell
func NewLoader() *Loader {
	return NewLoaderWithDwell(DefaultMinDwell)
}

// NewLoaderWithDwell creates a loader with a custom minimum dwell
func NewLoaderWithDwell(minDwell time.Duration) *Loader {
	return &Loader{
		minDwell: minDwell,
		now:      time.Now,
	}
}

// Attach subscribes the loader to a router: intents show the overlay,
// settled transitions hide it (subject to the minimum dwell)
func (l *Loader) Attach(r *Router) {
	r.OnIntent(func(Intent) { l.Show() })
	r.OnSettle(func(string) { l.Hide() })
}

// Visible reports whether the overlay is currently shown
func (l *Loader) Visible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible
}

// Show makes the overlay visible and records when. Calling Show while
// already visible does not reset the dwell clock; it only cancels a pending
// hide so a follow-up navigation keeps the overlay up.
func (l *Loader) Show() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cancelHideLocked()
	if !l.visible {
		l.visible = true
		l.shownAt = l.now()
	}
}

// Hide removes the overlay once the minimum dwell has elapsed. When called
// earlier, the actual hide is scheduled for the remaining time.
func (l *Loader) Hide() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.visible {
		return
	}

	elapsed := l.now().Sub(l.shownAt)
	if elapsed >= l.minDwell {
		l.cancelHideLocked()
		l.visible = false
		return
	}

	remaining := l.minDwell - elapsed
	l.cancelHideLocked()
	l.hideTimer = time.AfterFunc(remaining, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.visible = false
		l.hideTimer = nil
	})
}

func (l *Loader) cancelHideLocked() {
	if l.hideTimer != nil {
		l.hideTimer.Stop()
		l.hideTimer = nil
	}
}
