// Package nav provides the in-process router for the portal views and the
// loading overlay shown while a transition settles.
//
// Navigation is modelled as explicit intent events: every call site that
// triggers a transition goes through the Router, which notifies subscribers
// before and after the location changes. Nothing global is intercepted.
package nav

import (
	"errors"
	"strings"
	"sync"
)

// ErrNoHistory is returned by Back when there is nothing to go back to
var ErrNoHistory = errors.New("no history to go back to")

// IntentKind distinguishes how a navigation was triggered
type IntentKind int

const (
	// IntentPush adds a new history entry
	IntentPush IntentKind = iota
	// IntentReplace swaps the current history entry
	IntentReplace
	// IntentBack pops the current history entry
	IntentBack
)

// Intent describes a navigation that is about to happen
type Intent struct {
	Kind IntentKind
	From string
	To   string
}

// Router keeps the portal's location and history stack and emits intent and
// settle events around every transition
type Router struct {
	mu         sync.Mutex
	stack      []string
	intentSubs []func(Intent)
	settleSubs []func(path string)
}

// NewRouter creates a router positioned at the initial path
func NewRouter(initial string) *Router {
	return &Router{stack: []string{normalize(initial)}}
}

// Current returns the current location
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stack[len(r.stack)-1]
}

// OnIntent subscribes to navigation intents (emitted before the location changes)
func (r *Router) OnIntent(fn func(Intent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intentSubs = append(r.intentSubs, fn)
}

// OnSettle subscribes to completed transitions (emitted after the location changed)
func (r *Router) OnSettle(fn func(path string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settleSubs = append(r.settleSubs, fn)
}

// Push navigates to target, adding a history entry. A push to the current
// location (including hash-only differences) is a no-op: no events fire and
// no history entry is added, so the overlay never flashes for nothing.
func (r *Router) Push(target string) error {
	return r.navigate(IntentPush, target)
}

// Replace navigates to target without adding a history entry
func (r *Router) Replace(target string) error {
	return r.navigate(IntentReplace, target)
}

// Back pops the history stack
func (r *Router) Back() error {
	r.mu.Lock()
	if len(r.stack) < 2 {
		r.mu.Unlock()
		return ErrNoHistory
	}
	from := r.stack[len(r.stack)-1]
	to := r.stack[len(r.stack)-2]
	r.stack = r.stack[:len(r.stack)-1]
	intentSubs, settleSubs := r.subscribers()
	r.mu.Unlock()

	emit(intentSubs, Intent{Kind: IntentBack, From: from, To: to})
	settle(settleSubs, to)
	return nil
}

func (r *Router) navigate(kind IntentKind, target string) error {
	to := normalize(target)

	r.mu.Lock()
	from := r.stack[len(r.stack)-1]
	if to == from {
		r.mu.Unlock()
		return nil
	}

	switch kind {
	case IntentPush:
		r.stack = append(r.stack, to)
	case IntentReplace:
		r.stack[len(r.stack)-1] = to
	}
	intentSubs, settleSubs := r.subscribers()
	r.mu.Unlock()

	emit(intentSubs, Intent{Kind: kind, From: from, To: to})
	settle(settleSubs, to)
	return nil
}

// subscribers copies the subscriber slices so callbacks run without the lock
func (r *Router) subscribers() ([]func(Intent), []func(string)) {
	intentSubs := make([]func(Intent), len(r.intentSubs))
	copy(intentSubs, r.intentSubs)
	settleSubs := make([]func(string), len(r.settleSubs))
	copy(settleSubs, r.settleSubs)
	return intentSubs, settleSubs
}

func emit(subs []func(Intent), intent Intent) {
	for _, fn := range subs {
		fn(intent)
	}
}

func settle(subs []func(string), path string) {
	for _, fn := range subs {
		fn(path)
	}
}

// normalize reduces a target to path plus query; a hash-only change resolves
// to the same location
func normalize(target string) string {
	if i := strings.IndexByte(target, '#'); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		return "/"
	}
	return target
}
