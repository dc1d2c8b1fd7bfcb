// Package auth owns the client-side session: which volunteer is logged in,
// which token backs that belief, and the transitions between the two.
//
// A token alone never counts as authenticated - the profile fetch has to
// confirm it first. Bootstrap failures are absorbed silently (the user simply
// appears logged out), while login and explicit refresh failures surface to
// the caller. In-flight profile fetches are tagged with a generation counter;
// a result is discarded unless the generation still matches when it lands, so
// a fetch started before a logout can never resurrect the old session.
package auth

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/genlink-dev/genlink/internal/cli/api"
)

// State describes where the session manager is in its lifecycle
type State int

const (
	// StateBootstrapping is the initial state before stored credentials were examined
	StateBootstrapping State = iota
	// StateUnauthenticated means no confirmed session exists
	StateUnauthenticated
	// StateAuthenticating means a profile fetch for a candidate token is in flight
	StateAuthenticating
	// StateAuthenticated means the profile was confirmed for the current token
	StateAuthenticated
)

// TokenStore is the subset of the session store the manager needs.
// Mirrors internal/cli/session.Store and allows an in-memory double in tests.
type TokenStore interface {
	Token() string
	SetToken(token string, remember bool)
	ClearToken()
}

// ProfileAPI is the subset of the API client the manager needs
type ProfileAPI interface {
	Me(ctx context.Context, token string) (*api.Account, error)
}

// Snapshot is an immutable view of the session for guards and views
type Snapshot struct {
	User            *api.Account
	Token           string
	IsAuthenticated bool
	IsLoading       bool
}

// flight tracks one in-flight profile fetch so concurrent refreshes coalesce
type flight struct {
	done chan struct{}
	err  error
}

// Manager orchestrates bootstrap, login, logout and profile refresh
type Manager struct {
	mu    sync.Mutex
	store TokenStore
	api   ProfileAPI
	log   zerolog.Logger

	user       *api.Account
	token      string
	state      State
	generation uint64
	inflight   *flight

	// requiresProfile lets public paths skip the bootstrap fetch; nil means
	// every path triggers it
	requiresProfile func(path string) bool
	deferred        bool
}

// NewManager creates a session manager over the given store and API client
func NewManager(store TokenStore, client ProfileAPI, log zerolog.Logger) *Manager {
	return &Manager{
		store: store,
		api:   client,
		log:   log,
		state: StateBootstrapping,
	}
}

// SetRequiresProfile installs the path policy consulted during bootstrap
func (m *Manager) SetRequiresProfile(fn func(path string) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requiresProfile = fn
}

// Snapshot returns the current session view
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		User:            m.user,
		Token:           m.token,
		IsAuthenticated: m.user != nil && m.token != "",
		IsLoading:       m.state == StateBootstrapping || m.state == StateAuthenticating,
	}
}

// State returns the current lifecycle state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Bootstrap recovers the session from the token store. Without a token it
// settles into StateUnauthenticated without any network call. With a token it
// fetches the profile; a rejection clears the stored token and settles into
// StateUnauthenticated silently - the route guards handle the rest.
//
// currentPath feeds the requiresProfile policy: on a public path the fetch is
// deferred until EnsureProfile is called for a path that needs it.
func (m *Manager) Bootstrap(ctx context.Context, currentPath string) {
	m.mu.Lock()

	token := m.store.Token()
	if token == "" {
		m.state = StateUnauthenticated
		m.mu.Unlock()
		return
	}

	m.token = token
	if m.requiresProfile != nil && !m.requiresProfile(currentPath) {
		// Public surface: hold the token but skip the fetch for now
		m.deferred = true
		m.state = StateUnauthenticated
		m.mu.Unlock()
		return
	}

	m.state = StateAuthenticating
	gen := m.generation
	m.mu.Unlock()

	if err := m.fetchProfile(ctx, gen, token); err != nil {
		m.log.Debug().Err(err).Msg("Session bootstrap failed, treating token as invalid")
	}
}

// EnsureProfile re-evaluates a deferred bootstrap for the given path.
// No-op when bootstrap already resolved or when the path stays public.
func (m *Manager) EnsureProfile(ctx context.Context, path string) {
	m.mu.Lock()
	if !m.deferred || m.token == "" || (m.requiresProfile != nil && !m.requiresProfile(path)) {
		m.mu.Unlock()
		return
	}
	m.deferred = false
	m.state = StateAuthenticating
	gen := m.generation
	token := m.token
	m.mu.Unlock()

	if err := m.fetchProfile(ctx, gen, token); err != nil {
		m.log.Debug().Err(err).Msg("Deferred bootstrap failed, treating token as invalid")
	}
}

// Login stores the freshly issued token and confirms it with a profile fetch.
// Unlike bootstrap, a failed fetch here is returned to the caller (the login
// form shows it) and the candidate token is discarded.
func (m *Manager) Login(ctx context.Context, token string, remember bool) error {
	m.mu.Lock()
	m.generation++
	m.store.SetToken(token, remember)
	m.token = token
	m.user = nil
	m.deferred = false
	m.state = StateAuthenticating
	gen := m.generation
	m.mu.Unlock()

	if err := m.fetchProfile(ctx, gen, token); err != nil {
		return err
	}
	return nil
}

// Logout drops the session synchronously. No network call is made; any fetch
// still in flight lands stale and is discarded.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.store.ClearToken()
	m.user = nil
	m.token = ""
	m.deferred = false
	m.state = StateUnauthenticated
}

// RefreshProfile refetches the profile for the current token. Failures are
// returned to the caller and the session is kept - a transient outage while
// already authenticated must not log the user out. Concurrent calls coalesce
// onto a single fetch.
func (m *Manager) RefreshProfile(ctx context.Context) error {
	m.mu.Lock()
	if m.token == "" {
		m.mu.Unlock()
		return nil
	}
	if f := m.inflight; f != nil {
		m.mu.Unlock()
		select {
		case <-f.done:
			return f.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	// Install the flight in the same critical section as the check so two
	// concurrent callers can never both pass it and fetch twice
	f := &flight{done: make(chan struct{})}
	m.inflight = f
	gen := m.generation
	token := m.token
	m.mu.Unlock()

	return m.refreshOnce(ctx, f, gen, token)
}

// refreshOnce performs one profile fetch that updates the user in place
// without touching the stored token on failure
func (m *Manager) refreshOnce(ctx context.Context, f *flight, gen uint64, token string) error {
	account, err := m.api.Me(ctx, token)

	m.mu.Lock()
	m.inflight = nil
	if gen != m.generation {
		// Superseded session: discard silently
		err = nil
	} else if err == nil {
		m.user = account
	}
	f.err = err
	close(f.done)
	m.mu.Unlock()
	return err
}

// fetchProfile performs the authenticating fetch shared by bootstrap and
// login. A failure for the still-current generation clears the session.
func (m *Manager) fetchProfile(ctx context.Context, gen uint64, token string) error {
	account, err := m.api.Me(ctx, token)

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation {
		// The session moved on while the fetch was in flight
		return nil
	}

	if err != nil {
		m.store.ClearToken()
		m.user = nil
		m.token = ""
		m.state = StateUnauthenticated
		return err
	}

	m.user = account
	m.state = StateAuthenticated
	return nil
}
