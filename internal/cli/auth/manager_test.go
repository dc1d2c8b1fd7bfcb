package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genlink-dev/genlink/internal/cli/api"
)

// memStore is an in-memory token store for testing
type memStore struct {
	mu    sync.Mutex
	token string
}

func (s *memStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *memStore) SetToken(token string, remember bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *memStore) ClearToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// fakeAPI is a controllable ProfileAPI double
type fakeAPI struct {
	mu          sync.Mutex
	calls       int
	inFlight    int
	maxInFlight int
	delay       time.Duration
	account     *api.Account
	err         error
	started     chan struct{} // signalled when a fetch begins, when non-nil
	release     chan struct{} // fetch blocks until closed, when non-nil
}

func (f *fakeAPI) Me(ctx context.Context, token string) (*api.Account, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	account, err := f.account, f.err
	started, release := f.started, f.release
	delay := f.delay
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return account, nil
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAPI) maxConcurrent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

func profile() *api.Account {
	return &api.Account{Email: "jan@example.com", FullName: "Jan Kowalski"}
}

func TestManager_BootstrapWithoutToken(t *testing.T) {
	store := &memStore{}
	client := &fakeAPI{account: profile()}
	m := NewManager(store, client, zerolog.Nop())

	m.Bootstrap(context.Background(), "/wolontariusz/panel")

	snap := m.Snapshot()
	assert.False(t, snap.IsLoading)
	assert.False(t, snap.IsAuthenticated)
	assert.Zero(t, client.callCount(), "no token must mean no network call")
}

func TestManager_BootstrapWithValidToken(t *testing.T) {
	store := &memStore{token: "tok-valid"}
	client := &fakeAPI{account: profile()}
	m := NewManager(store, client, zerolog.Nop())

	m.Bootstrap(context.Background(), "/wolontariusz/panel")

	snap := m.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "Jan Kowalski", snap.User.FullName)
	assert.Equal(t, "tok-valid", snap.Token)
	assert.Equal(t, StateAuthenticated, m.State())
}

func TestManager_BootstrapWithInvalidToken(t *testing.T) {
	store := &memStore{token: "tok-expired"}
	client := &fakeAPI{err: api.ErrUnauthorized}
	m := NewManager(store, client, zerolog.Nop())

	m.Bootstrap(context.Background(), "/wolontariusz/panel")

	snap := m.Snapshot()
	assert.False(t, snap.IsAuthenticated)
	assert.False(t, snap.IsLoading)
	assert.Empty(t, store.Token(), "rejected token must be dropped from the store")
}

func TestManager_LoginSuccess(t *testing.T) {
	store := &memStore{}
	client := &fakeAPI{account: profile()}
	m := NewManager(store, client, zerolog.Nop())
	m.Bootstrap(context.Background(), "/")

	require.NoError(t, m.Login(context.Background(), "tok-new", true))

	snap := m.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "tok-new", store.Token())
}

func TestManager_LoginFailureSurfacesAndRollsBack(t *testing.T) {
	store := &memStore{}
	client := &fakeAPI{err: api.ErrUnauthorized}
	m := NewManager(store, client, zerolog.Nop())
	m.Bootstrap(context.Background(), "/")

	err := m.Login(context.Background(), "tok-bad", false)
	require.ErrorIs(t, err, api.ErrUnauthorized)

	snap := m.Snapshot()
	assert.False(t, snap.IsAuthenticated)
	assert.Empty(t, store.Token())
}

func TestManager_StaleResponseDiscardedAfterLogout(t *testing.T) {
	store := &memStore{}
	client := &fakeAPI{
		account: profile(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	m := NewManager(store, client, zerolog.Nop())
	m.Bootstrap(context.Background(), "/")

	loginDone := make(chan error, 1)
	go func() {
		loginDone <- m.Login(context.Background(), "tok-slow", true)
	}()

	// Wait for the profile fetch to start, log out underneath it, then let
	// the stale response land
	<-client.started
	m.Logout()
	close(client.release)

	require.NoError(t, <-loginDone)

	snap := m.Snapshot()
	assert.False(t, snap.IsAuthenticated, "stale fetch must not re-authenticate a logged-out session")
	assert.Nil(t, snap.User)
	assert.Empty(t, store.Token())
}

func TestManager_LogoutIsSynchronous(t *testing.T) {
	store := &memStore{token: "tok"}
	client := &fakeAPI{account: profile()}
	m := NewManager(store, client, zerolog.Nop())
	m.Bootstrap(context.Background(), "/")
	require.True(t, m.Snapshot().IsAuthenticated)

	m.Logout()

	snap := m.Snapshot()
	assert.False(t, snap.IsAuthenticated)
	assert.Empty(t, store.Token())
	assert.Equal(t, 1, client.callCount(), "logout must not call the network")
}

func TestManager_RefreshKeepsSessionOnFailure(t *testing.T) {
	store := &memStore{token: "tok"}
	client := &fakeAPI{account: profile()}
	m := NewManager(store, client, zerolog.Nop())
	m.Bootstrap(context.Background(), "/")
	require.True(t, m.Snapshot().IsAuthenticated)

	client.mu.Lock()
	client.err = errors.New("network blip")
	client.mu.Unlock()

	err := m.RefreshProfile(context.Background())
	require.Error(t, err)

	// The asymmetry with bootstrap: the session survives a failed refresh
	snap := m.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "tok", store.Token())
}

func TestManager_RefreshWithoutTokenIsNoop(t *testing.T) {
	store := &memStore{}
	client := &fakeAPI{account: profile()}
	m := NewManager(store, client, zerolog.Nop())
	m.Bootstrap(context.Background(), "/")

	require.NoError(t, m.RefreshProfile(context.Background()))
	assert.Zero(t, client.callCount())
}

func TestManager_RefreshUpdatesProfileInPlace(t *testing.T) {
	store := &memStore{token: "tok"}
	client := &fakeAPI{account: profile()}
	m := NewManager(store, client, zerolog.Nop())
	m.Bootstrap(context.Background(), "/")

	reportID := 42
	updated := profile()
	updated.ActiveReport = &reportID
	client.mu.Lock()
	client.account = updated
	client.mu.Unlock()

	require.NoError(t, m.RefreshProfile(context.Background()))

	snap := m.Snapshot()
	require.NotNil(t, snap.User.ActiveReport)
	assert.Equal(t, 42, *snap.User.ActiveReport)
}

func TestManager_ConcurrentRefreshesCoalesce(t *testing.T) {
	store := &memStore{token: "tok"}
	client := &fakeAPI{account: profile()}
	m := NewManager(store, client, zerolog.Nop())
	m.Bootstrap(context.Background(), "/")
	baseline := client.callCount()

	client.mu.Lock()
	client.started = make(chan struct{}, 1)
	client.release = make(chan struct{})
	client.mu.Unlock()

	first := make(chan error, 1)
	go func() {
		first <- m.RefreshProfile(context.Background())
	}()
	<-client.started

	second := make(chan error, 1)
	go func() {
		second <- m.RefreshProfile(context.Background())
	}()

	// Give the second caller a moment to attach to the in-flight fetch
	time.Sleep(20 * time.Millisecond)
	close(client.release)

	require.NoError(t, <-first)
	require.NoError(t, <-second)
	assert.Equal(t, baseline+1, client.callCount(), "second refresh must coalesce, not fire its own fetch")
}

func TestManager_RacingRefreshesNeverOverlap(t *testing.T) {
	store := &memStore{token: "tok"}
	client := &fakeAPI{account: profile(), delay: time.Millisecond}
	m := NewManager(store, client, zerolog.Nop())
	m.Bootstrap(context.Background(), "/")

	// Hammer the manager from many goroutines; whichever interleaving the
	// scheduler picks, at most one profile fetch may be in flight
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				if err := m.RefreshProfile(context.Background()); err != nil {
					t.Errorf("refresh failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, client.maxConcurrent(), "profile fetches must never overlap")
}

func TestManager_DeferredBootstrapOnPublicPath(t *testing.T) {
	store := &memStore{token: "tok"}
	client := &fakeAPI{account: profile()}
	m := NewManager(store, client, zerolog.Nop())
	m.SetRequiresProfile(func(path string) bool {
		return !strings.HasPrefix(path, "/wolontariusz/login")
	})

	m.Bootstrap(context.Background(), "/wolontariusz/login")
	assert.Zero(t, client.callCount(), "public path must not trigger a profile fetch")
	assert.False(t, m.Snapshot().IsAuthenticated)

	// Navigating to a protected path re-evaluates the deferred fetch
	m.EnsureProfile(context.Background(), "/wolontariusz/panel")
	assert.Equal(t, 1, client.callCount())
	assert.True(t, m.Snapshot().IsAuthenticated)

	// Further navigation changes nothing once resolved
	m.EnsureProfile(context.Background(), "/wolontariusz/zgloszenia")
	assert.Equal(t, 1, client.callCount())
}
