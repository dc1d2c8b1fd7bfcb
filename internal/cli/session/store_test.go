package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	keyring.MockInit()
	t.Setenv("GENLINK_SESSION_ID", "test-session")

	return newStore("api.test.local", t.TempDir(), filepath.Join(t.TempDir(), "genlink"))
}

func TestStore_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		remember bool
	}{
		{name: "remembered token", remember: true},
		{name: "session token", remember: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)

			store.SetToken("tok-abc123", tt.remember)
			assert.Equal(t, "tok-abc123", store.Token())

			store.ClearToken()
			assert.Empty(t, store.Token())
		})
	}
}

func TestStore_ScopeExclusivity(t *testing.T) {
	store := newTestStore(t)

	store.SetToken("durable-token", true)
	store.SetToken("session-token", false)

	// The durable scope must not retain the earlier token
	_, err := keyring.Get(keyringService, store.keyringKey())
	assert.ErrorIs(t, err, keyring.ErrNotFound)
	assert.Equal(t, "session-token", store.Token())
}

func TestStore_SessionScopeTakesPrecedence(t *testing.T) {
	store := newTestStore(t)

	store.SetToken("remembered", true)

	// A token written directly into the session scope shadows the durable one
	require.NoError(t, os.WriteFile(store.sessionFilePath(), []byte("tab-local"), 0600))
	assert.Equal(t, "tab-local", store.Token())
}

func TestStore_PreferenceMemory(t *testing.T) {
	store := newTestStore(t)

	store.SetToken("tok", false)

	// A fresh store over the same config dir sees the recorded choice
	fresh := newStore(store.host, store.tempDir, store.configDir)
	assert.Equal(t, PersistenceSession, fresh.PreferredPersistence())

	store.SetToken("tok2", true)
	assert.Equal(t, PersistenceLocal, fresh.PreferredPersistence())
}

func TestStore_PreferenceSurvivesClear(t *testing.T) {
	store := newTestStore(t)

	store.SetToken("tok", false)
	store.ClearToken()

	assert.Equal(t, PersistenceSession, store.PreferredPersistence())
}

func TestStore_PreferenceDefaultsToLocal(t *testing.T) {
	store := newTestStore(t)

	assert.Equal(t, PersistenceLocal, store.PreferredPersistence())
}

func TestStore_DegradesWithoutConfigDir(t *testing.T) {
	keyring.MockInit()
	t.Setenv("GENLINK_SESSION_ID", "test-session")

	store := newStore("api.test.local", "", "")

	// Nothing to write to: all operations are silent no-ops
	store.SetToken("tok", false)
	assert.Empty(t, store.Token())
	store.ClearToken()
	assert.Equal(t, PersistenceLocal, store.PreferredPersistence())
}

func TestStore_IgnoresForeignSessionFiles(t *testing.T) {
	store := newTestStore(t)
	store.SetToken("mine", false)

	other := newStore(store.host, store.tempDir, store.configDir)
	t.Setenv("GENLINK_SESSION_ID", "another-session")

	assert.Empty(t, other.Token())
}
