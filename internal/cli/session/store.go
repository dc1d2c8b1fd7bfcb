// Package session persists the bearer token obtained from the GenLink API.
//
// A token lives in exactly one of two scopes: the durable scope backed by the
// OS keychain (survives reboots, "remember me") or the ephemeral scope backed
// by a file keyed to the current terminal session. The session scope wins when
// both hold a value, so logging in without --remember inside one terminal does
// not disturb a remembered login.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "genlink-cli"

	prefFileName = "persistence"
)

// Persistence identifies which scope the user last chose for their token
type Persistence string

const (
	// PersistenceLocal means the token survives across terminal sessions
	PersistenceLocal Persistence = "local"
	// PersistenceSession means the token is scoped to the current terminal session
	PersistenceSession Persistence = "session"
)

// Store reads and writes the bearer token for a single API host.
//
// Every operation degrades to a no-op (reads return the empty string) when the
// keychain or the filesystem is unavailable; nothing here ever panics or
// returns an error to the caller.
type Store struct {
	mu        sync.Mutex
	host      string
	tempDir   string
	configDir string
}

// New creates a token store for the given API host
func New(host string) *Store {
	configDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "genlink")
	}
	return newStore(host, os.TempDir(), configDir)
}

func newStore(host, tempDir, configDir string) *Store {
	return &Store{
		host:      host,
		tempDir:   tempDir,
		configDir: configDir,
	}
}

// keyringKey returns a unique key for storing tokens per API host
func (s *Store) keyringKey() string {
	return fmt.Sprintf("token-%s", sanitizeHost(s.host))
}

// sessionFilePath returns the ephemeral token file for the current terminal session
func (s *Store) sessionFilePath() string {
	if s.tempDir == "" {
		return ""
	}
	name := fmt.Sprintf("genlink-session-%s-%s", sanitizeHost(s.host), sessionKey())
	return filepath.Join(s.tempDir, name)
}

// Token returns the stored bearer token, or the empty string when none exists.
// The ephemeral scope takes precedence over the durable one.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok := s.readSessionScope(); tok != "" {
		return tok
	}
	return s.readDurableScope()
}

// SetToken clears both scopes, writes the token into the scope selected by
// remember, and records the choice as the preferred persistence.
func (s *Store) SetToken(token string, remember bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearScopes()

	pref := PersistenceSession
	if remember {
		pref = PersistenceLocal
		if err := keyring.Set(keyringService, s.keyringKey(), token); err != nil {
			// No keychain available - the token simply won't survive
			pref = PersistenceSession
		}
	}
	if pref == PersistenceSession {
		if path := s.sessionFilePath(); path != "" {
			_ = os.WriteFile(path, []byte(token), 0600)
		}
	}

	s.writePreference(pref)
}

// ClearToken removes the token from both scopes. The persistence preference
// is left untouched so the next login form can pre-select it.
func (s *Store) ClearToken() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearScopes()
}

// PreferredPersistence returns the scope the user last chose, defaulting to
// PersistenceLocal when no choice was ever recorded.
func (s *Store) PreferredPersistence() Persistence {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.configDir == "" {
		return PersistenceLocal
	}
	data, err := os.ReadFile(filepath.Join(s.configDir, prefFileName))
	if err != nil {
		return PersistenceLocal
	}
	if Persistence(strings.TrimSpace(string(data))) == PersistenceSession {
		return PersistenceSession
	}
	return PersistenceLocal
}

func (s *Store) readDurableScope() string {
	token, err := keyring.Get(keyringService, s.keyringKey())
	if err != nil {
		// ErrNotFound and "no keychain" degrade the same way
		return ""
	}
	return token
}

func (s *Store) readSessionScope() string {
	path := s.sessionFilePath()
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *Store) clearScopes() {
	if err := keyring.Delete(keyringService, s.keyringKey()); err != nil &&
		!errors.Is(err, keyring.ErrNotFound) {
		// Keychain unavailable - nothing durable to clear
		_ = err
	}
	if path := s.sessionFilePath(); path != "" {
		_ = os.Remove(path)
	}
}

func (s *Store) writePreference(pref Persistence) {
	if s.configDir == "" {
		return
	}
	if err := os.MkdirAll(s.configDir, 0755); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(s.configDir, prefFileName), []byte(pref), 0644)
}

// sessionKey derives a stable identifier for the current terminal session so
// ephemeral tokens written by one shell are visible to later commands in the
// same shell but not to other sessions.
func sessionKey() string {
	for _, env := range []string{"GENLINK_SESSION_ID", "XDG_SESSION_ID", "TERM_SESSION_ID"} {
		if v := os.Getenv(env); v != "" {
			return sanitizeHost(v)
		}
	}
	return strconv.Itoa(os.Getppid())
}

func sanitizeHost(host string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, host)
}
