// Package session holds the process-wide auth state as an explicit object
// instead of ambient globals. The token and flag are mirrored into the
// local store under the same keys the original web client used, so a
// restart resumes the previous session.
package session

import (
	"sync"

	"expensetracker/internal/localstore"
)

// DemoToken is the sentinel stored when a login falls back to demo mode.
const DemoToken = "demo-token"

type Session struct {
	mu            sync.Mutex
	store         localstore.Store
	token         string
	authenticated bool
}

// New loads any persisted session state from the store.
func New(store localstore.Store) (*Session, error) {
	s := &Session{store: store}
	token, ok, err := store.Get(localstore.KeyAuthToken)
	if err != nil {
		return nil, err
	}
	if ok {
		s.token = token
	}
	flag, ok, err := store.Get(localstore.KeyIsAuthenticated)
	if err != nil {
		return nil, err
	}
	s.authenticated = ok && flag == "true"
	return s, nil
}

// Set stores the token and marks the session authenticated.
func (s *Session) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(localstore.KeyAuthToken, token); err != nil {
		return err
	}
	if err := s.store.Set(localstore.KeyIsAuthenticated, "true"); err != nil {
		return err
	}
	s.token = token
	s.authenticated = true
	return nil
}

// Token returns the stored bearer token, empty when logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Authenticated reports whether a session is active.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Clear drops the token and flag from memory and from the store. It is
// used by logout and by the 401 cross-cutting rule.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(localstore.KeyAuthToken); err != nil {
		return err
	}
	if err := s.store.Delete(localstore.KeyIsAuthenticated); err != nil {
		return err
	}
	s.token = ""
	s.authenticated = false
	return nil
}
