package session

import (
	"testing"

	"expensetracker/internal/localstore"
)

func newStore(t *testing.T) localstore.Store {
	t.Helper()
	store, err := localstore.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func TestSessionLifecycle(t *testing.T) {
	store := newStore(t)

	sess, err := New(store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if sess.Authenticated() {
		t.Fatal("fresh session should not be authenticated")
	}
	if sess.Token() != "" {
		t.Fatalf("fresh session token = %q", sess.Token())
	}

	if err := sess.Set("abc123"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !sess.Authenticated() || sess.Token() != "abc123" {
		t.Fatalf("after Set: authenticated=%v token=%q", sess.Authenticated(), sess.Token())
	}

	if err := sess.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if sess.Authenticated() || sess.Token() != "" {
		t.Fatal("session not cleared")
	}
}

func TestSessionPersistsAcrossRestart(t *testing.T) {
	store := newStore(t)

	sess, err := New(store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := sess.Set(DemoToken); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// A new session over the same store resumes the previous state.
	resumed, err := New(store)
	if err != nil {
		t.Fatalf("New (resumed): %v", err)
	}
	if !resumed.Authenticated() || resumed.Token() != DemoToken {
		t.Fatalf("resumed session: authenticated=%v token=%q", resumed.Authenticated(), resumed.Token())
	}

	// The stored keys match the documented layout.
	v, ok, _ := store.Get(localstore.KeyAuthToken)
	if !ok || v != DemoToken {
		t.Errorf("authToken key = %q ok=%v", v, ok)
	}
	v, ok, _ = store.Get(localstore.KeyIsAuthenticated)
	if !ok || v != "true" {
		t.Errorf("isAuthenticated key = %q ok=%v", v, ok)
	}
}
