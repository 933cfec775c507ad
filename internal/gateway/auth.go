package gateway

import (
	"context"
	"log/slog"
	"strconv"

	"expensetracker/internal/core"
	"expensetracker/internal/session"
)

// AuthResult is what login and register hand back to the web layer.
type AuthResult struct {
	Success bool
	Token   string
	User    core.User
}

// Login authenticates against the remote store. When the remote is
// unreachable and both fields are non-empty, a demo session is created so
// the app stays usable without a backend. This fallback is a product
// decision, not an accident.
func (g *Gateway) Login(ctx context.Context, username, password string) (AuthResult, error) {
	token, err := g.remote.Login(ctx, username, password)
	if err == nil {
		if err := g.session.Set(token); err != nil {
			return AuthResult{}, err
		}
		return AuthResult{
			Success: true,
			Token:   token,
			User:    core.User{ID: "1", Username: username, Name: username},
		}, nil
	}
	slog.WarnContext(ctx, "Remote login failed, trying demo mode", "error", err)

	if username == "" || password == "" {
		return AuthResult{}, core.ErrInvalidCredentials
	}
	if err := g.session.Set(session.DemoToken); err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		Success: true,
		Token:   session.DemoToken,
		User:    core.User{ID: "1", Username: username, Name: username},
	}, nil
}

// Register creates an account and immediately logs in with the same
// credentials. The demo fallback applies when the remote is unreachable
// and all three fields are non-empty.
func (g *Gateway) Register(ctx context.Context, username, email, password string) (AuthResult, error) {
	reg, err := g.remote.Register(ctx, username, email, password)
	if err == nil {
		login, err := g.Login(ctx, username, password)
		if err != nil {
			return AuthResult{}, err
		}
		return AuthResult{
			Success: true,
			Token:   login.Token,
			User:    core.User{ID: strconv.FormatInt(reg.ID, 10), Name: reg.Username, Email: email},
		}, nil
	}
	slog.WarnContext(ctx, "Remote registration failed, trying demo mode", "error", err)

	if username == "" || email == "" || password == "" {
		return AuthResult{}, core.ErrRegistrationFailed
	}
	if err := g.session.Set(session.DemoToken); err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		Success: true,
		Token:   session.DemoToken,
		User:    core.User{ID: "1", Name: username, Email: email},
	}, nil
}

// Logout clears the session. It always succeeds from the caller's
// perspective; a storage hiccup is logged and swallowed.
func (g *Gateway) Logout(ctx context.Context) {
	if err := g.session.Clear(); err != nil {
		slog.WarnContext(ctx, "Failed to clear persisted session", "error", err)
	}
}
