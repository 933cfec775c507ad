package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/gateway"
)

type fakeAuth struct {
	authenticated bool
	loginErr      error
	registerErr   error
	loggedOut     bool
	lastUsername  string
	lastPassword  string
}

func (f *fakeAuth) Login(_ context.Context, username, password string) (gateway.AuthResult, error) {
	f.lastUsername, f.lastPassword = username, password
	if f.loginErr != nil {
		return gateway.AuthResult{}, f.loginErr
	}
	f.authenticated = true
	return gateway.AuthResult{Success: true, Token: "tok"}, nil
}

func (f *fakeAuth) Register(_ context.Context, username, email, password string) (gateway.AuthResult, error) {
	if f.registerErr != nil {
		return gateway.AuthResult{}, f.registerErr
	}
	f.authenticated = true
	return gateway.AuthResult{Success: true, Token: "tok"}, nil
}

func (f *fakeAuth) Logout(context.Context) { f.loggedOut = true; f.authenticated = false }
func (f *fakeAuth) Authenticated() bool    { return f.authenticated }

type fakeTxs struct {
	txs       []core.Transaction
	listErr   error
	created   []gateway.CreateInput
	createErr error
	deletedID string
	deleteErr error
	updatedID string
	updatedIn gateway.UpdateInput
	updateRes *core.Transaction
	updateErr error
}

func (f *fakeTxs) Transactions(context.Context) ([]core.Transaction, error) {
	return f.txs, f.listErr
}

func (f *fakeTxs) CreateTransaction(_ context.Context, in gateway.CreateInput) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, in)
	return "1", nil
}

func (f *fakeTxs) DeleteTransaction(_ context.Context, id string) error {
	f.deletedID = id
	return f.deleteErr
}

func (f *fakeTxs) UpdateTransaction(_ context.Context, id string, in gateway.UpdateInput) (*core.Transaction, error) {
	f.updatedID, f.updatedIn = id, in
	return f.updateRes, f.updateErr
}

type fakeCats struct {
	cats  []core.Category
	err   error
	calls int
}

func (f *fakeCats) Categories(context.Context) ([]core.Category, error) {
	f.calls++
	return f.cats, f.err
}

func (f *fakeCats) CreateCategory(_ context.Context, name string) (core.Category, error) {
	if f.err != nil {
		return core.Category{}, f.err
	}
	return core.Category{ID: 9, Name: name}, nil
}

func newTestServer(t *testing.T, auth *fakeAuth, txs *fakeTxs, cats *fakeCats) *Server {
	t.Helper()
	if auth == nil {
		auth = &fakeAuth{authenticated: true}
	}
	if txs == nil {
		txs = &fakeTxs{}
	}
	if cats == nil {
		cats = &fakeCats{cats: core.FallbackCategories()}
	}
	s := NewServer("127.0.0.1:0", auth, txs, cats, 10, time.Minute)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func doRequest(s *Server, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 (body: %s)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Errorf("Location = %q, want %q", got, location)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, nil, nil, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(s, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestRequireAuthRedirectsToLogin(t *testing.T) {
	s := newTestServer(t, &fakeAuth{authenticated: false}, nil, nil)
	for _, path := range []string{"/", "/ui/transactions", "/ui/summary"} {
		rec := doRequest(s, http.MethodGet, path, nil)
		assertRedirect(t, rec, "/login")
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, &fakeAuth{authenticated: false}, nil, nil)
	rec := doRequest(s, http.MethodGet, "/login", nil)
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy header")
	}
}

func TestLoginFlow(t *testing.T) {
	auth := &fakeAuth{}
	s := newTestServer(t, auth, nil, nil)

	rec := doRequest(s, http.MethodGet, "/login", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /login status = %d, want 200", rec.Code)
	}

	rec = doRequest(s, http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"pw"}})
	assertRedirect(t, rec, "/")
	if auth.lastUsername != "alice" || auth.lastPassword != "pw" {
		t.Errorf("credentials not passed through: %q/%q", auth.lastUsername, auth.lastPassword)
	}

	// Already authenticated: the login page bounces home.
	rec = doRequest(s, http.MethodGet, "/login", nil)
	assertRedirect(t, rec, "/")
}

func TestLoginFailureRenders401(t *testing.T) {
	auth := &fakeAuth{loginErr: core.ErrInvalidCredentials}
	s := newTestServer(t, auth, nil, nil)

	rec := doRequest(s, http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {""}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid credentials") {
		t.Error("error message missing from rendered page")
	}
}

func TestRegisterFailureRenders422(t *testing.T) {
	auth := &fakeAuth{registerErr: core.ErrRegistrationFailed}
	s := newTestServer(t, auth, nil, nil)

	rec := doRequest(s, http.MethodPost, "/register", url.Values{"username": {"bob"}, "email": {"b@x.com"}, "password": {"pw"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	auth := &fakeAuth{authenticated: true}
	s := newTestServer(t, auth, nil, nil)

	rec := doRequest(s, http.MethodGet, "/logout", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /logout status = %d, want 405", rec.Code)
	}

	rec = doRequest(s, http.MethodPost, "/logout", nil)
	assertRedirect(t, rec, "/login")
	if !auth.loggedOut {
		t.Error("Logout was not invoked")
	}
}

func TestIndexRendersDashboard(t *testing.T) {
	txs := &fakeTxs{txs: []core.Transaction{
		{
			ID:          "1",
			Amount:      core.Amount{Kind: core.Expense, Magnitude: core.Money{Cents: 8550}},
			Description: "Groceries",
			Category:    "Food & Dining",
			Date:        core.NewDate(2024, 1, 14),
		},
		{
			ID:          "2",
			Amount:      core.Amount{Kind: core.Income, Magnitude: core.Money{Cents: 350000}},
			Description: "Salary",
			Category:    "Other",
			Date:        core.NewDate(2024, 1, 15),
		},
	}}
	s := newTestServer(t, nil, txs, nil)

	rec := doRequest(s, http.MethodGet, "/?ok=Saved", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Groceries", "-$85.50", "+$3500.00", "Saved"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestCreateTransactionForm(t *testing.T) {
	txs := &fakeTxs{}
	s := newTestServer(t, nil, txs, nil)

	rec := doRequest(s, http.MethodPost, "/transactions", url.Values{
		"type":        {"expense"},
		"amount":      {"85.50"},
		"category":    {"Food & Dining"},
		"date":        {"2024-01-14"},
		"description": {"Groceries"},
	})
	assertRedirect(t, rec, "/?ok=Transaction+added")

	if len(txs.created) != 1 {
		t.Fatalf("created %d transactions, want 1", len(txs.created))
	}
	in := txs.created[0]
	if in.Kind != core.Expense {
		t.Errorf("Kind = %q", in.Kind)
	}
	if in.Amount.Cents != 8550 {
		t.Errorf("Amount = %d cents, want 8550", in.Amount.Cents)
	}
	if in.CategoryID != 1 {
		t.Errorf("CategoryID = %d, want 1 (resolved from name)", in.CategoryID)
	}
	if in.Date.String() != "2024-01-14" {
		t.Errorf("Date = %q", in.Date)
	}
}

func TestCreateTransactionRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		wantErr string
	}{
		{
			name:    "bad amount",
			form:    url.Values{"type": {"expense"}, "amount": {"abc"}, "date": {"2024-01-14"}, "description": {"x"}},
			wantErr: "Invalid+amount",
		},
		{
			name:    "negative amount",
			form:    url.Values{"type": {"expense"}, "amount": {"-5"}, "date": {"2024-01-14"}, "description": {"x"}},
			wantErr: "Invalid+amount",
		},
		{
			name:    "bad date",
			form:    url.Values{"type": {"expense"}, "amount": {"5"}, "date": {"14/01/2024"}, "description": {"x"}},
			wantErr: "Invalid+date",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := &fakeTxs{}
			s := newTestServer(t, nil, txs, nil)
			rec := doRequest(s, http.MethodPost, "/transactions", tt.form)
			assertRedirect(t, rec, "/?err="+tt.wantErr)
			if len(txs.created) != 0 {
				t.Error("invalid input reached the gateway")
			}
		})
	}
}

func TestDeleteTransactionForm(t *testing.T) {
	txs := &fakeTxs{}
	s := newTestServer(t, nil, txs, nil)

	rec := doRequest(s, http.MethodPost, "/transactions/delete", url.Values{"id": {"17"}})
	assertRedirect(t, rec, "/?ok=Transaction+deleted")
	if txs.deletedID != "17" {
		t.Errorf("deleted id = %q, want 17", txs.deletedID)
	}

	rec = doRequest(s, http.MethodPost, "/transactions/delete", url.Values{})
	assertRedirect(t, rec, "/?err=Missing+transaction+id")
}

func TestUpdateTransactionForm(t *testing.T) {
	updated := &core.Transaction{ID: "17"}
	txs := &fakeTxs{updateRes: updated}
	s := newTestServer(t, nil, txs, nil)

	rec := doRequest(s, http.MethodPost, "/transactions/update", url.Values{
		"id":          {"17"},
		"amount":      {"42.00"},
		"type":        {"income"},
		"description": {"Refund"},
	})
	assertRedirect(t, rec, "/?ok=Transaction+updated")

	if txs.updatedID != "17" {
		t.Fatalf("updated id = %q, want 17", txs.updatedID)
	}
	in := txs.updatedIn
	if in.Amount == nil || in.Amount.Kind != core.Income || in.Amount.Magnitude.Cents != 4200 {
		t.Errorf("Amount not carried as a whole: %+v", in.Amount)
	}
	if in.Description == nil || *in.Description != "Refund" {
		t.Errorf("Description = %v", in.Description)
	}
	if in.Date != nil || in.Category != nil {
		t.Error("untouched fields must stay nil")
	}
}

func TestUpdateTransactionNoEffect(t *testing.T) {
	txs := &fakeTxs{updateRes: nil}
	s := newTestServer(t, nil, txs, nil)

	rec := doRequest(s, http.MethodPost, "/transactions/update", url.Values{
		"id":          {"missing"},
		"description": {"x"},
	})
	assertRedirect(t, rec, "/?ok=No+changes+applied")
}

func TestCategoriesAreCached(t *testing.T) {
	cats := &fakeCats{cats: core.FallbackCategories()}
	s := newTestServer(t, nil, nil, cats)

	doRequest(s, http.MethodGet, "/", nil)
	doRequest(s, http.MethodGet, "/", nil)
	if cats.calls != 1 {
		t.Errorf("Categories called %d times, want 1 (second hit served from cache)", cats.calls)
	}
}

func TestFormatDollars(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{8550, "$85.50"},
		{350000, "$3500.00"},
		{-7000, "-$70.00"},
	}
	for _, tt := range tests {
		if got := formatDollars(tt.cents); got != tt.want {
			t.Errorf("formatDollars(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestFormatSigned(t *testing.T) {
	expense := core.Amount{Kind: core.Expense, Magnitude: core.Money{Cents: 8550}}
	if got := formatSigned(expense); got != "-$85.50" {
		t.Errorf("formatSigned(expense) = %q", got)
	}
	income := core.Amount{Kind: core.Income, Magnitude: core.Money{Cents: 100}}
	if got := formatSigned(income); got != "+$1.00" {
		t.Errorf("formatSigned(income) = %q", got)
	}
}

func TestCategoryID(t *testing.T) {
	cats := core.FallbackCategories()
	if got := categoryID(cats, "Transportation"); got != 2 {
		t.Errorf("categoryID(Transportation) = %d, want 2", got)
	}
	if got := categoryID(cats, "Nonexistent"); got != 0 {
		t.Errorf("categoryID(Nonexistent) = %d, want 0", got)
	}
}

func TestSummaryRowsWidths(t *testing.T) {
	sum := core.Summarize([]core.Transaction{
		{Amount: core.Amount{Kind: core.Expense, Magnitude: core.Money{Cents: 10000}}, Category: "Rent", Description: "x", Date: core.NewDate(2024, 1, 1)},
		{Amount: core.Amount{Kind: core.Expense, Magnitude: core.Money{Cents: 100}}, Category: "Snacks", Description: "x", Date: core.NewDate(2024, 1, 1)},
	})
	view := summaryRows(sum)
	if len(view.ByCategory) != 2 {
		t.Fatalf("ByCategory rows = %d, want 2", len(view.ByCategory))
	}
	if view.ByCategory[0].Width != 100 {
		t.Errorf("largest category width = %d, want 100", view.ByCategory[0].Width)
	}
	if view.ByCategory[1].Width < 2 {
		t.Errorf("smallest category width = %d, want at least 2", view.ByCategory[1].Width)
	}
	if !view.Overdrawn {
		t.Error("all-expense summary should be overdrawn")
	}
}
