// Package remote implements the HTTP client for the backend of record.
// Every failure is returned as an explicit error value for the gateway to
// pattern-match on; nothing here panics or retries.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// StatusError is a non-2xx response, carrying the server's msg field when
// one was present in the body.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("remote returned %d", e.Code)
}

type (
	// ExpenseRecord is the remote wire shape: a signed amount and a
	// category id plus resolved name.
	ExpenseRecord struct {
		ID           int64   `json:"id"`
		Amount       float64 `json:"amount"`
		CategoryID   int     `json:"category_id"`
		CategoryName string  `json:"category_name"`
		Date         string  `json:"date"`
		Description  string  `json:"description"`
	}

	// ExpenseInput is the request body for create and update.
	ExpenseInput struct {
		Amount      float64 `json:"amount"`
		CategoryID  int     `json:"category_id"`
		Date        string  `json:"date"`
		Description string  `json:"description"`
	}

	// ExpenseUpdate carries only the fields being changed; the server
	// keeps existing values for anything omitted.
	ExpenseUpdate struct {
		Amount      *float64 `json:"amount,omitempty"`
		CategoryID  *int     `json:"category_id,omitempty"`
		Date        *string  `json:"date,omitempty"`
		Description *string  `json:"description,omitempty"`
	}

	CategoryRecord struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	RegisterResult struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
)

// Client talks to the remote store. The token source is consulted on
// every request; OnUnauthorized fires on any 401 before the error is
// returned, implementing the cross-cutting session-clear rule.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	token          func() string
	onUnauthorized func()
}

func NewClient(baseURL string, timeout time.Duration, token func() string, onUnauthorized func()) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		token:          token,
		onUnauthorized: onUnauthorized,
	}
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) (RegisterResult, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var out RegisterResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &out); err != nil {
		return RegisterResult{}, err
	}
	return out, nil
}

func (c *Client) ListExpenses(ctx context.Context) ([]ExpenseRecord, error) {
	var out []ExpenseRecord
	if err := c.do(ctx, http.MethodGet, "/expenses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateExpense(ctx context.Context, in ExpenseInput) (ExpenseRecord, error) {
	var out ExpenseRecord
	if err := c.do(ctx, http.MethodPost, "/expenses", in, &out); err != nil {
		return ExpenseRecord{}, err
	}
	return out, nil
}

func (c *Client) UpdateExpense(ctx context.Context, id string, in ExpenseUpdate) (ExpenseRecord, error) {
	var out ExpenseRecord
	if err := c.do(ctx, http.MethodPut, "/expenses/"+id, in, &out); err != nil {
		return ExpenseRecord{}, err
	}
	return out, nil
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/expenses/"+id, nil, nil)
}

func (c *Client) ListCategories(ctx context.Context) ([]CategoryRecord, error) {
	var out []CategoryRecord
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, name string) (CategoryRecord, error) {
	var out CategoryRecord
	if err := c.do(ctx, http.MethodPost, "/categories", map[string]string{"name": name}, &out); err != nil {
		return CategoryRecord{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: serverMessage(data)}
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// serverMessage extracts the error message the backend puts under "msg"
// (or "error" on validation failures).
func serverMessage(body []byte) string {
	var payload struct {
		Msg   string `json:"msg"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Msg != "" {
		return payload.Msg
	}
	return payload.Error
}
