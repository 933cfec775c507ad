// Package gateway mediates all transaction, category, and auth traffic
// between the web layer and the two backing stores. Every operation tries
// the remote store first; on any transport failure it serves the
// equivalent operation from the local store and returns a result shaped
// identically to the remote success case, so callers never know which
// path answered.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/localstore"
	"expensetracker/internal/remote"
	"expensetracker/internal/session"
)

// RemoteStore is the outbound port to the backend of record,
// implemented by remote.Client.
type RemoteStore interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, email, password string) (remote.RegisterResult, error)
	ListExpenses(ctx context.Context) ([]remote.ExpenseRecord, error)
	CreateExpense(ctx context.Context, in remote.ExpenseInput) (remote.ExpenseRecord, error)
	UpdateExpense(ctx context.Context, id string, in remote.ExpenseUpdate) (remote.ExpenseRecord, error)
	DeleteExpense(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]remote.CategoryRecord, error)
	CreateCategory(ctx context.Context, name string) (remote.CategoryRecord, error)
}

type Gateway struct {
	remote  RemoteStore
	local   localstore.Store
	session *session.Session

	mu     sync.Mutex
	lastID int64
}

func New(remote RemoteStore, local localstore.Store, sess *session.Session) *Gateway {
	return &Gateway{remote: remote, local: local, session: sess}
}

// Authenticated reports whether a session is active.
func (g *Gateway) Authenticated() bool {
	return g.session.Authenticated()
}

// CreateInput is the UI-shape input for a new transaction: unsigned
// magnitude plus kind, category as id and display name.
type CreateInput struct {
	Kind         core.Kind
	Amount       core.Money
	CategoryID   int
	CategoryName string
	Date         core.Date
	Description  string
}

// UpdateInput carries the fields being changed. The amount is replaced as
// a whole (kind and magnitude together) so the sign invariant cannot be
// broken by a partial update.
type UpdateInput struct {
	Amount      *core.Amount
	CategoryID  *int
	Category    *string
	Date        *core.Date
	Description *string
}

// Transactions lists all transactions, normalized to the UI shape. On
// remote failure the persisted local list is returned verbatim, with no
// merging of partial remote results.
func (g *Gateway) Transactions(ctx context.Context) ([]core.Transaction, error) {
	records, err := g.remote.ListExpenses(ctx)
	if err == nil {
		txs := make([]core.Transaction, 0, len(records))
		for _, r := range records {
			txs = append(txs, normalizeRecord(r))
		}
		return txs, nil
	}
	slog.WarnContext(ctx, "Remote store unavailable, serving local transactions", "error", err)
	return localstore.ReadTransactions(g.local)
}

// CreateTransaction persists a new transaction and returns its id. The
// remote path sends the signed amount and defaults an unresolvable
// category to id 1; the local path attaches the display name, defaulting
// to "Other". The two defaults are deliberately not unified.
func (g *Gateway) CreateTransaction(ctx context.Context, in CreateInput) (string, error) {
	tx := core.Transaction{
		Amount:      core.Amount{Kind: in.Kind, Magnitude: in.Amount},
		Description: in.Description,
		Category:    in.CategoryName,
		Date:        in.Date,
	}
	if err := tx.Validate(); err != nil {
		return "", err
	}
	if in.Amount.Cents == 0 {
		return "", core.ErrInvalidAmount
	}

	categoryID := in.CategoryID
	if categoryID == 0 {
		categoryID = 1
	}
	rec, err := g.remote.CreateExpense(ctx, remote.ExpenseInput{
		Amount:      tx.Amount.Signed(),
		CategoryID:  categoryID,
		Date:        in.Date.String(),
		Description: in.Description,
	})
	if err == nil {
		return strconv.FormatInt(rec.ID, 10), nil
	}
	slog.WarnContext(ctx, "Remote store unavailable, creating transaction locally", "error", err)

	txs, err := g.Transactions(ctx)
	if err != nil {
		return "", err
	}
	tx.ID = g.newID()
	if tx.Category == "" {
		tx.Category = core.DefaultCategoryName
	}
	txs = append(txs, tx)
	if err := localstore.WriteTransactions(g.local, txs); err != nil {
		return "", err
	}
	return tx.ID, nil
}

// DeleteTransaction removes a transaction from whichever store is live.
// The local path is idempotent: filtering out an unknown id is a no-op
// success.
func (g *Gateway) DeleteTransaction(ctx context.Context, id string) error {
	if err := g.remote.DeleteExpense(ctx, id); err == nil {
		return nil
	} else {
		slog.WarnContext(ctx, "Remote store unavailable, deleting transaction locally", "id", id, "error", err)
	}

	txs, err := g.Transactions(ctx)
	if err != nil {
		return err
	}
	kept := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return localstore.WriteTransactions(g.local, kept)
}

// UpdateTransaction applies a partial update. A nil transaction with a
// nil error means the update had no effect (unknown id on the local
// path); callers must not treat that as a failure.
func (g *Gateway) UpdateTransaction(ctx context.Context, id string, in UpdateInput) (*core.Transaction, error) {
	rec, err := g.remote.UpdateExpense(ctx, id, in.toWire())
	if err == nil {
		if rec.ID != 0 {
			tx := normalizeRecord(rec)
			return &tx, nil
		}
		// Server acked without returning the record; reflect the
		// requested changes back to the caller.
		tx := core.Transaction{ID: id}
		in.apply(&tx)
		return &tx, nil
	}
	slog.WarnContext(ctx, "Remote store unavailable, updating transaction locally", "id", id, "error", err)

	txs, err := g.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	var updated *core.Transaction
	for i := range txs {
		if txs[i].ID != id {
			continue
		}
		in.apply(&txs[i])
		txs[i].UpdatedAt = time.Now().UTC()
		updated = &txs[i]
	}
	if err := localstore.WriteTransactions(g.local, txs); err != nil {
		return nil, err
	}
	return updated, nil
}

// Categories lists categories from the remote store, or the fixed
// fallback set when it is unreachable. The local store is never involved.
func (g *Gateway) Categories(ctx context.Context) ([]core.Category, error) {
	records, err := g.remote.ListCategories(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Remote store unavailable, serving fallback categories", "error", err)
		return core.FallbackCategories(), nil
	}
	cats := make([]core.Category, 0, len(records))
	for _, r := range records {
		cats = append(cats, core.Category{ID: r.ID, Name: r.Name})
	}
	return cats, nil
}

// CreateCategory is remote-only; there is no local fallback. The server's
// message is surfaced when it sent one.
func (g *Gateway) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	rec, err := g.remote.CreateCategory(ctx, name)
	if err != nil {
		var se *remote.StatusError
		if errors.As(err, &se) && se.Message != "" {
			return core.Category{}, errors.New(se.Message)
		}
		return core.Category{}, core.ErrCategoryCreate
	}
	return core.Category{ID: rec.ID, Name: rec.Name}, nil
}

func (in UpdateInput) toWire() remote.ExpenseUpdate {
	var out remote.ExpenseUpdate
	if in.Amount != nil {
		signed := in.Amount.Signed()
		out.Amount = &signed
	}
	if in.CategoryID != nil {
		out.CategoryID = in.CategoryID
	}
	if in.Date != nil {
		date := in.Date.String()
		out.Date = &date
	}
	if in.Description != nil {
		out.Description = in.Description
	}
	return out
}

// apply shallow-merges the set fields into the transaction.
func (in UpdateInput) apply(tx *core.Transaction) {
	if in.Amount != nil {
		tx.Amount = *in.Amount
	}
	if in.Category != nil {
		tx.Category = *in.Category
	}
	if in.Date != nil {
		tx.Date = *in.Date
	}
	if in.Description != nil {
		tx.Description = *in.Description
	}
}

func normalizeRecord(r remote.ExpenseRecord) core.Transaction {
	name := r.CategoryName
	if name == "" {
		name = core.DefaultCategoryName
	}
	date, _ := core.ParseDate(r.Date)
	return core.Transaction{
		ID:          strconv.FormatInt(r.ID, 10),
		Amount:      core.AmountFromSigned(r.Amount),
		Description: r.Description,
		Category:    name,
		Date:        date,
	}
}

// newID returns a time-derived id, bumped past the previous one so two
// back-to-back local creates never collide.
func (g *Gateway) newID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := time.Now().UnixNano()
	if id <= g.lastID {
		id = g.lastID + 1
	}
	g.lastID = id
	return strconv.FormatInt(id, 10)
}
