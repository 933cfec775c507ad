package http

import (
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/core"
	"expensetracker/internal/gateway"
)

type (
	txRow struct {
		ID          string
		Description string
		Category    string
		Date        string
		Amount      string
		Expense     bool
	}

	catRow struct {
		Name   string
		Amount string
		Width  int
	}

	summaryView struct {
		Income     string
		Expenses   string
		Balance    string
		Overdrawn  bool
		ByCategory []catRow
	}

	indexData struct {
		Categories   []core.Category
		Transactions []txRow
		Summary      summaryView
		Flash        string
		Error        string
	}
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "path", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	// Categories and transactions come from independent gateway calls,
	// so load them concurrently.
	var (
		cats []core.Category
		txs  []core.Transaction
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		cats, err = s.getCategories(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.txs.Transactions(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.ErrorContext(r.Context(), "Dashboard load failed", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	data := indexData{
		Categories:   cats,
		Transactions: transactionRows(txs),
		Summary:      summaryRows(core.Summarize(txs)),
		Flash:        r.URL.Query().Get("ok"),
		Error:        r.URL.Query().Get("err"),
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/?err=Invalid+request", http.StatusSeeOther)
		return
	}

	kind := core.Kind(r.Form.Get("type"))
	if kind.Validate() != nil {
		kind = core.Expense
	}
	amount, err := core.ParseAmount(r.Form.Get("amount"))
	if err != nil {
		http.Redirect(w, r, "/?err=Invalid+amount", http.StatusSeeOther)
		return
	}
	date, err := core.ParseDate(r.Form.Get("date"))
	if err != nil {
		http.Redirect(w, r, "/?err=Invalid+date", http.StatusSeeOther)
		return
	}

	categoryName := sanitizeInput(r.Form.Get("category"))
	cats, catErr := s.getCategories(r.Context())
	if catErr != nil {
		cats = nil
	}

	in := gateway.CreateInput{
		Kind:         kind,
		Amount:       amount,
		CategoryID:   categoryID(cats, categoryName),
		CategoryName: categoryName,
		Date:         date,
		Description:  sanitizeInput(r.Form.Get("description")),
	}
	id, err := s.txs.CreateTransaction(r.Context(), in)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction create failed", "error", err)
		http.Redirect(w, r, "/?err=Could+not+save+transaction", http.StatusSeeOther)
		return
	}
	slog.InfoContext(r.Context(), "Transaction created", "id", id, "kind", string(kind), "amount_cents", amount.Cents)
	http.Redirect(w, r, "/?ok=Transaction+added", http.StatusSeeOther)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/?err=Invalid+request", http.StatusSeeOther)
		return
	}
	id := r.Form.Get("id")
	if id == "" {
		http.Redirect(w, r, "/?err=Missing+transaction+id", http.StatusSeeOther)
		return
	}
	if err := s.txs.DeleteTransaction(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Transaction delete failed", "id", id, "error", err)
		http.Redirect(w, r, "/?err=Could+not+delete+transaction", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?ok=Transaction+deleted", http.StatusSeeOther)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/?err=Invalid+request", http.StatusSeeOther)
		return
	}
	id := r.Form.Get("id")
	if id == "" {
		http.Redirect(w, r, "/?err=Missing+transaction+id", http.StatusSeeOther)
		return
	}

	var in gateway.UpdateInput
	if v := r.Form.Get("amount"); v != "" {
		amount, err := core.ParseAmount(v)
		if err != nil {
			http.Redirect(w, r, "/?err=Invalid+amount", http.StatusSeeOther)
			return
		}
		kind := core.Kind(r.Form.Get("type"))
		if kind.Validate() != nil {
			kind = core.Expense
		}
		in.Amount = &core.Amount{Kind: kind, Magnitude: amount}
	}
	if v := r.Form.Get("date"); v != "" {
		date, err := core.ParseDate(v)
		if err != nil {
			http.Redirect(w, r, "/?err=Invalid+date", http.StatusSeeOther)
			return
		}
		in.Date = &date
	}
	if v := sanitizeInput(r.Form.Get("description")); v != "" {
		in.Description = &v
	}
	if v := sanitizeInput(r.Form.Get("category")); v != "" {
		in.Category = &v
		cats, err := s.getCategories(r.Context())
		if err == nil {
			if cid := categoryID(cats, v); cid != 0 {
				in.CategoryID = &cid
			}
		}
	}

	updated, err := s.txs.UpdateTransaction(r.Context(), id, in)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction update failed", "id", id, "error", err)
		http.Redirect(w, r, "/?err=Could+not+update+transaction", http.StatusSeeOther)
		return
	}
	if updated == nil {
		// Unknown id on the fallback path: no effect, not a failure.
		http.Redirect(w, r, "/?ok=No+changes+applied", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?ok=Transaction+updated", http.StatusSeeOther)
}

func (s *Server) handleTransactionsPartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	txs, err := s.txs.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Transactions partial failed", "error", err)
		_, _ = w.Write([]byte(`<div class="error">Error loading transactions</div>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "transactions.html", transactionRows(txs)); err != nil {
		slog.ErrorContext(r.Context(), "Transactions template execution failed", "error", err)
	}
}

func (s *Server) handleSummaryPartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	txs, err := s.txs.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary partial failed", "error", err)
		_, _ = w.Write([]byte(`<div class="error">Error loading summary</div>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "summary.html", summaryRows(core.Summarize(txs))); err != nil {
		slog.ErrorContext(r.Context(), "Summary template execution failed", "error", err)
	}
}

func transactionRows(txs []core.Transaction) []txRow {
	rows := make([]txRow, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, txRow{
			ID:          t.ID,
			Description: t.Description,
			Category:    t.Category,
			Date:        t.Date.String(),
			Amount:      formatSigned(t.Amount),
			Expense:     t.Amount.Kind == core.Expense,
		})
	}
	return rows
}

func summaryRows(sum core.Summary) summaryView {
	view := summaryView{
		Income:    formatDollars(sum.Income.Cents),
		Expenses:  formatDollars(sum.Expenses.Cents),
		Balance:   formatDollars(sum.Balance),
		Overdrawn: sum.Balance < 0,
	}
	var maxCents int64
	for _, c := range sum.ByCategory {
		if c.Amount.Cents > maxCents {
			maxCents = c.Amount.Cents
		}
	}
	for _, c := range sum.ByCategory {
		width := 0
		if maxCents > 0 && c.Amount.Cents > 0 {
			width = int((c.Amount.Cents*100 + maxCents/2) / maxCents)
			if width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		view.ByCategory = append(view.ByCategory, catRow{Name: c.Name, Amount: formatDollars(c.Amount.Cents), Width: width})
	}
	return view
}
