package localstore

import (
	"encoding/json"
	"fmt"
	"time"

	"expensetracker/internal/core"
)

// transactionRecord is the serialized local/UI shape: unsigned amount plus
// a type tag, category as display name, date as YYYY-MM-DD.
type transactionRecord struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// ReadTransactions returns the persisted transaction list, or an empty
// list when the key has never been written.
func ReadTransactions(s Store) ([]core.Transaction, error) {
	raw, ok, err := s.Get(KeyExpenses)
	if err != nil {
		return nil, fmt.Errorf("read expenses: %w", err)
	}
	if !ok {
		return []core.Transaction{}, nil
	}
	var records []transactionRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}
	txs := make([]core.Transaction, 0, len(records))
	for _, r := range records {
		txs = append(txs, r.toTransaction())
	}
	return txs, nil
}

// WriteTransactions persists the whole list, replacing the previous value.
func WriteTransactions(s Store, txs []core.Transaction) error {
	records := make([]transactionRecord, 0, len(txs))
	for _, t := range txs {
		records = append(records, fromTransaction(t))
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode expenses: %w", err)
	}
	if err := s.Set(KeyExpenses, string(data)); err != nil {
		return fmt.Errorf("write expenses: %w", err)
	}
	return nil
}

func (r transactionRecord) toTransaction() core.Transaction {
	kind := core.Kind(r.Type)
	if kind.Validate() != nil {
		kind = core.Expense
	}
	// Dates written by older clients may be malformed; a zero date is
	// preferable to dropping the record.
	date, _ := core.ParseDate(r.Date)
	var updated time.Time
	if r.UpdatedAt != "" {
		updated, _ = time.Parse(time.RFC3339, r.UpdatedAt)
	}
	return core.Transaction{
		ID:          r.ID,
		Amount:      core.Amount{Kind: kind, Magnitude: core.MoneyFromValue(r.Amount)},
		Description: r.Description,
		Category:    r.Category,
		Date:        date,
		UpdatedAt:   updated,
	}
}

func fromTransaction(t core.Transaction) transactionRecord {
	r := transactionRecord{
		ID:          t.ID,
		Amount:      t.Amount.Magnitude.Value(),
		Type:        string(t.Amount.Kind),
		Description: t.Description,
		Category:    t.Category,
		Date:        t.Date.String(),
	}
	if !t.UpdatedAt.IsZero() {
		r.UpdatedAt = t.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return r
}
