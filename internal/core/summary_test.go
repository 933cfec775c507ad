package core

import "testing"

func tx(kind Kind, cents int64, category string) Transaction {
	return Transaction{
		Amount:      Amount{Kind: kind, Magnitude: Money{Cents: cents}},
		Description: "t",
		Category:    category,
		Date:        NewDate(2024, 1, 1),
	}
}

func TestSummarize(t *testing.T) {
	txs := []Transaction{
		tx(Income, 350000, "Other"),
		tx(Expense, 8550, "Food & Dining"),
		tx(Expense, 2000, "Transportation"),
		tx(Expense, 1450, "Food & Dining"),
	}

	sum := Summarize(txs)

	if sum.Income.Cents != 350000 {
		t.Errorf("income = %d", sum.Income.Cents)
	}
	if sum.Expenses.Cents != 12000 {
		t.Errorf("expenses = %d", sum.Expenses.Cents)
	}
	if sum.Balance != 338000 {
		t.Errorf("balance = %d", sum.Balance)
	}

	if len(sum.ByCategory) != 2 {
		t.Fatalf("categories = %d", len(sum.ByCategory))
	}
	// Sorted by amount, largest first.
	if sum.ByCategory[0].Name != "Food & Dining" || sum.ByCategory[0].Amount.Cents != 10000 {
		t.Errorf("top category = %+v", sum.ByCategory[0])
	}
	if sum.ByCategory[1].Name != "Transportation" || sum.ByCategory[1].Amount.Cents != 2000 {
		t.Errorf("second category = %+v", sum.ByCategory[1])
	}
}

func TestSummarizeEmptyAndDefaults(t *testing.T) {
	sum := Summarize(nil)
	if sum.Income.Cents != 0 || sum.Expenses.Cents != 0 || sum.Balance != 0 || len(sum.ByCategory) != 0 {
		t.Errorf("empty summary not zero: %+v", sum)
	}

	// Expenses with no category land under the default name.
	sum = Summarize([]Transaction{tx(Expense, 500, "")})
	if len(sum.ByCategory) != 1 || sum.ByCategory[0].Name != DefaultCategoryName {
		t.Errorf("uncategorized expense = %+v", sum.ByCategory)
	}
}
