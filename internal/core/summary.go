package core

import "sort"

// CategoryAmount represents an expense amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Summary is a compact overview of a transaction list: income and expense
// totals, the resulting balance, and expense totals per category.
type Summary struct {
	Income     Money
	Expenses   Money
	Balance    int64 // cents, may be negative
	ByCategory []CategoryAmount
}

// Summarize aggregates a transaction list. Category rows cover expenses
// only and are sorted by amount, largest first.
func Summarize(txs []Transaction) Summary {
	var s Summary
	perCategory := map[string]int64{}
	for _, t := range txs {
		switch t.Amount.Kind {
		case Income:
			s.Income.Cents += t.Amount.Magnitude.Cents
		case Expense:
			s.Expenses.Cents += t.Amount.Magnitude.Cents
			name := t.Category
			if name == "" {
				name = DefaultCategoryName
			}
			perCategory[name] += t.Amount.Magnitude.Cents
		}
	}
	s.Balance = s.Income.Cents - s.Expenses.Cents
	for name, cents := range perCategory {
		s.ByCategory = append(s.ByCategory, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if s.ByCategory[i].Amount.Cents != s.ByCategory[j].Amount.Cents {
			return s.ByCategory[i].Amount.Cents > s.ByCategory[j].Amount.Cents
		}
		return s.ByCategory[i].Name < s.ByCategory[j].Name
	})
	return s
}
