package http

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"expensetracker/internal/core"
)

// formatDollars formats cents as a dollar string (e.g. "$12.34").
func formatDollars(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-$" + s
	}
	return "$" + s
}

// formatSigned renders an amount with its kind sign for the list view.
func formatSigned(a core.Amount) string {
	if a.Kind == core.Expense {
		return "-" + formatDollars(a.Magnitude.Cents)
	}
	return "+" + formatDollars(a.Magnitude.Cents)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// getCategories serves the read-mostly category list from cache, asking
// the gateway only on a miss.
func (s *Server) getCategories(ctx context.Context) ([]core.Category, error) {
	if cats, ok := s.categoriesCache.Get(categoriesCacheKey); ok {
		return cats, nil
	}
	cats, err := s.cats.Categories(ctx)
	if err != nil {
		return nil, err
	}
	s.categoriesCache.Set(categoriesCacheKey, cats)
	return cats, nil
}

// categoryID resolves a display name against the loaded category list.
// Zero means unresolved; the gateway applies the per-path defaults.
func categoryID(cats []core.Category, name string) int {
	for _, c := range cats {
		if c.Name == name {
			return c.ID
		}
	}
	return 0
}
