package core

// DefaultCategoryName is attached to locally created transactions whose
// category could not be resolved.
const DefaultCategoryName = "Other"

// FallbackCategories is the fixed category set served when the remote
// store is unavailable. Order and ids are stable.
func FallbackCategories() []Category {
	return []Category{
		{ID: 1, Name: "Food & Dining"},
		{ID: 2, Name: "Transportation"},
		{ID: 3, Name: "Entertainment"},
		{ID: 4, Name: "Shopping"},
		{ID: 5, Name: "Health & Fitness"},
		{ID: 6, Name: "Bills & Utilities"},
		{ID: 7, Name: "Other"},
	}
}
