package models

// TemplateFilter selects template rows from either store. The stores
// translate it into SQL; Matches is the same rule evaluated in memory.
type TemplateFilter struct {
	IncludeInactive bool

	// Category is the raw filter value. When non-empty a row matches if
	// its own category equals it, or its category id is in CategoryIDs,
	// or its subcategory id is in SubcategoryIDs.
	Category       string
	CategoryIDs    []string
	SubcategoryIDs []string
}

// Matches reports whether a row with the given fields passes the filter.
func (f TemplateFilter) Matches(active bool, category string, categoryID, subcategoryID *string) bool {
	if !f.IncludeInactive && !active {
		return false
	}
	if f.Category == "" {
		return true
	}
	if category == f.Category {
		return true
	}
	if categoryID != nil && contains(f.CategoryIDs, *categoryID) {
		return true
	}
	return subcategoryID != nil && contains(f.SubcategoryIDs, *subcategoryID)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
