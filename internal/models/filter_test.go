package models

import "testing"

func ptr(s string) *string { return &s }

func TestTemplateFilterMatches(t *testing.T) {
	f := TemplateFilter{
		Category:       "Birthday",
		CategoryIDs:    []string{"birthday"},
		SubcategoryIDs: []string{"birthday-mom"},
	}

	tests := []struct {
		name          string
		filter        TemplateFilter
		active        bool
		category      string
		categoryID    *string
		subcategoryID *string
		want          bool
	}{
		{"no filter", TemplateFilter{}, true, "", nil, nil, true},
		{"inactive hidden", TemplateFilter{}, false, "", nil, nil, false},
		{"inactive included", TemplateFilter{IncludeInactive: true}, false, "", nil, nil, true},
		{"category name", f, true, "Birthday", nil, nil, true},
		{"category id", f, true, "Other", ptr("birthday"), nil, true},
		{"subcategory id", f, true, "", ptr("wedding"), ptr("birthday-mom"), true},
		{"no match", f, true, "Wedding", ptr("wedding"), ptr("wedding-friends"), false},
		{"match but inactive", f, false, "Birthday", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.active, tt.category, tt.categoryID, tt.subcategoryID); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoundRating(t *testing.T) {
	tests := map[float64]float64{0: 0, 4.25: 4.3, 4.24: 4.2, 3.3333: 3.3, 5: 5}
	for in, want := range tests {
		if got := RoundRating(in); got != want {
			t.Errorf("RoundRating(%v) = %v, want %v", in, got, want)
		}
	}
}
