package constants

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		input     string
		want      Category
		wantMatch bool
	}{
		{"groceries", Groceries, true},
		{"  Restaurant ", Restaurant, true},
		{"TRAVEL", Travel, true},
		{"supermarket", Groceries, true},
		{"uber", Transport, true},
		{"pharmacy", Health, true},
		{"", Other, false},
		{"spaceship", Other, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, matched := Canonicalize(tt.input)
			if got != tt.want || matched != tt.wantMatch {
				t.Errorf("Canonicalize(%q) = (%q, %v), want (%q, %v)",
					tt.input, got, matched, tt.want, tt.wantMatch)
			}
		})
	}
}

func TestAsStringSlice(t *testing.T) {
	cats := AsStringSlice()
	if len(cats) != len(allCategories) {
		t.Fatalf("len = %d, want %d", len(cats), len(allCategories))
	}
	if cats[len(cats)-1] != string(Other) {
		t.Errorf("last category = %q, want %q", cats[len(cats)-1], Other)
	}
}
