package normalize

import (
	"testing"
	"time"
)

func ymd(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestDateResolver_Resolve(t *testing.T) {
	r := NewDateResolver(Lenient)

	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{
			name:  "iso",
			input: "2025-10-03",
			want:  ymd(2025, time.October, 3),
		},
		{
			name:  "day-first slash, four-digit year",
			input: "03/10/2025",
			want:  ymd(2025, time.October, 3),
		},
		{
			// day-first beats US month-first by priority, it is not guessed
			name:  "ambiguous slash resolves day-first",
			input: "10/03/2025",
			want:  ymd(2025, time.March, 10),
		},
		{
			// two-digit-year YY/MM/DD outranks DD/MM/YY
			name:  "all-short slash resolves year-first",
			input: "03/10/25",
			want:  ymd(2003, time.October, 25),
		},
		{
			name:  "us month-first when day-first cannot parse",
			input: "12/25/2025",
			want:  ymd(2025, time.December, 25),
		},
		{
			name:  "dotted day-first",
			input: "03.10.2025",
			want:  ymd(2025, time.October, 3),
		},
		{
			name:  "dotted day-first short year",
			input: "03.10.25",
			want:  ymd(2025, time.October, 3),
		},
		{
			name:  "surrounding whitespace",
			input: "  2025-10-03  ",
			want:  ymd(2025, time.October, 3),
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "junk is nil under lenient policy",
			input: "not-a-date",
			want:  nil,
		},
		{
			name:  "month name is unsupported",
			input: "October 3, 2025",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.input)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.input, err)
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Resolve(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got != nil && !got.Equal(*tt.want) {
				t.Errorf("Resolve(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestDateResolver_StrictPolicy(t *testing.T) {
	r := NewDateResolver(Strict)

	if _, err := r.Resolve("not-a-date"); err == nil {
		t.Error("Resolve() strict should fail on unrecognized input")
	}

	// strict still treats empty input as absent, not malformed
	got, err := r.Resolve("")
	if err != nil {
		t.Fatalf("Resolve(\"\") error = %v", err)
	}
	if got != nil {
		t.Errorf("Resolve(\"\") = %v, want nil", got)
	}
}
