package normalize

import (
	"fmt"
	"strings"
	"time"
)

// DatePolicy selects what Resolve does when no layout matches.
type DatePolicy int

const (
	// Lenient returns a nil date on no match. The ingestion pipeline uses
	// this: a malformed date must never abort an ingestion.
	Lenient DatePolicy = iota
	// Strict surfaces an error on no match.
	Strict
)

// dateLayouts is the fixed priority order for free-form receipt dates.
// First successful parse wins; ambiguous day/month inputs resolve by this
// order, they are never guessed.
var dateLayouts = []string{
	"2006-01-02", // ISO
	"06/01/02",   // two-digit-year slash
	"02/01/06",   // day-first slash, short year
	"02/01/2006", // day-first slash
	"01/02/2006", // US month-first slash
	"02.01.2006", // dotted day-first
	"02.01.06",
}

// DateResolver parses free-form date strings from the recognizer.
type DateResolver struct {
	policy DatePolicy
}

func NewDateResolver(policy DatePolicy) *DateResolver {
	return &DateResolver{policy: policy}
}

// Resolve returns a calendar date at midnight UTC, or nil for empty input.
// Under the Lenient policy an unrecognized format also returns nil.
func (r *DateResolver) Resolve(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err != nil {
			continue
		}
		// strip time to midnight UTC to match DATE semantics
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &d, nil
	}
	if r.policy == Strict {
		return nil, fmt.Errorf("unrecognized date format: %q", s)
	}
	return nil, nil
}
