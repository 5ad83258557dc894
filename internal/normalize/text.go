package normalize

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/nlavoie/expensed/internal/entity"
)

// CleanString repairs UTF-8 text the recognizer mis-decoded as Latin-1
// (accented merchant names come back as "CafÃ©" instead of "Café").
// It reinterprets the string's code points as Latin-1 bytes and re-decodes
// them as UTF-8. Best effort: any failure keeps the original string.
// Not guaranteed idempotent, so callers apply it at most once per payload.
func CleanString(s string) string {
	b, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		// code point above U+00FF, nothing to repair
		return s
	}
	if !utf8.ValidString(b) {
		return s
	}
	return b
}

// CleanValue applies CleanString to every text leaf of a decoded JSON value,
// preserving structure. Non-text scalars pass through unchanged.
func CleanValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = CleanValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CleanValue(e)
		}
		return out
	case string:
		return CleanString(t)
	default:
		return v
	}
}

// CleanScan repairs every text field of a raw scan in place.
func CleanScan(raw *entity.RawScanResult) {
	raw.Merchant = CleanString(raw.Merchant)
	raw.Date = CleanString(raw.Date)
	raw.Currency = CleanString(raw.Currency)
	raw.Category = CleanString(raw.Category)
	for i := range raw.Items {
		raw.Items[i].Name = CleanString(raw.Items[i].Name)
	}
}
