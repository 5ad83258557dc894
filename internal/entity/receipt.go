package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptItem is one line item as the recognizer reported it.
type ReceiptItem struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Price    *float64 `json:"price,omitempty"`
}

// RawScanResult is the untrusted payload produced by the vision recognizer.
// Total is a pointer so a missing field is distinguishable from zero.
type RawScanResult struct {
	Merchant string        `json:"merchant"`
	Date     string        `json:"date,omitempty"`
	Currency string        `json:"currency,omitempty"`
	Total    *float64      `json:"total"`
	Category string        `json:"category,omitempty"`
	Items    []ReceiptItem `json:"items"`
}

// Receipt is the persisted, normalized record for data transfer between layers.
//
// FirstName/LastName/Department are a snapshot of the Person at insert time
// and are intentionally not kept in sync with later personnel edits.
type Receipt struct {
	ID         int64  `json:"id"`
	PersonID   int64  `json:"person_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`

	Merchant    string           `json:"merchant"`
	ReceiptDate *time.Time       `json:"receipt_date,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	Currency    string           `json:"currency,omitempty"`
	Total       decimal.Decimal  `json:"total"`
	TotalHome   *decimal.Decimal `json:"total_home,omitempty"`
	Category    string           `json:"category,omitempty"`
	Items       []ReceiptItem    `json:"items"`
}
