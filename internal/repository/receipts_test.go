package repository

import (
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nlavoie/expensed/internal/entity"
)

func baseReceipt() *entity.Receipt {
	return &entity.Receipt{
		PersonID:   7,
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Department: "Engineering",
		Merchant:   "Cafe X",
		Currency:   "USD",
		Total:      decimal.NewFromFloat(12.5),
		Category:   "restaurant",
		Items:      []entity.ReceiptItem{{Name: "Latte"}},
	}
}

func TestInsertColumns_OmitsUnsetOptionals(t *testing.T) {
	cols, args := insertColumns(baseReceipt(), []byte(`[{"name":"Latte"}]`))

	if len(cols) != len(args) {
		t.Fatalf("columns/args mismatch: %d vs %d", len(cols), len(args))
	}
	for _, absent := range []string{"receipt_date", "total_home", "created_at"} {
		if slices.Contains(cols, absent) {
			t.Errorf("unset optional column %q present in %v", absent, cols)
		}
	}
	if !slices.Contains(cols, "total") {
		t.Fatalf("total column missing from %v", cols)
	}
	if got := args[slices.Index(cols, "total")]; got != "12.50" {
		t.Errorf("total arg = %v, want \"12.50\"", got)
	}
}

func TestInsertColumns_IncludesSetOptionals(t *testing.T) {
	rec := baseReceipt()
	date := time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC)
	rec.ReceiptDate = &date
	home := decimal.NewFromFloat(17.32)
	rec.TotalHome = &home
	rec.CreatedAt = time.Date(2025, 10, 4, 12, 0, 0, 0, time.UTC)

	cols, args := insertColumns(rec, []byte(`[]`))

	if len(cols) != len(args) {
		t.Fatalf("columns/args mismatch: %d vs %d", len(cols), len(args))
	}
	for _, present := range []string{"receipt_date", "total_home", "created_at"} {
		if !slices.Contains(cols, present) {
			t.Errorf("set optional column %q missing from %v", present, cols)
		}
	}
	if got := args[slices.Index(cols, "total_home")]; got != "17.32" {
		t.Errorf("total_home arg = %v, want \"17.32\"", got)
	}
	if got := args[slices.Index(cols, "receipt_date")]; got != date {
		t.Errorf("receipt_date arg = %v, want %v", got, date)
	}
}

func TestInsertColumns_Deterministic(t *testing.T) {
	a, _ := insertColumns(baseReceipt(), []byte(`[]`))
	b, _ := insertColumns(baseReceipt(), []byte(`[]`))
	if !slices.Equal(a, b) {
		t.Errorf("column order not deterministic: %v vs %v", a, b)
	}
}
