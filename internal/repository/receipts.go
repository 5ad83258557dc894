package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nlavoie/expensed/internal/entity"
)

const createReceiptsTableSQL = `
CREATE TABLE IF NOT EXISTS receipts (
  id SERIAL PRIMARY KEY,

  person_id INTEGER NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  department TEXT NOT NULL DEFAULT '',

  merchant TEXT NOT NULL,
  receipt_date DATE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  currency TEXT,
  total NUMERIC(12,2) NOT NULL,
  total_home NUMERIC(12,2),
  category TEXT,

  items JSONB NOT NULL
);`

// ReceiptRepository owns the receipts store.
type ReceiptRepository interface {
	EnsureSchema(ctx context.Context) error
	// Insert writes one receipt in a single transaction and returns it with
	// the assigned id and created_at. The transaction is committed or rolled
	// back before Insert returns; no partial row is ever visible.
	Insert(ctx context.Context, rec *entity.Receipt) (*entity.Receipt, error)
	List(ctx context.Context) ([]*entity.Receipt, error)
}

type receiptRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReceiptRepository(pool *pgxpool.Pool, logger *slog.Logger) ReceiptRepository {
	return &receiptRepository{
		pool:   pool,
		logger: logger,
	}
}

func (r *receiptRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createReceiptsTableSQL); err != nil {
		r.logger.Error("failed to ensure receipts schema", "error", err)
		return err
	}
	return nil
}

// insertColumns builds the column and argument lists for one receipt.
// Optional columns (receipt_date, total_home, created_at) are omitted when
// unset so the store's own defaults apply.
func insertColumns(rec *entity.Receipt, itemsJSON []byte) ([]string, []any) {
	cols := []string{"person_id", "first_name", "last_name", "department", "merchant", "currency", "total", "category", "items"}
	args := []any{rec.PersonID, rec.FirstName, rec.LastName, rec.Department, rec.Merchant, rec.Currency, rec.Total.StringFixed(2), rec.Category, itemsJSON}

	if rec.ReceiptDate != nil {
		cols = append(cols, "receipt_date")
		args = append(args, *rec.ReceiptDate)
	}
	if rec.TotalHome != nil {
		cols = append(cols, "total_home")
		args = append(args, rec.TotalHome.StringFixed(2))
	}
	if !rec.CreatedAt.IsZero() {
		cols = append(cols, "created_at")
		args = append(args, rec.CreatedAt)
	}
	return cols, args
}

func (r *receiptRepository) Insert(ctx context.Context, rec *entity.Receipt) (*entity.Receipt, error) {
	itemsJSON, err := json.Marshal(rec.Items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}

	cols, args := insertColumns(rec, itemsJSON)
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	q := fmt.Sprintf(
		"INSERT INTO receipts (%s) VALUES (%s) RETURNING id, created_at",
		strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error("failed to begin receipts transaction", "error", err)
		return nil, err
	}
	// no-op once committed
	defer func() { _ = tx.Rollback(ctx) }()

	saved := *rec
	if err := tx.QueryRow(ctx, q, args...).Scan(&saved.ID, &saved.CreatedAt); err != nil {
		r.logger.Error("failed to insert receipt", "person_id", rec.PersonID, "merchant", rec.Merchant, "error", err)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("failed to commit receipt", "person_id", rec.PersonID, "error", err)
		return nil, err
	}

	r.logger.Info("receipt inserted", "receipt_id", saved.ID, "person_id", saved.PersonID, "merchant", saved.Merchant)
	return &saved, nil
}

func (r *receiptRepository) List(ctx context.Context) ([]*entity.Receipt, error) {
	const q = `
		SELECT
			id, person_id, first_name, last_name, department,
			merchant, receipt_date, created_at,
			COALESCE(currency, ''), total::text, total_home::text,
			COALESCE(category, ''), items
		FROM receipts
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("failed to list receipts", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Receipt
	for rows.Next() {
		var (
			rec         entity.Receipt
			receiptDate *time.Time
			total       string
			totalHome   *string
			itemsJSON   []byte
		)
		if err := rows.Scan(
			&rec.ID, &rec.PersonID, &rec.FirstName, &rec.LastName, &rec.Department,
			&rec.Merchant, &receiptDate, &rec.CreatedAt,
			&rec.Currency, &total, &totalHome,
			&rec.Category, &itemsJSON,
		); err != nil {
			return nil, err
		}
		rec.ReceiptDate = receiptDate
		if rec.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("decode total: %w", err)
		}
		if totalHome != nil {
			th, err := decimal.NewFromString(*totalHome)
			if err != nil {
				return nil, fmt.Errorf("decode total_home: %w", err)
			}
			rec.TotalHome = &th
		}
		if err := json.Unmarshal(itemsJSON, &rec.Items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
