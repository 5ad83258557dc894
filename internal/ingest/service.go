package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nlavoie/expensed/internal/common"
	"github.com/nlavoie/expensed/internal/entity"
	"github.com/nlavoie/expensed/internal/fx"
	"github.com/nlavoie/expensed/internal/normalize"
	"github.com/nlavoie/expensed/internal/repository"
)

// Service turns a raw recognizer payload into a persisted receipt.
//
// Steps run strictly in order: validate, text repair, date, rate, category,
// person lookup, single-transaction insert. The personnel read completes
// before the receipts transaction begins; the two stores never share a
// transaction.
type Service struct {
	people   repository.PersonRepository
	receipts repository.ReceiptRepository
	rates    fx.RateResolver
	dates    *normalize.DateResolver
	logger   *slog.Logger
}

func NewService(people repository.PersonRepository, receipts repository.ReceiptRepository, rates fx.RateResolver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		people:   people,
		receipts: receipts,
		rates:    rates,
		dates:    normalize.NewDateResolver(normalize.Lenient),
		logger:   logger,
	}
}

// Ingest validates and normalizes raw, associates it with the person, and
// persists one receipt. It fails only with common.ErrValidation,
// common.ErrPersonNotFound, or common.ErrPersistence (plus raw store read
// errors); date, rate, and encoding anomalies degrade to safe defaults.
func (s *Service) Ingest(ctx context.Context, raw entity.RawScanResult, personID int64) (*entity.Receipt, error) {
	rid := uuid.New().String()
	start := time.Now()
	s.logger.Info("ingest.start", "req_id", rid, "person_id", personID, "merchant", raw.Merchant)

	// 1. validate before any I/O
	if err := validateScan(&raw); err != nil {
		s.logger.Error("ingest.validate.failed", "req_id", rid, "error", err)
		return nil, err
	}

	// 2. repair mis-decoded text, applied exactly once per payload
	normalize.CleanScan(&raw)

	// 3. lenient date: unparseable input means a nil date, never an error
	receiptDate, _ := s.dates.Resolve(raw.Date)

	// 4. conversion factor; the resolver cannot fail
	res := s.rates.Resolve(ctx, raw.Currency, receiptDate)
	total := decimal.NewFromFloat(*raw.Total).Round(2)
	totalHome := total.Mul(decimal.NewFromFloat(res.Factor)).Round(2)
	s.logger.Info("ingest.rate.resolved",
		"req_id", rid,
		"currency", raw.Currency,
		"factor", res.Factor,
		"source", string(res.Source),
	)

	// 5. the recognizer's structured category is authoritative
	category := strings.ToLower(strings.TrimSpace(raw.Category))

	// 6. person lookup; absent person means no write is attempted
	person, err := s.people.GetByID(ctx, personID)
	if err != nil {
		return nil, common.WrapError(err, "lookup person")
	}
	if person == nil {
		s.logger.Error("ingest.person.not_found", "req_id", rid, "person_id", personID)
		return nil, fmt.Errorf("%w: id=%d", common.ErrPersonNotFound, personID)
	}

	// 7. single-transaction insert
	rec := &entity.Receipt{
		PersonID:    person.ID,
		FirstName:   person.FirstName,
		LastName:    person.LastName,
		Department:  person.Department,
		Merchant:    raw.Merchant,
		ReceiptDate: receiptDate,
		Currency:    raw.Currency,
		Total:       total,
		TotalHome:   &totalHome,
		Category:    category,
		Items:       raw.Items,
	}
	saved, err := s.receipts.Insert(ctx, rec)
	if err != nil {
		s.logger.Error("ingest.persist.failed", "req_id", rid, "person_id", personID, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	s.logger.Info("ingest.ok",
		"req_id", rid,
		"receipt_id", saved.ID,
		"person_id", saved.PersonID,
		"total", saved.Total.StringFixed(2),
		"total_home", totalHome.StringFixed(2),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return saved, nil
}

func validateScan(raw *entity.RawScanResult) error {
	if strings.TrimSpace(raw.Merchant) == "" {
		return common.NewValidationError("merchant", "is required")
	}
	if raw.Total == nil {
		return common.NewValidationError("total", "is required")
	}
	if *raw.Total < 0 {
		return common.NewValidationError("total", "must be non-negative")
	}
	if raw.Items == nil {
		return common.NewValidationError("items", "must be a list")
	}
	for i, item := range raw.Items {
		if strings.TrimSpace(item.Name) == "" {
			return common.NewValidationError(fmt.Sprintf("items[%d].name", i), "is required")
		}
	}
	return nil
}
