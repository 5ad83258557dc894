package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nlavoie/expensed/internal/common"
	"github.com/nlavoie/expensed/internal/entity"
)

type stubPeople struct {
	people []*entity.Person
	err    error
}

func (s *stubPeople) GetByID(ctx context.Context, id int64) (*entity.Person, error) {
	for _, p := range s.people {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, s.err
}

func (s *stubPeople) List(ctx context.Context) ([]*entity.Person, error) {
	return s.people, s.err
}

type stubReceipts struct {
	rows []*entity.Receipt
	err  error
}

func (s *stubReceipts) EnsureSchema(ctx context.Context) error { return nil }
func (s *stubReceipts) Insert(ctx context.Context, rec *entity.Receipt) (*entity.Receipt, error) {
	return rec, s.err
}
func (s *stubReceipts) List(ctx context.Context) ([]*entity.Receipt, error) {
	return s.rows, s.err
}

type stubScanner struct {
	raw entity.RawScanResult
	err error
}

func (s *stubScanner) ScanReceipt(ctx context.Context, data []byte, mimeType string) (entity.RawScanResult, error) {
	return s.raw, s.err
}

type stubIngestor struct {
	rec *entity.Receipt
	err error
}

func (s *stubIngestor) Ingest(ctx context.Context, raw entity.RawScanResult, personID int64) (*entity.Receipt, error) {
	return s.rec, s.err
}

type stubExporter struct {
	data []byte
	err  error
}

func (s *stubExporter) ReceiptsXLSX(ctx context.Context) ([]byte, error) {
	return s.data, s.err
}

func multipartScanRequest(t *testing.T, personID string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if personID != "" {
		if err := w.WriteField("person_id", personID); err != nil {
			t.Fatal(err)
		}
	}
	fw, err := w.CreateFormFile("file", "receipt.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("not-really-a-jpeg")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/receipts/scan", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func f64(v float64) *float64 { return &v }

func TestHandleScanReceipt(t *testing.T) {
	raw := entity.RawScanResult{
		Merchant: "Cafe X",
		Total:    f64(12.5),
		Items:    []entity.ReceiptItem{{Name: "Latte"}},
	}
	home := decimal.NewFromFloat(17.32)
	saved := &entity.Receipt{
		ID:        1,
		PersonID:  7,
		Merchant:  "Cafe X",
		Total:     decimal.NewFromFloat(12.5),
		TotalHome: &home,
	}

	tests := []struct {
		name       string
		personID   string
		scanner    *stubScanner
		ingestor   *stubIngestor
		wantStatus int
	}{
		{
			name:       "created",
			personID:   "7",
			scanner:    &stubScanner{raw: raw},
			ingestor:   &stubIngestor{rec: saved},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing person_id",
			personID:   "",
			scanner:    &stubScanner{raw: raw},
			ingestor:   &stubIngestor{rec: saved},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "recognizer failure maps to bad gateway",
			personID:   "7",
			scanner:    &stubScanner{err: fmt.Errorf("%w: empty model response", common.ErrRecognizer)},
			ingestor:   &stubIngestor{rec: saved},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "validation failure maps to bad request",
			personID:   "7",
			scanner:    &stubScanner{raw: raw},
			ingestor:   &stubIngestor{err: common.NewValidationError("merchant", "is required")},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown person maps to not found",
			personID:   "99",
			scanner:    &stubScanner{raw: raw},
			ingestor:   &stubIngestor{err: fmt.Errorf("%w: id=99", common.ErrPersonNotFound)},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "persistence failure maps to internal error",
			personID:   "7",
			scanner:    &stubScanner{raw: raw},
			ingestor:   &stubIngestor{err: fmt.Errorf("%w: insert failed", common.ErrPersistence)},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(&stubPeople{}, &stubReceipts{}, tt.scanner, tt.ingestor, &stubExporter{}, nil)
			rr := httptest.NewRecorder()
			srv.Router().ServeHTTP(rr, multipartScanRequest(t, tt.personID))

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantStatus == http.StatusCreated {
				var got entity.Receipt
				if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if got.ID != saved.ID || got.Merchant != saved.Merchant {
					t.Errorf("response = %+v, want %+v", got, saved)
				}
			}
		})
	}
}

func TestHandleListEmployees(t *testing.T) {
	people := []*entity.Person{
		{ID: 1, FirstName: "Ada", LastName: "Lovelace", Department: "Engineering"},
		{ID: 2, FirstName: "Grace", LastName: "Hopper", Department: "Research"},
	}
	srv := New(&stubPeople{people: people}, &stubReceipts{}, &stubScanner{}, &stubIngestor{}, &stubExporter{}, nil)

	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/employees", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var got []*entity.Person
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 2 || got[0].FirstName != "Ada" {
		t.Errorf("response = %+v", got)
	}
}

func TestHandleListReceipts_Error(t *testing.T) {
	srv := New(&stubPeople{}, &stubReceipts{err: errors.New("store down")}, &stubScanner{}, &stubIngestor{}, &stubExporter{}, nil)

	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/receipts", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestHandleExportReceipts(t *testing.T) {
	srv := New(&stubPeople{}, &stubReceipts{}, &stubScanner{}, &stubIngestor{}, &stubExporter{data: []byte("xlsx-bytes")}, nil)

	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/receipts/export", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("content-type = %q", ct)
	}
	if rr.Body.String() != "xlsx-bytes" {
		t.Errorf("body = %q", rr.Body.String())
	}
}
