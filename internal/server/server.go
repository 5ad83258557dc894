package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nlavoie/expensed/internal/common"
	"github.com/nlavoie/expensed/internal/entity"
	"github.com/nlavoie/expensed/internal/recognizer"
	"github.com/nlavoie/expensed/internal/repository"
)

// Ingestor is what the scan endpoint needs from the ingestion pipeline.
type Ingestor interface {
	Ingest(ctx context.Context, raw entity.RawScanResult, personID int64) (*entity.Receipt, error)
}

// Exporter produces the XLSX expense report.
type Exporter interface {
	ReceiptsXLSX(ctx context.Context) ([]byte, error)
}

// Server is the thin HTTP layer; all pipeline logic lives behind the
// injected collaborators.
type Server struct {
	people   repository.PersonRepository
	receipts repository.ReceiptRepository
	scanner  recognizer.Scanner
	ingestor Ingestor
	exporter Exporter
	logger   *slog.Logger
}

func New(people repository.PersonRepository, receipts repository.ReceiptRepository, scanner recognizer.Scanner, ingestor Ingestor, exporter Exporter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		people:   people,
		receipts: receipts,
		scanner:  scanner,
		ingestor: ingestor,
		exporter: exporter,
		logger:   logger,
	}
}

// Router wires all routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/employees", s.handleListEmployees).Methods(http.MethodGet)
	r.HandleFunc("/receipts", s.handleListReceipts).Methods(http.MethodGet)
	r.HandleFunc("/receipts/scan", s.handleScanReceipt).Methods(http.MethodPost)
	r.HandleFunc("/receipts/export", s.handleExportReceipts).Methods(http.MethodGet)
	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("http.write_response_failed", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the pipeline error taxonomy onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrPersonNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrRecognizer):
		status = http.StatusBadGateway
	case errors.Is(err, common.ErrPersistence):
		status = http.StatusInternalServerError
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
