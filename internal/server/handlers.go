package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nlavoie/expensed/internal/common"
)

// 20 MiB is plenty for a phone photo of a receipt.
const maxUploadBytes = 20 << 20

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	people, err := s.people.List(r.Context())
	if err != nil {
		s.logger.Error("http.employees.list_failed", "error", err)
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, people)
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	recs, err := s.receipts.List(r.Context())
	if err != nil {
		s.logger.Error("http.receipts.list_failed", "error", err)
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, recs)
}

// handleScanReceipt accepts a multipart upload (file + person_id), runs the
// recognizer, and ingests the result.
func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, common.NewValidationError("body", "expected multipart form"))
		return
	}

	personID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("person_id")), 10, 64)
	if err != nil {
		s.writeError(w, common.NewValidationError("person_id", "must be an integer"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, common.NewValidationError("file", "is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, fmt.Errorf("read upload: %w", err))
		return
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	raw, err := s.scanner.ScanReceipt(r.Context(), data, mimeType)
	if err != nil {
		s.logger.Error("http.scan.recognizer_failed", "person_id", personID, "error", err)
		s.writeError(w, err)
		return
	}

	rec, err := s.ingestor.Ingest(r.Context(), raw, personID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleExportReceipts(w http.ResponseWriter, r *http.Request) {
	data, err := s.exporter.ReceiptsXLSX(r.Context())
	if err != nil {
		s.logger.Error("http.export.failed", "error", err)
		s.writeError(w, err)
		return
	}

	filename := fmt.Sprintf("receipts-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("http.export.write_failed", "error", err)
	}
}
