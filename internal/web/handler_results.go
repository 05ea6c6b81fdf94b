package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/vbonduro/foodscan/internal/logging"
	"github.com/vbonduro/foodscan/internal/service"
)

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	scans, err := s.service.History(r.Context())
	if err != nil {
		logging.FromContext(r.Context(), s.logger).Error("list history failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to load history")
		return
	}
	writeJSON(w, r, http.StatusOK, scans)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id, ok := s.scanID(w, r)
	if !ok {
		return
	}

	detail, err := s.service.GetScan(r.Context(), id)
	if err != nil {
		s.writeScanError(w, r, id, err)
		return
	}
	writeJSON(w, r, http.StatusOK, detail)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.scanID(w, r)
	if !ok {
		return
	}

	text, err := s.service.Report(r.Context(), id)
	if err != nil {
		s.writeScanError(w, r, id, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.WriteString(w, text); err != nil {
		logging.FromContext(r.Context(), s.logger).Error("write report failed", "scan_id", id, "error", err)
	}
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := s.scanID(w, r)
	if !ok {
		return
	}
	logger := logging.FromContext(r.Context(), s.logger)

	reader, mimeType, err := s.service.Photo(r.Context(), id)
	if errors.Is(err, service.ErrPhotoNotFound) {
		writeError(w, r, http.StatusNotFound, "Photo not found")
		return
	}
	if err != nil {
		s.writeScanError(w, r, id, err)
		return
	}
	defer closeWithLog(reader, "photo reader", logger)

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, reader); err != nil {
		logger.Error("write photo failed", "scan_id", id, "error", err)
	}
}

// scanID parses the {id} path value, answering 400 when it is not a number.
func (s *Server) scanID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid scan id")
		return 0, false
	}
	return id, true
}

func (s *Server) writeScanError(w http.ResponseWriter, r *http.Request, id int64, err error) {
	if errors.Is(err, service.ErrScanNotFound) {
		writeError(w, r, http.StatusNotFound, "Scan not found")
		return
	}
	logging.FromContext(r.Context(), s.logger).Error("load scan failed", "scan_id", id, "error", err)
	writeError(w, r, http.StatusInternalServerError, "Failed to load scan")
}
