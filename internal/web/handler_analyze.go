package web

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/vbonduro/foodscan/internal/analysis"
	"github.com/vbonduro/foodscan/internal/logging"
)

const defaultMaxUpload = 50 << 20 // 50 MB

// uploadFields are tried in order; one frontend screen posts "image".
var uploadFields = []string{"file", "image"}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context(), s.logger)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+(1<<20))
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := formFile(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer closeWithLog(file, "upload file", logger)
	logger.Info("received file", "filename", header.Filename, "size", header.Size)

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		logger.Warn("invalid content type received", "content_type", contentType)
		writeError(w, r, http.StatusBadRequest, "File must be an image. Received: "+contentType)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error("read upload failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to read upload")
		return
	}

	result, _, err := s.service.AnalyzeAndStore(r.Context(), header.Filename, data)
	if err != nil {
		var aerr *analysis.Error
		if errors.As(err, &aerr) {
			logger.Warn("analysis failed", "kind", aerr.Kind, "error", err)
			writeError(w, r, http.StatusBadRequest, aerr.Error())
			return
		}
		logger.Error("analyze and store failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "Failed to store analysis")
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

func formFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	for _, field := range uploadFields {
		file, header, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		return file, header, err
	}
	return nil, nil, http.ErrMissingFile
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
