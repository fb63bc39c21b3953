package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dvloznov/spendwise/internal/api/middleware"
	"github.com/dvloznov/spendwise/internal/logger"
	"github.com/dvloznov/spendwise/internal/pipeline"
	"github.com/dvloznov/spendwise/internal/statement"
)

// DefaultMaxUploadBytes is the upload limit when none is configured.
const DefaultMaxUploadBytes int64 = 16 << 20

// RunIDHeader carries the analysis run ID on a successful response.
const RunIDHeader = "X-Run-ID"

// Analyzer runs one CSV through the analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, r io.Reader) (*pipeline.Result, error)
}

// AnalyzeHandler handles synchronous CSV uploads.
type AnalyzeHandler struct {
	analyzer Analyzer
	maxBytes int64
}

// NewAnalyzeHandler creates a new analyze handler. maxBytes <= 0 means
// DefaultMaxUploadBytes.
func NewAnalyzeHandler(analyzer Analyzer, maxBytes int64) *AnalyzeHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &AnalyzeHandler{analyzer: analyzer, maxBytes: maxBytes}
}

// Analyze handles POST /api/analyze with a multipart "file" field.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File is too large. Maximum size is %dMB.", h.maxBytes>>20))
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "No file selected")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		middleware.WriteError(w, http.StatusBadRequest, "No file selected")
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		middleware.WriteError(w, http.StatusBadRequest, "Please upload a valid CSV file")
		return
	}

	res, err := h.analyzer.Analyze(ctx, file)
	if err != nil {
		var ve *statement.ValidationError
		if errors.As(err, &ve) {
			log.Warn().Str("kind", ve.Kind.String()).Str("filename", header.Filename).Msg("Rejected CSV upload")
			middleware.WriteError(w, http.StatusBadRequest, ve.Message)
			return
		}
		log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to analyze upload")
		middleware.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing file: %v", err))
		return
	}

	w.Header().Set(RunIDHeader, res.RunID)
	middleware.WriteJSON(w, http.StatusOK, res.Dashboard)
}
