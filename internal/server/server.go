// Package server exposes the extraction pipeline over HTTP: a PDF upload
// endpoint, downloads of the generated spreadsheets, health and metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/a3tai/switchgear-extractor/internal/equipment"
	"github.com/a3tai/switchgear-extractor/internal/metrics"
	"github.com/a3tai/switchgear-extractor/internal/pdf"
	"github.com/a3tai/switchgear-extractor/internal/pipeline"
	"github.com/a3tai/switchgear-extractor/internal/report"
	"github.com/a3tai/switchgear-extractor/internal/security"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	extractPath   = "/extract"
	outputsPrefix = "/outputs/"
	healthPath    = "/health"
	metricsPath   = "/metrics"

	// form field holding the uploaded drawing
	fileField = "file"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// multipart framing allowance on top of the file size limit
	formOverhead = 1 << 20
)

// Response details
const (
	DetailNotPDF      = "Only PDF files are allowed"
	DetailNoEquipment = "No equipment found in PDF"
	DetailFailed      = "Extraction failed."
)

// Extractor runs one isolated pipeline run per upload
type Extractor interface {
	ProcessUpload(ctx context.Context, data []byte) (*pipeline.Result, error)
	OutputDirectory() string
}

// Options configures the HTTP surface
type Options struct {
	ServiceName string
	CORSOrigin  string
	RateLimit   float64 // uploads per second, 0 disables limiting
	RateBurst   int
}

// ExtractResponse is the body of a successful upload
type ExtractResponse struct {
	MVSCount      int               `json:"mvs_count"`
	DSGCount      int               `json:"dsg_count"`
	ExcelURL      string            `json:"excel_url"`
	OutputName    string            `json:"output_name"`
	EquipmentList []*equipment.Item `json:"equipment_list"`
	Summary       *report.Summary   `json:"summary,omitempty"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Server handles HTTP requests for the extractor
type Server struct {
	extractor Extractor
	validator *pdf.Validator
	outputs   *security.PathValidator
	opts      Options
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// New creates an HTTP server around extractor
func New(extractor Extractor, validator *pdf.Validator, opts Options, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "switchgear-extractor"
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}

	outputs, err := security.NewPathValidator(extractor.OutputDirectory())
	if err != nil {
		return nil, fmt.Errorf("invalid output directory: %w", err)
	}

	s := &Server{
		extractor: extractor,
		validator: validator,
		outputs:   outputs,
		opts:      opts,
		logger:    logger,
	}
	if opts.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst)
	}
	return s, nil
}

// Handler returns the routed handler with the middleware chain applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST "+extractPath, RateLimit(s.limiter)(http.HandlerFunc(s.handleExtract)))
	mux.HandleFunc("GET "+outputsPrefix+"{name}", s.handleOutput)
	mux.HandleFunc("GET "+healthPath, s.handleHealth)
	mux.Handle("GET "+metricsPath, promhttp.Handler())

	return Chain(mux,
		Recover(s.logger),
		Logger(s.logger),
		CORS(s.opts.CORSOrigin),
		OTel(s.opts.ServiceName),
	)
}

// Run serves on addr until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", zap.String("address", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.validator.MaxFileSize()+formOverhead)

	file, header, err := r.FormFile(fileField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.reject(w, "too_large", fmt.Sprintf("File too large (max: %d bytes)", s.validator.MaxFileSize()))
			return
		}
		s.reject(w, "missing_file", fmt.Sprintf("A PDF file is required in form field %q", fileField))
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		s.reject(w, "not_pdf", DetailNotPDF)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.reject(w, "unreadable", "Failed to read uploaded file")
		return
	}

	if err := s.validator.ValidateUpload(header.Header.Get("Content-Type"), data); err != nil {
		switch {
		case errors.Is(err, pdf.ErrFileTooLarge):
			s.reject(w, "too_large", fmt.Sprintf("File too large (max: %d bytes)", s.validator.MaxFileSize()))
		case errors.Is(err, pdf.ErrEmptyFile):
			s.reject(w, "empty", "Uploaded file is empty")
		default:
			s.reject(w, "not_pdf", DetailNotPDF)
		}
		return
	}

	result, err := s.extractor.ProcessUpload(r.Context(), data)
	if err != nil {
		if errors.Is(err, equipment.ErrNoEquipment) {
			writeError(w, http.StatusInternalServerError, DetailNoEquipment)
			return
		}
		s.logger.Error("extraction failed",
			zap.String("filename", header.Filename),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s %v", DetailFailed, err))
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{
		MVSCount:      result.ServiceCount,
		DSGCount:      result.DistributionCount,
		ExcelURL:      outputsPrefix + result.OutputName,
		OutputName:    result.OutputName,
		EquipmentList: result.Items,
		Summary:       result.Summary,
	})
}

func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	path, err := s.outputs.Join(name, ".xlsx")
	if err != nil {
		writeError(w, http.StatusNotFound, "Output not found")
		return
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		writeError(w, http.StatusNotFound, "Output not found")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) reject(w http.ResponseWriter, reason, detail string) {
	metrics.RecordRejection(reason)
	writeError(w, http.StatusBadRequest, detail)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}
