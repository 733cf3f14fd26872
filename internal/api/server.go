// Package api exposes the pipeline to the dashboard front end over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/smanji/recruitflow/internal/export"
	"github.com/smanji/recruitflow/internal/models"
)

// Runner is the pipeline surface the HTTP layer drives
type Runner interface {
	Run(ctx context.Context, profile models.ApplicantProfile) ([]models.ProcessedBundle, error)
	ApproveAndSend(ctx context.Context, ids []string) []models.ApprovalResult
	ApproveAndDraft(ctx context.Context, ids []string) []models.ApprovalResult
	Pending() []models.ProcessedBundle
}

// PDFTextExtractor converts uploaded resume PDF bytes to text
type PDFTextExtractor func(data []byte) (string, error)

// Server handles HTTP requests
type Server struct {
	pipeline     Runner
	extractText  PDFTextExtractor
	uploadsDir   string
	artifactsDir string
	logger       *slog.Logger

	mu      sync.RWMutex
	profile *models.ApplicantProfile
}

// NewServer creates an API server
func NewServer(pipeline Runner, extractText PDFTextExtractor, uploadsDir, artifactsDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		pipeline:     pipeline,
		extractText:  extractText,
		uploadsDir:   uploadsDir,
		artifactsDir: artifactsDir,
		logger:       logger.With("component", "api"),
	}
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/profile", s.handleProfile)
	mux.HandleFunc("POST /api/process_emails", s.handleProcess)
	mux.HandleFunc("GET /api/recruiter_emails", s.handlePending)
	mux.HandleFunc("POST /api/approve", s.handleApprove)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /download/{filename}", s.handleDownload)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /", s.handleRoot)

	return s.loggingMiddleware(mux)
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "Recruitflow",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /api/profile":         "Store applicant profile with base resume",
			"POST /api/process_emails":  "Run the email-to-application pipeline",
			"GET /api/recruiter_emails": "List bundles pending approval",
			"POST /api/approve":         "Approve replies by message id; send, or save drafts with draft=true",
			"GET /api/report":           "Download run report workbook",
			"GET /download/{filename}":  "Download a generated resume PDF",
			"GET /health":               "Health check",
		},
	})
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// handleProfile stores the applicant profile for subsequent runs. The resume
// is uploaded as a PDF (or plain text) and converted to text immediately.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32 MB max
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return
	}

	name := r.FormValue("name")
	email := r.FormValue("email")
	if name == "" || email == "" {
		s.respondError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "resume file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read upload: %v", err))
		return
	}

	resumeText, err := s.resumeTextFromUpload(header.Filename, data)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.saveUpload(header.Filename, data); err != nil {
		s.logger.Warn("failed to keep uploaded resume copy", "error", err)
	}

	s.mu.Lock()
	s.profile = &models.ApplicantProfile{Name: name, Email: email, ResumeText: resumeText}
	s.mu.Unlock()

	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Profile saved",
	})
}

// resumeTextFromUpload converts the uploaded resume to plain text based on
// its extension
func (s *Server) resumeTextFromUpload(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err := s.extractText(data)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from resume PDF: %w", err)
		}
		return text, nil
	case ".txt", ".md":
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported resume file type: %s", filepath.Ext(filename))
	}
}

// saveUpload keeps a copy of the uploaded base resume in the uploads directory
func (s *Server) saveUpload(filename string, data []byte) error {
	if err := os.MkdirAll(s.uploadsDir, 0755); err != nil {
		return fmt.Errorf("failed to create uploads directory: %w", err)
	}
	dest := filepath.Join(s.uploadsDir, filepath.Base(filename))
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("failed to write upload: %w", err)
	}
	return nil
}

// handleProcess runs the pipeline for the stored profile
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	profile := s.profile
	s.mu.RUnlock()

	if profile == nil {
		s.respondError(w, http.StatusBadRequest, "no applicant profile set, POST /api/profile first")
		return
	}

	bundles, err := s.pipeline.Run(r.Context(), *profile)
	if err != nil {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, bundles)
}

// handlePending lists the bundles awaiting approval
func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.pipeline.Pending())
}

// approveRequest is the payload for the approval endpoint. Draft selects
// saving the replies as mailbox drafts instead of sending them.
type approveRequest struct {
	IDs   []string `json:"ids"`
	Draft bool     `json:"draft"`
}

// handleApprove dispatches the pending replies named in the request, either
// sending them or saving them as drafts
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse request: %v", err))
		return
	}
	if len(req.IDs) == 0 {
		s.respondError(w, http.StatusBadRequest, "ids is required")
		return
	}

	var results []models.ApprovalResult
	if req.Draft {
		results = s.pipeline.ApproveAndDraft(r.Context(), req.IDs)
	} else {
		results = s.pipeline.ApproveAndSend(r.Context(), req.IDs)
	}
	s.respondJSON(w, http.StatusOK, results)
}

// handleReport streams the current run's summary workbook
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	bundles := s.pipeline.Pending()
	if len(bundles) == 0 {
		s.respondError(w, http.StatusNotFound, "no results available, run the pipeline first")
		return
	}

	tmp := filepath.Join(os.TempDir(), "recruitflow_report.xlsx")
	if err := export.WriteRunReport(bundles, tmp); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="recruitflow_report.xlsx"`)
	http.ServeFile(w, r, tmp)
}

// handleDownload serves a generated resume artifact by filename
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	// Base name only; the artifacts directory is flat and traversal is not allowed
	filename := filepath.Base(r.PathValue("filename"))
	if filename == "." || filename == "/" {
		s.respondError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	path := filepath.Join(s.artifactsDir, filename)
	if _, err := os.Stat(path); err != nil {
		s.respondError(w, http.StatusNotFound, "artifact not found")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// respondError sends an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}
