package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smanji/recruitflow/internal/models"
)

// fakeRunner records invocations and replays canned results
type fakeRunner struct {
	bundles     []models.ProcessedBundle
	runErr      error
	lastProfile models.ApplicantProfile
	approved    []string
	drafted     []string
}

func (f *fakeRunner) Run(ctx context.Context, profile models.ApplicantProfile) ([]models.ProcessedBundle, error) {
	f.lastProfile = profile
	return f.bundles, f.runErr
}

func (f *fakeRunner) ApproveAndSend(ctx context.Context, ids []string) []models.ApprovalResult {
	f.approved = ids
	results := make([]models.ApprovalResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, models.ApprovalResult{ID: id, Sent: id != "bad"})
	}
	return results
}

func (f *fakeRunner) ApproveAndDraft(ctx context.Context, ids []string) []models.ApprovalResult {
	f.drafted = ids
	results := make([]models.ApprovalResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, models.ApprovalResult{ID: id, DraftID: "draft-" + id})
	}
	return results
}

func (f *fakeRunner) Pending() []models.ProcessedBundle {
	return f.bundles
}

func fakeExtractText(data []byte) (string, error) {
	return "extracted resume text", nil
}

func newTestServer(t *testing.T, runner *fakeRunner) *Server {
	t.Helper()
	dir := t.TempDir()
	return NewServer(runner, fakeExtractText, dir, dir, nil)
}

func postProfile(t *testing.T, handler http.Handler, name, email, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("name", name)
	writer.WriteField("email", email)
	part, err := writer.CreateFormFile("resume", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write([]byte(content))
	writer.Close()

	req := httptest.NewRequest("POST", "/api/profile", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeRunner{})
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("body = %q, want healthy status", rec.Body.String())
	}
}

func TestProcessRequiresProfile(t *testing.T) {
	s := newTestServer(t, &fakeRunner{})
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("POST", "/api/process_emails", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestProfileThenProcess(t *testing.T) {
	runner := &fakeRunner{bundles: []models.ProcessedBundle{
		{OriginalMessage: models.ParsedMessage{ID: "m1"}},
	}}
	s := newTestServer(t, runner)
	router := s.Router()

	rec := postProfile(t, router, "Jane Doe", "jane@example.com", "resume.txt", "plain resume text")
	if rec.Code != http.StatusOK {
		t.Fatalf("profile status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/process_emails", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("process status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	if runner.lastProfile.Name != "Jane Doe" {
		t.Errorf("profile name passed to pipeline = %q, want Jane Doe", runner.lastProfile.Name)
	}
	if runner.lastProfile.ResumeText != "plain resume text" {
		t.Errorf("resume text = %q, want the uploaded text", runner.lastProfile.ResumeText)
	}

	var bundles []models.ProcessedBundle
	if err := json.NewDecoder(rec.Body).Decode(&bundles); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(bundles) != 1 || bundles[0].OriginalMessage.ID != "m1" {
		t.Errorf("bundles = %+v, want one for m1", bundles)
	}
}

func TestProfilePDFGoesThroughExtractor(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestServer(t, runner)
	router := s.Router()

	rec := postProfile(t, router, "Jane", "j@x.com", "resume.pdf", "%PDF-1.4 binary")
	if rec.Code != http.StatusOK {
		t.Fatalf("profile status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/process_emails", nil))
	if runner.lastProfile.ResumeText != "extracted resume text" {
		t.Errorf("resume text = %q, want text from the PDF extractor", runner.lastProfile.ResumeText)
	}
}

func TestProfileRejectsUnsupportedType(t *testing.T) {
	s := newTestServer(t, &fakeRunner{})
	rec := postProfile(t, s.Router(), "Jane", "j@x.com", "resume.docx", "binary")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestApprove(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestServer(t, runner)

	body := strings.NewReader(`{"ids":["m1","bad"]}`)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("POST", "/api/approve", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var results []models.ApprovalResult
	if err := json.NewDecoder(rec.Body).Decode(&results); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(results) != 2 || !results[0].Sent || results[1].Sent {
		t.Errorf("results = %+v, want m1 sent and bad unsent", results)
	}
	if len(runner.approved) != 2 {
		t.Errorf("pipeline received %d ids, want 2", len(runner.approved))
	}
	if runner.drafted != nil {
		t.Errorf("draft path invoked with %v, want no draft calls", runner.drafted)
	}
}

func TestApproveDraftMode(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestServer(t, runner)

	body := strings.NewReader(`{"ids":["m1"],"draft":true}`)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("POST", "/api/approve", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var results []models.ApprovalResult
	if err := json.NewDecoder(rec.Body).Decode(&results); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(results) != 1 || results[0].DraftID != "draft-m1" || results[0].Sent {
		t.Errorf("results = %+v, want one unsent draft result for m1", results)
	}
	if len(runner.drafted) != 1 || runner.drafted[0] != "m1" {
		t.Errorf("draft ids = %v, want [m1]", runner.drafted)
	}
	if runner.approved != nil {
		t.Errorf("send path invoked with %v, want no send calls", runner.approved)
	}
}

func TestApproveRequiresIDs(t *testing.T) {
	s := newTestServer(t, &fakeRunner{})
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("POST", "/api/approve", strings.NewReader(`{"ids":[]}`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestDownloadUnknownArtifact(t *testing.T) {
	s := newTestServer(t, &fakeRunner{})
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/download/nope.pdf", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
