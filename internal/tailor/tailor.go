// Package tailor produces a resume tailored to one extracted opportunity:
// markdown from the language model, an HTML rendering, the subset of required
// skills the resume actually covers, and a rendered PDF artifact.
package tailor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/smanji/recruitflow/internal/models"
)

// Completer is the slice of the language-model capability this package needs
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// HTMLRenderer converts markdown content to HTML
type HTMLRenderer interface {
	Render(markdown string) string
}

// PDFRenderer prints HTML to a PDF file, reporting success
type PDFRenderer interface {
	Render(ctx context.Context, html, destPath string) bool
}

const tailorSystemPrompt = "You are a professional resume writer specializing in tailoring resumes to specific job opportunities."

// Engine generates tailored resume documents
type Engine struct {
	completer Completer
	html      HTMLRenderer
	pdf       PDFRenderer
	outDir    string
	logger    *slog.Logger
}

// New creates a tailoring engine writing artifacts into outDir
func New(completer Completer, html HTMLRenderer, pdf PDFRenderer, outDir string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		completer: completer,
		html:      html,
		pdf:       pdf,
		outDir:    outDir,
		logger:    logger.With("component", "tailor"),
	}
}

// Tailor generates a resume tailored to the opportunity. Any failure in
// generation, rendering, or file I/O returns nil; a TailoredResume is never
// partially populated.
func (e *Engine) Tailor(ctx context.Context, opp models.Opportunity, profile models.ApplicantProfile) *models.TailoredResume {
	prompt := e.buildPrompt(opp, profile)

	markdown, err := e.completer.Complete(ctx, tailorSystemPrompt, prompt)
	if err != nil {
		e.logger.Warn("resume generation failed", "message_id", opp.SourceMessageID, "error", err)
		return nil
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		e.logger.Warn("resume generation returned empty content", "message_id", opp.SourceMessageID)
		return nil
	}

	html := e.html.Render(markdown)
	matched := MatchSkills(opp.RequiredSkills, markdown)

	filename := artifactFilename(profile.Name)
	if err := os.MkdirAll(e.outDir, 0755); err != nil {
		e.logger.Error("failed to create output directory", "dir", e.outDir, "error", err)
		return nil
	}

	destPath := filepath.Join(e.outDir, filename)
	if !e.pdf.Render(ctx, html, destPath) {
		e.logger.Warn("PDF rendering failed", "message_id", opp.SourceMessageID, "dest", destPath)
		return nil
	}

	return &models.TailoredResume{
		MarkdownContent:  markdown,
		HTMLContent:      html,
		MatchedSkills:    matched,
		ArtifactFilename: filename,
	}
}

// buildPrompt combines the opportunity and the applicant's base resume into
// one generation request
func (e *Engine) buildPrompt(opp models.Opportunity, profile models.ApplicantProfile) string {
	var sb strings.Builder

	sb.WriteString("You are tasked with creating a tailored resume for a specific job opportunity. Use the information below.\n\n")

	sb.WriteString("## JOB INFORMATION\n")
	sb.WriteString(fmt.Sprintf("Company: %s\n", opp.CompanyInfo))
	sb.WriteString(fmt.Sprintf("Job Description: %s\n", opp.JobDescription))
	if len(opp.KeyRequirements) > 0 {
		sb.WriteString("Key Requirements:\n")
		for _, req := range opp.KeyRequirements {
			sb.WriteString(fmt.Sprintf("- %s\n", req))
		}
	}
	if len(opp.RequiredSkills) > 0 {
		sb.WriteString("Required Skills:\n")
		for _, skill := range opp.RequiredSkills {
			sb.WriteString(fmt.Sprintf("- %s\n", skill))
		}
	}

	sb.WriteString("\n## CANDIDATE INFORMATION\n")
	sb.WriteString(fmt.Sprintf("Name: %s\n", profile.Name))
	sb.WriteString(fmt.Sprintf("Email: %s\n", profile.Email))
	sb.WriteString("Existing Resume:\n")
	sb.WriteString(profile.ResumeText)
	sb.WriteString("\n\n")

	sb.WriteString("## INSTRUCTIONS\n")
	sb.WriteString("Create a professional resume in Markdown format that builds on the existing resume. Ensure that:\n")
	sb.WriteString("1. The content is tailored to address the specific job requirements and skills.\n")
	sb.WriteString("2. Experiences and skills most relevant to the opportunity are highlighted, not copied verbatim.\n")
	sb.WriteString("3. Achievements are quantifiable where possible.\n")
	sb.WriteString("4. The resume is a single well-structured document, limited to 1-2 pages worth of content.\n")
	sb.WriteString("Return only the Markdown resume, no additional commentary.\n")

	return sb.String()
}

// MatchSkills returns the subset of required skills whose lowercase form
// appears as a substring of the lowercase resume content. Simple containment,
// not fuzzy matching.
func MatchSkills(requiredSkills []string, content string) []string {
	lower := strings.ToLower(content)
	matched := make([]string, 0, len(requiredSkills))
	for _, skill := range requiredSkills {
		if skill == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(skill)) {
			matched = append(matched, skill)
		}
	}
	return matched
}

// artifactFilename derives a collision-free PDF filename from the applicant
// name. The random suffix is independent per call, so concurrent tailoring
// runs for the same applicant never need to coordinate.
func artifactFilename(applicantName string) string {
	name := strings.ReplaceAll(strings.TrimSpace(applicantName), " ", "_")
	if name == "" {
		name = "applicant"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("resume_%s_%s.pdf", name, suffix)
}
