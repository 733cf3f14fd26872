// Package compose drafts the reply message for an approved-to-review
// opportunity: a short professional response with the tailored resume
// referenced as an attachment.
package compose

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/smanji/recruitflow/internal/models"
)

// Completer is the slice of the language-model capability this package needs
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const composeSystemPrompt = "You write concise, professional job-application emails."

// Composer drafts reply messages
type Composer struct {
	completer    Completer
	artifactsDir string
	logger       *slog.Logger
}

// New creates a composer. artifactsDir is where tailored resume PDFs live;
// it is joined with the resume's artifact filename to form the attachment
// path.
func New(completer Completer, artifactsDir string, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		completer:    completer,
		artifactsDir: artifactsDir,
		logger:       logger.With("component", "compose"),
	}
}

// Compose drafts a reply to the original message. The subject is always
// derived as "Re: " plus the original subject and the recipient is the
// original sender verbatim; neither is delegated to the model. A generation
// failure returns nil.
func (c *Composer) Compose(ctx context.Context, opp models.Opportunity, profile models.ApplicantProfile, resume models.TailoredResume, original models.ParsedMessage) *models.ComposedReply {
	prompt := c.buildPrompt(opp, profile, resume, original)

	body, err := c.completer.Complete(ctx, composeSystemPrompt, prompt)
	if err != nil {
		c.logger.Warn("reply generation failed", "message_id", original.ID, "error", err)
		return nil
	}
	body = strings.TrimSpace(body)
	if body == "" {
		c.logger.Warn("reply generation returned empty content", "message_id", original.ID)
		return nil
	}

	return &models.ComposedReply{
		To:             original.Sender,
		Subject:        "Re: " + original.Subject,
		Body:           body,
		AttachmentPath: filepath.Join(c.artifactsDir, resume.ArtifactFilename),
		Sent:           false,
	}
}

func (c *Composer) buildPrompt(opp models.Opportunity, profile models.ApplicantProfile, resume models.TailoredResume, original models.ParsedMessage) string {
	var sb strings.Builder

	sb.WriteString("Write a professional email reply to a recruiter about the following job opportunity.\n\n")
	sb.WriteString(fmt.Sprintf("Job Subject: %s\n", original.Subject))
	sb.WriteString(fmt.Sprintf("Recruiter: %s\n", original.Sender))
	sb.WriteString(fmt.Sprintf("Company: %s\n", opp.CompanyInfo))
	sb.WriteString(fmt.Sprintf("Candidate: %s (%s)\n", profile.Name, profile.Email))
	if len(resume.MatchedSkills) > 0 {
		sb.WriteString(fmt.Sprintf("Matched Qualifications: %s\n", strings.Join(resume.MatchedSkills, ", ")))
	}

	sb.WriteString("\nThe email should:\n")
	sb.WriteString("1. Thank the recruiter for the opportunity and express enthusiasm for the position.\n")
	sb.WriteString("2. Briefly highlight 2-3 of the matched qualifications.\n")
	sb.WriteString("3. Mention that a tailored resume is attached.\n")
	sb.WriteString("4. Request a follow-up or interview as the next step.\n")
	sb.WriteString("5. Close professionally.\n")
	sb.WriteString("Keep it to roughly 150-200 words. Return only the email body, no subject line.\n")

	return sb.String()
}
