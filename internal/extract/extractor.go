// Package extract decides whether a parsed message is a genuine job
// opportunity and pulls structured posting facts out of its body. This is
// the only place classification and structured extraction happen.
package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/smanji/recruitflow/internal/models"
)

// Completer is the slice of the language-model capability this package needs
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const classifySystemPrompt = "You are an assistant that decides whether an email is a genuine job opportunity from a recruiter. Answer with a single word: yes or no."

const extractSystemPrompt = "You are an assistant that extracts structured job-posting data from recruiter emails. Respond with JSON only."

// Extractor classifies messages and extracts opportunities via the LLM capability
type Extractor struct {
	completer Completer
	logger    *slog.Logger
}

// New creates an extractor
func New(completer Completer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		completer: completer,
		logger:    logger.With("component", "extract"),
	}
}

// Classify reports whether the message looks like a recruiter-originated job
// opportunity. The model's output is untrusted: it is trimmed and case-folded
// before comparison, and any capability failure counts as a negative
// classification (fail closed).
func (e *Extractor) Classify(ctx context.Context, msg models.ParsedMessage) bool {
	var sb strings.Builder
	sb.WriteString("Subject: " + msg.Subject + "\n")
	sb.WriteString("From: " + msg.Sender + "\n\n")
	sb.WriteString(msg.Body)
	sb.WriteString("\n\nIs this email a genuine job opportunity? Answer yes or no.")

	response, err := e.completer.Complete(ctx, classifySystemPrompt, sb.String())
	if err != nil {
		e.logger.Warn("classification call failed, treating as negative", "id", msg.ID, "error", err)
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(response))
	return strings.HasPrefix(answer, "yes")
}

// opportunityPayload is the JSON schema contract for the extraction request
type opportunityPayload struct {
	JobDescription  string   `json:"job_description"`
	CompanyInfo     string   `json:"company_info"`
	KeyRequirements []string `json:"key_requirements"`
	RequiredSkills  []string `json:"required_skills"`
}

// Extract issues one structured-output request for the message body and
// returns the parsed opportunity. Every failure mode (empty body, chatty
// non-JSON response, schema mismatch) yields an empty opportunity rather
// than an error, so the pipeline can continue with other messages.
func (e *Extractor) Extract(ctx context.Context, msg models.ParsedMessage) models.Opportunity {
	opp := models.Opportunity{SourceMessageID: msg.ID}

	// Extraction cannot succeed on no input; skip the remote call entirely
	if strings.TrimSpace(msg.Body) == "" {
		e.logger.Info("skipping extraction for empty body", "id", msg.ID)
		return opp
	}

	var sb strings.Builder
	sb.WriteString("Extract the job posting details from the email below. Respond with a JSON object with exactly these keys:\n")
	sb.WriteString("  \"job_description\": string,\n")
	sb.WriteString("  \"company_info\": string,\n")
	sb.WriteString("  \"key_requirements\": array of strings,\n")
	sb.WriteString("  \"required_skills\": array of strings\n\n")
	sb.WriteString("EMAIL:\n")
	sb.WriteString(msg.Body)

	response, err := e.completer.Complete(ctx, extractSystemPrompt, sb.String())
	if err != nil {
		e.logger.Warn("extraction call failed", "id", msg.ID, "error", err)
		return opp
	}

	cleaned := CleanJSON(response)

	if isConversational(cleaned) {
		e.logger.Warn("model replied conversationally instead of with JSON", "id", msg.ID)
		return opp
	}

	var payload opportunityPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		e.logger.Warn("failed to parse extraction response", "id", msg.ID, "error", err)
		return opp
	}

	opp.JobDescription = payload.JobDescription
	opp.CompanyInfo = payload.CompanyInfo
	opp.KeyRequirements = payload.KeyRequirements
	opp.RequiredSkills = payload.RequiredSkills
	return opp
}

// CleanJSON strips a fenced code block with an optional language tag from a
// model response, leaving the raw JSON for unmarshalling.
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")

	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}

// isConversational detects responses where the model asked for more input
// instead of returning JSON
func isConversational(response string) bool {
	if strings.HasPrefix(response, "{") {
		return false
	}

	lower := strings.ToLower(response)
	for _, marker := range []string{"please provide", "please share", "i need", "could you", "i'm sorry", "i am sorry"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
