// Package parser decodes raw Gmail message envelopes into plain subject,
// sender, and body text. Parsing is a pure transformation: missing headers
// and undecodable bodies degrade to sentinels rather than failing.
package parser

import (
	"encoding/base64"
	"log/slog"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/smanji/recruitflow/internal/models"
)

const (
	// NoSubject is used when a message carries no Subject header
	NoSubject = "No Subject"
	// UnknownSender is used when a message carries no From header
	UnknownSender = "Unknown Sender"
)

// Parser turns provider envelopes into ParsedMessages
type Parser struct {
	logger *slog.Logger
}

// New creates a message parser
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With("component", "parser")}
}

// Parse extracts subject, sender, and plain-text body from a full-format
// Gmail message. It never fails: absent headers fall back to sentinel values
// and an undecodable or missing body becomes the empty string.
func (p *Parser) Parse(msg *gmail.Message) models.ParsedMessage {
	parsed := models.ParsedMessage{
		ID:      msg.Id,
		Subject: NoSubject,
		Sender:  UnknownSender,
	}

	if msg.Payload == nil {
		p.logger.Warn("message has no payload", "id", msg.Id)
		return parsed
	}

	for _, header := range msg.Payload.Headers {
		switch strings.ToLower(header.Name) {
		case "subject":
			parsed.Subject = header.Value
		case "from":
			parsed.Sender = header.Value
		}
	}

	parsed.Body = p.extractBody(msg.Id, msg.Payload)
	return parsed
}

// extractBody prefers the first text/plain leaf found in depth-first order
// over the multi-part tree; a single-part payload is decoded directly.
func (p *Parser) extractBody(id string, payload *gmail.MessagePart) string {
	if len(payload.Parts) > 0 {
		if body, ok := p.bodyFromParts(id, payload.Parts); ok {
			return body
		}
		return ""
	}

	if payload.Body != nil {
		return p.decodeBody(id, payload.Body.Data)
	}
	return ""
}

func (p *Parser) bodyFromParts(id string, parts []*gmail.MessagePart) (string, bool) {
	for _, part := range parts {
		if part.MimeType == "text/plain" && part.Body != nil {
			return p.decodeBody(id, part.Body.Data), true
		}
		if len(part.Parts) > 0 {
			if body, ok := p.bodyFromParts(id, part.Parts); ok {
				return body, true
			}
		}
	}
	return "", false
}

// decodeBody decodes the base64url transfer encoding Gmail uses for part
// data. Decode failures degrade to an empty body.
func (p *Parser) decodeBody(id, data string) string {
	if data == "" {
		return ""
	}

	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail omits padding on some parts
		decoded, err = base64.RawURLEncoding.DecodeString(data)
	}
	if err != nil {
		p.logger.Warn("failed to decode message body", "id", id, "error", err)
		return ""
	}

	return string(decoded)
}
