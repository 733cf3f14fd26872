package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"
)

// Sink dispatches approved replies through the Gmail API
type Sink struct {
	service *gmailapi.Service
	logger  *slog.Logger
}

// NewSink authenticates against Gmail and returns a mail sink
func NewSink(ctx context.Context, credentialsPath, tokenPath string, logger *slog.Logger) (*Sink, error) {
	srv, err := newService(ctx, credentialsPath, tokenPath)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Sink{
		service: srv,
		logger:  logger.With("component", "gmail.sink"),
	}, nil
}

// NewSinkWithService wraps an already authenticated Gmail service, so one
// OAuth bootstrap can back both the source and the sink
func NewSinkWithService(service *gmailapi.Service, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{service: service, logger: logger.With("component", "gmail.sink")}
}

// Send dispatches a reply with the PDF at attachmentPath attached. It
// returns false on any failure; errors never propagate past this boundary.
func (s *Sink) Send(ctx context.Context, to, subject, body, attachmentPath string) bool {
	raw, err := buildMIMEMessage(to, subject, body, attachmentPath)
	if err != nil {
		s.logger.Error("failed to build outgoing message", "to", to, "error", err)
		return false
	}

	msg := &gmailapi.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	sent, err := s.service.Users.Messages.Send(user, msg).Context(ctx).Do()
	if err != nil {
		s.logger.Error("failed to send message", "to", to, "error", err)
		return false
	}

	s.logger.Info("message sent", "to", to, "id", sent.Id)
	return true
}

// SaveDraft stores the reply as a draft threaded onto the original message
// instead of sending it. Returns the draft id and whether saving succeeded.
func (s *Sink) SaveDraft(ctx context.Context, originalMessageID, to, subject, body, attachmentPath string) (string, bool) {
	original, err := s.service.Users.Messages.Get(user, originalMessageID).Format("minimal").Context(ctx).Do()
	if err != nil {
		s.logger.Error("failed to load original message for draft", "id", originalMessageID, "error", err)
		return "", false
	}

	raw, err := buildMIMEMessage(to, subject, body, attachmentPath)
	if err != nil {
		s.logger.Error("failed to build draft message", "to", to, "error", err)
		return "", false
	}

	draft, err := s.service.Users.Drafts.Create(user, &gmailapi.Draft{
		Message: &gmailapi.Message{
			Raw:      base64.URLEncoding.EncodeToString(raw),
			ThreadId: original.ThreadId,
		},
	}).Context(ctx).Do()
	if err != nil {
		s.logger.Error("failed to save draft", "to", to, "error", err)
		return "", false
	}

	s.logger.Info("draft saved", "to", to, "draft_id", draft.Id)
	return draft.Id, true
}

// buildMIMEMessage assembles an RFC 2822 multipart/mixed message with a
// plain-text body and one application/pdf attachment. An empty
// attachmentPath produces a plain single-part message.
func buildMIMEMessage(to, subject, body, attachmentPath string) ([]byte, error) {
	var sb strings.Builder

	if attachmentPath == "" {
		sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
		sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
		sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
		sb.WriteString("\r\n")
		sb.WriteString(body)
		return []byte(sb.String()), nil
	}

	attachment, err := os.ReadFile(attachmentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}

	var payload strings.Builder
	writer := multipart.NewWriter(&payload)

	sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n", writer.Boundary()))
	sb.WriteString("\r\n")

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=\"UTF-8\"")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create body part: %w", err)
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, fmt.Errorf("failed to write body part: %w", err)
	}

	filename := filepath.Base(attachmentPath)
	attachHeader := textproto.MIMEHeader{}
	attachHeader.Set("Content-Type", "application/pdf")
	attachHeader.Set("Content-Transfer-Encoding", "base64")
	attachHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	attachPart, err := writer.CreatePart(attachHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment part: %w", err)
	}
	if _, err := attachPart.Write([]byte(base64.StdEncoding.EncodeToString(attachment))); err != nil {
		return nil, fmt.Errorf("failed to write attachment part: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize message: %w", err)
	}

	sb.WriteString(payload.String())
	return []byte(sb.String()), nil
}
