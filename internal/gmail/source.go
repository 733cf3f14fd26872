package gmail

import (
	"context"
	"fmt"
	"log/slog"

	gmailapi "google.golang.org/api/gmail/v1"
)

const user = "me"

// Source fetches candidate recruiter messages from the mailbox
type Source struct {
	service    *gmailapi.Service
	query      string
	maxResults int64
	logger     *slog.Logger
}

// NewSource authenticates against Gmail and returns a message source using
// the given search query (keyword predicate plus recency window) and result
// cap. The provider applies the cap itself, so not all matching messages are
// guaranteed to be returned.
func NewSource(ctx context.Context, credentialsPath, tokenPath, query string, maxResults int64, logger *slog.Logger) (*Source, error) {
	srv, err := newService(ctx, credentialsPath, tokenPath)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Source{
		service:    srv,
		query:      query,
		maxResults: maxResults,
		logger:     logger.With("component", "gmail.source"),
	}, nil
}

// ListCandidates returns the full envelopes of messages matching the
// configured query. Failure to list is fatal for a run; failure to fetch an
// individual message is logged and that message is skipped.
func (s *Source) ListCandidates(ctx context.Context) ([]*gmailapi.Message, error) {
	resp, err := s.service.Users.Messages.List(user).Q(s.query).MaxResults(s.maxResults).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %w", err)
	}

	messages := make([]*gmailapi.Message, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		msg, err := s.FetchFull(ctx, ref.Id)
		if err != nil {
			s.logger.Warn("unable to retrieve message, skipping", "id", ref.Id, "error", err)
			continue
		}
		messages = append(messages, msg)
	}

	s.logger.Info("retrieved candidate messages", "count", len(messages), "query", s.query)
	return messages, nil
}

// Service exposes the authenticated Gmail service so the sink can share one
// OAuth bootstrap
func (s *Source) Service() *gmailapi.Service {
	return s.service
}

// FetchFull retrieves one message with its complete payload tree
func (s *Source) FetchFull(ctx context.Context, id string) (*gmailapi.Message, error) {
	msg, err := s.service.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve message %s: %w", id, err)
	}
	return msg, nil
}
