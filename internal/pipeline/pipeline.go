// Package pipeline coordinates the email-to-application flow: fetch
// candidate messages, parse, classify, extract, tailor, and compose each one
// concurrently, hold the results for review, and dispatch approved sends.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/smanji/recruitflow/internal/models"
)

// MailSource lists candidate recruiter messages from the mailbox
type MailSource interface {
	ListCandidates(ctx context.Context) ([]*gmailapi.Message, error)
}

// MailSink dispatches an approved reply, either sending it or saving it as
// a draft threaded onto the original message. Both report success without
// raising.
type MailSink interface {
	Send(ctx context.Context, to, subject, body, attachmentPath string) bool
	SaveDraft(ctx context.Context, originalMessageID, to, subject, body, attachmentPath string) (string, bool)
}

// MessageParser decodes a raw envelope into subject, sender, and body text
type MessageParser interface {
	Parse(msg *gmailapi.Message) models.ParsedMessage
}

// Extractor classifies messages and extracts structured opportunities
type Extractor interface {
	Classify(ctx context.Context, msg models.ParsedMessage) bool
	Extract(ctx context.Context, msg models.ParsedMessage) models.Opportunity
}

// TailoringEngine produces a tailored resume, or nil on failure
type TailoringEngine interface {
	Tailor(ctx context.Context, opp models.Opportunity, profile models.ApplicantProfile) *models.TailoredResume
}

// ReplyComposer drafts the reply message, or nil on failure
type ReplyComposer interface {
	Compose(ctx context.Context, opp models.Opportunity, profile models.ApplicantProfile, resume models.TailoredResume, original models.ParsedMessage) *models.ComposedReply
}

// Pipeline orchestrates one interactive user's runs and their approvals
type Pipeline struct {
	source   MailSource
	sink     MailSink
	parser   MessageParser
	extract  Extractor
	tailor   TailoringEngine
	composer ReplyComposer
	limit    int
	logger   *slog.Logger

	mu       sync.Mutex
	pending  map[string]*models.ProcessedBundle
	inFlight map[string]struct{}
}

// New creates a pipeline. limit bounds how many messages are processed
// concurrently, keeping the LLM and mail providers within their rate limits.
func New(source MailSource, sink MailSink, parser MessageParser, extract Extractor, tailor TailoringEngine, composer ReplyComposer, limit int, logger *slog.Logger) *Pipeline {
	if limit < 1 {
		limit = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:   source,
		sink:     sink,
		parser:   parser,
		extract:  extract,
		tailor:   tailor,
		composer: composer,
		limit:    limit,
		logger:   logger.With("component", "pipeline"),
		pending:  make(map[string]*models.ProcessedBundle),
		inFlight: make(map[string]struct{}),
	}
}

// Run fetches the candidate set once and processes every message through the
// per-message stages. Only a failure to reach the mailbox is fatal; each
// message's pipeline is independently abortable, so one rejection or stage
// failure never affects sibling messages. The returned sequence contains
// only non-rejected bundles, in no guaranteed order.
func (p *Pipeline) Run(ctx context.Context, profile models.ApplicantProfile) ([]models.ProcessedBundle, error) {
	raw, err := p.source.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidate messages: %w", err)
	}

	// Fresh run state; approvals apply only to the most recent run
	p.mu.Lock()
	p.pending = make(map[string]*models.ProcessedBundle)
	p.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)

	for _, msg := range raw {
		g.Go(func() error {
			p.processMessage(gctx, msg, profile)
			return nil
		})
	}

	// Workers never return errors; per-message failures are rejections
	_ = g.Wait()

	bundles := p.Pending()
	p.logger.Info("run complete", "candidates", len(raw), "bundles", len(bundles))
	return bundles, nil
}

// processMessage walks one message through parse, classify, extract, tailor,
// and compose. Any rejection leaves no trace beyond a diagnostic log entry.
func (p *Pipeline) processMessage(ctx context.Context, raw *gmailapi.Message, profile models.ApplicantProfile) {
	msg := p.parser.Parse(raw)

	if !p.extract.Classify(ctx, msg) {
		p.logger.Info("rejected: not a job opportunity", "id", msg.ID, "subject", msg.Subject)
		return
	}

	opp := p.extract.Extract(ctx, msg)
	if opp.IsEmpty() {
		p.logger.Info("rejected: extraction produced nothing usable", "id", msg.ID, "subject", msg.Subject)
		return
	}

	resume := p.tailor.Tailor(ctx, opp, profile)
	if resume == nil {
		p.logger.Info("rejected: tailoring failed", "id", msg.ID, "subject", msg.Subject)
		return
	}

	reply := p.composer.Compose(ctx, opp, profile, *resume, msg)
	if reply == nil {
		p.logger.Info("rejected: reply composition failed", "id", msg.ID, "subject", msg.Subject)
		return
	}

	bundle := &models.ProcessedBundle{
		OriginalMessage: msg,
		Opportunity:     opp,
		Resume:          *resume,
		Reply:           *reply,
	}

	p.mu.Lock()
	p.pending[msg.ID] = bundle
	p.mu.Unlock()
}

// ApproveAndSend dispatches the pending replies named by ids. Outcomes are
// independent per id: one failed send neither blocks nor rolls back the
// others. Re-approving an already sent id is a no-op that reports success
// without touching the sink. Unknown ids report a zero result.
func (p *Pipeline) ApproveAndSend(ctx context.Context, ids []string) []models.ApprovalResult {
	return p.approve(ctx, ids, false)
}

// ApproveAndDraft saves the pending replies named by ids as mailbox drafts
// threaded onto their original messages, leaving the actual send to the
// user. Re-approving an id that already has a draft returns that draft id
// without saving another copy.
func (p *Pipeline) ApproveAndDraft(ctx context.Context, ids []string) []models.ApprovalResult {
	return p.approve(ctx, ids, true)
}

// approve is the shared dispatch loop. An id is marked in flight under the
// lock before its sink call, so overlapping approvals of the same id cannot
// dispatch it twice; the loser reports a zero result.
func (p *Pipeline) approve(ctx context.Context, ids []string, draft bool) []models.ApprovalResult {
	results := make([]models.ApprovalResult, 0, len(ids))

	for _, id := range ids {
		p.mu.Lock()
		bundle, ok := p.pending[id]
		if !ok {
			p.mu.Unlock()
			p.logger.Warn("approval for unknown message id", "id", id)
			results = append(results, models.ApprovalResult{ID: id})
			continue
		}
		if bundle.Reply.Sent {
			p.mu.Unlock()
			results = append(results, models.ApprovalResult{ID: id, Sent: true, DraftID: bundle.Reply.DraftID})
			continue
		}
		if draft && bundle.Reply.DraftID != "" {
			p.mu.Unlock()
			results = append(results, models.ApprovalResult{ID: id, DraftID: bundle.Reply.DraftID})
			continue
		}
		if _, busy := p.inFlight[id]; busy {
			p.mu.Unlock()
			p.logger.Warn("approval already in flight", "id", id)
			results = append(results, models.ApprovalResult{ID: id})
			continue
		}
		p.inFlight[id] = struct{}{}
		reply := bundle.Reply
		p.mu.Unlock()

		result := models.ApprovalResult{ID: id}
		if draft {
			draftID, saved := p.sink.SaveDraft(ctx, id, reply.To, reply.Subject, reply.Body, reply.AttachmentPath)
			if saved {
				result.DraftID = draftID
			} else {
				p.logger.Warn("draft save failed", "id", id, "to", reply.To)
			}
		} else {
			result.Sent = p.sink.Send(ctx, reply.To, reply.Subject, reply.Body, reply.AttachmentPath)
			if !result.Sent {
				p.logger.Warn("send failed", "id", id, "to", reply.To)
			}
		}

		p.mu.Lock()
		if result.Sent {
			bundle.Reply.Sent = true
		}
		if result.DraftID != "" {
			bundle.Reply.DraftID = result.DraftID
		}
		delete(p.inFlight, id)
		p.mu.Unlock()

		results = append(results, result)
	}

	return results
}

// Pending returns a snapshot of the bundles awaiting approval
func (p *Pipeline) Pending() []models.ProcessedBundle {
	p.mu.Lock()
	defer p.mu.Unlock()

	bundles := make([]models.ProcessedBundle, 0, len(p.pending))
	for _, b := range p.pending {
		bundles = append(bundles, *b)
	}
	return bundles
}
