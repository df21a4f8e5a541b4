package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"dining-concierge/internal/domain"
)

const (
	defaultBatchSize         = 5
	defaultVisibilityTimeout = 30 * time.Second
	defaultMaxSuggestions    = 3
)

type RequestReceiver interface {
	Receive(ctx context.Context, opts domain.ReceiveOptions) ([]domain.QueueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type DeadLetterer interface {
	Forward(ctx context.Context, body, reason string) error
}

type CatalogSearcher interface {
	FindIDsByCuisine(ctx context.Context, cuisine string) ([]string, error)
}

type CatalogReader interface {
	GetRestaurant(ctx context.Context, id string) (domain.Restaurant, bool, error)
}

type Notifier interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

// DispatchLedger records which requests already produced a notification.
type DispatchLedger interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Outcome is what happened to a single queue message.
type Outcome string

const (
	OutcomeDispatched     Outcome = "dispatched"
	OutcomeDispatchFailed Outcome = "dispatch_failed"
	OutcomeMalformed      Outcome = "malformed"
	OutcomeIncomplete     Outcome = "incomplete"
	OutcomeSearchFailed   Outcome = "search_failed"
	OutcomeNoCandidates   Outcome = "no_candidates"
	OutcomeDuplicate      Outcome = "duplicate"
)

// PollSummary reports one receive-and-process round.
type PollSummary struct {
	Received       int             `json:"received"`
	Outcomes       map[Outcome]int `json:"outcomes,omitempty"`
	DeleteFailures int             `json:"delete_failures,omitempty"`
}

func (p *PollSummary) record(o Outcome) {
	if p.Outcomes == nil {
		p.Outcomes = make(map[Outcome]int)
	}
	p.Outcomes[o]++
}

// Merge folds other into p.
func (p *PollSummary) Merge(other PollSummary) {
	p.Received += other.Received
	p.DeleteFailures += other.DeleteFailures
	for o, n := range other.Outcomes {
		if p.Outcomes == nil {
			p.Outcomes = make(map[Outcome]int)
		}
		p.Outcomes[o] += n
	}
}

type FulfillmentConfig struct {
	BatchSize         int
	WaitTime          time.Duration
	VisibilityTimeout time.Duration
	MaxSuggestions    int
}

// FulfillmentService turns queued dining requests into e-mailed suggestions.
// Poll may be called from several goroutines; the queue's visibility timeout
// is what keeps them off each other's messages.
type FulfillmentService struct {
	queue    RequestReceiver
	search   CatalogSearcher
	catalog  CatalogReader
	notifier Notifier
	cfg      FulfillmentConfig

	deadLetter DeadLetterer
	ledger     DispatchLedger
	logger     *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

type FulfillmentOption func(*FulfillmentService)

// WithDeadLetter forwards payloads that could not be fulfilled before they are
// deleted from the request queue.
func WithDeadLetter(d DeadLetterer) FulfillmentOption {
	return func(s *FulfillmentService) {
		s.deadLetter = d
	}
}

// WithDispatchLedger suppresses a second notification for a request id that
// was already dispatched.
func WithDispatchLedger(l DispatchLedger) FulfillmentOption {
	return func(s *FulfillmentService) {
		s.ledger = l
	}
}

// WithRandom fixes the source used to sample candidates.
func WithRandom(r *rand.Rand) FulfillmentOption {
	return func(s *FulfillmentService) {
		if r != nil {
			s.rng = r
		}
	}
}

func WithFulfillmentLogger(logger *slog.Logger) FulfillmentOption {
	return func(s *FulfillmentService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewFulfillmentService(q RequestReceiver, search CatalogSearcher, catalog CatalogReader, notifier Notifier, cfg FulfillmentConfig, opts ...FulfillmentOption) (*FulfillmentService, error) {
	if q == nil {
		return nil, errors.New("usecase: request queue must not be nil")
	}
	if search == nil {
		return nil, errors.New("usecase: catalog searcher must not be nil")
	}
	if catalog == nil {
		return nil, errors.New("usecase: catalog reader must not be nil")
	}
	if notifier == nil {
		return nil, errors.New("usecase: notifier must not be nil")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.WaitTime < 0 {
		cfg.WaitTime = 0
	}
	if cfg.VisibilityTimeout <= 0 {
		cfg.VisibilityTimeout = defaultVisibilityTimeout
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = defaultMaxSuggestions
	}
	s := &FulfillmentService{
		queue:    q,
		search:   search,
		catalog:  catalog,
		notifier: notifier,
		cfg:      cfg,
		logger:   slog.Default(),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Poll receives one batch and processes every message in it. Each message is
// deleted after a single attempt whatever the outcome. Only a failed receive
// is returned as an error.
func (s *FulfillmentService) Poll(ctx context.Context) (PollSummary, error) {
	msgs, err := s.queue.Receive(ctx, domain.ReceiveOptions{
		MaxMessages:       s.cfg.BatchSize,
		WaitTime:          s.cfg.WaitTime,
		VisibilityTimeout: s.cfg.VisibilityTimeout,
	})
	if err != nil {
		return PollSummary{}, newError(ErrorUpstream, "queue_receive_error", err)
	}

	summary := PollSummary{Received: len(msgs)}
	if len(msgs) == 0 {
		s.logger.InfoContext(ctx, "no messages in request queue")
		return summary, nil
	}
	s.logger.InfoContext(ctx, "received dining requests", "count", len(msgs))

	for _, msg := range msgs {
		outcome := s.process(ctx, msg)
		summary.record(outcome)

		if err := s.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
			summary.DeleteFailures++
			s.logger.ErrorContext(ctx, "delete queue message failed", "message_id", msg.ID, "outcome", outcome, "err", err)
			continue
		}
		s.logger.InfoContext(ctx, "queue message deleted", "message_id", msg.ID, "outcome", outcome)
	}
	return summary, nil
}

func (s *FulfillmentService) process(ctx context.Context, msg domain.QueueMessage) Outcome {
	var req domain.DiningRequest
	if err := json.Unmarshal([]byte(msg.Body), &req); err != nil {
		s.logger.ErrorContext(ctx, "invalid JSON in message body", "message_id", msg.ID, "err", err)
		s.forward(ctx, msg, OutcomeMalformed)
		return OutcomeMalformed
	}
	log := s.logger.With("message_id", msg.ID, "request_id", req.RequestID)

	if strings.TrimSpace(req.Cuisine) == "" || strings.TrimSpace(req.Email) == "" {
		log.WarnContext(ctx, "missing cuisine or email in message")
		s.forward(ctx, msg, OutcomeIncomplete)
		return OutcomeIncomplete
	}

	ids, err := s.search.FindIDsByCuisine(ctx, req.Cuisine)
	if err != nil {
		log.ErrorContext(ctx, "catalog search failed", "cuisine", req.Cuisine, "err", err)
		s.forward(ctx, msg, OutcomeSearchFailed)
		return OutcomeSearchFailed
	}
	if len(ids) == 0 {
		log.InfoContext(ctx, "no restaurants found for cuisine", "cuisine", req.Cuisine)
		return OutcomeNoCandidates
	}

	restaurants := s.fetch(ctx, log, s.sample(ids))
	subject := suggestionsSubject(req)
	body := buildSuggestionsBody(req, restaurants)

	claimed := false
	if s.ledger != nil && req.RequestID != "" {
		first, err := s.ledger.Claim(ctx, req.RequestID)
		switch {
		case err != nil:
			log.ErrorContext(ctx, "dispatch ledger claim failed, sending anyway", "err", err)
		case !first:
			log.InfoContext(ctx, "request already dispatched, skipping")
			return OutcomeDuplicate
		default:
			claimed = true
		}
	}

	sesID, err := s.notifier.Send(ctx, req.Email, subject, body)
	if err != nil {
		log.ErrorContext(ctx, "send suggestions failed", "to", req.Email, "err", err)
		if claimed {
			if relErr := s.ledger.Release(ctx, req.RequestID); relErr != nil {
				log.ErrorContext(ctx, "dispatch ledger release failed", "err", relErr)
			}
		}
		s.forward(ctx, msg, OutcomeDispatchFailed)
		return OutcomeDispatchFailed
	}
	log.InfoContext(ctx, "suggestions sent", "to", req.Email, "notification_id", sesID, "suggestions", len(restaurants))
	return OutcomeDispatched
}

// sample picks up to MaxSuggestions distinct ids uniformly without replacement.
func (s *FulfillmentService) sample(ids []string) []string {
	ids = uniqueIDs(ids)
	k := min(s.cfg.MaxSuggestions, len(ids))

	s.rngMu.Lock()
	perm := s.rng.Perm(len(ids))
	s.rngMu.Unlock()

	out := make([]string, 0, k)
	for _, i := range perm[:k] {
		out = append(out, ids[i])
	}
	return out
}

// fetch skips records that are missing or could not be read.
func (s *FulfillmentService) fetch(ctx context.Context, log *slog.Logger, ids []string) []domain.Restaurant {
	out := make([]domain.Restaurant, 0, len(ids))
	for _, id := range ids {
		r, found, err := s.catalog.GetRestaurant(ctx, id)
		if err != nil {
			log.ErrorContext(ctx, "catalog read failed", "restaurant_id", id, "err", err)
			continue
		}
		if !found {
			log.WarnContext(ctx, "restaurant not in catalog", "restaurant_id", id)
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *FulfillmentService) forward(ctx context.Context, msg domain.QueueMessage, reason Outcome) {
	if s.deadLetter == nil {
		return
	}
	if err := s.deadLetter.Forward(ctx, msg.Body, string(reason)); err != nil {
		s.logger.ErrorContext(ctx, "dead-letter forward failed", "message_id", msg.ID, "reason", reason, "err", err)
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
