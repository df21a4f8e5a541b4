package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dining-concierge/internal/domain"
	"dining-concierge/internal/validation"
)

const (
	msgGreeting         = "Hi there, how can I help you today?"
	msgThankYou         = "You're welcome!"
	msgRepeatDeclined   = "Alright, let me know if you'd like to start a new search."
	msgNoPreviousSearch = "I couldn't find your previous search. Let me know what you'd like to eat and I'll start a new one."
)

type SessionStore interface {
	GetSession(ctx context.Context, userID string) (domain.SessionRecord, bool, error)
	PutSession(ctx context.Context, rec domain.SessionRecord) error
}

type RequestEnqueuer interface {
	Enqueue(ctx context.Context, req domain.DiningRequest) (string, error)
}

type SlotValidator interface {
	Validate(slots domain.Slots) validation.Result
}

// route keys the dialog state table. An empty confirmation matches every
// confirmation state of the intent.
type route struct {
	intent       domain.IntentName
	confirmation domain.ConfirmationState
}

type turnHandler func(ctx context.Context, turn domain.Turn) domain.Action

// DialogService decides the next dialog action for a recognizer turn.
type DialogService struct {
	sessions  SessionStore
	queue     RequestEnqueuer
	validator SlotValidator
	logger    *slog.Logger
	now       func() time.Time
	routes    map[route]turnHandler
}

type DialogOption func(*DialogService)

func WithDialogLogger(logger *slog.Logger) DialogOption {
	return func(s *DialogService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithDialogClock(now func() time.Time) DialogOption {
	return func(s *DialogService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewDialogService(sessions SessionStore, queue RequestEnqueuer, validator SlotValidator, opts ...DialogOption) (*DialogService, error) {
	if sessions == nil {
		return nil, errors.New("usecase: session store must not be nil")
	}
	if queue == nil {
		return nil, errors.New("usecase: request queue must not be nil")
	}
	if validator == nil {
		return nil, errors.New("usecase: slot validator must not be nil")
	}
	s := &DialogService{
		sessions:  sessions,
		queue:     queue,
		validator: validator,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes = map[route]turnHandler{
		{domain.IntentGreeting, domain.ConfirmationNone}:      s.greet,
		{domain.IntentGreeting, domain.ConfirmationConfirmed}: s.repeatLastRequest,
		{domain.IntentGreeting, domain.ConfirmationDenied}:    s.declineRepeat,
		{domain.IntentThankYou, ""}:                           s.thankYou,
		{domain.IntentDiningSuggestions, ""}:                  s.diningSuggestions,
	}
	return s, nil
}

// Handle runs one turn through the state table. The only error it returns is
// an unsupported intent, which the caller must treat as fatal.
func (s *DialogService) Handle(ctx context.Context, turn domain.Turn) (domain.Action, error) {
	confirmation := turn.ConfirmationState
	if confirmation == "" {
		confirmation = domain.ConfirmationNone
	}
	h, ok := s.routes[route{turn.IntentName, confirmation}]
	if !ok {
		h, ok = s.routes[route{turn.IntentName, ""}]
	}
	if !ok {
		return domain.Action{}, newError(ErrorUnsupportedIntent, "intent_not_supported",
			fmt.Errorf("intent %q with confirmation %q", turn.IntentName, confirmation))
	}
	return h(ctx, turn), nil
}

func (s *DialogService) greet(ctx context.Context, turn domain.Turn) domain.Action {
	rec, found, err := s.sessions.GetSession(ctx, turn.UserID)
	if err != nil {
		s.logger.ErrorContext(ctx, "session lookup failed, greeting as new user", "user_id", turn.UserID, "err", err)
	}
	if err != nil || !found {
		return Close(turn.SessionAttributes, turn.IntentName, domain.StateFulfilled, msgGreeting)
	}
	s.logger.InfoContext(ctx, "returning user", "user_id", turn.UserID, "cuisine", rec.LastCuisine, "location", rec.LastLocation)
	return ConfirmIntent(turn.SessionAttributes, turn.IntentName, welcomeBackMessage(rec))
}

func (s *DialogService) repeatLastRequest(ctx context.Context, turn domain.Turn) domain.Action {
	rec, found, err := s.sessions.GetSession(ctx, turn.UserID)
	if err != nil {
		s.logger.ErrorContext(ctx, "session lookup failed on repeat", "user_id", turn.UserID, "err", err)
	}
	if err != nil || !found {
		return Close(turn.SessionAttributes, turn.IntentName, domain.StateFulfilled, msgNoPreviousSearch)
	}

	req := rec.DiningRequest()
	req.RequestID = newRequestID()
	s.enqueue(ctx, turn.UserID, req)

	return Close(turn.SessionAttributes, turn.IntentName, domain.StateFulfilled, repeatConfirmationMessage(req))
}

func (s *DialogService) declineRepeat(_ context.Context, turn domain.Turn) domain.Action {
	return Close(turn.SessionAttributes, turn.IntentName, domain.StateFulfilled, msgRepeatDeclined)
}

func (s *DialogService) thankYou(_ context.Context, turn domain.Turn) domain.Action {
	return Close(turn.SessionAttributes, turn.IntentName, domain.StateFulfilled, msgThankYou)
}

func (s *DialogService) diningSuggestions(ctx context.Context, turn domain.Turn) domain.Action {
	res := s.validator.Validate(turn.Slots)
	if !res.Valid {
		return ElicitSlot(turn.SessionAttributes, turn.IntentName, turn.Slots, res.ViolatedSlot, res.Message)
	}
	if turn.InvocationSource != domain.SourceFulfillmentCodeHook {
		return Delegate(turn.SessionAttributes, turn.IntentName, turn.Slots)
	}

	req := domain.DiningRequestFromSlots(turn.Slots)
	req.RequestID = newRequestID()
	s.enqueue(ctx, turn.UserID, req)

	rec := domain.NewSessionRecord(turn.UserID, req, s.now())
	if err := s.sessions.PutSession(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "store session failed", "user_id", turn.UserID, "request_id", req.RequestID, "err", err)
	} else {
		s.logger.InfoContext(ctx, "stored last search", "user_id", turn.UserID, "request_id", req.RequestID)
	}

	return Close(turn.SessionAttributes, turn.IntentName, domain.StateFulfilled, requestReceivedMessage(req))
}

// enqueue failures are logged only; the user still gets a confirmation.
func (s *DialogService) enqueue(ctx context.Context, userID string, req domain.DiningRequest) {
	msgID, err := s.queue.Enqueue(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "enqueue dining request failed", "user_id", userID, "request_id", req.RequestID, "err", err)
		return
	}
	s.logger.InfoContext(ctx, "dining request queued",
		"user_id", userID,
		"request_id", req.RequestID,
		"message_id", msgID,
		"cuisine", req.Cuisine,
		"dining_date", req.DiningDate,
	)
}

func welcomeBackMessage(rec domain.SessionRecord) string {
	return fmt.Sprintf("Welcome back! Last time, you searched for %s restaurants in %s. "+
		"Would you like a recommendation with the same keyword?",
		orDefault(rec.LastCuisine, "some cuisine"), orDefault(rec.LastLocation, "some location"))
}

func repeatConfirmationMessage(req domain.DiningRequest) string {
	return fmt.Sprintf("Sure! Another email for %s in %s on %s at %s will be sent to %s.",
		req.Cuisine, req.Location, req.DiningDate, req.DiningTime, req.Email)
}

func requestReceivedMessage(req domain.DiningRequest) string {
	return fmt.Sprintf("Your dining suggestion request for %s people at a %s restaurant in %s on %s at %s "+
		"has been received. We'll send recommendations to %s shortly.",
		req.NumberOfPeople, req.Cuisine, req.Location, req.DiningDate, req.DiningTime, req.Email)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

var newRequestID = func() string {
	return uuid.NewString()
}
