package handler

import (
	"context"
	"errors"
	"log/slog"

	"dining-concierge/internal/domain"
)

// DialogUseCase decides the next dialog step for one Lex turn.
type DialogUseCase interface {
	Handle(ctx context.Context, turn domain.Turn) (domain.Action, error)
}

// Handler adapts Lex V2 code hook invocations to the dialog use case.
type Handler struct {
	dialog DialogUseCase
	logger *slog.Logger
}

func NewHandler(dialog DialogUseCase) (*Handler, error) {
	if dialog == nil {
		return nil, errors.New("handler: dialog use case must not be nil")
	}
	return &Handler{dialog: dialog, logger: slog.Default()}, nil
}

// WithLogger replaces the default logger.
func (h *Handler) WithLogger(logger *slog.Logger) *Handler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// Handle returns an error only for turns the bot is not built to serve; Lex
// then reports the failure to the user itself.
func (h *Handler) Handle(ctx context.Context, event LexEvent) (LexResponse, error) {
	turn := toTurn(event)
	h.logger.InfoContext(ctx, "lex turn received",
		"user_id", turn.UserID,
		"intent", turn.IntentName,
		"invocation_source", turn.InvocationSource,
		"confirmation_state", turn.ConfirmationState,
	)

	action, err := h.dialog.Handle(ctx, turn)
	if err != nil {
		h.logger.ErrorContext(ctx, "dialog turn failed", "user_id", turn.UserID, "intent", turn.IntentName, "err", err)
		return LexResponse{}, err
	}

	h.logger.InfoContext(ctx, "lex turn answered",
		"user_id", turn.UserID,
		"action", action.Type,
		"slot_to_elicit", action.SlotToElicit,
	)
	return toResponse(action, event.SessionState.Intent.Slots), nil
}
