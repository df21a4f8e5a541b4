package handler

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"golang.org/x/sync/errgroup"

	"dining-concierge/internal/usecase"
)

type Poller interface {
	Poll(ctx context.Context) (usecase.PollSummary, error)
}

// WorkerHandler runs one fulfillment round per trigger, spread over a fixed
// number of concurrent pollers.
type WorkerHandler struct {
	poller  Poller
	pollers int
	logger  *slog.Logger
}

func NewWorkerHandler(poller Poller, pollers int) (*WorkerHandler, error) {
	if poller == nil {
		return nil, errors.New("handler: poller must not be nil")
	}
	if pollers < 1 {
		pollers = 1
	}
	return &WorkerHandler{poller: poller, pollers: pollers, logger: slog.Default()}, nil
}

func (h *WorkerHandler) WithLogger(logger *slog.Logger) *WorkerHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// Handle is the scheduled-event entry point.
func (h *WorkerHandler) Handle(ctx context.Context, event events.CloudWatchEvent) (usecase.PollSummary, error) {
	h.logger.InfoContext(ctx, "fulfillment round started", "trigger", event.DetailType, "event_id", event.ID, "pollers", h.pollers)
	return h.Run(ctx)
}

// Run polls once per poller and merges the summaries. Summaries from pollers
// that succeeded are kept even when another one failed.
func (h *WorkerHandler) Run(ctx context.Context) (usecase.PollSummary, error) {
	var (
		mu    sync.Mutex
		total usecase.PollSummary
		g     errgroup.Group
	)
	for i := 0; i < h.pollers; i++ {
		g.Go(func() error {
			summary, err := h.poller.Poll(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			total.Merge(summary)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		h.logger.ErrorContext(ctx, "fulfillment round failed", "err", err)
	}
	h.logger.InfoContext(ctx, "fulfillment round finished",
		"received", total.Received,
		"outcomes", total.Outcomes,
		"delete_failures", total.DeleteFailures,
	)
	return total, err
}
