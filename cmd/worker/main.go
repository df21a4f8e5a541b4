package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsses "github.com/aws/aws-sdk-go-v2/service/ses"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"dining-concierge/handler"
	"dining-concierge/internal/config"
	"dining-concierge/internal/integrations/opensearch"
	"dining-concierge/internal/integrations/paramstore"
	"dining-concierge/internal/integrations/sesmail"
	"dining-concierge/internal/integrations/sqsqueue"
	"dining-concierge/internal/repository"
	"dining-concierge/internal/usecase"
)

func main() {
	ctx := context.Background()

	// A local .env only matters outside Lambda; a missing file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "err", err)
		os.Exit(1)
	}

	// ---- Configuration (read only here) ----
	cfg, err := config.LoadWorker(nil)
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// ---- AWS SDK config ----
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	sqsAPI := awssqs.NewFromConfig(awsCfg)
	dynamoAPI := awsdynamodb.NewFromConfig(awsCfg)

	queue, err := sqsqueue.New(sqsAPI, cfg.QueueURL)
	if err != nil {
		slog.Error("failed to create request queue client", "err", err)
		os.Exit(1)
	}
	catalog, err := repository.NewCatalogStore(dynamoAPI, cfg.CatalogTable)
	if err != nil {
		slog.Error("failed to create catalog store", "err", err)
		os.Exit(1)
	}
	notifier, err := sesmail.New(awsses.NewFromConfig(awsCfg), cfg.SourceEmail)
	if err != nil {
		slog.Error("failed to create SES client", "err", err)
		os.Exit(1)
	}
	search, err := newSearchClient(cfg, awsCfg)
	if err != nil {
		slog.Error("failed to create search client", "err", err)
		os.Exit(1)
	}

	opts := []usecase.FulfillmentOption{usecase.WithFulfillmentLogger(logger)}
	if cfg.RandomSeed != 0 {
		opts = append(opts, usecase.WithRandom(rand.New(rand.NewPCG(cfg.RandomSeed, cfg.RandomSeed))))
	}
	if cfg.DeadLetterQueueURL != "" {
		dlq, err := sqsqueue.New(sqsAPI, cfg.DeadLetterQueueURL)
		if err != nil {
			slog.Error("failed to create dead-letter queue client", "err", err)
			os.Exit(1)
		}
		opts = append(opts, usecase.WithDeadLetter(dlq))
	}
	if cfg.DispatchLedgerTable != "" {
		ledger, err := repository.NewDispatchLedger(dynamoAPI, cfg.DispatchLedgerTable, cfg.DispatchLedgerTTL)
		if err != nil {
			slog.Error("failed to create dispatch ledger", "err", err)
			os.Exit(1)
		}
		opts = append(opts, usecase.WithDispatchLedger(ledger))
	}

	fulfillment, err := usecase.NewFulfillmentService(queue, search, catalog, notifier, usecase.FulfillmentConfig{
		BatchSize:         cfg.BatchSize,
		WaitTime:          cfg.WaitTime,
		VisibilityTimeout: cfg.VisibilityTimeout,
		MaxSuggestions:    cfg.MaxSuggestions,
	}, opts...)
	if err != nil {
		slog.Error("failed to create fulfillment service", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewWorkerHandler(fulfillment, cfg.Pollers)
	if err != nil {
		slog.Error("failed to create worker handler", "err", err)
		os.Exit(1)
	}
	h.WithLogger(logger)

	if cfg.Mode == config.ModeLambda {
		lambda.Start(h.Handle)
		return
	}
	if err := runDaemon(h, cfg.Schedule, logger); err != nil {
		slog.Error("worker daemon stopped", "err", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Worker) *slog.Logger {
	if cfg.Mode == config.ModeLambda {
		return lambdacontext.NewLogger()
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

func newSearchClient(cfg *config.Worker, awsCfg aws.Config) (*opensearch.Client, error) {
	opts := []opensearch.Option{opensearch.WithMaxResults(cfg.SearchMaxResults)}
	if cfg.SearchUsername != "" {
		opts = append(opts, opensearch.WithCredentials(cfg.SearchUsername, cfg.SearchPassword))
	} else {
		ps, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			return nil, err
		}
		opts = append(opts, opensearch.WithParamStore(ps, cfg.ParamPrefix))
	}
	return opensearch.NewClient(cfg.SearchEndpoint, cfg.SearchIndex, opts...)
}

// runDaemon triggers a round on schedule until SIGINT or SIGTERM. A round
// still running when the next tick fires is not overlapped.
func runDaemon(h *handler.WorkerHandler, schedule string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, func() {
		_, _ = h.Run(ctx)
	}); err != nil {
		return err
	}

	logger.Info("worker daemon started", "schedule", schedule)
	c.Start()
	<-ctx.Done()

	logger.Info("worker daemon shutting down")
	<-c.Stop().Done()
	return nil
}
