package main

import (
	"context"
	"log/slog"
	"os"
	_ "time/tzdata"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"

	"dining-concierge/handler"
	"dining-concierge/internal/config"
	"dining-concierge/internal/integrations/sqsqueue"
	"dining-concierge/internal/repository"
	"dining-concierge/internal/usecase"
	"dining-concierge/internal/validation"
)

func main() {
	ctx := context.Background()

	logger := lambdacontext.NewLogger()
	slog.SetDefault(logger)

	// ---- Configuration (read only here) ----
	cfg, err := config.LoadOrchestrator(nil)
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	// ---- AWS SDK config ----
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	sessions, err := repository.NewSessionStore(awsdynamodb.NewFromConfig(awsCfg), cfg.SessionTable)
	if err != nil {
		slog.Error("failed to create session store", "err", err)
		os.Exit(1)
	}
	queue, err := sqsqueue.New(awssqs.NewFromConfig(awsCfg), cfg.QueueURL)
	if err != nil {
		slog.Error("failed to create request queue client", "err", err)
		os.Exit(1)
	}

	validator := validation.New(
		validation.WithLocations(cfg.SupportedLocations...),
		validation.WithCuisines(cfg.SupportedCuisines...),
		validation.WithLocation(cfg.Location()),
	)

	// ---- Handler ----
	dialog, err := usecase.NewDialogService(sessions, queue, validator, usecase.WithDialogLogger(logger))
	if err != nil {
		slog.Error("failed to create dialog service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(dialog)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.WithLogger(logger).Handle)
}
