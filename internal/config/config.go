package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type WorkerMode string

const (
	ModeLambda WorkerMode = "lambda"
	ModeDaemon WorkerMode = "daemon"
)

// Common holds settings shared by both binaries.
type Common struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type Orchestrator struct {
	Common

	SessionTable string `env:"USERSTATE_TABLE" envDefault:"UserState"`
	QueueURL     string `env:"REQUEST_QUEUE_URL,required"`

	// Dates are compared against "today" in this zone.
	TimeZone           string   `env:"DINING_TIMEZONE" envDefault:"UTC"`
	SupportedLocations []string `env:"SUPPORTED_LOCATIONS" envSeparator:"," envDefault:"Manhattan"`
	SupportedCuisines  []string `env:"SUPPORTED_CUISINES" envSeparator:"," envDefault:"Chinese,Japanese,Thai"`
}

type Worker struct {
	Common

	QueueURL     string `env:"REQUEST_QUEUE_URL,required"`
	CatalogTable string `env:"CATALOG_TABLE" envDefault:"yelp-restaurants"`
	SourceEmail  string `env:"SOURCE_EMAIL,required"`

	SearchEndpoint   string `env:"SEARCH_ENDPOINT,required"`
	SearchIndex      string `env:"SEARCH_INDEX" envDefault:"restaurants"`
	SearchMaxResults int    `env:"SEARCH_MAX_RESULTS" envDefault:"1000"`
	// Static credentials are for local runs; deployed workers read them from SSM.
	SearchUsername string `env:"SEARCH_USERNAME"`
	SearchPassword string `env:"SEARCH_PASSWORD"`
	ParamPrefix    string `env:"PARAM_PREFIX"`

	BatchSize         int           `env:"BATCH_SIZE" envDefault:"5"`
	WaitTime          time.Duration `env:"WAIT_TIME" envDefault:"0s"`
	VisibilityTimeout time.Duration `env:"VISIBILITY_TIMEOUT" envDefault:"30s"`
	MaxSuggestions    int           `env:"MAX_SUGGESTIONS" envDefault:"3"`
	RandomSeed        uint64        `env:"RANDOM_SEED"`

	DeadLetterQueueURL  string        `env:"DEAD_LETTER_QUEUE_URL"`
	DispatchLedgerTable string        `env:"DISPATCH_LEDGER_TABLE"`
	DispatchLedgerTTL   time.Duration `env:"DISPATCH_LEDGER_TTL" envDefault:"168h"`

	Mode     WorkerMode `env:"WORKER_MODE" envDefault:"lambda"`
	Schedule string     `env:"WORKER_SCHEDULE" envDefault:"@every 1m"`
	Pollers  int        `env:"WORKER_POLLERS" envDefault:"1"`
}

// LoadOrchestrator reads the orchestrator settings. environ overrides the
// process environment when non-nil.
func LoadOrchestrator(environ map[string]string) (*Orchestrator, error) {
	cfg := &Orchestrator{}
	if err := parse(cfg, environ); err != nil {
		return nil, err
	}
	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		return nil, fmt.Errorf("config: DINING_TIMEZONE: %w", err)
	}
	cfg.SupportedLocations = compact(cfg.SupportedLocations)
	cfg.SupportedCuisines = compact(cfg.SupportedCuisines)
	if len(cfg.SupportedLocations) == 0 || len(cfg.SupportedCuisines) == 0 {
		return nil, errors.New("config: supported locations and cuisines must not be empty")
	}
	return cfg, nil
}

// Location returns the zone named by TimeZone. LoadOrchestrator has already
// checked that it resolves.
func (o *Orchestrator) Location() *time.Location {
	loc, err := time.LoadLocation(o.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func LoadWorker(environ map[string]string) (*Worker, error) {
	cfg := &Worker{}
	if err := parse(cfg, environ); err != nil {
		return nil, err
	}
	switch cfg.Mode {
	case ModeLambda, ModeDaemon:
	default:
		return nil, fmt.Errorf("config: WORKER_MODE must be %q or %q, got %q", ModeLambda, ModeDaemon, cfg.Mode)
	}
	if cfg.Pollers < 1 {
		return nil, errors.New("config: WORKER_POLLERS must be at least 1")
	}
	if cfg.SearchUsername == "" && strings.TrimSpace(cfg.ParamPrefix) == "" {
		return nil, errors.New("config: PARAM_PREFIX is required when SEARCH_USERNAME is not set")
	}
	return cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Common) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parse(cfg any, environ map[string]string) error {
	var opts env.Options
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.Parse(cfg, opts); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
