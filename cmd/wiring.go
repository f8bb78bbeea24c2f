package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spigell/hh-screener/internal/ai/gemini"
	"github.com/spigell/hh-screener/internal/calendar"
	"github.com/spigell/hh-screener/internal/feedback"
	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/matching"
	"github.com/spigell/hh-screener/internal/model"
	"github.com/spigell/hh-screener/internal/parsing"
	"github.com/spigell/hh-screener/internal/pipeline"
	"github.com/spigell/hh-screener/internal/scheduling"
	"github.com/spigell/hh-screener/internal/screening"
	"github.com/spigell/hh-screener/internal/secrets"
	"github.com/spigell/hh-screener/internal/store"
	"github.com/spigell/hh-screener/internal/uniqueness"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	providerSimulated = "simulated"
	providerGemini    = "gemini"

	calendarStatic = "static"
	calendarHTTP   = "http"
)

// env is what every command works with.
type env struct {
	config       *Config
	logger       *zap.Logger
	store        store.Store
	orchestrator *pipeline.Orchestrator
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("closing the store", zap.Error(err))
	}
}

// setup builds the logger, the store and the orchestrator from the loaded config.
// Failures are fatal: no command can do anything useful without them.
func setup(ctx context.Context) *env {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting", zap.String("app", app), zap.String("version", version), zap.Any("config", redacted(config)))

	st, err := store.Open(ctx, config.Store, logger.Named("store"))
	if err != nil {
		logger.Fatal("opening the store", zap.Error(err), zap.String("backend", config.Store.Backend))
	}

	stages, err := buildStages(ctx, config, logger)
	if err != nil {
		st.Close()
		logger.Fatal("building pipeline stages", zap.Error(err))
	}

	orch, err := pipeline.New(st, stages, pipeline.Options{
		Retry:        config.Retry,
		StageTimeout: config.StageTimeout,
	}, logger.Named("pipeline"))
	if err != nil {
		st.Close()
		logger.Fatal("creating the orchestrator", zap.Error(err))
	}

	return &env{config: config, logger: logger, store: st, orchestrator: orch}
}

func buildStages(ctx context.Context, config *Config, logger *zap.Logger) (pipeline.Stages, error) {
	screener, err := newScreener(ctx, config.Screening, logger.Named("screening"))
	if err != nil {
		return pipeline.Stages{}, err
	}

	engine, err := matching.NewEngine(config.Matching, logger.Named("matching"))
	if err != nil {
		return pipeline.Stages{}, fmt.Errorf("matching config: %w", err)
	}

	cal, notifier, err := newCalendar(config.Scheduling, logger.Named("calendar"))
	if err != nil {
		return pipeline.Stages{}, err
	}

	return pipeline.Stages{
		Parsing:    parsing.NewHeuristic(logger.Named("parsing")),
		Uniqueness: uniqueness.NewVerifier(logger.Named("uniqueness")),
		Screening:  screener,
		Matching:   engine,
		Scheduling: scheduling.NewScheduler(cal, notifier, logger.Named("scheduling")),
		Feedback:   feedback.NewEvaluator(logger.Named("feedback")),
	}, nil
}

func newScreener(ctx context.Context, cfg ScreeningConfig, logger *zap.Logger) (pipeline.Stage[screening.Input, *model.ScreeningOutcome], error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", providerSimulated:
		return screening.NewSimulated(logger, cfg.SimulatedDelay), nil
	case providerGemini:
	default:
		return nil, fmt.Errorf("unsupported screening provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (or set screening.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(
		zap.String("provider", providerGemini),
		zap.String("model", cfg.Gemini.Model),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewScreener(generator, genLogger, cfg.Gemini.MaxLogLength), nil
}

func newCalendar(cfg SchedulingConfig, logger *zap.Logger) (calendar.Calendar, calendar.Notifier, error) {
	switch strings.TrimSpace(strings.ToLower(cfg.Calendar)) {
	case "", calendarStatic:
		return calendar.NewStatic(cfg.StaticSlots), calendar.NewLogNotifier(logger), nil
	case calendarHTTP:
	default:
		return nil, nil, fmt.Errorf("unsupported calendar: %s", cfg.Calendar)
	}

	if strings.TrimSpace(cfg.HTTP.BaseURL) == "" {
		return nil, nil, fmt.Errorf("http calendar requires scheduling.http.base-url")
	}

	token, err := secrets.Load(secrets.Source{
		Name: "calendar token",
		File: cfg.HTTP.TokenFile,
		Env:  "CALENDAR_TOKEN",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (or set scheduling.http.token-file or CALENDAR_TOKEN_FILE)", err)
	}

	client := calendar.NewClient(logger, cfg.HTTP.BaseURL, token)
	if cfg.HTTP.UserAgent != "" {
		client.UserAgent = cfg.HTTP.UserAgent
	}

	return client, client, nil
}

// redacted returns a copy of the config that is safe to log.
func redacted(config *Config) Config {
	out := *config
	if out.Store.DSN != "" {
		out.Store.DSN = "<redacted>"
	}
	if out.Screening.Gemini.APIKey != "" {
		out.Screening.Gemini.APIKey = "<redacted>"
	}
	return out
}
