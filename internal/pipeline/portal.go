package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/portal-planner/internal/config"
	"github.com/jonathan/portal-planner/internal/eligibility"
	"github.com/jonathan/portal-planner/internal/fetch"
	"github.com/jonathan/portal-planner/internal/logging"
	"github.com/jonathan/portal-planner/internal/observability"
	"github.com/jonathan/portal-planner/internal/portal"
	"github.com/jonathan/portal-planner/internal/scraper"
	"github.com/jonathan/portal-planner/internal/types"
)

// StepLogin is the progress step reported while signing in.
const StepLogin = "login"

// PortalOptions configures a live aggregation against the portal.
type PortalOptions struct {
	Config     config.Config
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	OnProgress ProgressCallback
}

// AggregatePortal logs in with the given credentials and runs one aggregation over
// the resulting session.
func AggregatePortal(ctx context.Context, creds portal.Credentials, opts PortalOptions) (*types.Result, error) {
	runID := uuid.New()
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run_id", runID.String()))

	emit := func(message string) {
		if opts.OnProgress != nil {
			opts.OnProgress(ProgressEvent{Step: StepLogin, Message: message, RunID: runID.String()})
		}
	}

	emit("Processing request...")
	logger.Info("login started", zap.String("user", logging.Redact(creds.Username)))

	start := time.Now()
	session, err := portal.Login(ctx, creds, portal.Options{
		BaseURL: opts.Config.BaseURL,
		Fetch: &fetch.Options{
			Timeout:   opts.Config.FetchTimeout.Std(),
			UserAgent: fetch.DefaultUserAgent,
			Logger:    logger,
		},
		UseBrowser: opts.Config.UseBrowser,
		Logger:     logger,
	})
	opts.Metrics.ObserveFetch(StepLogin, time.Since(start))
	if err != nil {
		opts.Metrics.RecordAggregation(observability.OutcomeFailure, 0)
		return nil, fmt.Errorf("login failed: %w", err)
	}
	emit("Access granted")

	return Run(ctx, &AggregationContext{
		RunID: runID,
		Scraper: scraper.New(session, scraper.Options{
			MaxConcurrency: opts.Config.MaxConcurrency,
			Logger:         logger,
		}),
		Logger:         opts.Logger,
		Metrics:        opts.Metrics,
		ResolveOptions: eligibility.Options{WithdrawnGrades: opts.Config.WithdrawnGrades},
		OnProgress:     opts.OnProgress,
	})
}
