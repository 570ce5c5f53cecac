// Package pipeline orchestrates one aggregation run: it fetches every record source
// concurrently, then classifies, resolves and normalizes them into a Result.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/portal-planner/internal/eligibility"
	"github.com/jonathan/portal-planner/internal/ledger"
	"github.com/jonathan/portal-planner/internal/observability"
	"github.com/jonathan/portal-planner/internal/schedule"
	"github.com/jonathan/portal-planner/internal/types"
)

// Record sources, used as progress steps and metric labels.
const (
	StepSemesters = "semesters"
	StepCatalog   = "catalog"
	StepLedger    = "ledger"
	StepSchedule  = "schedule"
	StepResolve   = "resolve"
)

// RecordScraper fetches the raw academic records of one authenticated student.
// Implementations must be safe for concurrent use.
type RecordScraper interface {
	ListSemesterReferences(ctx context.Context) (refs []types.SemesterRef, active string, user string, err error)
	FetchCatalog(ctx context.Context) (*types.Catalog, error)
	FetchGradeLedger(ctx context.Context) ([]types.LedgerRow, error)
	FetchSemesterSchedule(ctx context.Context, ref types.SemesterRef) (map[string]types.SemesterRoutine, error)
}

// ProgressEvent represents a progress update during an aggregation run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

// ProgressCallback is called when aggregation progress occurs
type ProgressCallback func(event ProgressEvent)

// AggregationContext carries everything one run needs.
type AggregationContext struct {
	RunID          uuid.UUID // generated when nil
	Scraper        RecordScraper
	Logger         *zap.Logger
	Metrics        *observability.Metrics // optional
	ResolveOptions eligibility.Options
	OnProgress     ProgressCallback // optional; calls are serialized
}

// runState is the per-run bookkeeping shared by the fan-out goroutines.
type runState struct {
	actx   *AggregationContext
	runID  string
	logger *zap.Logger
	mu     sync.Mutex // serializes OnProgress
}

func (s *runState) emitProgress(step, message string) {
	if s.actx.OnProgress == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actx.OnProgress(ProgressEvent{Step: step, Message: message, RunID: s.runID})
}

// timed runs fn and records its duration under source.
func (s *runState) timed(source string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	s.actx.Metrics.ObserveFetch(source, elapsed)
	if err != nil {
		s.logger.Warn("fetch failed", zap.String("source", source), zap.Duration("elapsed", elapsed), zap.Error(err))
	} else {
		s.logger.Debug("fetch complete", zap.String("source", source), zap.Duration("elapsed", elapsed))
	}
	return err
}

// Run performs one aggregation. Any sub-fetch failure fails the whole run and
// cancels the remaining fetches; no partial result is returned.
func Run(ctx context.Context, actx *AggregationContext) (*types.Result, error) {
	if actx == nil || actx.Scraper == nil {
		return nil, fmt.Errorf("aggregation context has no scraper")
	}
	runID := actx.RunID
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	logger := actx.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	state := &runState{
		actx:   actx,
		runID:  runID.String(),
		logger: logger.With(zap.String("run_id", runID.String())),
	}

	start := time.Now()
	result, err := run(ctx, state)
	if err != nil {
		actx.Metrics.RecordAggregation(observability.OutcomeFailure, 0)
		state.logger.Warn("aggregation failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return nil, err
	}

	actx.Metrics.RecordAggregation(observability.OutcomeSuccess, len(result.UnlockedCourses))
	state.logger.Info("aggregation complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("catalog", result.CurriculumCourses.Len()),
		zap.Int("completed", len(result.CompletedCourses)),
		zap.Int("unlocked", len(result.UnlockedCourses)),
		zap.Int("semesters", len(result.SemesterClassRoutine.Order)),
	)
	return result, nil
}

func run(ctx context.Context, state *runState) (*types.Result, error) {
	scraper := state.actx.Scraper

	var (
		refs   []types.SemesterRef
		active string
		user   string
	)
	state.emitProgress(StepSemesters, "Reading semester list...")
	err := state.timed(StepSemesters, func() error {
		var err error
		refs, active, user, err = scraper.ListSemesterReferences(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list semesters: %w", err)
	}

	// Each goroutine writes only its own variable or slice index.
	var (
		catalog   *types.Catalog
		rows      []types.LedgerRow
		schedules = make([]map[string]types.SemesterRoutine, len(refs))
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		state.emitProgress(StepCatalog, "Getting curriculum data...")
		err := state.timed(StepCatalog, func() error {
			var err error
			catalog, err = scraper.FetchCatalog(gCtx)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to fetch catalog: %w", err)
		}
		state.emitProgress(StepCatalog, "Completed getting curriculum data")
		return nil
	})

	g.Go(func() error {
		state.emitProgress(StepLedger, "Getting completed courses...")
		err := state.timed(StepLedger, func() error {
			var err error
			rows, err = scraper.FetchGradeLedger(gCtx)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to fetch grade ledger: %w", err)
		}
		state.emitProgress(StepLedger, "Completed getting completed courses")
		return nil
	})

	for i, ref := range refs {
		g.Go(func() error {
			err := state.timed(StepSchedule, func() error {
				var err error
				schedules[i], err = scraper.FetchSemesterSchedule(gCtx, ref)
				return err
			})
			if err != nil {
				return fmt.Errorf("failed to fetch schedule for %q: %w", ref.Label, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	state.emitProgress(StepSchedule, fmt.Sprintf("Completed processing %d semesters", len(refs)))

	state.emitProgress(StepResolve, "Processing all data...")
	return assemble(catalog, rows, active, user, schedules, state.actx.ResolveOptions)
}

// assemble turns fetched records into a Result.
func assemble(
	catalog *types.Catalog,
	rows []types.LedgerRow,
	active, user string,
	schedules []map[string]types.SemesterRoutine,
	opts eligibility.Options,
) (*types.Result, error) {
	partition := ledger.Classify(rows, active)
	resolution, err := eligibility.Resolve(catalog, partition, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve eligibility: %w", err)
	}

	return &types.Result{
		SemesterClassRoutine: schedule.Normalize(schedules),
		UnlockedCourses:      resolution.Unlocked,
		CompletedCourses:     resolution.Completed,
		PreregisteredCourses: partition.PreRegistered,
		CurrentSemester:      active,
		User:                 user,
		CurriculumCourses:    catalog,
		UnlockedOrder:        resolution.UnlockedOrder,
	}, nil
}

// Replay recomputes a result from a saved snapshot without touching the network.
func Replay(snapshot *types.Snapshot, opts eligibility.Options) (*types.Result, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	var schedules []map[string]types.SemesterRoutine
	if len(snapshot.Schedules) > 0 {
		schedules = append(schedules, snapshot.Schedules)
	}
	return assemble(
		types.CatalogFromRecords(snapshot.Catalog),
		snapshot.Ledger,
		snapshot.CurrentSemester,
		snapshot.User,
		schedules,
		opts,
	)
}
