package usecase

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/tennis-reminder/internal/domain/match"
	"github.com/riskibarqy/tennis-reminder/internal/domain/matchday"
	"github.com/riskibarqy/tennis-reminder/internal/domain/scoreboard"
	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
)

const (
	TriggerOnDemand  = "on_demand"
	TriggerScheduled = "scheduled"
)

// SourceResult is the outcome of fetching one source. Exactly one of
// Document and Err is meaningful.
type SourceResult struct {
	Source   string
	Document scoreboard.Document
	Err      error
	Duration time.Duration
}

type MatchdayResult struct {
	Matches      []match.Match
	Chunks       []string
	SourceErrors []SourceResult
	// Empty is true when Chunks holds only the no-matches notice.
	Empty bool
	// Day is the reference-zone date the result was computed for.
	Day time.Time
}

type MatchdayConfig struct {
	Favorites []string
	Location  *time.Location
}

// MatchdayObserver receives pipeline measurements.
type MatchdayObserver interface {
	ObservePipeline(trigger string, took time.Duration, matches int)
	ObserveFetch(source string, took time.Duration, err error)
}

type MatchdayService struct {
	providers []scoreboard.Provider
	favorites []string
	location  *time.Location
	logger    *logging.Logger
	observer  MatchdayObserver
	now       func() time.Time
}

type MatchdayOption func(*MatchdayService)

func WithMatchdayObserver(observer MatchdayObserver) MatchdayOption {
	return func(s *MatchdayService) {
		s.observer = observer
	}
}

func WithMatchdayClock(now func() time.Time) MatchdayOption {
	return func(s *MatchdayService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMatchdayService(providers []scoreboard.Provider, cfg MatchdayConfig, logger *logging.Logger, opts ...MatchdayOption) *MatchdayService {
	if logger == nil {
		logger = logging.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	s := &MatchdayService{
		providers: providers,
		favorites: append([]string(nil), cfg.Favorites...),
		location:  loc,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MatchdayService) Location() *time.Location {
	return s.location
}

// Today runs the whole pipeline. Source failures are logged and reported in
// SourceErrors; the surviving sources still produce a result. The only
// error returned is the context's.
func (s *MatchdayService) Today(ctx context.Context, trigger string) (MatchdayResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchdayService.Today")
	defer span.End()

	startedAt := s.now()
	sources := s.FetchAll(ctx)
	if err := ctx.Err(); err != nil {
		return MatchdayResult{}, err
	}

	docs := make([]scoreboard.Document, 0, len(sources))
	result := MatchdayResult{SourceErrors: make([]SourceResult, 0)}
	for _, src := range sources {
		if src.Err != nil {
			s.logger.WarnContext(ctx, "scoreboard source failed",
				"source", src.Source,
				"duration_ms", src.Duration.Milliseconds(),
				"error", src.Err,
			)
			result.SourceErrors = append(result.SourceErrors, src)
			continue
		}
		docs = append(docs, src.Document)
	}

	now := s.now()
	result.Day = now.In(s.location)
	result.Matches = matchday.SelectToday(docs, s.favorites, s.location, now)
	result.Chunks = matchday.Render(result.Matches, s.location)
	result.Empty = len(result.Matches) == 0

	span.SetAttributes(
		attribute.String("matchday.trigger", trigger),
		attribute.Int("matchday.sources", len(sources)),
		attribute.Int("matchday.source_errors", len(result.SourceErrors)),
		attribute.Int("matchday.matches", len(result.Matches)),
	)
	if s.observer != nil {
		s.observer.ObservePipeline(trigger, s.now().Sub(startedAt), len(result.Matches))
	}
	s.logger.InfoContext(ctx, "matchday computed",
		"trigger", trigger,
		"sources", len(sources),
		"source_errors", len(result.SourceErrors),
		"matches", len(result.Matches),
		"chunks", len(result.Chunks),
	)

	return result, nil
}

// FetchAll queries every provider concurrently. Results keep provider order
// and a failing or panicking provider only affects its own row.
func (s *MatchdayService) FetchAll(ctx context.Context) []SourceResult {
	if len(s.providers) == 0 {
		return []SourceResult{}
	}

	type indexed struct {
		index int
		row   SourceResult
	}

	p := pool.NewWithResults[indexed]().WithMaxGoroutines(len(s.providers))
	for i, provider := range s.providers {
		p.Go(func() indexed {
			return indexed{index: i, row: s.fetchOne(ctx, provider)}
		})
	}
	rows := p.Wait()

	sort.Slice(rows, func(i, j int) bool { return rows[i].index < rows[j].index })
	out := make([]SourceResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.row)
	}
	return out
}

func (s *MatchdayService) fetchOne(ctx context.Context, provider scoreboard.Provider) (row SourceResult) {
	row.Source = provider.Source()
	startedAt := s.now()
	defer func() {
		if rec := recover(); rec != nil {
			row.Err = fmt.Errorf("%w: source %s panicked: %v", ErrDependencyUnavailable, row.Source, rec)
			s.logger.ErrorContext(ctx, "scoreboard source panicked", "source", row.Source, "stack", string(debug.Stack()))
		}
		row.Duration = s.now().Sub(startedAt)
		if s.observer != nil {
			s.observer.ObserveFetch(row.Source, row.Duration, row.Err)
		}
	}()

	doc, err := provider.FetchScoreboard(ctx)
	if err != nil {
		row.Err = err
		return row
	}
	if doc.Source == "" {
		doc.Source = row.Source
	}
	row.Document = doc
	return row
}
