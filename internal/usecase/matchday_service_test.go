package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/tennis-reminder/internal/domain/matchday"
	"github.com/riskibarqy/tennis-reminder/internal/domain/scoreboard"
	scoreboardmock "github.com/riskibarqy/tennis-reminder/internal/mocks/domain/scoreboard"
	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func newTestMatchdayService(providers []scoreboard.Provider, favorites ...string) *MatchdayService {
	return NewMatchdayService(
		providers,
		MatchdayConfig{Favorites: favorites, Location: ist},
		logging.NewNop(),
		WithMatchdayClock(fixedClock),
	)
}

func TestMatchdayService_Today_SourceIsolation(t *testing.T) {
	t.Parallel()

	atp := scoreboardmock.NewProvider(t)
	wta := scoreboardmock.NewProvider(t)

	atp.On("Source").Return("ATP")
	atp.On("FetchScoreboard", mock.Anything).Return(scoreboard.Document{}, errors.New("dial tcp: i/o timeout")).Once()
	wta.On("Source").Return("WTA")
	wta.On("FetchScoreboard", mock.Anything).
		Return(scoreboardDoc("WTA", "Wuhan Open", [2]string{"Aryna Sabalenka", "Coco Gauff"}), nil).
		Once()

	service := newTestMatchdayService([]scoreboard.Provider{atp, wta}, "SABALENKA")

	got, err := service.Today(context.Background(), TriggerOnDemand)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if len(got.Matches) != 1 || got.Matches[0].Home != "Aryna Sabalenka" {
		t.Fatalf("expected surviving source match, got %+v", got.Matches)
	}
	if len(got.SourceErrors) != 1 || got.SourceErrors[0].Source != "ATP" {
		t.Fatalf("expected ATP failure to be reported, got %+v", got.SourceErrors)
	}
	if got.Empty {
		t.Fatalf("expected non-empty result")
	}
	if len(got.Chunks) != 1 || got.Chunks[0] == matchday.NoMatchesNotice {
		t.Fatalf("unexpected chunks: %v", got.Chunks)
	}
}

func TestMatchdayService_Today_AllSourcesFailingYieldsNotice(t *testing.T) {
	t.Parallel()

	atp := scoreboardmock.NewProvider(t)
	atp.On("Source").Return("ATP")
	atp.On("FetchScoreboard", mock.Anything).Return(scoreboard.Document{}, errors.New("status=503")).Once()

	service := newTestMatchdayService([]scoreboard.Provider{atp, panicProvider{source: "WTA"}}, "SINNER")

	got, err := service.Today(context.Background(), TriggerOnDemand)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if !got.Empty || len(got.Chunks) != 1 || got.Chunks[0] != matchday.NoMatchesNotice {
		t.Fatalf("expected notice, got %+v", got)
	}
	if len(got.SourceErrors) != 2 {
		t.Fatalf("expected both sources to be reported, got %d", len(got.SourceErrors))
	}
	if !errors.Is(got.SourceErrors[1].Err, ErrDependencyUnavailable) {
		t.Fatalf("expected panic to be converted to dependency error, got %v", got.SourceErrors[1].Err)
	}
}

func TestMatchdayService_Today_IsIdempotentWithinTheDay(t *testing.T) {
	t.Parallel()

	atp := scoreboardmock.NewProvider(t)
	atp.On("Source").Return("ATP")
	atp.On("FetchScoreboard", mock.Anything).
		Return(scoreboardDoc("ATP", "Shanghai Masters",
			[2]string{"Jannik Sinner", "Ben Shelton"},
			[2]string{"Taylor Fritz", "Holger Rune"},
		), nil).
		Twice()

	recorder := &fetchRecorder{}
	service := NewMatchdayService(
		[]scoreboard.Provider{atp},
		MatchdayConfig{Favorites: []string{"sinner"}, Location: ist},
		logging.NewNop(),
		WithMatchdayClock(fixedClock),
		WithMatchdayObserver(recorder),
	)

	first, err := service.Today(context.Background(), TriggerOnDemand)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := service.Today(context.Background(), TriggerScheduled)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(first.Matches) != 2 || len(second.Matches) != 2 {
		t.Fatalf("unexpected match counts: %d %d", len(first.Matches), len(second.Matches))
	}
	for i := range first.Chunks {
		if first.Chunks[i] != second.Chunks[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
	if len(recorder.pipelines) != 2 || recorder.pipelines[1] != TriggerScheduled {
		t.Fatalf("unexpected pipeline observations: %v", recorder.pipelines)
	}
}

func TestMatchdayService_FetchAll_KeepsProviderOrder(t *testing.T) {
	t.Parallel()

	providers := make([]scoreboard.Provider, 0, 5)
	for _, source := range []string{"A", "B", "C", "D", "E"} {
		p := scoreboardmock.NewProvider(t)
		p.On("Source").Return(source)
		p.On("FetchScoreboard", mock.Anything).Return(scoreboard.Document{}, nil).Once()
		providers = append(providers, p)
	}

	rows := newTestMatchdayService(providers).FetchAll(context.Background())
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	for i, want := range []string{"A", "B", "C", "D", "E"} {
		if rows[i].Source != want || rows[i].Document.Source != want {
			t.Fatalf("row %d: got source=%q doc=%q want=%q", i, rows[i].Source, rows[i].Document.Source, want)
		}
	}
}

func TestMatchdayService_Today_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	atp := scoreboardmock.NewProvider(t)
	atp.On("Source").Return("ATP")
	atp.On("FetchScoreboard", mock.Anything).Return(scoreboard.Document{}, context.Canceled).Once()

	_, err := newTestMatchdayService([]scoreboard.Provider{atp}, "SINNER").Today(ctx, TriggerOnDemand)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
