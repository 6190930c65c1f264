package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/tennis-reminder/internal/domain/scoreboard"
	scoreboardmock "github.com/riskibarqy/tennis-reminder/internal/mocks/domain/scoreboard"
	basecache "github.com/riskibarqy/tennis-reminder/internal/platform/cache"
	"github.com/stretchr/testify/mock"
)

func TestScoreboardProvider_CachesSuccessfulFetch(t *testing.T) {
	t.Parallel()

	next := scoreboardmock.NewProvider(t)
	next.On("Source").Return("ATP")
	next.On("FetchScoreboard", mock.Anything).
		Return(scoreboard.Document{Source: "ATP", Events: []scoreboard.Event{{Name: "Shanghai Masters"}}}, nil).
		Once()

	provider := NewScoreboardProvider(next, basecache.NewStore[scoreboard.Document](time.Minute))
	for i := 0; i < 3; i++ {
		doc, err := provider.FetchScoreboard(context.Background())
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if len(doc.Events) != 1 {
			t.Fatalf("fetch %d: unexpected document %+v", i, doc)
		}
	}
	if provider.Source() != "ATP" {
		t.Fatalf("unexpected source %q", provider.Source())
	}
}

func TestScoreboardProvider_DoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	next := scoreboardmock.NewProvider(t)
	next.On("Source").Return("WTA")
	next.On("FetchScoreboard", mock.Anything).Return(scoreboard.Document{}, errors.New("timeout")).Once()
	next.On("FetchScoreboard", mock.Anything).Return(scoreboard.Document{Source: "WTA"}, nil).Once()

	provider := NewScoreboardProvider(next, basecache.NewStore[scoreboard.Document](time.Minute))
	if _, err := provider.FetchScoreboard(context.Background()); err == nil {
		t.Fatalf("expected first fetch to fail")
	}
	if _, err := provider.FetchScoreboard(context.Background()); err != nil {
		t.Fatalf("expected retry after failure to reach upstream, got %v", err)
	}
}

func TestScoreboardProvider_WarmReplacesCachedDocument(t *testing.T) {
	t.Parallel()

	next := scoreboardmock.NewProvider(t)
	next.On("Source").Return("ATP")
	next.On("FetchScoreboard", mock.Anything).Return(scoreboard.Document{Source: "ATP"}, nil).Once()
	next.On("FetchScoreboard", mock.Anything).
		Return(scoreboard.Document{Source: "ATP", Events: []scoreboard.Event{{Name: "Paris Masters"}}}, nil).
		Once()

	provider := NewScoreboardProvider(next, basecache.NewStore[scoreboard.Document](0))
	if _, err := provider.FetchScoreboard(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if err := provider.Warm(context.Background()); err != nil {
		t.Fatalf("warm: %v", err)
	}

	doc, err := provider.FetchScoreboard(context.Background())
	if err != nil {
		t.Fatalf("fetch after warm: %v", err)
	}
	if len(doc.Events) != 1 || doc.Events[0].Name != "Paris Masters" {
		t.Fatalf("expected warmed document, got %+v", doc)
	}
}
