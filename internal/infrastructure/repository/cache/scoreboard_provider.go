package cache

import (
	"context"

	"github.com/riskibarqy/tennis-reminder/internal/domain/scoreboard"
	basecache "github.com/riskibarqy/tennis-reminder/internal/platform/cache"
)

// ScoreboardProvider caches the wrapped provider's document per source.
// Concurrent misses share one upstream fetch; failures are not cached.
type ScoreboardProvider struct {
	next  scoreboard.Provider
	cache *basecache.Store[scoreboard.Document]
}

func NewScoreboardProvider(next scoreboard.Provider, cache *basecache.Store[scoreboard.Document]) *ScoreboardProvider {
	return &ScoreboardProvider{next: next, cache: cache}
}

func (p *ScoreboardProvider) Source() string {
	return p.next.Source()
}

func (p *ScoreboardProvider) FetchScoreboard(ctx context.Context) (scoreboard.Document, error) {
	return p.cache.GetOrLoad(ctx, p.key(), p.next.FetchScoreboard)
}

// Warm refetches the document and replaces the cached copy on success.
func (p *ScoreboardProvider) Warm(ctx context.Context) error {
	_, err := p.cache.Refresh(ctx, p.key(), p.next.FetchScoreboard)
	return err
}

func (p *ScoreboardProvider) key() string {
	return "scoreboard:" + p.next.Source()
}
