package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/tennis-reminder/internal/config"
	"github.com/riskibarqy/tennis-reminder/internal/domain/scoreboard"
	"github.com/riskibarqy/tennis-reminder/internal/infrastructure/repository/cache"
	basecache "github.com/riskibarqy/tennis-reminder/internal/platform/cache"
	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:          config.EnvDev,
		ServiceName:     "tennis-reminder",
		HTTPAddr:        "127.0.0.1:0",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
		MetricsEnabled:  true,
		FavoritePlayers: []string{"SINNER"},
		Location:        time.UTC,
		ReminderEnabled: true,
		ReminderTime:    "18:41",
		ReminderHour:    18,
		ReminderMinute:  41,
		DeliveryWorkers: 2,
		FeedSources: []config.FeedSource{
			{ID: "ATP", URL: "http://127.0.0.1:1/atp"},
			{ID: "WTA", URL: "http://127.0.0.1:1/wta"},
		},
		FeedTimeout:    time.Second,
		FeedCacheTTL:   time.Minute,
		FeedWarmupCron: "*/5 * * * *",
		FeedCircuit:    config.CircuitConfig{Enabled: true, FailureCount: 3, OpenTimeout: time.Second, HalfOpenMaxReq: 1},
	}
}

func TestNewFeedProviders_WrapsWithCacheWhenTTLSet(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	providers, warmers := NewFeedProviders(cfg, logging.NewNop(), nil)
	if len(providers) != 2 || len(warmers) != 2 {
		t.Fatalf("expected 2 cached providers, got providers=%d warmers=%d", len(providers), len(warmers))
	}
	if providers[0].Source() != "ATP" || providers[1].Source() != "WTA" {
		t.Fatalf("unexpected source order: %s %s", providers[0].Source(), providers[1].Source())
	}

	cfg.FeedCacheTTL = 0
	providers, warmers = NewFeedProviders(cfg, logging.NewNop(), nil)
	if len(providers) != 2 || len(warmers) != 0 {
		t.Fatalf("expected bare providers without a cache TTL")
	}
}

type failingProvider struct{ source string }

func (p failingProvider) Source() string { return p.source }

func (p failingProvider) FetchScoreboard(context.Context) (scoreboard.Document, error) {
	return scoreboard.Document{}, errors.New("feed down")
}

func TestWarmAll_JoinsErrors(t *testing.T) {
	t.Parallel()

	store := basecache.NewStore[scoreboard.Document](time.Minute)
	warm := warmAll([]*cache.ScoreboardProvider{
		cache.NewScoreboardProvider(failingProvider{source: "ATP"}, store),
		cache.NewScoreboardProvider(failingProvider{source: "WTA"}, store),
	})

	err := warm(context.Background())
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if got := err.Error(); got != "warm ATP: feed down\nwarm WTA: feed down" {
		t.Fatalf("unexpected error: %q", got)
	}
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	a, err := New(testConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if a.daily == nil || a.cron == nil || a.poller != nil {
		t.Fatalf("unexpected components: daily=%v cron=%v poller=%v", a.daily != nil, a.cron != nil, a.poller != nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("app did not stop")
	}
}

func TestNew_ReminderDisabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.ReminderEnabled = false
	cfg.FeedWarmupCron = ""

	a, err := New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if a.daily != nil || a.cron != nil {
		t.Fatalf("expected no scheduler components")
	}
}
