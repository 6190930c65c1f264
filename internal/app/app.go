package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/riskibarqy/tennis-reminder/external/espn"
	"github.com/riskibarqy/tennis-reminder/external/telegram"
	"github.com/riskibarqy/tennis-reminder/internal/config"
	"github.com/riskibarqy/tennis-reminder/internal/domain/notification"
	"github.com/riskibarqy/tennis-reminder/internal/domain/scoreboard"
	notifylog "github.com/riskibarqy/tennis-reminder/internal/infrastructure/notification"
	"github.com/riskibarqy/tennis-reminder/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/tennis-reminder/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tennis-reminder/internal/interfaces/httpapi"
	telegrambot "github.com/riskibarqy/tennis-reminder/internal/interfaces/telegram"
	basecache "github.com/riskibarqy/tennis-reminder/internal/platform/cache"
	idgen "github.com/riskibarqy/tennis-reminder/internal/platform/id"
	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
	"github.com/riskibarqy/tennis-reminder/internal/platform/metrics"
	"github.com/riskibarqy/tennis-reminder/internal/platform/resilience"
	"github.com/riskibarqy/tennis-reminder/internal/platform/scheduler"
	"github.com/riskibarqy/tennis-reminder/internal/usecase"
)

// App owns every long-running component of the service.
type App struct {
	cfg    config.Config
	logger *logging.Logger

	Metrics       *metrics.Recorder
	Matchday      *usecase.MatchdayService
	Subscriptions *usecase.SubscriptionService
	Reminder      *usecase.ReminderService

	daily  *scheduler.Daily
	cron   *scheduler.Cron
	poller *telegrambot.Poller
	server *http.Server
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var recorder *metrics.Recorder
	if cfg.MetricsEnabled {
		recorder = metrics.New(metrics.WithProcessCollectors())
	}

	providers, warmers := NewFeedProviders(cfg, logger, recorder)
	matchdaySvc := NewMatchdayService(cfg, providers, logger, recorder)

	subscribers := memory.NewSubscriberRepository(nil)
	subscriptionSvc := usecase.NewSubscriptionService(subscribers, logger, recorder)

	var sink notification.Sink = notifylog.NewLogSink(logger)
	var bot *telegram.Client
	if cfg.TelegramEnabled {
		bot = telegram.NewClient(telegram.ClientConfig{
			BaseURL:        cfg.TelegramBaseURL,
			Token:          cfg.TelegramToken,
			ParseMode:      cfg.TelegramParseMode,
			Timeout:        cfg.TelegramTimeout,
			Logger:         logger,
			CircuitBreaker: circuitConfig(cfg.TelegramCircuit, recorder),
		})
		sink = bot
	}

	reminderSvc := usecase.NewReminderService(
		matchdaySvc,
		subscribers,
		sink,
		idgen.NewUUIDGenerator(),
		usecase.ReminderConfig{SkipEmpty: cfg.ReminderSkipEmpty, Workers: cfg.DeliveryWorkers},
		logger,
		recorder,
	)

	a := &App{
		cfg:           cfg,
		logger:        logger,
		Metrics:       recorder,
		Matchday:      matchdaySvc,
		Subscriptions: subscriptionSvc,
		Reminder:      reminderSvc,
	}

	if cfg.ReminderEnabled {
		daily, err := scheduler.NewDaily(scheduler.Config{
			Hour:     cfg.ReminderHour,
			Minute:   cfg.ReminderMinute,
			Location: cfg.Location,
			Buffer:   cfg.ReminderBuffer,
		}, logger, scheduler.WithObserver(recorder))
		if err != nil {
			return nil, err
		}
		a.daily = daily
	}

	if cfg.FeedWarmupCron != "" && len(warmers) > 0 {
		a.cron = scheduler.NewCron(cfg.Location, logger)
		if err := a.cron.Add(scheduler.CronTask{
			Name:    "feed-warmup",
			Spec:    cfg.FeedWarmupCron,
			Timeout: cfg.FeedTimeout * time.Duration(cfg.FeedMaxRetries+1),
			Run:     warmAll(warmers),
		}); err != nil {
			return nil, err
		}
	}

	if cfg.TelegramPollingEnabled && bot != nil {
		a.poller = telegrambot.NewPoller(bot, bot, subscriptionSvc, matchdaySvc, cfg.TelegramPollTimeout, logger)
	}

	var schedule httpapi.Schedule
	if a.daily != nil {
		schedule = a.daily
	}
	handler := httpapi.NewHandler(subscriptionSvc, matchdaySvc, schedule, cfg.ReminderTime, logger)
	routerCfg := httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if recorder != nil {
		routerCfg.Metrics = recorder.Handler()
	}
	a.server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(handler, logger, routerCfg),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}
	if a.server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return a, nil
}

// NewFeedProviders builds one feed client per configured source. With a
// cache TTL each client is wrapped in a caching provider, which is also
// returned as a warmer.
func NewFeedProviders(cfg config.Config, logger *logging.Logger, recorder *metrics.Recorder) ([]scoreboard.Provider, []*cache.ScoreboardProvider) {
	providers := make([]scoreboard.Provider, 0, len(cfg.FeedSources))
	var warmers []*cache.ScoreboardProvider

	var store *basecache.Store[scoreboard.Document]
	if cfg.FeedCacheTTL > 0 {
		store = basecache.NewStore[scoreboard.Document](cfg.FeedCacheTTL)
	}

	for _, source := range cfg.FeedSources {
		client := espn.NewClient(espn.ClientConfig{
			Source:         source.ID,
			URL:            source.URL,
			UserAgent:      cfg.FeedUserAgent,
			Timeout:        cfg.FeedTimeout,
			MaxRetries:     cfg.FeedMaxRetries,
			RetryBackoff:   cfg.FeedRetryBackoff,
			Logger:         logger,
			CircuitBreaker: circuitConfig(cfg.FeedCircuit, recorder),
		})
		if store == nil {
			providers = append(providers, client)
			continue
		}
		cached := cache.NewScoreboardProvider(client, store)
		providers = append(providers, cached)
		warmers = append(warmers, cached)
	}
	return providers, warmers
}

func NewMatchdayService(cfg config.Config, providers []scoreboard.Provider, logger *logging.Logger, recorder *metrics.Recorder) *usecase.MatchdayService {
	var opts []usecase.MatchdayOption
	if recorder != nil {
		opts = append(opts, usecase.WithMatchdayObserver(recorder))
	}
	return usecase.NewMatchdayService(providers, usecase.MatchdayConfig{
		Favorites: cfg.FavoritePlayers,
		Location:  cfg.Location,
	}, logger, opts...)
}

func circuitConfig(c config.CircuitConfig, recorder *metrics.Recorder) resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		Enabled:          c.Enabled,
		FailureThreshold: c.FailureCount,
		OpenTimeout:      c.OpenTimeout,
		HalfOpenMaxReq:   c.HalfOpenMaxReq,
		OnStateChange: func(name string, _, to resilience.CircuitState) {
			recorder.SetCircuitOpen(name, to != resilience.CircuitStateClosed)
		},
	}
}

func warmAll(warmers []*cache.ScoreboardProvider) func(context.Context) error {
	return func(ctx context.Context) error {
		var errs []error
		for _, w := range warmers {
			if err := w.Warm(ctx); err != nil {
				errs = append(errs, fmt.Errorf("warm %s: %w", w.Source(), err))
			}
		}
		return errors.Join(errs...)
	}
}

// Run serves until ctx is cancelled, then shuts every component down. A
// component that fails to start cancels the others.
func (a *App) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		a.logger.Info("http server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout)
		defer cancel()
		if a.cron != nil {
			a.cron.Stop(shutdownCtx)
		}
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		a.logger.Info("http server stopped")
		return nil
	})

	if a.daily != nil {
		a.logger.Info("daily reminder enabled",
			"time", a.cfg.ReminderTime,
			"timezone", a.cfg.Location.String(),
			"skip_empty", a.cfg.ReminderSkipEmpty,
		)
		group.Go(func() error { return a.daily.Run(ctx, a.Reminder.Run) })
	}
	if a.cron != nil {
		a.cron.Start()
	}
	if a.poller != nil {
		group.Go(func() error { return a.poller.Run(ctx) })
	}

	return group.Wait()
}
