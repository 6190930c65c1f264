package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
)

const DefaultBuffer = 2 * time.Second

// Job is one fire of the daily schedule. The time passed in is the instant
// the fire was planned for.
type Job func(ctx context.Context, planned time.Time) error

// Observer receives fire outcomes. Implemented by the metrics recorder.
type Observer interface {
	ObserveFire(outcome string)
	SetNextFire(at time.Time)
}

// NextFireIn returns the wait until hour:minute in loc. The target rolls to
// the next day unless it is strictly after now.
func NextFireIn(now time.Time, hour, minute int, loc *time.Location) time.Duration {
	return NextFireAt(now, hour, minute, loc).Sub(now)
}

func NextFireAt(now time.Time, hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	target := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !target.After(local) {
		target = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return target
}

type Config struct {
	Hour     int
	Minute   int
	Location *time.Location
	// Buffer is slept after every fire before the next target is computed.
	Buffer time.Duration
}

func (c Config) Validate() error {
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("hour must be within 0..23, got %d", c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("minute must be within 0..59, got %d", c.Minute)
	}
	if c.Location == nil {
		return fmt.Errorf("location is required")
	}
	if c.Buffer < 0 {
		return fmt.Errorf("buffer must be >= 0")
	}
	return nil
}

// Daily fires a job once a day at a fixed local time. The timer is re-armed
// from the wall clock after every fire, so sleep drift never accumulates.
type Daily struct {
	cfg      Config
	logger   *logging.Logger
	observer Observer

	now      func() time.Time
	newTimer func(d time.Duration) (<-chan time.Time, func() bool)

	mu   sync.RWMutex
	next time.Time
}

type Option func(*Daily)

func WithObserver(observer Observer) Option {
	return func(d *Daily) {
		d.observer = observer
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Daily) {
		if now != nil {
			d.now = now
		}
	}
}

func NewDaily(cfg Config, logger *logging.Logger, opts ...Option) (*Daily, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schedule: %w", err)
	}
	if logger == nil {
		logger = logging.Default()
	}

	d := &Daily{
		cfg:    cfg,
		logger: logger.Named("scheduler"),
		now:    time.Now,
		newTimer: func(wait time.Duration) (<-chan time.Time, func() bool) {
			t := time.NewTimer(wait)
			return t.C, t.Stop
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// NextFire is the instant the loop is currently waiting for. Zero before Run.
func (d *Daily) NextFire() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.next
}

// Run blocks until ctx is cancelled. Job errors and panics are logged and the
// loop proceeds to the next day.
func (d *Daily) Run(ctx context.Context, job Job) error {
	if job == nil {
		return fmt.Errorf("scheduler job is required")
	}

	for {
		now := d.now()
		next := NextFireAt(now, d.cfg.Hour, d.cfg.Minute, d.cfg.Location)
		wait := next.Sub(now)

		d.mu.Lock()
		d.next = next
		d.mu.Unlock()
		if d.observer != nil {
			d.observer.SetNextFire(next)
		}
		d.logger.Info("scheduler armed",
			"next_fire", next.Format(time.RFC3339),
			"wait", wait.Round(time.Second).String(),
		)

		fired, stop := d.newTimer(wait)
		select {
		case <-ctx.Done():
			stop()
			d.logger.Info("scheduler stopped")
			return nil
		case <-fired:
		}

		// The timer runs on the monotonic clock. A wall clock stepped backward
		// wakes us before the target, so re-arm instead of firing early.
		if woke := d.now(); woke.Before(next) {
			d.logger.Warn("scheduler woke before target, re-arming",
				"next_fire", next.Format(time.RFC3339),
				"early_by", next.Sub(woke).Round(time.Second).String(),
			)
			continue
		}

		outcome := d.fire(ctx, job, next)
		if d.observer != nil {
			d.observer.ObserveFire(outcome)
		}

		if d.cfg.Buffer > 0 {
			buffered, stopBuffer := d.newTimer(d.cfg.Buffer)
			select {
			case <-ctx.Done():
				stopBuffer()
				d.logger.Info("scheduler stopped")
				return nil
			case <-buffered:
			}
		}
	}
}

func (d *Daily) fire(ctx context.Context, job Job, planned time.Time) (outcome string) {
	startedAt := d.now()
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.ErrorContext(ctx, "scheduled job panicked",
				"planned", planned.Format(time.RFC3339),
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)
			outcome = "panic"
		}
	}()

	if err := job(ctx, planned); err != nil {
		d.logger.ErrorContext(ctx, "scheduled job failed",
			"planned", planned.Format(time.RFC3339),
			"duration_ms", d.now().Sub(startedAt).Milliseconds(),
			"error", err,
		)
		return "error"
	}

	d.logger.InfoContext(ctx, "scheduled job completed",
		"planned", planned.Format(time.RFC3339),
		"duration_ms", d.now().Sub(startedAt).Milliseconds(),
	)
	return "ok"
}
