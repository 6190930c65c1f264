package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
)

// CronTask is a periodic background task with its own timeout.
type CronTask struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Cron runs CronTasks on standard five-field specs in a fixed location.
type Cron struct {
	c      *cron.Cron
	logger *logging.Logger
}

func NewCron(loc *time.Location, logger *logging.Logger) *Cron {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Cron{
		c:      cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cron.DiscardLogger))),
		logger: logger.Named("cron"),
	}
}

func (c *Cron) Add(task CronTask) error {
	spec := strings.TrimSpace(task.Spec)
	if spec == "" {
		return fmt.Errorf("cron spec is required for %s", task.Name)
	}
	if task.Run == nil {
		return fmt.Errorf("cron task %s has no run func", task.Name)
	}
	timeout := task.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	_, err := c.c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		startedAt := time.Now()
		if err := task.Run(ctx); err != nil {
			c.logger.Warn("cron task failed", "task", task.Name, "error", err)
			return
		}
		c.logger.Info("cron task done", "task", task.Name, "duration_ms", time.Since(startedAt).Milliseconds())
	})
	if err != nil {
		return fmt.Errorf("parse cron spec %q for %s: %w", spec, task.Name, err)
	}
	return nil
}

func (c *Cron) Len() int {
	return len(c.c.Entries())
}

func (c *Cron) Start() {
	c.c.Start()
}

// Stop halts scheduling and waits for running tasks until ctx is done.
func (c *Cron) Stop(ctx context.Context) {
	done := c.c.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
