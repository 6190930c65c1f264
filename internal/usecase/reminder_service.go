package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/tennis-reminder/internal/domain/delivery"
	"github.com/riskibarqy/tennis-reminder/internal/domain/notification"
	"github.com/riskibarqy/tennis-reminder/internal/domain/subscriber"
	idgen "github.com/riskibarqy/tennis-reminder/internal/platform/id"
	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
)

const defaultDeliveryWorkers = 4

type ReminderConfig struct {
	// SkipEmpty suppresses the whole fire when there are no matches.
	SkipEmpty bool
	Workers   int
}

// DeliveryObserver receives one status per recipient.
type DeliveryObserver interface {
	ObserveDelivery(status string)
}

type ReminderService struct {
	matchday    *MatchdayService
	subscribers subscriber.Repository
	sink        notification.Sink
	ids         idgen.Generator
	cfg         ReminderConfig
	logger      *logging.Logger
	observer    DeliveryObserver
	now         func() time.Time
}

func NewReminderService(
	matchdaySvc *MatchdayService,
	subscribers subscriber.Repository,
	sink notification.Sink,
	ids idgen.Generator,
	cfg ReminderConfig,
	logger *logging.Logger,
	observer DeliveryObserver,
) *ReminderService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = idgen.NewUUIDGenerator()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultDeliveryWorkers
	}
	return &ReminderService{
		matchday:    matchdaySvc,
		subscribers: subscribers,
		sink:        sink,
		ids:         ids,
		cfg:         cfg,
		logger:      logger,
		observer:    observer,
		now:         time.Now,
	}
}

// Run is the scheduler job: one fire, summarized in the log.
func (s *ReminderService) Run(ctx context.Context, planned time.Time) error {
	report, err := s.Fire(ctx, planned)
	if err != nil {
		return err
	}
	if report.SkippedFire {
		return nil
	}
	s.logger.InfoContext(ctx, "reminder delivered",
		"fire_id", report.FireID,
		"recipients", len(report.Results),
		"sent", report.Sent,
		"failed", report.Failed,
	)
	return nil
}

// Fire computes today's digest and delivers it to a snapshot of the current
// subscribers. A failing recipient is recorded in the report and never stops
// the others.
func (s *ReminderService) Fire(ctx context.Context, planned time.Time) (delivery.Report, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReminderService.Fire")
	defer span.End()

	fireID, err := s.ids.NewID()
	if err != nil {
		return delivery.Report{}, fmt.Errorf("generate fire id: %w", err)
	}
	report := delivery.Report{FireID: fireID, PlannedAt: planned, Results: make([]delivery.Result, 0)}

	digest, err := s.matchday.Today(ctx, TriggerScheduled)
	if err != nil {
		return report, fmt.Errorf("compute matchday: %w", err)
	}
	report.Matches = len(digest.Matches)

	if digest.Empty && s.cfg.SkipEmpty {
		s.logger.InfoContext(ctx, "no matches today, skipping reminder", "fire_id", fireID)
		report.SkippedFire = true
		return report, nil
	}

	recipients, err := s.subscribers.Snapshot(ctx)
	if err != nil {
		return report, fmt.Errorf("snapshot subscribers: %w", err)
	}
	if len(recipients) == 0 {
		s.logger.InfoContext(ctx, "no subscribers for reminder", "fire_id", fireID)
		return report, nil
	}

	report.Results, err = s.deliverAll(ctx, recipients, digest.Chunks)
	if err != nil {
		return report, err
	}
	report.Tally()
	return report, nil
}

func (s *ReminderService) deliverAll(ctx context.Context, recipients []subscriber.Subscriber, chunks []string) ([]delivery.Result, error) {
	workerCount := s.cfg.Workers
	if workerCount > len(recipients) {
		workerCount = len(recipients)
	}

	p, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create delivery pool: %w", err)
	}
	defer p.Release()

	results := make([]delivery.Result, len(recipients))
	var workers sync.WaitGroup
	for i, recipient := range recipients {
		workers.Add(1)
		if err := p.Submit(func() {
			defer workers.Done()
			results[i] = s.deliverOne(ctx, recipient.RecipientID, chunks)
		}); err != nil {
			workers.Done()
			results[i] = delivery.Result{
				Recipient: recipient.RecipientID,
				Status:    delivery.StatusFailed,
				Error:     fmt.Sprintf("submit delivery: %v", err),
				At:        s.now().UTC(),
			}
		}
	}
	workers.Wait()

	return results, nil
}

func (s *ReminderService) deliverOne(ctx context.Context, recipientID string, chunks []string) (result delivery.Result) {
	result.Recipient = recipientID
	defer func() {
		if rec := recover(); rec != nil {
			result.Status = delivery.StatusFailed
			result.Error = fmt.Sprintf("panic: %v", rec)
		}
		result.At = s.now().UTC()
		if s.observer != nil {
			s.observer.ObserveDelivery(string(result.Status))
		}
	}()

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			result.Status = delivery.StatusSkipped
			result.Error = err.Error()
			return result
		}
		if err := s.sink.Send(ctx, recipientID, chunk); err != nil {
			s.logger.WarnContext(ctx, "reminder delivery failed", "recipient_id", recipientID, "chunk", result.Chunks, "error", err)
			result.Status = delivery.StatusFailed
			result.Error = err.Error()
			return result
		}
		result.Chunks++
	}

	result.Status = delivery.StatusSent
	return result
}
