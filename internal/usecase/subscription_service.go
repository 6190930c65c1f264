package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/tennis-reminder/internal/domain/subscriber"
	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
)

const SubscribedAcknowledgement = "✅ Subscribed! you’ll get the daily reminder at the set time."

type SubscribeInput struct {
	RecipientID string
	Channel     subscriber.Channel
}

type SubscribeResult struct {
	Subscriber subscriber.Subscriber
	// Created is false when the recipient was already subscribed.
	Created bool
	Message string
}

// SubscriberGauge receives the subscriber count after every change.
type SubscriberGauge interface {
	SetSubscribers(n int)
}

type SubscriptionService struct {
	repo   subscriber.Repository
	logger *logging.Logger
	gauge  SubscriberGauge
	now    func() time.Time
}

func NewSubscriptionService(repo subscriber.Repository, logger *logging.Logger, gauge SubscriberGauge) *SubscriptionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SubscriptionService{
		repo:   repo,
		logger: logger,
		gauge:  gauge,
		now:    time.Now,
	}
}

// Subscribe adds the recipient to the reminder set. Subscribing twice is
// not an error.
func (s *SubscriptionService) Subscribe(ctx context.Context, input SubscribeInput) (SubscribeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubscriptionService.Subscribe")
	defer span.End()

	item := subscriber.Subscriber{
		RecipientID:  strings.TrimSpace(input.RecipientID),
		Channel:      input.Channel,
		SubscribedAt: s.now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return SubscribeResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.repo.Add(ctx, item)
	if err != nil {
		return SubscribeResult{}, fmt.Errorf("add subscriber: %w", err)
	}

	if created {
		s.logger.InfoContext(ctx, "subscriber added", "recipient_id", item.RecipientID, "channel", string(item.Channel))
		if s.gauge != nil {
			if all, err := s.repo.Snapshot(ctx); err == nil {
				s.gauge.SetSubscribers(len(all))
			}
		}
	}

	return SubscribeResult{
		Subscriber: item,
		Created:    created,
		Message:    SubscribedAcknowledgement,
	}, nil
}

func (s *SubscriptionService) List(ctx context.Context) ([]subscriber.Subscriber, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubscriptionService.List")
	defer span.End()

	items, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot subscribers: %w", err)
	}
	return items, nil
}
