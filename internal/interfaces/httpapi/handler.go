package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/tennis-reminder/internal/domain/subscriber"
	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
	"github.com/riskibarqy/tennis-reminder/internal/usecase"
)

// Schedule reports the reminder loop's next planned fire.
type Schedule interface {
	NextFire() time.Time
}

type Handler struct {
	subscriptions *usecase.SubscriptionService
	matchday      *usecase.MatchdayService
	schedule      Schedule
	reminderTime  string
	logger        *logging.Logger
	validator     *validator.Validate
}

// NewHandler builds the HTTP handlers. schedule may be nil when the daily
// reminder is disabled.
func NewHandler(
	subscriptions *usecase.SubscriptionService,
	matchdaySvc *usecase.MatchdayService,
	schedule Schedule,
	reminderTime string,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		subscriptions: subscriptions,
		matchday:      matchdaySvc,
		schedule:      schedule,
		reminderTime:  reminderTime,
		logger:        logger.Named("httpapi"),
		validator:     validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Subscribe")
	defer span.End()

	var req subscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.subscriptions.Subscribe(ctx, usecase.SubscribeInput{
		RecipientID: req.RecipientID,
		Channel:     subscriber.ChannelHTTP,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "subscribe failed", "recipient_id", req.RecipientID, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeSuccess(w, status, subscriptionDTO{
		RecipientID:  result.Subscriber.RecipientID,
		Channel:      string(result.Subscriber.Channel),
		SubscribedAt: result.Subscriber.SubscribedAt,
		Created:      result.Created,
		Message:      result.Message,
	})
}

func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSubscriptions")
	defer span.End()

	items, err := h.subscriptions.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list subscriptions failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]subscriptionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, subscriptionDTO{
			RecipientID:  item.RecipientID,
			Channel:      string(item.Channel),
			SubscribedAt: item.SubscribedAt,
		})
	}
	writeSuccess(w, http.StatusOK, listDTO[subscriptionDTO]{Items: out, Total: len(out)})
}

func (h *Handler) TodayMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TodayMatches")
	defer span.End()

	result, err := h.matchday.Today(ctx, usecase.TriggerOnDemand)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toTodayDTO(result, h.matchday.Location()))
}

func (h *Handler) Reminder(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Reminder")
	defer span.End()

	if h.schedule == nil {
		writeError(ctx, w, fmt.Errorf("%w: daily reminder is disabled", usecase.ErrNotFound))
		return
	}

	dto := reminderDTO{
		Time:     h.reminderTime,
		Timezone: h.matchday.Location().String(),
	}
	if next := h.schedule.NextFire(); !next.IsZero() {
		dto.NextFire = &next
	}
	writeSuccess(w, http.StatusOK, dto)
}
