package telegram

import (
	"context"
	"strings"
	"time"

	tgapi "github.com/riskibarqy/tennis-reminder/external/telegram"
	"github.com/riskibarqy/tennis-reminder/internal/domain/notification"
	"github.com/riskibarqy/tennis-reminder/internal/domain/subscriber"
	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
	"github.com/riskibarqy/tennis-reminder/internal/usecase"
)

const (
	CommandStart = "/start"
	CommandToday = "/today"

	maxBackoff = 30 * time.Second
)

type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, wait time.Duration) ([]tgapi.Update, error)
}

// Poller long-polls the bot API and answers the chat commands.
type Poller struct {
	updates       UpdateSource
	replies       notification.Sink
	subscriptions *usecase.SubscriptionService
	matchday      *usecase.MatchdayService
	wait          time.Duration
	logger        *logging.Logger

	offset int64
}

func NewPoller(
	updates UpdateSource,
	replies notification.Sink,
	subscriptions *usecase.SubscriptionService,
	matchdaySvc *usecase.MatchdayService,
	wait time.Duration,
	logger *logging.Logger,
) *Poller {
	if logger == nil {
		logger = logging.Default()
	}
	if wait < 0 {
		wait = 0
	}
	return &Poller{
		updates:       updates,
		replies:       replies,
		subscriptions: subscriptions,
		matchday:      matchdaySvc,
		wait:          wait,
		logger:        logger.Named("telegram_poller"),
	}
}

// Run polls until ctx is cancelled. Poll failures back off exponentially up
// to 30s.
func (p *Poller) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, err := p.updates.GetUpdates(ctx, p.offset, p.wait)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.WarnContext(ctx, "telegram poll failed", "error", err, "retry_in", backoff.String())
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = time.Second

		for _, update := range updates {
			if update.UpdateID >= p.offset {
				p.offset = update.UpdateID + 1
			}
			p.Handle(ctx, update)
		}
	}
}

// Handle answers one update. Failures are logged; nothing is returned
// because there is no caller to report to.
func (p *Poller) Handle(ctx context.Context, update tgapi.Update) {
	if update.Message == nil {
		return
	}
	chatID := tgapi.ChatID(update.Message.Chat.ID)

	switch command(update.Message.Text) {
	case CommandStart:
		result, err := p.subscriptions.Subscribe(ctx, usecase.SubscribeInput{
			RecipientID: chatID,
			Channel:     subscriber.ChannelTelegram,
		})
		if err != nil {
			p.logger.ErrorContext(ctx, "subscribe from chat failed", "chat_id", chatID, "error", err)
			return
		}
		p.reply(ctx, chatID, result.Message)
	case CommandToday:
		result, err := p.matchday.Today(ctx, usecase.TriggerOnDemand)
		if err != nil {
			p.logger.WarnContext(ctx, "today from chat aborted", "chat_id", chatID, "error", err)
			return
		}
		for _, chunk := range result.Chunks {
			if !p.reply(ctx, chatID, chunk) {
				return
			}
		}
	}
}

func (p *Poller) reply(ctx context.Context, chatID, text string) bool {
	if err := p.replies.Send(ctx, chatID, text); err != nil {
		p.logger.WarnContext(ctx, "telegram reply failed", "chat_id", chatID, "error", err)
		return false
	}
	return true
}

// command extracts "/cmd" from "/cmd@bot_name args".
func command(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(cmd)
}
