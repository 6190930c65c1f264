package notification

import (
	"context"
	"unicode/utf8"

	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
)

// LogSink writes messages to the log instead of delivering them. Used when
// no chat transport is configured.
type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger.Named("log_sink")}
}

func (s *LogSink) Send(ctx context.Context, recipientID, text string) error {
	s.logger.InfoContext(ctx, "notification",
		"recipient_id", recipientID,
		"chars", utf8.RuneCountInString(text),
		"text", text,
	)
	return nil
}
