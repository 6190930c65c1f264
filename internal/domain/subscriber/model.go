package subscriber

import (
	"fmt"
	"strings"
	"time"
)

type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelHTTP     Channel = "http"
)

// Subscriber is a recipient of the daily reminder for the lifetime of the
// process.
type Subscriber struct {
	RecipientID  string
	Channel      Channel
	SubscribedAt time.Time
}

func (s Subscriber) Validate() error {
	if strings.TrimSpace(s.RecipientID) == "" {
		return fmt.Errorf("recipient id is required")
	}
	if s.Channel == "" {
		return fmt.Errorf("subscriber channel is required")
	}
	return nil
}
