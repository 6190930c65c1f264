package notification

import "context"

// Sink delivers one text chunk to one recipient. A returned error concerns
// that recipient only.
type Sink interface {
	Send(ctx context.Context, recipientID, text string) error
}
