package subscriber

import "context"

// Repository is the process-wide subscriber set. Add is safe for concurrent
// callers; Snapshot returns a copy in subscription order.
type Repository interface {
	Add(ctx context.Context, s Subscriber) (added bool, err error)
	Snapshot(ctx context.Context) ([]Subscriber, error)
}
