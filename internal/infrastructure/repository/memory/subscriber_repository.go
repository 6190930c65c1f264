package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/tennis-reminder/internal/domain/subscriber"
)

// SubscriberRepository keeps subscribers for the lifetime of the process in
// subscription order.
type SubscriberRepository struct {
	mu     sync.RWMutex
	items  map[string]subscriber.Subscriber
	orders []string
}

func NewSubscriberRepository(seed []subscriber.Subscriber) *SubscriberRepository {
	r := &SubscriberRepository{
		items:  make(map[string]subscriber.Subscriber, len(seed)),
		orders: make([]string, 0, len(seed)),
	}
	for _, s := range seed {
		r.insert(s)
	}
	return r
}

func (r *SubscriberRepository) Add(_ context.Context, s subscriber.Subscriber) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insert(s), nil
}

func (r *SubscriberRepository) Snapshot(_ context.Context) ([]subscriber.Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]subscriber.Subscriber, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id])
	}

	return out, nil
}

func (r *SubscriberRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

func (r *SubscriberRepository) insert(s subscriber.Subscriber) bool {
	if _, exists := r.items[s.RecipientID]; exists {
		return false
	}
	r.items[s.RecipientID] = s
	r.orders = append(r.orders, s.RecipientID)
	return true
}
