package realtime

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types pushed to subscribers.
const (
	EventCheckIn  = "checkin"
	EventCheckOut = "checkout"
	EventUpdate   = "update"
)

// ErrSinkClosed is returned by a Sink after Close.
var ErrSinkClosed = errors.New("realtime: sink closed")

// Event is an attendance change pushed to subscribers.
type Event struct {
	Type         string    `json:"type"`
	EmployeeID   int64     `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	Timestamp    time.Time `json:"timestamp"`
	Notes        *string   `json:"notes,omitempty"`
}

// HeartbeatEvent keeps idle transports alive.
func HeartbeatEvent(now time.Time) Event {
	return Event{
		Type:         EventUpdate,
		EmployeeID:   -1,
		EmployeeName: "heartbeat",
		Timestamp:    now,
	}
}

// Sink is one open push transport. Send and Close may be called from
// different goroutines.
type Sink interface {
	Send(evt Event) error
	Close() error
}

// Subscription is a registered sink.
type Subscription struct {
	ID     string
	UserID string

	sink Sink
	stop chan struct{}
	once sync.Once
}

// Done is closed once the subscription has been removed from the hub, either
// by Unsubscribe or because a write to its sink failed.
func (s *Subscription) Done() <-chan struct{} {
	return s.stop
}

// Hub fans attendance events out to every open subscription. Delivery is
// best effort: there is no replay and no ordering across subscribers. A
// subscription whose sink fails a write is pruned immediately.
type Hub struct {
	mu        sync.RWMutex
	subs      map[string]*Subscription
	heartbeat time.Duration
	now       func() time.Time
}

// NewHub creates a hub that sends a heartbeat on every subscription each
// interval. A non-positive interval disables heartbeats.
func NewHub(heartbeat time.Duration) *Hub {
	return &Hub{
		subs:      make(map[string]*Subscription),
		heartbeat: heartbeat,
		now:       time.Now,
	}
}

// Subscribe registers sink and starts its heartbeat.
func (h *Hub) Subscribe(userID string, sink Sink) *Subscription {
	sub := &Subscription{
		ID:     uuid.NewString(),
		UserID: userID,
		sink:   sink,
		stop:   make(chan struct{}),
	}

	h.mu.Lock()
	h.subs[sub.ID] = sub
	total := len(h.subs)
	h.mu.Unlock()

	if h.heartbeat > 0 {
		go h.runHeartbeat(sub)
	}

	slog.Info("Realtime subscriber connected", "subscription_id", sub.ID, "user_id", userID, "subscribers", total)
	return sub
}

// Unsubscribe removes the subscription, stops its heartbeat and closes its sink.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()

	if ok {
		h.release(sub)
		slog.Info("Realtime subscriber disconnected", "subscription_id", id, "user_id", sub.UserID)
	}
}

// Publish writes evt to every current subscription and returns how many
// writes succeeded. Failed subscriptions are pruned.
func (h *Hub) Publish(evt Event) int {
	h.mu.RLock()
	snapshot := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		snapshot = append(snapshot, sub)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, sub := range snapshot {
		if err := sub.sink.Send(evt); err != nil {
			h.prune(sub, err)
			continue
		}
		delivered++
	}
	return delivered
}

// Count returns the number of open subscriptions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close drops every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[string]*Subscription)
	h.mu.Unlock()

	for _, sub := range subs {
		h.release(sub)
	}
}

func (h *Hub) prune(sub *Subscription, cause error) {
	h.mu.Lock()
	_, ok := h.subs[sub.ID]
	delete(h.subs, sub.ID)
	h.mu.Unlock()

	if ok {
		slog.Warn("Pruning realtime subscriber after failed write",
			"subscription_id", sub.ID,
			"user_id", sub.UserID,
			"error", cause,
		)
		h.release(sub)
	}
}

func (h *Hub) release(sub *Subscription) {
	sub.once.Do(func() {
		close(sub.stop)
		_ = sub.sink.Close()
	})
}

func (h *Hub) runHeartbeat(sub *Subscription) {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-sub.stop:
			return
		case <-ticker.C:
			if err := sub.sink.Send(HeartbeatEvent(h.now())); err != nil {
				h.prune(sub, err)
				return
			}
		}
	}
}
