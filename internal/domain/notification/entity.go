package notification

import "context"

// Channel identifies what a queued task delivers.
type Channel string

const (
	ChannelEmail     Channel = "email"
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelBroadcast Channel = "broadcast"
)

// Result is the outcome of a single delivery attempt. Channels never return
// errors to their callers; failures are described here instead.
type Result struct {
	Success   bool   `json:"success"`
	Skipped   bool   `json:"skipped,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`

	// Cause keeps the underlying error for retry decisions.
	Cause error `json:"-"`
}

// Failed reports whether the attempt should count as a delivery failure.
func (r Result) Failed() bool {
	return !r.Success && !r.Skipped
}

// Task is a unit of work for the Dispatcher. Run is retried while it returns
// a retryable error.
type Task struct {
	ID      string
	Channel Channel
	Subject string
	Run     func(ctx context.Context) error
}

// Stats are cumulative dispatcher counters.
type Stats struct {
	Enqueued  uint64 `json:"enqueued"`
	Delivered uint64 `json:"delivered"`
	Retried   uint64 `json:"retried"`
	Failed    uint64 `json:"failed"`
	Dropped   uint64 `json:"dropped"`
	Pending   int    `json:"pending"`
}
