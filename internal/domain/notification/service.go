package notification

import (
	"context"
)

// Gateway delivers messages over email and WhatsApp. The IfEnabled variants
// consult the system settings flags and report Skipped when a channel is off.
type Gateway interface {
	SendEmail(ctx context.Context, req SendEmailRequest) Result
	SendEmailIfEnabled(ctx context.Context, req SendEmailRequest) Result
	SendWhatsApp(ctx context.Context, req SendWhatsAppRequest) Result
	SendWhatsAppIfEnabled(ctx context.Context, req SendWhatsAppRequest) Result
}

// Dispatcher runs queued side effects on background workers with retries.
type Dispatcher interface {
	// Enqueue never blocks. A full queue drops the task and returns ErrQueueFull.
	Enqueue(task Task) error
	Stats() Stats
	// Stop drains the queued tasks and waits for the workers.
	Stop()
}
