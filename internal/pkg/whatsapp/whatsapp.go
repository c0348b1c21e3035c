package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/google/uuid"
)

var (
	ErrNotConfigured = errors.New("WhatsApp provider API key is not configured")
	ErrInvalidPhone  = errors.New("invalid WhatsApp phone number")
)

// Message is a single outgoing WhatsApp message. Template names a
// provider template and is optional.
type Message struct {
	To       string
	Text     string
	Template string
}

// Sender delivers a Message to a normalised phone number and returns the
// provider message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Client is the messaging provider client. The provider call itself is
// simulated: messages are logged and acknowledged with a generated id.
type Client struct {
	cfg config.WhatsAppConfig
	now func() time.Time
}

func NewClient(cfg config.WhatsAppConfig) *Client {
	return &Client{cfg: cfg, now: time.Now}
}

// Send implements Sender.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	phone, err := NormalizePhone(msg.To, c.cfg.DefaultCountryCode)
	if err != nil {
		return "", err
	}

	messageID := fmt.Sprintf("wa_%d_%s", c.now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
	slog.Info("WhatsApp message accepted (simulated provider)",
		"to", phone,
		"from", c.cfg.SenderNumber,
		"message_id", messageID,
		"template", msg.Template,
		"length", len(msg.Text),
	)
	return messageID, nil
}

// NormalizePhone strips everything but digits and a leading '+'. A "00"
// international prefix becomes '+', a bare 10 digit number gets
// defaultCountryCode, and numbers already starting with '+' pass through.
func NormalizePhone(raw, defaultCountryCode string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	plus := strings.HasPrefix(trimmed, "+")

	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if d == "" {
		return "", ErrInvalidPhone
	}

	switch {
	case plus:
		return "+" + d, nil
	case strings.HasPrefix(d, "00") && len(d) > 2:
		return "+" + d[2:], nil
	case len(d) == 10:
		cc := strings.TrimPrefix(defaultCountryCode, "+")
		return "+" + cc + d, nil
	default:
		return "+" + d, nil
	}
}

// FormatMessage wraps text with a bold company header and an automated
// message footer.
func FormatMessage(companyName, text string) string {
	var b strings.Builder
	if companyName = strings.TrimSpace(companyName); companyName != "" {
		fmt.Fprintf(&b, "*%s*\n\n", companyName)
	}
	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\n\n_This is an automated message. Please do not reply._")
	return b.String()
}
