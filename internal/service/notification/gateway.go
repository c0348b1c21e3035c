package notification

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/whatsapp"
)

type gateway struct {
	mailer   email.Sender
	whatsapp whatsapp.Sender
	settings settings.Reader
}

// NewGateway wires the mail and WhatsApp channels to the settings flags.
func NewGateway(mailer email.Sender, wa whatsapp.Sender, reader settings.Reader) notification.Gateway {
	return &gateway{
		mailer:   mailer,
		whatsapp: wa,
		settings: reader,
	}
}

// SendEmail implements notification.Gateway.
func (g *gateway) SendEmail(ctx context.Context, req notification.SendEmailRequest) notification.Result {
	err := g.mailer.Send(ctx, email.Message{
		To:      req.To,
		Subject: req.Subject,
		Body:    req.Body,
		IsHTML:  req.IsHTML,
	})
	if err != nil {
		slog.Warn("Email delivery failed", "to", req.To, "subject", req.Subject, "error", err)
		return failure(err)
	}

	slog.Info("Email sent", "to", req.To, "subject", req.Subject)
	return notification.Result{Success: true}
}

// SendEmailIfEnabled implements notification.Gateway.
func (g *gateway) SendEmailIfEnabled(ctx context.Context, req notification.SendEmailRequest) notification.Result {
	sys, err := g.settings.SystemSettings(ctx)
	if err != nil {
		return failure(err)
	}
	if !sys.EmailNotifications {
		slog.Debug("Email notifications disabled, skipping", "to", req.To)
		return notification.Result{Skipped: true}
	}

	company := strings.TrimSpace(sys.CompanyName)
	if company != "" {
		req.Subject = "[" + company + "] " + req.Subject
	}
	req.Body += emailFooter(company, req.IsHTML)

	return g.SendEmail(ctx, req)
}

// SendWhatsApp implements notification.Gateway.
func (g *gateway) SendWhatsApp(ctx context.Context, req notification.SendWhatsAppRequest) notification.Result {
	company := settings.DefaultSystemSettings().CompanyName
	if sys, err := g.settings.SystemSettings(ctx); err == nil {
		company = sys.CompanyName
	} else {
		slog.Warn("Falling back to default company name for WhatsApp header", "error", err)
	}

	msg := whatsapp.Message{
		To:   req.To,
		Text: whatsapp.FormatMessage(company, req.Message),
	}
	if req.TemplateName != nil {
		msg.Template = *req.TemplateName
	}

	messageID, err := g.whatsapp.Send(ctx, msg)
	if err != nil {
		slog.Warn("WhatsApp delivery failed", "to", req.To, "error", err)
		return failure(err)
	}
	return notification.Result{Success: true, MessageID: messageID}
}

// SendWhatsAppIfEnabled implements notification.Gateway.
func (g *gateway) SendWhatsAppIfEnabled(ctx context.Context, req notification.SendWhatsAppRequest) notification.Result {
	sys, err := g.settings.SystemSettings(ctx)
	if err != nil {
		return failure(err)
	}
	if !sys.WhatsAppNotifications {
		slog.Debug("WhatsApp notifications disabled, skipping", "to", req.To)
		return notification.Result{Skipped: true}
	}
	return g.SendWhatsApp(ctx, req)
}

// ResultError converts a delivery result into a dispatcher error. Skipped
// deliveries are not errors; configuration problems are not retried.
func ResultError(res notification.Result) error {
	if !res.Failed() {
		return nil
	}
	err := res.Cause
	if err == nil {
		err = errors.New(res.Error)
	}
	if errors.Is(err, email.ErrNotConfigured) ||
		errors.Is(err, email.ErrNoRecipient) ||
		errors.Is(err, email.ErrTLSUnavailable) ||
		errors.Is(err, whatsapp.ErrNotConfigured) ||
		errors.Is(err, whatsapp.ErrInvalidPhone) {
		return notification.Permanent(err)
	}
	return err
}

func failure(err error) notification.Result {
	return notification.Result{Success: false, Error: err.Error(), Cause: err}
}

func emailFooter(company string, isHTML bool) string {
	sender := "Attendance System"
	if company != "" {
		sender = company + " " + sender
	}
	if isHTML {
		return `<hr style="margin-top:24px;border:none;border-top:1px solid #ddd">` +
			`<p style="color:#888;font-size:12px">This email was sent by ` + html.EscapeString(sender) + `.</p>`
	}
	return "\n\n---\nThis email was sent by " + sender + "."
}
