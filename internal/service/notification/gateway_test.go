package notification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/whatsapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMailer struct {
	sent []email.Message
	err  error
}

func (s *stubMailer) Send(_ context.Context, msg email.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type stubWhatsApp struct {
	to       []string
	text     []string
	template []string
	err      error
}

func (s *stubWhatsApp) Send(_ context.Context, msg whatsapp.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.to = append(s.to, msg.To)
	s.text = append(s.text, msg.Text)
	s.template = append(s.template, msg.Template)
	return "wamid-1", nil
}

type stubReader struct {
	system settings.SystemSettings
	err    error
}

func (s *stubReader) AttendanceSettings(context.Context) (settings.AttendanceSettings, error) {
	return settings.AttendanceSettings{}, settings.ErrSettingsNotFound
}

func (s *stubReader) SystemSettings(context.Context) (settings.SystemSettings, error) {
	return s.system, s.err
}

func newTestGateway(sys settings.SystemSettings) (notification.Gateway, *stubMailer, *stubWhatsApp, *stubReader) {
	mailer := &stubMailer{}
	wa := &stubWhatsApp{}
	reader := &stubReader{system: sys}
	return NewGateway(mailer, wa, reader), mailer, wa, reader
}

func TestGateway_SendEmailIfEnabled(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		sys := settings.DefaultSystemSettings()
		sys.EmailNotifications = false
		gw, mailer, _, _ := newTestGateway(sys)

		res := gw.SendEmailIfEnabled(context.Background(), notification.SendEmailRequest{
			To: "a@example.com", Subject: "Hi", Body: "Body",
		})
		assert.True(t, res.Skipped)
		assert.False(t, res.Failed())
		assert.Empty(t, mailer.sent)
	})

	t.Run("plain text gets prefix and footer", func(t *testing.T) {
		sys := settings.DefaultSystemSettings()
		sys.EmailNotifications = true
		sys.CompanyName = "  Acme  "
		gw, mailer, _, _ := newTestGateway(sys)

		res := gw.SendEmailIfEnabled(context.Background(), notification.SendEmailRequest{
			To: "a@example.com", Subject: "Check-in recorded", Body: "Hello",
		})
		require.True(t, res.Success)
		require.Len(t, mailer.sent, 1)

		msg := mailer.sent[0]
		assert.Equal(t, "a@example.com", msg.To)
		assert.Equal(t, "[Acme] Check-in recorded", msg.Subject)
		assert.Equal(t, "Hello\n\n---\nThis email was sent by Acme Attendance System.", msg.Body)
		assert.False(t, msg.IsHTML)
	})

	t.Run("html footer", func(t *testing.T) {
		sys := settings.DefaultSystemSettings()
		sys.EmailNotifications = true
		sys.CompanyName = "R&D"
		gw, mailer, _, _ := newTestGateway(sys)

		gw.SendEmailIfEnabled(context.Background(), notification.SendEmailRequest{
			To: "a@example.com", Subject: "S", Body: "<p>Hi</p>", IsHTML: true,
		})
		require.Len(t, mailer.sent, 1)
		body := mailer.sent[0].Body
		assert.True(t, strings.HasPrefix(body, "<p>Hi</p><hr"))
		assert.Contains(t, body, "R&amp;D Attendance System")
	})

	t.Run("settings failure", func(t *testing.T) {
		gw, mailer, _, reader := newTestGateway(settings.DefaultSystemSettings())
		reader.err = errors.New("db down")

		res := gw.SendEmailIfEnabled(context.Background(), notification.SendEmailRequest{To: "a@example.com", Subject: "S", Body: "B"})
		assert.True(t, res.Failed())
		assert.Equal(t, "db down", res.Error)
		assert.Empty(t, mailer.sent)
	})
}

func TestGateway_SendEmailFailure(t *testing.T) {
	gw, mailer, _, _ := newTestGateway(settings.DefaultSystemSettings())
	mailer.err = email.ErrNotConfigured

	res := gw.SendEmail(context.Background(), notification.SendEmailRequest{To: "a@example.com", Subject: "S", Body: "B"})
	require.True(t, res.Failed())
	assert.ErrorIs(t, res.Cause, email.ErrNotConfigured)

	err := ResultError(res)
	assert.True(t, notification.IsPermanent(err))
}

func TestGateway_SendWhatsAppIfEnabled(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		sys := settings.DefaultSystemSettings()
		sys.WhatsAppNotifications = false
		gw, _, wa, _ := newTestGateway(sys)

		res := gw.SendWhatsAppIfEnabled(context.Background(), notification.SendWhatsAppRequest{To: "9876543210", Message: "hi"})
		assert.True(t, res.Skipped)
		assert.Empty(t, wa.text)
	})

	t.Run("enabled adds header and footer", func(t *testing.T) {
		sys := settings.DefaultSystemSettings()
		sys.WhatsAppNotifications = true
		sys.CompanyName = "Acme"
		gw, _, wa, _ := newTestGateway(sys)

		res := gw.SendWhatsAppIfEnabled(context.Background(), notification.SendWhatsAppRequest{To: "9876543210", Message: "Late:5min"})
		require.True(t, res.Success)
		assert.Equal(t, "wamid-1", res.MessageID)
		require.Len(t, wa.text, 1)
		assert.Equal(t, whatsapp.FormatMessage("Acme", "Late:5min"), wa.text[0])
		assert.True(t, strings.HasPrefix(wa.text[0], "*Acme*"))
		assert.Equal(t, []string{""}, wa.template)
	})
}

func TestGateway_SendWhatsAppPassesTemplate(t *testing.T) {
	gw, _, wa, _ := newTestGateway(settings.DefaultSystemSettings())
	template := "attendance_update"

	res := gw.SendWhatsApp(context.Background(), notification.SendWhatsAppRequest{
		To:           "9876543210",
		Message:      "hi",
		TemplateName: &template,
	})
	require.True(t, res.Success)
	assert.Equal(t, []string{"attendance_update"}, wa.template)
	assert.Equal(t, []string{"9876543210"}, wa.to)
}

func TestResultError(t *testing.T) {
	assert.NoError(t, ResultError(notification.Result{Success: true}))
	assert.NoError(t, ResultError(notification.Result{Skipped: true}))

	transient := ResultError(notification.Result{Error: "timeout"})
	require.Error(t, transient)
	assert.False(t, notification.IsPermanent(transient))

	permanent := ResultError(notification.Result{Cause: whatsapp.ErrInvalidPhone, Error: whatsapp.ErrInvalidPhone.Error()})
	assert.True(t, notification.IsPermanent(permanent))
}
