package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
)

var (
	ErrNotConfigured  = errors.New("SMTP host is not configured")
	ErrNoRecipient    = errors.New("recipient address is required")
	ErrTLSUnavailable = errors.New("SMTP server does not support STARTTLS")
)

// Message is a single outgoing mail.
type Message struct {
	To      string
	Subject string
	Body    string
	IsHTML  bool
}

// Sender delivers a Message. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer speaks SMTP through net/smtp: EHLO, STARTTLS, EHLO, AUTH LOGIN,
// MAIL, RCPT, DATA, QUIT. The DATA payload is produced by EncodeData.
type Mailer struct {
	cfg       config.SMTPConfig
	dialer    *net.Dialer
	tlsConfig func(host string) *tls.Config
	now       func() time.Time
}

// NewMailer creates a new SMTP mailer
func NewMailer(cfg config.SMTPConfig) *Mailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Mailer{
		cfg:    cfg,
		dialer: &net.Dialer{Timeout: cfg.Timeout},
		tlsConfig: func(host string) *tls.Config {
			return &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
		},
		now: time.Now,
	}
}

// Send implements Sender.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if m.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", msg.To, "subject", msg.Subject)
		return ErrNotConfigured
	}
	if msg.To == "" {
		return ErrNoRecipient
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	conn, err := m.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	deadline := m.now().Add(m.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("set deadline: %w", err)
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()

	if err := c.Hello("localhost"); err != nil {
		return fmt.Errorf("EHLO: %w", err)
	}

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(m.tlsConfig(m.cfg.Host)); err != nil {
			return fmt.Errorf("STARTTLS: %w", err)
		}
	} else if m.cfg.RequireTLS {
		return ErrTLSUnavailable
	}

	if m.cfg.Username != "" {
		if err := c.Auth(LoginAuth(m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
			return fmt.Errorf("AUTH LOGIN: %w", err)
		}
	}

	if err := c.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}

	header := Header{
		From:     m.cfg.From,
		FromName: m.cfg.FromName,
		Date:     m.now(),
	}
	if err := writeData(c, EncodeData(BuildMessage(header, msg))); err != nil {
		return fmt.Errorf("DATA: %w", err)
	}

	if err := c.Quit(); err != nil {
		return fmt.Errorf("QUIT: %w", err)
	}

	slog.Info("Email sent successfully", "to", msg.To, "subject", msg.Subject)
	return nil
}

// writeData sends DATA and the already encoded payload. smtp.Client.Data
// would dot-stuff a second time, so the text connection is driven directly.
func writeData(c *smtp.Client, payload []byte) error {
	id, err := c.Text.Cmd("DATA")
	if err != nil {
		return err
	}
	c.Text.StartResponse(id)
	_, _, err = c.Text.ReadResponse(354)
	c.Text.EndResponse(id)
	if err != nil {
		return err
	}

	if _, err := c.Text.W.Write(payload); err != nil {
		return err
	}
	if err := c.Text.W.Flush(); err != nil {
		return err
	}

	_, _, err = c.Text.ReadResponse(250)
	return err
}
