// internal/notify/email.go
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"finvest-api/internal/config"
)

// SMTPChannel delivers emails over SMTP.
type SMTPChannel struct {
	host     string
	port     int
	user     string
	password string
	from     string
	enabled  bool
}

// NewSMTPChannel creates an SMTP delivery channel from config.
func NewSMTPChannel(cfg config.SMTPConfig) *SMTPChannel {
	return &SMTPChannel{
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.User,
		password: cfg.Password,
		from:     cfg.From,
		enabled:  cfg.Enabled,
	}
}

// Name returns the channel name.
func (c *SMTPChannel) Name() string { return "smtp" }

// IsEnabled reports whether the channel is configured.
func (c *SMTPChannel) IsEnabled() bool { return c.enabled }

// Send delivers one email. The context deadline is not honored mid-send
// by net/smtp; it bounds only the enqueue-to-send window.
func (c *SMTPChannel) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", c.from)
	fmt.Fprintf(&msg, "To: %s\r\n", email.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", email.Subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(email.HTML)

	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	auth := smtp.PlainAuth("", c.user, c.password, c.host)
	if err := smtp.SendMail(addr, auth, c.from, []string{email.To}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", email.To, err)
	}
	return nil
}
