// Package mailer sends outbound email through a configured SMTP relay.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Message is one outbound email. Cc is optional and, when set, is visible to
// the primary recipient as a secondary recipient.
type Message struct {
	Subject  string
	HTMLBody string
	To       string
	Cc       string
}

// Mailer dispatches a single message. Implementations must respect ctx so a
// stuck relay connection cannot stall the caller indefinitely.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds relay connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends mail over an implicit-TLS SMTP relay.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates a new SMTPMailer for the given relay.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send delivers one message. The connection is dialed per send; the relay
// serializes deliveries anyway and the scan sends sequentially.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	email := mail.NewMsg()
	if err := email.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := email.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	if msg.Cc != "" {
		if err := email.Cc(msg.Cc); err != nil {
			return fmt.Errorf("invalid cc address: %w", err)
		}
	}
	email.Subject(msg.Subject)
	email.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("sending mail to %s: %w", msg.To, err)
	}
	return nil
}
