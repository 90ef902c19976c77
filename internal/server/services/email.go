package services

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/mesadesk/ticketdesk/internal/server/config"
)

// Mailer sends an HTML message to the given recipients.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// SMTPMailer delivers mail over plain SMTP with PLAIN auth.
type SMTPMailer struct {
	host       string
	port       int
	username   string
	password   string
	sender     string
	senderName string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:       cfg.SMTPHost,
		port:       cfg.SMTPPort,
		username:   cfg.SMTPUsername,
		password:   cfg.SMTPPassword,
		sender:     cfg.SMTPSender,
		senderName: cfg.SMTPSenderName,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.senderName, m.sender); err != nil {
		return fmt.Errorf("error setting sender: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return fmt.Errorf("error setting recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetImportance(mail.ImportanceHigh)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
	)
	if err != nil {
		return fmt.Errorf("error creating smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("error sending mail: %w", err)
	}
	return nil
}
