// Package mail delivers the admin notification for newly created articles
// over SMTP with STARTTLS, matching the site's mail account settings.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"lsfd202201/internal/model"
	"lsfd202201/internal/site"
)

// SMTPSender sends notification mail through a single SMTP account.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	sender   string
}

var _ site.MailSender = (*SMTPSender)(nil)

// NewSMTPSender creates a sender for the given SMTP account. port is the
// STARTTLS submission port, normally 587.
func NewSMTPSender(host string, port int, username, password, sender string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		sender:   sender,
	}
}

// SendArticleNotification delivers one plain-text message to every recipient.
// Delivery is best-effort; the caller decides what to do with a failure.
func (s *SMTPSender) SendArticleNotification(ctx context.Context, recipients []string, subject string, a *model.Article) error {
	if len(recipients) == 0 {
		return nil
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.sender); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(recipients...); err != nil {
		return fmt.Errorf("setting recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, notificationBody(a))

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	return nil
}

func notificationBody(a *model.Article) string {
	return fmt.Sprintf("Title: %s\nAuthor: %s\n\n%s\n", a.Title, a.Author, a.Content)
}

// NopSender discards all mail. Used when delivery is suppressed in
// development and test configurations.
type NopSender struct{}

var _ site.MailSender = (*NopSender)(nil)

func NewNopSender() *NopSender { return &NopSender{} }

func (*NopSender) SendArticleNotification(context.Context, []string, string, *model.Article) error {
	return nil
}

// NewSenderFromConfig returns the SMTP sender, or the nop sender when
// delivery is suppressed or no host is configured.
func NewSenderFromConfig(host string, port int, username, password, sender string, suppress bool) site.MailSender {
	if suppress || host == "" {
		return NewNopSender()
	}
	return NewSMTPSender(host, port, username, password, sender)
}
