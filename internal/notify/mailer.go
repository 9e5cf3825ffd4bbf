// Package notify implements the notification dispatcher.  Sending is
// best-effort: failures are logged and reported as false, never raised
// into the caller's control flow, so booking success is not contingent
// on notification success.
package notify

import (
	"context"
	"log"
	"time"

	"github.com/mailersend/mailersend-go"
)

// Mailer sends transactional email through MailerSend.  It satisfies
// the booking engine's Notifier interface.
type Mailer struct {
	client    *mailersend.Mailersend
	fromName  string
	fromEmail string
}

// NewMailer constructs a Mailer with the given API key and sender
// identity.
func NewMailer(apiKey, fromName, fromEmail string) *Mailer {
	return &Mailer{
		client:    mailersend.NewMailersend(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// Send delivers one message and reports whether delivery was accepted.
// When html is true the body is sent as HTML, otherwise as plain text.
func (m *Mailer) Send(ctx context.Context, to, subject, body string, html bool) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	message := m.client.Email.NewMessage()
	message.SetFrom(mailersend.From{Name: m.fromName, Email: m.fromEmail})
	message.SetRecipients([]mailersend.Recipient{{Email: to}})
	message.SetSubject(subject)
	if html {
		message.SetHTML(body)
	} else {
		message.SetText(body)
	}

	res, err := m.client.Email.Send(ctx, message)
	if err != nil {
		log.Printf("mailer: send to %s failed: %v", to, err)
		return false
	}
	log.Printf("mailer: sent %q to %s (message id %s)", subject, to, res.Header.Get("X-Message-Id"))
	return true
}

// LogMailer is the fallback dispatcher used when no MailerSend API key
// is configured (development and tests).  It logs the message and
// reports success.
type LogMailer struct{}

// Send logs the message instead of delivering it.
func (LogMailer) Send(_ context.Context, to, subject, _ string, _ bool) bool {
	log.Printf("mailer: (dry-run) %q to %s", subject, to)
	return true
}
