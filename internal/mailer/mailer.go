// Package mailer sends transactional email. Delivery is best-effort; callers
// must not fail user-facing flows on mail errors.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer delivers a single plain-text message.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	Host string
	Port string
	From string
}

// NewSMTPMailer returns a Mailer for the given relay. An empty host yields a
// Noop mailer so development environments need no mail setup.
func NewSMTPMailer(host, port, from string) Mailer {
	if host == "" {
		return Noop{}
	}
	return &SMTPMailer{Host: host, Port: port, From: from}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := m.Host + ":" + m.Port
	if err := smtp.SendMail(addr, nil, m.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// Noop discards all messages.
type Noop struct{}

func (Noop) Send(to, subject, body string) error { return nil }

// Recorder captures messages for tests.
type Recorder struct {
	Sent []RecordedMessage
}

// RecordedMessage is one captured delivery.
type RecordedMessage struct {
	To      string
	Subject string
	Body    string
}

func (r *Recorder) Send(to, subject, body string) error {
	r.Sent = append(r.Sent, RecordedMessage{To: to, Subject: subject, Body: body})
	return nil
}
