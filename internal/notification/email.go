package notification

import (
	"context"
	"errors"
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// EmailNotifier delivers alerts as plaintext mail over SMTP
type EmailNotifier struct {
	host     string
	port     int
	sender   string
	password string
	receiver string
}

// NewEmailNotifier creates an SMTP-backed notifier
func NewEmailNotifier(host string, port int, sender, password, receiver string) *EmailNotifier {
	return &EmailNotifier{
		host:     host,
		port:     port,
		sender:   sender,
		password: password,
		receiver: receiver,
	}
}

// Channel identifies this transport
func (n *EmailNotifier) Channel() Channel {
	return ChannelEmail
}

// Validate checks the SMTP configuration is complete
func (n *EmailNotifier) Validate() error {
	if n.host == "" || n.port == 0 {
		return errors.New("SMTP server and port are required")
	}
	if n.sender == "" || n.password == "" || n.receiver == "" {
		return errors.New("alert email sender, password and receiver are required")
	}
	return nil
}

// Send delivers a single plaintext message. The SMTP dial is blocking I/O;
// the context is consulted before dialing since gomail does not take one.
func (n *EmailNotifier) Send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.sender)
	m.SetHeader("To", n.receiver)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	dialer := gomail.NewDialer(n.host, n.port, n.sender, n.password)
	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %v", n.receiver, err)
	}
	return nil
}
