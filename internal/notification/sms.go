package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSNotifier delivers alerts as text messages through Twilio.
// SMS has no subject line, so only the body is sent.
type SMSNotifier struct {
	client     *twilio.RestClient
	accountSID string
	authToken  string
	from       string
	to         string
}

// NewSMSNotifier creates a Twilio-backed notifier
func NewSMSNotifier(accountSID, authToken, from, to string) *SMSNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSNotifier{
		client:     client,
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		to:         to,
	}
}

// Channel identifies this transport
func (n *SMSNotifier) Channel() Channel {
	return ChannelSMS
}

// Validate checks the Twilio configuration is complete
func (n *SMSNotifier) Validate() error {
	if n.accountSID == "" || n.authToken == "" {
		return errors.New("Twilio account SID and auth token are required")
	}
	if n.from == "" || n.to == "" {
		return errors.New("Twilio from and alert to phone numbers are required")
	}
	return nil
}

// Send delivers a single text message
func (n *SMSNotifier) Send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(n.from)
	params.SetTo(n.to)
	params.SetBody(body)

	if _, err := n.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS to %s: %v", n.to, err)
	}
	return nil
}
