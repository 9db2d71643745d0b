// Package notification isolates outbound alert delivery so transports can
// change without touching the classification pipeline. Dispatch is
// fire-and-forget: per-channel outcomes are captured and logged, never
// retried or propagated.
package notification

import (
	"context"
	"log"
	"sync"
)

// Channel names an independent outbound notification medium
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Notifier hides one delivery transport behind a common contract
type Notifier interface {
	Channel() Channel
	// Validate ensures the transport has enough configuration before a
	// pipeline starts using it.
	Validate() error
	Send(ctx context.Context, subject, body string) error
}

// Outcome records the result of one channel's dispatch attempt
type Outcome struct {
	Channel Channel
	Err     error
}

// OK reports whether the dispatch succeeded
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Composite fans one message out to every configured channel. Channels run
// in parallel and a failure on one never blocks or fails another.
type Composite struct {
	notifiers []Notifier
}

// NewComposite builds a dispatcher over the given transports
func NewComposite(notifiers ...Notifier) *Composite {
	return &Composite{notifiers: notifiers}
}

// Channels returns the channels this dispatcher will attempt
func (c *Composite) Channels() []Channel {
	channels := make([]Channel, 0, len(c.notifiers))
	for _, n := range c.notifiers {
		channels = append(channels, n.Channel())
	}
	return channels
}

// Dispatch sends the message on every channel and returns one outcome per
// channel. It never returns an error: channel failures are captured in the
// outcomes and logged.
func (c *Composite) Dispatch(ctx context.Context, subject, body string) []Outcome {
	outcomes := make([]Outcome, len(c.notifiers))
	var wg sync.WaitGroup
	for i, n := range c.notifiers {
		wg.Add(1)
		go func(i int, n Notifier) {
			defer wg.Done()
			err := n.Send(ctx, subject, body)
			if err != nil {
				log.Printf("Failed to send %s notification: %v", n.Channel(), err)
			} else {
				log.Printf("Sent %s notification: %s", n.Channel(), subject)
			}
			outcomes[i] = Outcome{Channel: n.Channel(), Err: err}
		}(i, n)
	}
	wg.Wait()
	return outcomes
}
