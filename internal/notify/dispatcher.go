// Package notify sends a grown-up the search links for a topic.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/natattack03/catinci-showme/internal/links"
	"github.com/natattack03/catinci-showme/internal/sms"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 10 * time.Second

// DispatchError reports a failed send to a destination.
type DispatchError struct {
	To  string
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch to %s: %v", sms.MaskNumber(e.To), e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// Dispatcher formats and sends one message per call. It makes a single
// attempt; retries belong to the outbox relay.
type Dispatcher struct {
	sender  sms.Sender
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a Dispatcher. A non-positive timeout uses DefaultTimeout.
func New(sender sms.Sender, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{sender: sender, timeout: timeout, logger: logger}
}

// Body renders the text sent to the grown-up.
func Body(l links.Links) string {
	return fmt.Sprintf("Here are kid-friendly pictures and videos about %s!\n"+
		"Images: %s\n\n"+
		"Videos: %s\n\n"+
		"- Catinci AI 🌟", l.Topic, l.ImageURL, l.VideoURL)
}

// Send delivers the links to the phone number to. Every failure, including
// a provider that outlives the timeout, is returned as *DispatchError.
func (d *Dispatcher) Send(ctx context.Context, to string, l links.Links) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	msg := sms.NewMessage(to, Body(l))
	start := time.Now()
	err := d.send(ctx, msg)
	if err != nil {
		fields := []zap.Field{
			zap.String("id", msg.ID),
			zap.String("to", sms.MaskNumber(to)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		}
		if errors.Is(err, context.DeadlineExceeded) {
			d.logger.Error("sms dispatch timed out", fields...)
		} else {
			d.logger.Error("sms dispatch failed", fields...)
		}
		return &DispatchError{To: to, Err: err}
	}

	d.logger.Info("sms dispatched",
		zap.String("id", msg.ID),
		zap.String("to", sms.MaskNumber(to)),
		zap.String("topic", l.Topic),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// send returns when the sender does or when ctx expires, whichever is
// first, so a sender that ignores its context cannot hang the request.
func (d *Dispatcher) send(ctx context.Context, msg sms.OutboundMessage) error {
	done := make(chan error, 1)
	go func() { done <- d.sender.Send(ctx, msg) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
