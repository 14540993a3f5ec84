// Package notify delivers circle lifecycle events to users.
//
// Delivery is best effort: the engine sends after its transaction commits and
// only logs failures.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// EventKind identifies a circle lifecycle event.
type EventKind string

const (
	RequestAccepted EventKind = "request_accepted"
	RequestRejected EventKind = "request_rejected"
	PaymentReceived EventKind = "payment_received"
	CircleStarted   EventKind = "circle_started"
	PayoutProcessed EventKind = "payout_processed"
)

// Event is one notification addressed to one user.
type Event struct {
	UserID string
	Kind   EventKind
	// Data carries string key/values such as circle_id and turn.
	Data map[string]string
}

// Notifier sends an event to its user.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, event Event) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Title and Body return the human-readable text for an event.
func (e Event) Title() string {
	switch e.Kind {
	case RequestAccepted:
		return "Join request accepted"
	case RequestRejected:
		return "Join request declined"
	case PaymentReceived:
		return "Payment confirmed"
	case CircleStarted:
		return "Your circle has started"
	case PayoutProcessed:
		return "Payout sent"
	}
	return string(e.Kind)
}

// Body returns the message text for an event.
func (e Event) Body() string {
	name := e.Data["circle_name"]
	if name == "" {
		name = "your circle"
	}
	switch e.Kind {
	case RequestAccepted:
		return fmt.Sprintf("You are now a member of %s, turn %s.", name, e.Data["turn"])
	case RequestRejected:
		return fmt.Sprintf("The organizer of %s declined your request.", name)
	case PaymentReceived:
		return fmt.Sprintf("Your contribution to %s for turn %s was confirmed.", name, e.Data["turn"])
	case CircleStarted:
		return fmt.Sprintf("%s is active. Your turn is %s.", name, e.Data["turn"])
	case PayoutProcessed:
		return fmt.Sprintf("The pot for turn %s of %s has been paid out.", e.Data["turn"], name)
	}
	return ""
}

// Fanout sends every event to each notifier in turn and joins their errors.
type Fanout []Notifier

// Notify implements Notifier.
func (f Fanout) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log records events with slog. It never fails.
type Log struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (l Log) Notify(ctx context.Context, event Event) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Notification",
		"user_id", event.UserID,
		"kind", event.Kind,
		"circle_id", event.Data["circle_id"],
	)
	return nil
}
