// Package channel implements the three delivery channels: browser push
// (Web Push / VAPID), native push (FCM), and chat (Telegram bot). Each
// sender knows only how to deliver one payload to one address and how to
// classify the failure it got back; everything above it (eligibility,
// fan-out, dedup, cleanup) lives in the notify use case.
package channel

import "fmt"

// Status classifies the result of a single send attempt.
type Status int

const (
	// Delivered means the provider accepted the message.
	Delivered Status = iota

	// PermanentFailure means the address is dead (expired subscription,
	// unregistered token) and should be removed by the caller.
	PermanentFailure

	// TransientFailure covers everything that might succeed on a later
	// attempt: network errors, 5xx responses, timeouts, rate limits.
	TransientFailure
)

// String returns the metric/log label for the status.
func (s Status) String() string {
	switch s {
	case Delivered:
		return "delivered"
	case PermanentFailure:
		return "permanent_failure"
	case TransientFailure:
		return "transient_failure"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the three-way result of one send to one address.
// Err is nil exactly when Status is Delivered.
type Outcome struct {
	Status Status
	Err    error
}

func delivered() Outcome {
	return Outcome{Status: Delivered}
}

func permanent(err error) Outcome {
	return Outcome{Status: PermanentFailure, Err: err}
}

func transient(err error) Outcome {
	return Outcome{Status: TransientFailure, Err: err}
}
