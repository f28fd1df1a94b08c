package devtools

import (
	"time"

	"github.com/quartzlabs/devtools/reflected"
)

// EventKind identifies the type of event emitted by the dispatcher.
type EventKind string

const (
	// EventCommandApplied is emitted after a command mutates the state store.
	EventCommandApplied EventKind = "command_applied"

	// EventCommandFailed is emitted when a dispatch cannot produce a command
	// (unknown type, payload shape mismatch).
	EventCommandFailed EventKind = "command_failed"
)

// String returns the string representation of the EventKind.
func (k EventKind) String() string {
	return string(k)
}

// Event is a structured record of one dispatch outcome.
type Event struct {
	// ID uniquely identifies this dispatch.
	ID string

	// Kind identifies the event type.
	Kind EventKind

	// Command is the display name of the command, when resolved.
	Command string

	// Key is the command's type key, when resolved.
	Key reflected.TypeKey

	// Time is when the event occurred.
	Time time.Time

	// Elapsed is the duration of the apply; zero for failures before apply.
	Elapsed time.Duration

	// Err carries the failure code and message for failed dispatches.
	Err string
}

// EventEmitter is a function type for emitting events.
type EventEmitter func(Event)

// MultiEmitter fans one event out to several emitters in order.
func MultiEmitter(emitters ...EventEmitter) EventEmitter {
	return func(e Event) {
		for _, emit := range emitters {
			if emit != nil {
				emit(e)
			}
		}
	}
}
