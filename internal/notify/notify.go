// Package notify emits task lifecycle events to external observers, such as
// a monitoring socket.io endpoint or a plain webhook. Notifier failures are
// reported to the caller but are expected to be non-fatal for the task run.
package notify

import "context"

// Event is one task lifecycle notification.
type Event struct {
	Name string            `json:"name"`
	Task string            `json:"task"`
	Vars map[string]string `json:"vars,omitempty"`
}

// Notifier delivers a single event.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}
