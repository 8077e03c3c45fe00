// Package notify delivers outbox notifications to external sinks.
package notify

import (
	"context"

	"rescueDispatch/internal/domain"
)

// Sink is one external notification store. Accepts lets a sink subscribe to a
// subset of events.
type Sink interface {
	Name() string
	Accepts(n domain.Notification) bool
	Send(ctx context.Context, n domain.Notification) error
}
