package notification

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher sends events to a Notifier without blocking the caller.
// Each dispatch runs in its own goroutine with a bounded timeout; a failed
// or slow delivery is logged and otherwise dropped.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   zerolog.Logger
}

func NewDispatcher(notifier Notifier, timeout time.Duration, logger zerolog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		notifier: notifier,
		timeout:  timeout,
		logger:   logger,
	}
}

// Dispatch delivers the event asynchronously. It returns immediately.
func (d *Dispatcher) Dispatch(userID string, event Event, payload map[string]any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.notifier.Notify(ctx, userID, event, payload); err != nil {
			d.logger.Warn().
				Err(err).
				Str("user_id", userID).
				Str("event", string(event)).
				Msg("notification delivery failed")
		}
	}()
}
