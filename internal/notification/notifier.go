package notification

import (
	"context"

	"github.com/rs/zerolog"
)

// Event identifies what happened to a reservation.
type Event string

const (
	EventReservationCreated   Event = "reservation.created"
	EventReservationConfirmed Event = "reservation.confirmed"
	EventReservationRejected  Event = "reservation.rejected"
	EventReservationCancelled Event = "reservation.cancelled"
)

// Notifier delivers an event to a single user. Implementations may send
// email, push, or anything else; delivery is best-effort and the engine
// never depends on it succeeding.
type Notifier interface {
	Notify(ctx context.Context, userID string, event Event, payload map[string]any) error
}

// LogNotifier is a Notifier that only records the event in the log.
// It is the default implementation; real delivery channels plug in behind
// the same interface.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, userID string, event Event, payload map[string]any) error {
	n.logger.Info().
		Str("user_id", userID).
		Str("event", string(event)).
		Fields(payload).
		Msg("notification")
	return nil
}
