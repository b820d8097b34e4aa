package reservation

import (
	"fmt"
	"net/http"

	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/apperror"
)

// transitions defines every legal status change. Rejected and cancelled
// are terminal: nothing transitions out of them, not even for ADMIN. The
// only way a reservation is born confirmed is staff creation.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func invalidTransition(from, to Status) error {
	return apperror.Wrap(ErrInvalidTransition, http.StatusBadRequest,
		fmt.Sprintf("cannot change reservation status from %s to %s", from, to))
}
