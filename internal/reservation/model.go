package reservation

import (
	"net/http"
	"time"

	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/apperror"
	"github.com/imonitoring/classroom-reservation-backend/internal/user"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "reservation not found")
	ErrClassroomNotFound = apperror.New(http.StatusNotFound, "classroom not found")
	ErrUserNotFound      = apperror.New(http.StatusNotFound, "user not found")
	ErrInvalidTimeRange  = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrEmptyPurpose      = apperror.New(http.StatusBadRequest, "purpose cannot be empty")
	ErrInvalidStatus     = apperror.New(http.StatusBadRequest, "invalid reservation status")
	ErrInvalidTransition = apperror.New(http.StatusBadRequest, "status transition not allowed")
	ErrTimeConflict      = apperror.New(http.StatusConflict, "time slot already reserved")
	ErrModified          = apperror.New(http.StatusConflict, "reservation was modified concurrently")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether s counts for conflict purposes. Only pending and
// confirmed reservations block a time slot.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Reservation holds a classroom for a user over a half-open time interval
// [StartTime, EndTime). The owner (UserID) is the beneficiary, which is
// not necessarily the requester: staff may create reservations for others.
type Reservation struct {
	ID            string
	ClassroomID   string
	ClassroomName string
	BuildingName  string
	UserID        string
	UserName      string
	UserRole      user.Role
	StartTime     time.Time
	EndTime       time.Time
	Purpose       string
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Filter holds the query parameters for listing reservations.
//
// ScopeUserID/ScopeOwnerRole are visibility bounds set by the service from
// the caller's identity, never from request input: when either is set, only
// reservations owned by ScopeUserID or by a user with role ScopeOwnerRole
// are returned, on top of whatever the caller-supplied filters select.
type Filter struct {
	ClassroomID  string
	UserID       string
	Status       string
	StartTime    *time.Time // reservations ending at or after this instant
	EndTime      *time.Time // reservations starting at or before this instant
	UpcomingOnly bool
	ActiveOnly   bool // pending and confirmed only

	ScopeUserID    string
	ScopeOwnerRole user.Role

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// AvailabilitySummary counts classrooms by occupancy at a given instant.
type AvailabilitySummary struct {
	Available   int
	Unavailable int
	Total       int
}
