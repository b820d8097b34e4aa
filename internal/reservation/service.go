package reservation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/imonitoring/classroom-reservation-backend/internal/classroom"
	"github.com/imonitoring/classroom-reservation-backend/internal/notification"
	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/apperror"
	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/keylock"
	"github.com/imonitoring/classroom-reservation-backend/internal/user"
)

// Actor is the authenticated caller of a reservation operation.
type Actor struct {
	UserID string
	Role   user.Role
}

type CreateRequest struct {
	ClassroomID string
	UserID      string // beneficiary; empty means the actor reserves for themselves
	StartTime   time.Time
	EndTime     time.Time
	Purpose     string
	Status      Status // staff only; pending or confirmed
}

type UpdateRequest struct {
	ClassroomID *string
	UserID      *string // reassignment to a new owner
	StartTime   *time.Time
	EndTime     *time.Time
	Purpose     *string
	Status      *Status // optional status change, same lifecycle rules as UpdateStatus
}

type Service interface {
	Create(ctx context.Context, actor Actor, req CreateRequest) (*Reservation, error)
	GetByID(ctx context.Context, actor Actor, id string) (*Reservation, error)
	List(ctx context.Context, actor Actor, filter Filter) ([]*Reservation, int, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateRequest) (*Reservation, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, to Status) (*Reservation, error)
	Cancel(ctx context.Context, actor Actor, id string) (*Reservation, error)
	Delete(ctx context.Context, actor Actor, id string) error

	CheckAvailability(ctx context.Context, classroomID string, start, end time.Time) (bool, error)
	AvailabilitySummary(ctx context.Context, at time.Time) (*AvailabilitySummary, error)
	ClassroomSchedule(ctx context.Context, classroomID string, from, to time.Time) ([]*Reservation, error)
}

// schedulePageSize is the batch size used when assembling a classroom
// schedule from the repository.
const schedulePageSize = 200

type service struct {
	repo       Repository
	classrooms classroom.Service
	users      user.Service
	locks      *keylock.KeyedMutex
	dispatcher *notification.Dispatcher
	logger     zerolog.Logger
}

func NewService(
	repo Repository,
	classrooms classroom.Service,
	users user.Service,
	locks *keylock.KeyedMutex,
	dispatcher *notification.Dispatcher,
	logger zerolog.Logger,
) Service {
	return &service{
		repo:       repo,
		classrooms: classrooms,
		users:      users,
		locks:      locks,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateRequest) (*Reservation, error) {
	if err := validateTimeRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	purpose := strings.TrimSpace(req.Purpose)
	if purpose == "" {
		return nil, ErrEmptyPurpose
	}

	// Resolve classroom and beneficiary before taking the lock; only the
	// conflict check and the insert run under it.
	cr, err := s.classrooms.GetByID(ctx, req.ClassroomID)
	if err != nil {
		if errors.Is(err, classroom.ErrNotFound) {
			return nil, ErrClassroomNotFound
		}
		return nil, err
	}

	beneficiaryID := req.UserID
	if beneficiaryID == "" {
		beneficiaryID = actor.UserID
	}
	owner, err := s.users.GetByID(ctx, beneficiaryID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if owner.ID != actor.UserID {
		in := PolicyInput{
			ActorID:   actor.UserID,
			ActorRole: actor.Role,
			Action:    ActionCreateForOther,
			OwnerID:   owner.ID,
			OwnerRole: owner.Role,
		}
		if !Allowed(in) {
			return nil, apperror.Wrap(ErrPermissionDenied, http.StatusForbidden,
				"permission denied: cannot create a reservation for another user")
		}
	}

	// Staff creations are confirmed unless pending is asked for
	// explicitly. A status supplied by anyone else is ignored.
	status := StatusPending
	if actor.Role.IsStaff() {
		status = StatusConfirmed
		if req.Status != "" {
			if req.Status != StatusPending && req.Status != StatusConfirmed {
				return nil, apperror.Wrap(ErrInvalidStatus, http.StatusBadRequest,
					fmt.Sprintf("a reservation cannot be created with status %s", req.Status))
			}
			status = req.Status
		}
	}

	res := &Reservation{
		ClassroomID:   cr.ID,
		ClassroomName: cr.Name,
		BuildingName:  cr.BuildingName,
		UserID:        owner.ID,
		UserName:      owner.Name,
		UserRole:      owner.Role,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Purpose:       purpose,
		Status:        status,
	}

	s.locks.Lock(req.ClassroomID)
	defer s.locks.Unlock(req.ClassroomID)

	overlap, err := s.repo.HasOverlap(ctx, req.ClassroomID, req.StartTime, req.EndTime, "")
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, conflictError(req.ClassroomID, req.StartTime, req.EndTime)
	}

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("reservation_id", res.ID).
		Str("classroom_id", res.ClassroomID).
		Str("user_id", res.UserID).
		Str("status", string(res.Status)).
		Msg("reservation created")

	s.dispatcher.Dispatch(res.UserID, notification.EventReservationCreated, eventPayload(res))
	return res, nil
}

func (s *service) GetByID(ctx context.Context, actor Actor, id string) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Allowed(policyInput(actor, ActionView, res)) {
		return nil, denied(ActionView, res.Status)
	}
	return res, nil
}

func (s *service) List(ctx context.Context, actor Actor, filter Filter) ([]*Reservation, int, error) {
	// Every non-admin listing is bounded by what the actor may view. The
	// bounds are applied server-side on top of any requested filters.
	switch actor.Role {
	case user.RoleAdmin:
		// unrestricted
	case user.RoleCoordinador:
		filter.ScopeUserID = actor.UserID
		filter.ScopeOwnerRole = user.RoleEstudiante
	default:
		filter.ScopeUserID = actor.UserID
		filter.ScopeOwnerRole = ""
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, actor Actor, id string, req UpdateRequest) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// The write below is conditional on this status still being current,
	// so a transition that races in between cannot be overwritten.
	readStatus := res.Status

	reassigning := req.UserID != nil && *req.UserID != res.UserID
	if reassigning {
		if !Allowed(policyInput(actor, ActionReassign, res)) {
			return nil, denied(ActionReassign, res.Status)
		}
	}
	if !Allowed(policyInput(actor, ActionUpdate, res)) {
		return nil, denied(ActionUpdate, res.Status)
	}

	timeChanged := false
	if req.StartTime != nil && !req.StartTime.Equal(res.StartTime) {
		res.StartTime = *req.StartTime
		timeChanged = true
	}
	if req.EndTime != nil && !req.EndTime.Equal(res.EndTime) {
		res.EndTime = *req.EndTime
		timeChanged = true
	}
	if err := validateTimeRange(res.StartTime, res.EndTime); err != nil {
		return nil, err
	}

	if req.Purpose != nil {
		purpose := strings.TrimSpace(*req.Purpose)
		if purpose == "" {
			return nil, ErrEmptyPurpose
		}
		res.Purpose = purpose
	}

	classroomChanged := false
	if req.ClassroomID != nil && *req.ClassroomID != res.ClassroomID {
		cr, err := s.classrooms.GetByID(ctx, *req.ClassroomID)
		if err != nil {
			if errors.Is(err, classroom.ErrNotFound) {
				return nil, ErrClassroomNotFound
			}
			return nil, err
		}
		res.ClassroomID = cr.ID
		res.ClassroomName = cr.Name
		res.BuildingName = cr.BuildingName
		classroomChanged = true
	}

	if reassigning {
		owner, err := s.users.GetByID(ctx, *req.UserID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		res.UserID = owner.ID
		res.UserName = owner.Name
		res.UserRole = owner.Role
	}

	// An embedded status change obeys the same rules as UpdateStatus and
	// is validated before anything is written.
	statusChanged := false
	if req.Status != nil && *req.Status != res.Status {
		to := *req.Status
		if !to.Valid() {
			return nil, apperror.Wrap(ErrInvalidStatus, http.StatusBadRequest,
				fmt.Sprintf("cannot set reservation status to %q", to))
		}
		if !CanTransition(res.Status, to) {
			return nil, invalidTransition(res.Status, to)
		}
		action := actionForStatus(to)
		in := policyInput(actor, action, res)
		if !Allowed(in) {
			return nil, denied(action, res.Status)
		}
		res.Status = to
		statusChanged = true
	}

	s.locks.Lock(res.ClassroomID)
	defer s.locks.Unlock(res.ClassroomID)

	// Re-check conflicts only when the slot moved and the reservation
	// still blocks the classroom; the reservation's own row is excluded.
	if (timeChanged || classroomChanged) && res.Status.Active() {
		overlap, err := s.repo.HasOverlap(ctx, res.ClassroomID, res.StartTime, res.EndTime, res.ID)
		if err != nil {
			return nil, err
		}
		if overlap {
			return nil, conflictError(res.ClassroomID, res.StartTime, res.EndTime)
		}
	}

	if err := s.repo.Update(ctx, res, readStatus); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("reservation_id", res.ID).
		Str("classroom_id", res.ClassroomID).
		Str("status", string(res.Status)).
		Msg("reservation updated")

	if statusChanged {
		s.dispatcher.Dispatch(res.UserID, eventForStatus(res.Status), eventPayload(res))
	}
	return res, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor Actor, id string, to Status) (*Reservation, error) {
	if !to.Valid() {
		return nil, apperror.Wrap(ErrInvalidStatus, http.StatusBadRequest,
			fmt.Sprintf("cannot set reservation status to %q", to))
	}

	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The lifecycle rules are checked before authorization: an illegal
	// transition is reported as such even to an admin.
	if !CanTransition(res.Status, to) {
		return nil, invalidTransition(res.Status, to)
	}

	action := actionForStatus(to)
	if !Allowed(policyInput(actor, action, res)) {
		return nil, denied(action, res.Status)
	}

	from := res.Status
	res.Status = to
	if err := s.repo.Update(ctx, res, from); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("reservation_id", res.ID).
		Str("status", string(to)).
		Msg("reservation status changed")

	s.dispatcher.Dispatch(res.UserID, eventForStatus(to), eventPayload(res))
	return res, nil
}

func (s *service) Cancel(ctx context.Context, actor Actor, id string) (*Reservation, error) {
	return s.UpdateStatus(ctx, actor, id, StatusCancelled)
}

func (s *service) Delete(ctx context.Context, actor Actor, id string) error {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !Allowed(policyInput(actor, ActionDelete, res)) {
		return denied(ActionDelete, res.Status)
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) CheckAvailability(ctx context.Context, classroomID string, start, end time.Time) (bool, error) {
	if err := validateTimeRange(start, end); err != nil {
		return false, err
	}
	if _, err := s.classrooms.GetByID(ctx, classroomID); err != nil {
		if errors.Is(err, classroom.ErrNotFound) {
			return false, ErrClassroomNotFound
		}
		return false, err
	}
	overlap, err := s.repo.HasOverlap(ctx, classroomID, start, end, "")
	if err != nil {
		return false, err
	}
	return !overlap, nil
}

func (s *service) AvailabilitySummary(ctx context.Context, at time.Time) (*AvailabilitySummary, error) {
	total, err := s.classrooms.Count(ctx)
	if err != nil {
		return nil, err
	}
	occupied, err := s.repo.CountOccupiedClassrooms(ctx, at)
	if err != nil {
		return nil, err
	}
	return &AvailabilitySummary{
		Available:   total - occupied,
		Unavailable: occupied,
		Total:       total,
	}, nil
}

func (s *service) ClassroomSchedule(ctx context.Context, classroomID string, from, to time.Time) ([]*Reservation, error) {
	if err := validateTimeRange(from, to); err != nil {
		return nil, err
	}
	if _, err := s.classrooms.GetByID(ctx, classroomID); err != nil {
		if errors.Is(err, classroom.ErrNotFound) {
			return nil, ErrClassroomNotFound
		}
		return nil, err
	}

	// A schedule over a long range can exceed one page, so keep fetching
	// until the whole window is covered.
	var schedule []*Reservation
	for page := 1; ; page++ {
		batch, total, err := s.repo.List(ctx, Filter{
			ClassroomID: classroomID,
			StartTime:   &from,
			EndTime:     &to,
			ActiveOnly:  true,
			Page:        page,
			PageSize:    schedulePageSize,
			SortBy:      "start_time",
			SortOrder:   "ASC",
		})
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, batch...)
		if len(batch) < schedulePageSize || len(schedule) >= total {
			break
		}
	}
	return schedule, nil
}

func validateTimeRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return ErrInvalidTimeRange
	}
	return nil
}

func policyInput(actor Actor, action Action, res *Reservation) PolicyInput {
	return PolicyInput{
		ActorID:   actor.UserID,
		ActorRole: actor.Role,
		Action:    action,
		OwnerID:   res.UserID,
		OwnerRole: res.UserRole,
		Status:    res.Status,
	}
}

func actionForStatus(to Status) Action {
	switch to {
	case StatusConfirmed:
		return ActionConfirm
	case StatusRejected:
		return ActionReject
	default:
		return ActionCancel
	}
}

func eventForStatus(to Status) notification.Event {
	switch to {
	case StatusConfirmed:
		return notification.EventReservationConfirmed
	case StatusRejected:
		return notification.EventReservationRejected
	default:
		return notification.EventReservationCancelled
	}
}

func eventPayload(res *Reservation) map[string]any {
	return map[string]any{
		"reservation_id": res.ID,
		"classroom_id":   res.ClassroomID,
		"start_time":     res.StartTime,
		"end_time":       res.EndTime,
		"status":         string(res.Status),
	}
}

func conflictError(classroomID string, start, end time.Time) error {
	return apperror.Wrap(ErrTimeConflict, http.StatusConflict,
		fmt.Sprintf("time slot from %s to %s is already reserved for classroom %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339), classroomID))
}
