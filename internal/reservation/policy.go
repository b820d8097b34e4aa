package reservation

import (
	"fmt"
	"net/http"

	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/apperror"
	"github.com/imonitoring/classroom-reservation-backend/internal/user"
)

// Action names an operation on a reservation for authorization purposes.
type Action string

const (
	ActionCreateForOther Action = "create-for-other"
	ActionView           Action = "view"
	ActionUpdate         Action = "update"
	ActionConfirm        Action = "confirm"
	ActionReject         Action = "reject"
	ActionCancel         Action = "cancel"
	ActionDelete         Action = "delete"
	ActionReassign       Action = "reassign"
)

// PolicyInput is one authorization question: may the actor perform the
// action on a reservation owned by OwnerID (whose role is OwnerRole) that
// is currently in the given status?
type PolicyInput struct {
	ActorID   string
	ActorRole user.Role
	Action    Action
	OwnerID   string
	OwnerRole user.Role
	Status    Status
}

// ownerScope narrows a rule to a subset of reservations.
type ownerScope int

const (
	anyReservation ownerScope = iota // no ownership constraint
	ownOnly                          // actor must own the reservation
	ownerRoleOnly                    // owner must have the rule's ownerRole
)

// rule grants an action when its scope matches and, if statuses is
// non-nil, the reservation's current status is in the set.
type rule struct {
	scope     ownerScope
	ownerRole user.Role
	statuses  []Status
}

func (r rule) allows(in PolicyInput) bool {
	switch r.scope {
	case ownOnly:
		if in.OwnerID != in.ActorID {
			return false
		}
	case ownerRoleOnly:
		if in.OwnerRole != r.ownerRole {
			return false
		}
	}
	if r.statuses == nil {
		return true
	}
	for _, s := range r.statuses {
		if in.Status == s {
			return true
		}
	}
	return false
}

// selfServiceRules is shared by PROFESOR, TUTOR and ESTUDIANTE: they act
// only on reservations they own, and only in the states the matrix allows.
var selfServiceRules = map[Action][]rule{
	ActionView:   {{scope: ownOnly}},
	ActionUpdate: {{scope: ownOnly, statuses: []Status{StatusPending}}},
	ActionCancel: {{scope: ownOnly, statuses: []Status{StatusPending, StatusConfirmed}}},
	ActionDelete: {{scope: ownOnly, statuses: []Status{StatusPending, StatusCancelled, StatusRejected}}},
}

// policy is the full authorization matrix. A missing entry means denied.
var policy = map[user.Role]map[Action][]rule{
	user.RoleAdmin: {
		ActionCreateForOther: {{scope: anyReservation}},
		ActionView:           {{scope: anyReservation}},
		ActionUpdate:         {{scope: anyReservation}},
		ActionConfirm:        {{scope: anyReservation}},
		ActionReject:         {{scope: anyReservation}},
		ActionCancel:         {{scope: anyReservation}},
		ActionDelete:         {{scope: anyReservation}},
		// Reassignment is ADMIN-only and legal only while pending.
		ActionReassign: {{scope: anyReservation, statuses: []Status{StatusPending}}},
	},
	user.RoleCoordinador: {
		ActionCreateForOther: {{scope: ownerRoleOnly, ownerRole: user.RoleEstudiante}},
		ActionView: {
			{scope: ownOnly},
			{scope: ownerRoleOnly, ownerRole: user.RoleEstudiante},
		},
		ActionUpdate: {
			{scope: ownOnly, statuses: []Status{StatusPending}},
			{scope: ownerRoleOnly, ownerRole: user.RoleEstudiante, statuses: []Status{StatusPending, StatusConfirmed}},
		},
		ActionConfirm: {{scope: ownerRoleOnly, ownerRole: user.RoleEstudiante}},
		ActionReject:  {{scope: ownerRoleOnly, ownerRole: user.RoleEstudiante}},
		ActionCancel: {
			{scope: ownOnly, statuses: []Status{StatusPending, StatusConfirmed}},
			{scope: ownerRoleOnly, ownerRole: user.RoleEstudiante, statuses: []Status{StatusPending, StatusConfirmed}},
		},
		ActionDelete: {
			{scope: ownOnly, statuses: []Status{StatusPending, StatusCancelled, StatusRejected}},
			{scope: ownerRoleOnly, ownerRole: user.RoleEstudiante},
		},
	},
	user.RoleProfesor:   selfServiceRules,
	user.RoleTutor:      selfServiceRules,
	user.RoleEstudiante: selfServiceRules,
}

// Allowed evaluates the policy table. Unknown roles and unknown actions
// are denied.
func Allowed(in PolicyInput) bool {
	for _, r := range policy[in.ActorRole][in.Action] {
		if r.allows(in) {
			return true
		}
	}
	return false
}

// denied builds the Forbidden error for a policy rejection. The message
// names the action and the reservation's current status, and nothing about
// the owner.
func denied(action Action, status Status) error {
	return apperror.Wrap(ErrPermissionDenied, http.StatusForbidden,
		fmt.Sprintf("permission denied: cannot %s a %s reservation", action, status))
}
