package reservation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imonitoring/classroom-reservation-backend/internal/user"
)

func TestPolicySelfService(t *testing.T) {
	for _, role := range []user.Role{user.RoleProfesor, user.RoleTutor, user.RoleEstudiante} {
		t.Run(string(role), func(t *testing.T) {
			own := func(action Action, status Status) PolicyInput {
				return PolicyInput{
					ActorID: "u1", ActorRole: role, Action: action,
					OwnerID: "u1", OwnerRole: role, Status: status,
				}
			}
			other := func(action Action, status Status) PolicyInput {
				return PolicyInput{
					ActorID: "u1", ActorRole: role, Action: action,
					OwnerID: "u2", OwnerRole: user.RoleEstudiante, Status: status,
				}
			}

			assert.True(t, Allowed(own(ActionView, StatusConfirmed)))
			assert.True(t, Allowed(own(ActionUpdate, StatusPending)))
			assert.True(t, Allowed(own(ActionCancel, StatusPending)))
			assert.True(t, Allowed(own(ActionCancel, StatusConfirmed)))
			assert.True(t, Allowed(own(ActionDelete, StatusCancelled)))
			assert.True(t, Allowed(own(ActionDelete, StatusRejected)))

			// Not once confirmed, and never someone else's.
			assert.False(t, Allowed(own(ActionUpdate, StatusConfirmed)))
			assert.False(t, Allowed(own(ActionDelete, StatusConfirmed)))
			assert.False(t, Allowed(other(ActionView, StatusPending)))
			assert.False(t, Allowed(other(ActionCancel, StatusPending)))

			// Moderation is staff work.
			assert.False(t, Allowed(own(ActionConfirm, StatusPending)))
			assert.False(t, Allowed(own(ActionReject, StatusPending)))
			assert.False(t, Allowed(other(ActionCreateForOther, "")))
			assert.False(t, Allowed(own(ActionReassign, StatusPending)))
		})
	}
}

func TestPolicyAdmin(t *testing.T) {
	in := func(action Action, status Status) PolicyInput {
		return PolicyInput{
			ActorID: "admin", ActorRole: user.RoleAdmin, Action: action,
			OwnerID: "u2", OwnerRole: user.RoleProfesor, Status: status,
		}
	}

	for _, action := range []Action{ActionView, ActionUpdate, ActionConfirm, ActionReject, ActionCancel, ActionDelete} {
		assert.True(t, Allowed(in(action, StatusPending)), "%s", action)
	}
	assert.True(t, Allowed(in(ActionCreateForOther, "")))

	// Reassignment is legal only while pending.
	assert.True(t, Allowed(in(ActionReassign, StatusPending)))
	assert.False(t, Allowed(in(ActionReassign, StatusConfirmed)))
	assert.False(t, Allowed(in(ActionReassign, StatusCancelled)))
}

func TestPolicyCoordinador(t *testing.T) {
	onStudent := func(action Action, status Status) PolicyInput {
		return PolicyInput{
			ActorID: "coord", ActorRole: user.RoleCoordinador, Action: action,
			OwnerID: "student", OwnerRole: user.RoleEstudiante, Status: status,
		}
	}
	onProfesor := func(action Action, status Status) PolicyInput {
		return PolicyInput{
			ActorID: "coord", ActorRole: user.RoleCoordinador, Action: action,
			OwnerID: "prof", OwnerRole: user.RoleProfesor, Status: status,
		}
	}
	own := func(action Action, status Status) PolicyInput {
		return PolicyInput{
			ActorID: "coord", ActorRole: user.RoleCoordinador, Action: action,
			OwnerID: "coord", OwnerRole: user.RoleCoordinador, Status: status,
		}
	}

	t.Run("moderates student reservations", func(t *testing.T) {
		assert.True(t, Allowed(onStudent(ActionView, StatusPending)))
		assert.True(t, Allowed(onStudent(ActionConfirm, StatusPending)))
		assert.True(t, Allowed(onStudent(ActionReject, StatusPending)))
		assert.True(t, Allowed(onStudent(ActionCancel, StatusConfirmed)))
		assert.True(t, Allowed(onStudent(ActionUpdate, StatusConfirmed)))
		assert.True(t, Allowed(onStudent(ActionDelete, StatusConfirmed)))
		assert.True(t, Allowed(onStudent(ActionCreateForOther, "")))
	})

	t.Run("cannot touch other staff or professors", func(t *testing.T) {
		assert.False(t, Allowed(onProfesor(ActionView, StatusPending)))
		assert.False(t, Allowed(onProfesor(ActionConfirm, StatusPending)))
		assert.False(t, Allowed(onProfesor(ActionCancel, StatusPending)))
		assert.False(t, Allowed(onProfesor(ActionCreateForOther, "")))
	})

	t.Run("own reservations follow self-service limits", func(t *testing.T) {
		assert.True(t, Allowed(own(ActionView, StatusConfirmed)))
		assert.True(t, Allowed(own(ActionUpdate, StatusPending)))
		assert.False(t, Allowed(own(ActionUpdate, StatusConfirmed)))
		assert.True(t, Allowed(own(ActionCancel, StatusConfirmed)))
		assert.False(t, Allowed(own(ActionDelete, StatusConfirmed)))
	})

	t.Run("no reassignment", func(t *testing.T) {
		assert.False(t, Allowed(onStudent(ActionReassign, StatusPending)))
	})
}

func TestPolicyUnknownRoleDenied(t *testing.T) {
	assert.False(t, Allowed(PolicyInput{
		ActorID: "x", ActorRole: user.Role("GUEST"), Action: ActionView,
		OwnerID: "x", OwnerRole: user.Role("GUEST"), Status: StatusPending,
	}))
}
