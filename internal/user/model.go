package user

import (
	"net/http"
	"time"

	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusForbidden, "user is inactive")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password is too short")
	ErrInvalidRole        = apperror.New(http.StatusBadRequest, "invalid role")
)

// Role determines what a user may do across the whole system. There is no
// organization or membership concept; the role is global.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleCoordinador Role = "COORDINADOR"
	RoleProfesor    Role = "PROFESOR"
	RoleTutor       Role = "TUTOR"
	RoleEstudiante  Role = "ESTUDIANTE"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleCoordinador, RoleProfesor, RoleTutor, RoleEstudiante}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// IsStaff reports whether r is an administrative role. Staff reservations
// are confirmed at creation; everyone else starts pending.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleCoordinador
}

// User represents a user in the system.
type User struct {
	ID           string // UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// Filter defines filter options for listing users.
type Filter struct {
	Email    string
	Name     string
	Role     Role
	IsActive *bool // Use pointer to distinguish between false and nil (not set)

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
