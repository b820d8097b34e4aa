package classroom

import (
	"net/http"
	"time"

	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "classroom not found")
	ErrEmptyName       = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidCapacity = apperror.New(http.StatusBadRequest, "capacity must be positive")
	ErrInvalidType     = apperror.New(http.StatusBadRequest, "invalid classroom type")
	ErrInvalidBuilding = apperror.New(http.StatusBadRequest, "invalid building_id")
)

// Type categorizes a classroom.
type Type string

const (
	TypeAula        Type = "AULA"
	TypeLaboratorio Type = "LABORATORIO"
	TypeAuditorio   Type = "AUDITORIO"
)

// Types lists every valid classroom type.
var Types = []Type{TypeAula, TypeLaboratorio, TypeAuditorio}

// Valid reports whether t is a known classroom type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Classroom is a reservable room inside a building.
type Classroom struct {
	ID           string
	BuildingID   string
	BuildingName string
	Name         string
	Capacity     int
	Type         Type
	Resources    []string
	CreatedAt    time.Time
}

// Filter defines parameters for listing classrooms.
type Filter struct {
	BuildingID  string
	Type        Type
	MinCapacity int
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
