package building

import (
	"net/http"
	"time"

	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/apperror"
)

var (
	ErrNotFound  = apperror.New(http.StatusNotFound, "building not found")
	ErrEmptyName = apperror.New(http.StatusBadRequest, "name cannot be empty")
)

// Building groups classrooms under a physical site.
type Building struct {
	ID        string
	Name      string
	Location  string
	CreatedAt time.Time
}

// Filter defines parameters for listing buildings.
type Filter struct {
	Name      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
