package photo

import (
	"net/http"
	"time"

	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, "photo not found")
	ErrNoThumbnail  = apperror.New(http.StatusNotFound, "thumbnail not available")
	ErrNotAnImage   = apperror.New(http.StatusBadRequest, "uploaded file is not an image")
	ErrFileTooLarge = apperror.New(http.StatusBadRequest, "uploaded file is too large")
)

// Photo is an image attached to a classroom.
type Photo struct {
	ID            string
	ClassroomID   string
	Filename      string
	StoragePath   string // internal path, never exposed
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// URL returns the public URL for the photo content.
func URL(id string) string {
	return "/photos/" + id
}

// ThumbnailURL returns the public URL for the photo's thumbnail.
func ThumbnailURL(id string) string {
	return "/photos/" + id + "/thumbnail"
}
