package http

import (
	"time"

	"github.com/imonitoring/classroom-reservation-backend/internal/building"
	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/request"
)

type CreateBuildingRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

type UpdateBuildingRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

type ListBuildingsRequest struct {
	request.ListParams
	Name   string `form:"name"`
	SortBy string `form:"sort_by" binding:"omitempty,oneof=name created_at"`
}

type BuildingResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewBuildingResponse(b *building.Building) BuildingResponse {
	return BuildingResponse{
		ID:        b.ID,
		Name:      b.Name,
		Location:  b.Location,
		CreatedAt: b.CreatedAt,
	}
}
