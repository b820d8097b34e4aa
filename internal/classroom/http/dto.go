package http

import (
	"time"

	"github.com/imonitoring/classroom-reservation-backend/internal/classroom"
	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/request"
)

type CreateClassroomRequest struct {
	BuildingID string   `json:"building_id" binding:"required,uuid"`
	Name       string   `json:"name" binding:"required"`
	Capacity   int      `json:"capacity" binding:"required,min=1"`
	Type       string   `json:"type" binding:"required,oneof=AULA LABORATORIO AUDITORIO"`
	Resources  []string `json:"resources"`
}

type UpdateClassroomRequest struct {
	BuildingID *string  `json:"building_id" binding:"omitempty,uuid"`
	Name       *string  `json:"name"`
	Capacity   *int     `json:"capacity" binding:"omitempty,min=1"`
	Type       *string  `json:"type" binding:"omitempty,oneof=AULA LABORATORIO AUDITORIO"`
	Resources  []string `json:"resources"`
}

type ListClassroomsRequest struct {
	request.ListParams
	BuildingID  string `form:"building_id" binding:"omitempty,uuid"`
	Type        string `form:"type" binding:"omitempty,oneof=AULA LABORATORIO AUDITORIO"`
	MinCapacity int    `form:"min_capacity" binding:"omitempty,min=1"`
	SortBy      string `form:"sort_by" binding:"omitempty,oneof=name capacity type created_at"`
}

type ClassroomResponse struct {
	ID           string    `json:"id"`
	BuildingID   string    `json:"building_id"`
	BuildingName string    `json:"building_name"`
	Name         string    `json:"name"`
	Capacity     int       `json:"capacity"`
	Type         string    `json:"type"`
	Resources    []string  `json:"resources"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewClassroomResponse(cr *classroom.Classroom) ClassroomResponse {
	resources := cr.Resources
	if resources == nil {
		resources = []string{}
	}
	return ClassroomResponse{
		ID:           cr.ID,
		BuildingID:   cr.BuildingID,
		BuildingName: cr.BuildingName,
		Name:         cr.Name,
		Capacity:     cr.Capacity,
		Type:         string(cr.Type),
		Resources:    resources,
		CreatedAt:    cr.CreatedAt,
	}
}
