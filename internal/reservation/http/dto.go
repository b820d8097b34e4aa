package http

import (
	"time"

	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/request"
	"github.com/imonitoring/classroom-reservation-backend/internal/reservation"
)

type CreateReservationRequest struct {
	ClassroomID string    `json:"classroom_id" binding:"required,uuid"`
	UserID      string    `json:"user_id" binding:"omitempty,uuid"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Purpose     string    `json:"purpose" binding:"required"`
	Status      string    `json:"status" binding:"omitempty,oneof=pending confirmed"`
}

type UpdateReservationRequest struct {
	ClassroomID *string    `json:"classroom_id" binding:"omitempty,uuid"`
	UserID      *string    `json:"user_id" binding:"omitempty,uuid"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Purpose     *string    `json:"purpose"`
	Status      *string    `json:"status" binding:"omitempty,oneof=pending confirmed rejected cancelled"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed rejected cancelled"`
}

type ListReservationsRequest struct {
	request.ListParams
	ClassroomID string     `form:"classroom_id" binding:"omitempty,uuid"`
	UserID      string     `form:"user_id" binding:"omitempty,uuid"`
	Status      string     `form:"status" binding:"omitempty,oneof=pending confirmed rejected cancelled"`
	From        *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To          *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Upcoming    bool       `form:"upcoming"`
	SortBy      string     `form:"sort_by" binding:"omitempty,oneof=start_time end_time status created_at"`
}

type AvailabilityRequest struct {
	ClassroomID string    `form:"classroom_id" binding:"required,uuid"`
	StartTime   time.Time `form:"start_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime     time.Time `form:"end_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

type AvailabilityResponse struct {
	ClassroomID string    `json:"classroom_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Available   bool      `json:"available"`
}

type AvailabilitySummaryRequest struct {
	At *time.Time `form:"at" time_format:"2006-01-02T15:04:05Z07:00"`
}

type AvailabilitySummaryResponse struct {
	At          time.Time `json:"at"`
	Available   int       `json:"available"`
	Unavailable int       `json:"unavailable"`
	Total       int       `json:"total"`
}

type ScheduleRequest struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ClassroomRef and UserRef are the projections embedded in a reservation.
type ClassroomRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Building string `json:"building"`
}

type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type ReservationResponse struct {
	ID        string       `json:"id"`
	Classroom ClassroomRef `json:"classroom"`
	User      UserRef      `json:"user"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Purpose   string       `json:"purpose"`
	Status    string       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func NewReservationResponse(res *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID: res.ID,
		Classroom: ClassroomRef{
			ID:       res.ClassroomID,
			Name:     res.ClassroomName,
			Building: res.BuildingName,
		},
		User: UserRef{
			ID:   res.UserID,
			Name: res.UserName,
			Role: string(res.UserRole),
		},
		StartTime: res.StartTime,
		EndTime:   res.EndTime,
		Purpose:   res.Purpose,
		Status:    string(res.Status),
		CreatedAt: res.CreatedAt,
		UpdatedAt: res.UpdatedAt,
	}
}
