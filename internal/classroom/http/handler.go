package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imonitoring/classroom-reservation-backend/internal/classroom"
	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/request"
	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/response"
)

type Handler struct {
	service classroom.Service
}

func NewHandler(service classroom.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateClassroomRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	cr, err := h.service.Create(c.Request.Context(), classroom.CreateRequest{
		BuildingID: body.BuildingID,
		Name:       body.Name,
		Capacity:   body.Capacity,
		Type:       classroom.Type(body.Type),
		Resources:  body.Resources,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewClassroomResponse(cr))
}

func (h *Handler) Get(c *gin.Context) {
	var params request.ByIDRequest
	if err := c.ShouldBindUri(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	cr, err := h.service.GetByID(c.Request.Context(), params.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewClassroomResponse(cr))
}

func (h *Handler) List(c *gin.Context) {
	var q ListClassroomsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	classrooms, total, err := h.service.List(c.Request.Context(), classroom.Filter{
		BuildingID:  q.BuildingID,
		Type:        classroom.Type(q.Type),
		MinCapacity: q.MinCapacity,
		Page:        q.Page,
		PageSize:    q.PageSize,
		SortBy:      q.SortBy,
		SortOrder:   q.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ClassroomResponse, len(classrooms))
	for i, cr := range classrooms {
		items[i] = NewClassroomResponse(cr)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, q.Page, q.PageSize, total))
}

func (h *Handler) Update(c *gin.Context) {
	var params request.ByIDRequest
	if err := c.ShouldBindUri(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body UpdateClassroomRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var typ *classroom.Type
	if body.Type != nil {
		t := classroom.Type(*body.Type)
		typ = &t
	}

	cr, err := h.service.Update(c.Request.Context(), params.ID, classroom.UpdateRequest{
		BuildingID: body.BuildingID,
		Name:       body.Name,
		Capacity:   body.Capacity,
		Type:       typ,
		Resources:  body.Resources,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewClassroomResponse(cr))
}

func (h *Handler) Delete(c *gin.Context) {
	var params request.ByIDRequest
	if err := c.ShouldBindUri(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), params.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
