package classroom

import (
	"context"
	"strings"

	"github.com/imonitoring/classroom-reservation-backend/internal/building"
)

type CreateRequest struct {
	BuildingID string
	Name       string
	Capacity   int
	Type       Type
	Resources  []string
}

type UpdateRequest struct {
	BuildingID *string
	Name       *string
	Capacity   *int
	Type       *Type
	Resources  []string
}

// ReservationPurger removes all reservations attached to a classroom.
// Implemented by the reservation repository; declared here so the
// classroom service does not depend on the reservation package.
type ReservationPurger interface {
	DeleteByClassroom(ctx context.Context, classroomID string) error
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Classroom, error)
	GetByID(ctx context.Context, id string) (*Classroom, error)
	List(ctx context.Context, filter Filter) ([]*Classroom, int, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Classroom, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo         Repository
	bldgService  building.Service
	reservations ReservationPurger
}

func NewService(repo Repository, bldgService building.Service, reservations ReservationPurger) Service {
	return &service{
		repo:         repo,
		bldgService:  bldgService,
		reservations: reservations,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Classroom, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if req.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if !req.Type.Valid() {
		return nil, ErrInvalidType
	}
	if req.BuildingID == "" {
		return nil, ErrInvalidBuilding
	}
	if _, err := s.bldgService.GetByID(ctx, req.BuildingID); err != nil {
		return nil, ErrInvalidBuilding
	}

	cr := &Classroom{
		BuildingID: req.BuildingID,
		Name:       name,
		Capacity:   req.Capacity,
		Type:       req.Type,
		Resources:  req.Resources,
	}
	if err := s.repo.Create(ctx, cr); err != nil {
		return nil, err
	}
	return cr, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Classroom, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Classroom, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Classroom, error) {
	cr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		cr.Name = name
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			return nil, ErrInvalidCapacity
		}
		cr.Capacity = *req.Capacity
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, ErrInvalidType
		}
		cr.Type = *req.Type
	}
	if req.BuildingID != nil {
		if _, err := s.bldgService.GetByID(ctx, *req.BuildingID); err != nil {
			return nil, ErrInvalidBuilding
		}
		cr.BuildingID = *req.BuildingID
	}
	if req.Resources != nil {
		cr.Resources = req.Resources
	}

	if err := s.repo.Update(ctx, cr); err != nil {
		return nil, err
	}
	return cr, nil
}

// Delete removes the classroom together with all of its reservations.
func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.reservations.DeleteByClassroom(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
