package reservation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imonitoring/classroom-reservation-backend/internal/classroom"
	"github.com/imonitoring/classroom-reservation-backend/internal/notification"
	"github.com/imonitoring/classroom-reservation-backend/internal/pkg/keylock"
	"github.com/imonitoring/classroom-reservation-backend/internal/user"
)

// fakeRepo is an in-memory Repository that mirrors the SQL semantics the
// engine relies on, including the overlap predicate and the conditional
// status write.
type fakeRepo struct {
	mu   sync.Mutex
	byID map[string]*Reservation

	// beforeOverlap, when set, runs once right before the next overlap
	// check, outside the repository lock. It lets a test interleave a
	// competing write between a service read and its write.
	beforeOverlap func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[string]*Reservation)}
}

func (r *fakeRepo) Create(_ context.Context, res *Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res.ID = uuid.New().String()
	res.CreatedAt = time.Now().UTC()
	res.UpdatedAt = res.CreatedAt
	cp := *res
	r.byID[res.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, f Filter) ([]*Reservation, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Reservation
	for _, res := range r.byID {
		if f.ClassroomID != "" && res.ClassroomID != f.ClassroomID {
			continue
		}
		if f.UserID != "" && res.UserID != f.UserID {
			continue
		}
		if f.Status != "" && string(res.Status) != f.Status {
			continue
		}
		if f.ActiveOnly && !res.Status.Active() {
			continue
		}
		if f.StartTime != nil && res.EndTime.Before(*f.StartTime) {
			continue
		}
		if f.EndTime != nil && res.StartTime.After(*f.EndTime) {
			continue
		}
		if f.ScopeUserID != "" || f.ScopeOwnerRole != "" {
			inScope := (f.ScopeUserID != "" && res.UserID == f.ScopeUserID) ||
				(f.ScopeOwnerRole != "" && res.UserRole == f.ScopeOwnerRole)
			if !inScope {
				continue
			}
		}
		cp := *res
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	total := len(out)
	if f.Page > 0 && f.PageSize > 0 {
		start := (f.Page - 1) * f.PageSize
		if start > total {
			start = total
		}
		end := start + f.PageSize
		if end > total {
			end = total
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (r *fakeRepo) Update(_ context.Context, res *Reservation, fromStatus Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[res.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Status != fromStatus {
		return ErrModified
	}
	res.UpdatedAt = time.Now().UTC()
	cp := *res
	r.byID[res.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeRepo) DeleteByClassroom(_ context.Context, classroomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, res := range r.byID {
		if res.ClassroomID == classroomID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *fakeRepo) HasOverlap(_ context.Context, classroomID string, start, end time.Time, excludeID string) (bool, error) {
	if r.beforeOverlap != nil {
		fn := r.beforeOverlap
		r.beforeOverlap = nil
		fn()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.byID {
		if res.ClassroomID != classroomID || !res.Status.Active() || res.ID == excludeID {
			continue
		}
		if res.StartTime.Before(end) && res.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) CountOccupiedClassrooms(_ context.Context, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	occupied := make(map[string]struct{})
	for _, res := range r.byID {
		if res.Status.Active() && !res.StartTime.After(at) && res.EndTime.After(at) {
			occupied[res.ClassroomID] = struct{}{}
		}
	}
	return len(occupied), nil
}

type fakeClassrooms struct {
	byID     map[string]*classroom.Classroom
	failWith error // when set, GetByID fails with this error
}

func (f *fakeClassrooms) Create(context.Context, classroom.CreateRequest) (*classroom.Classroom, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClassrooms) GetByID(_ context.Context, id string) (*classroom.Classroom, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	cr, ok := f.byID[id]
	if !ok {
		return nil, classroom.ErrNotFound
	}
	return cr, nil
}

func (f *fakeClassrooms) List(context.Context, classroom.Filter) ([]*classroom.Classroom, int, error) {
	return nil, 0, nil
}

func (f *fakeClassrooms) Count(context.Context) (int, error) {
	return len(f.byID), nil
}

func (f *fakeClassrooms) Update(context.Context, string, classroom.UpdateRequest) (*classroom.Classroom, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClassrooms) Delete(context.Context, string) error {
	return errors.New("not implemented")
}

type fakeUsers struct {
	byID     map[string]*user.User
	failWith error // when set, GetByID fails with this error
}

func (f *fakeUsers) Register(context.Context, user.RegisterRequest) (*user.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeUsers) Login(context.Context, string, string) (*user.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) List(context.Context, user.Filter) ([]*user.User, int, error) {
	return nil, 0, nil
}

func (f *fakeUsers) SetActive(context.Context, string, bool) (*user.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeUsers) Delete(context.Context, string) error {
	return errors.New("not implemented")
}

type testEnv struct {
	service    Service
	repo       *fakeRepo
	classrooms *fakeClassrooms
	users      *fakeUsers
}

var (
	admin    = Actor{UserID: "admin-1", Role: user.RoleAdmin}
	coord    = Actor{UserID: "coord-1", Role: user.RoleCoordinador}
	profesor = Actor{UserID: "prof-1", Role: user.RoleProfesor}
	student  = Actor{UserID: "student-1", Role: user.RoleEstudiante}
	student2 = Actor{UserID: "student-2", Role: user.RoleEstudiante}
)

func newTestEnv() *testEnv {
	repo := newFakeRepo()
	classrooms := &fakeClassrooms{byID: map[string]*classroom.Classroom{
		"room-a": {ID: "room-a", Name: "A-101", BuildingName: "Main", Capacity: 30, Type: classroom.TypeAula},
		"room-b": {ID: "room-b", Name: "B-201", BuildingName: "Main", Capacity: 20, Type: classroom.TypeLaboratorio},
	}}
	users := &fakeUsers{byID: map[string]*user.User{
		admin.UserID:    {ID: admin.UserID, Name: "Admin", Role: user.RoleAdmin, IsActive: true},
		coord.UserID:    {ID: coord.UserID, Name: "Coord", Role: user.RoleCoordinador, IsActive: true},
		profesor.UserID: {ID: profesor.UserID, Name: "Prof", Role: user.RoleProfesor, IsActive: true},
		student.UserID:  {ID: student.UserID, Name: "Student One", Role: user.RoleEstudiante, IsActive: true},
		student2.UserID: {ID: student2.UserID, Name: "Student Two", Role: user.RoleEstudiante, IsActive: true},
	}}

	dispatcher := notification.NewDispatcher(
		notification.NewLogNotifier(zerolog.Nop()), time.Second, zerolog.Nop())

	svc := NewService(repo, classrooms, users, keylock.New(), dispatcher, zerolog.Nop())
	return &testEnv{service: svc, repo: repo, classrooms: classrooms, users: users}
}

func slot(dayOffset, startHour, endHour int) (time.Time, time.Time) {
	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, dayOffset)
	return base.Add(time.Duration(startHour) * time.Hour), base.Add(time.Duration(endHour) * time.Hour)
}

func mustCreate(t *testing.T, env *testEnv, actor Actor, classroomID string, startHour, endHour int) *Reservation {
	t.Helper()
	start, end := slot(0, startHour, endHour)
	res, err := env.service.Create(context.Background(), actor, CreateRequest{
		ClassroomID: classroomID,
		StartTime:   start,
		EndTime:     end,
		Purpose:     "class session",
	})
	require.NoError(t, err)
	return res
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("student creation starts pending", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, student, "room-a", 9, 11)
		assert.Equal(t, StatusPending, res.Status)
		assert.Equal(t, student.UserID, res.UserID)
		assert.NotEmpty(t, res.ID)
	})

	t.Run("created reservation carries resolved names", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, student, "room-a", 9, 11)
		assert.Equal(t, "A-101", res.ClassroomName)
		assert.Equal(t, "Main", res.BuildingName)
		assert.Equal(t, "Student One", res.UserName)
	})

	t.Run("staff creation starts confirmed", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, coord, "room-a", 9, 11)
		assert.Equal(t, StatusConfirmed, res.Status)
	})

	t.Run("staff may ask for pending explicitly", func(t *testing.T) {
		env := newTestEnv()
		start, end := slot(0, 9, 11)
		res, err := env.service.Create(ctx, admin, CreateRequest{
			ClassroomID: "room-a", StartTime: start, EndTime: end,
			Purpose: "tentative booking", Status: StatusPending,
		})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, res.Status)
	})

	t.Run("staff cannot create in a terminal status", func(t *testing.T) {
		env := newTestEnv()
		start, end := slot(0, 9, 11)
		_, err := env.service.Create(ctx, admin, CreateRequest{
			ClassroomID: "room-a", StartTime: start, EndTime: end,
			Purpose: "bad status", Status: StatusRejected,
		})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("status supplied by a student is ignored", func(t *testing.T) {
		env := newTestEnv()
		start, end := slot(0, 9, 11)
		res, err := env.service.Create(ctx, student, CreateRequest{
			ClassroomID: "room-a", StartTime: start, EndTime: end,
			Purpose: "study group", Status: StatusConfirmed,
		})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, res.Status)
	})

	t.Run("coordinator creates for a student", func(t *testing.T) {
		env := newTestEnv()
		start, end := slot(0, 9, 11)
		res, err := env.service.Create(ctx, coord, CreateRequest{
			ClassroomID: "room-a", UserID: student.UserID,
			StartTime: start, EndTime: end, Purpose: "tutoring",
		})
		require.NoError(t, err)
		assert.Equal(t, student.UserID, res.UserID)
		assert.Equal(t, "Student One", res.UserName)
		assert.Equal(t, user.RoleEstudiante, res.UserRole)
		assert.Equal(t, StatusConfirmed, res.Status)
	})

	t.Run("coordinator cannot create for a professor", func(t *testing.T) {
		env := newTestEnv()
		start, end := slot(0, 9, 11)
		_, err := env.service.Create(ctx, coord, CreateRequest{
			ClassroomID: "room-a", UserID: profesor.UserID,
			StartTime: start, EndTime: end, Purpose: "lecture",
		})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("student cannot create for someone else", func(t *testing.T) {
		env := newTestEnv()
		start, end := slot(0, 9, 11)
		_, err := env.service.Create(ctx, student, CreateRequest{
			ClassroomID: "room-a", UserID: student2.UserID,
			StartTime: start, EndTime: end, Purpose: "proxy booking",
		})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("validation failures", func(t *testing.T) {
		env := newTestEnv()
		start, end := slot(0, 9, 11)

		_, err := env.service.Create(ctx, student, CreateRequest{
			ClassroomID: "missing", StartTime: start, EndTime: end, Purpose: "x",
		})
		assert.ErrorIs(t, err, ErrClassroomNotFound)

		_, err = env.service.Create(ctx, student, CreateRequest{
			ClassroomID: "room-a", StartTime: end, EndTime: start, Purpose: "x",
		})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)

		_, err = env.service.Create(ctx, student, CreateRequest{
			ClassroomID: "room-a", StartTime: start, EndTime: start, Purpose: "x",
		})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)

		_, err = env.service.Create(ctx, student, CreateRequest{
			ClassroomID: "room-a", StartTime: start, EndTime: end, Purpose: "   ",
		})
		assert.ErrorIs(t, err, ErrEmptyPurpose)

		_, err = env.service.Create(ctx, coord, CreateRequest{
			ClassroomID: "room-a", UserID: "ghost",
			StartTime: start, EndTime: end, Purpose: "x",
		})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("directory failures are not reported as not-found", func(t *testing.T) {
		env := newTestEnv()
		start, end := slot(0, 9, 11)
		boom := errors.New("connection refused")

		env.classrooms.failWith = boom
		_, err := env.service.Create(ctx, student, CreateRequest{
			ClassroomID: "room-a", StartTime: start, EndTime: end, Purpose: "x",
		})
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrClassroomNotFound)

		_, err = env.service.CheckAvailability(ctx, "room-a", start, end)
		assert.ErrorIs(t, err, boom)

		_, err = env.service.ClassroomSchedule(ctx, "room-a", start, end)
		assert.ErrorIs(t, err, boom)

		env.classrooms.failWith = nil
		env.users.failWith = boom
		_, err = env.service.Create(ctx, coord, CreateRequest{
			ClassroomID: "room-a", UserID: student.UserID,
			StartTime: start, EndTime: end, Purpose: "x",
		})
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrUserNotFound)
	})
}

func TestCreateConflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("overlapping slot is rejected", func(t *testing.T) {
		env := newTestEnv()
		mustCreate(t, env, student, "room-a", 9, 11)

		start, end := slot(0, 10, 12)
		_, err := env.service.Create(ctx, student2, CreateRequest{
			ClassroomID: "room-a", StartTime: start, EndTime: end, Purpose: "overlap",
		})
		assert.ErrorIs(t, err, ErrTimeConflict)
		assert.ErrorContains(t, err, "room-a")
	})

	t.Run("pending reservations block the slot too", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, student, "room-a", 9, 11)
		require.Equal(t, StatusPending, res.Status)

		start, end := slot(0, 9, 10)
		_, err := env.service.Create(ctx, student2, CreateRequest{
			ClassroomID: "room-a", StartTime: start, EndTime: end, Purpose: "overlap",
		})
		assert.ErrorIs(t, err, ErrTimeConflict)
	})

	t.Run("touching intervals do not conflict", func(t *testing.T) {
		env := newTestEnv()
		mustCreate(t, env, student, "room-a", 9, 11)

		start, end := slot(0, 11, 13)
		_, err := env.service.Create(ctx, student2, CreateRequest{
			ClassroomID: "room-a", StartTime: start, EndTime: end, Purpose: "back to back",
		})
		assert.NoError(t, err)
	})

	t.Run("other classrooms are unaffected", func(t *testing.T) {
		env := newTestEnv()
		mustCreate(t, env, student, "room-a", 9, 11)

		start, end := slot(0, 9, 11)
		_, err := env.service.Create(ctx, student2, CreateRequest{
			ClassroomID: "room-b", StartTime: start, EndTime: end, Purpose: "same slot elsewhere",
		})
		assert.NoError(t, err)
	})

	t.Run("cancelled reservations free the slot", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, student, "room-a", 9, 11)
		_, err := env.service.Cancel(ctx, student, res.ID)
		require.NoError(t, err)

		start, end := slot(0, 9, 11)
		_, err = env.service.Create(ctx, student2, CreateRequest{
			ClassroomID: "room-a", StartTime: start, EndTime: end, Purpose: "freed slot",
		})
		assert.NoError(t, err)
	})
}

func TestCreateConcurrentSameSlot(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	start, end := slot(0, 9, 11)

	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.service.Create(ctx, student, CreateRequest{
				ClassroomID: "room-a", StartTime: start, EndTime: end, Purpose: "race",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var created, conflicted int
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrTimeConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflicted)
}

func TestReservationLifecycle(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	res := mustCreate(t, env, student, "room-a", 9, 11)
	require.Equal(t, StatusPending, res.Status)

	// The student cannot confirm their own reservation.
	_, err := env.service.UpdateStatus(ctx, student, res.ID, StatusConfirmed)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// A coordinator moderates student reservations.
	res, err = env.service.UpdateStatus(ctx, coord, res.ID, StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, res.Status)

	// Once confirmed, the student may no longer edit it.
	newPurpose := "changed my mind"
	_, err = env.service.Update(ctx, student, res.ID, UpdateRequest{Purpose: &newPurpose})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// But may still cancel it.
	res, err = env.service.Cancel(ctx, student, res.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, res.Status)

	// Cancelled is terminal, even for an admin: the lifecycle rules win
	// over authorization.
	_, err = env.service.UpdateStatus(ctx, admin, res.ID, StatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
}

func TestUpdateStatusValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	res := mustCreate(t, env, student, "room-a", 9, 11)

	_, err := env.service.UpdateStatus(ctx, admin, res.ID, Status("approved"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// A reservation can never return to pending.
	confirmed, err := env.service.UpdateStatus(ctx, admin, res.ID, StatusConfirmed)
	require.NoError(t, err)
	_, err = env.service.UpdateStatus(ctx, admin, confirmed.ID, StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.service.UpdateStatus(ctx, admin, "no-such-id", StatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("owner updates a pending reservation", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, student, "room-a", 9, 11)

		newStart, newEnd := slot(0, 10, 12)
		purpose := "rescheduled"
		updated, err := env.service.Update(ctx, student, res.ID, UpdateRequest{
			StartTime: &newStart, EndTime: &newEnd, Purpose: &purpose,
		})
		require.NoError(t, err)
		assert.Equal(t, newStart, updated.StartTime)
		assert.Equal(t, newEnd, updated.EndTime)
		assert.Equal(t, purpose, updated.Purpose)
		assert.Equal(t, StatusPending, updated.Status)
	})

	t.Run("own slot does not conflict with itself", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, student, "room-a", 9, 11)

		newStart, newEnd := slot(0, 9, 12)
		_, err := env.service.Update(ctx, student, res.ID, UpdateRequest{
			StartTime: &newStart, EndTime: &newEnd,
		})
		assert.NoError(t, err)
	})

	t.Run("moving onto another reservation conflicts", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, student, "room-a", 9, 11)
		mustCreate(t, env, student2, "room-a", 14, 16)

		newStart, newEnd := slot(0, 15, 17)
		_, err := env.service.Update(ctx, student, res.ID, UpdateRequest{
			StartTime: &newStart, EndTime: &newEnd,
		})
		assert.ErrorIs(t, err, ErrTimeConflict)
	})

	t.Run("changing classroom re-checks conflicts", func(t *testing.T) {
		env := newTestEnv()
		mustCreate(t, env, student2, "room-b", 9, 11)
		res := mustCreate(t, env, student, "room-a", 9, 11)

		roomB := "room-b"
		_, err := env.service.Update(ctx, student, res.ID, UpdateRequest{ClassroomID: &roomB})
		assert.ErrorIs(t, err, ErrTimeConflict)
	})

	t.Run("fields and status can change in one call", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, student, "room-a", 9, 11)

		purpose := "approved session"
		status := StatusConfirmed
		updated, err := env.service.Update(ctx, coord, res.ID, UpdateRequest{
			Purpose: &purpose, Status: &status,
		})
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, updated.Status)
		assert.Equal(t, purpose, updated.Purpose)
	})

	t.Run("embedded status change obeys the lifecycle", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, student, "room-a", 9, 11)
		_, err := env.service.Cancel(ctx, student, res.ID)
		require.NoError(t, err)

		status := StatusConfirmed
		_, err = env.service.Update(ctx, admin, res.ID, UpdateRequest{Status: &status})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("embedded status change obeys the policy", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, student, "room-a", 9, 11)

		status := StatusConfirmed
		_, err := env.service.Update(ctx, student, res.ID, UpdateRequest{Status: &status})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("a concurrent cancel is not overwritten", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, student, "room-a", 9, 11)

		// The owner cancels while the admin's update sits between its
		// read and its write. The stale write must lose, not quietly
		// resurrect the cancelled reservation.
		env.repo.beforeOverlap = func() {
			_, err := env.service.Cancel(ctx, student, res.ID)
			require.NoError(t, err)
		}

		newStart, newEnd := slot(0, 10, 12)
		_, err := env.service.Update(ctx, admin, res.ID, UpdateRequest{
			StartTime: &newStart, EndTime: &newEnd,
		})
		assert.ErrorIs(t, err, ErrModified)

		got, err := env.service.GetByID(ctx, admin, res.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, got.Status)
		assert.True(t, got.StartTime.Equal(res.StartTime))
	})

	t.Run("admin reassigns a pending reservation", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, student, "room-a", 9, 11)

		updated, err := env.service.Update(ctx, admin, res.ID, UpdateRequest{UserID: &student2.UserID})
		require.NoError(t, err)
		assert.Equal(t, student2.UserID, updated.UserID)
	})

	t.Run("reassignment is refused once confirmed", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, student, "room-a", 9, 11)
		_, err := env.service.UpdateStatus(ctx, admin, res.ID, StatusConfirmed)
		require.NoError(t, err)

		_, err = env.service.Update(ctx, admin, res.ID, UpdateRequest{UserID: &student2.UserID})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("only an admin may reassign", func(t *testing.T) {
		env := newTestEnv()
		start, end := slot(0, 9, 11)
		res, err := env.service.Create(ctx, coord, CreateRequest{
			ClassroomID: "room-a", UserID: student.UserID,
			StartTime: start, EndTime: end, Purpose: "tutoring", Status: StatusPending,
		})
		require.NoError(t, err)

		_, err = env.service.Update(ctx, coord, res.ID, UpdateRequest{UserID: &student2.UserID})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestGetAndDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner and staff can view, strangers cannot", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, student, "room-a", 9, 11)

		_, err := env.service.GetByID(ctx, student, res.ID)
		assert.NoError(t, err)
		_, err = env.service.GetByID(ctx, admin, res.ID)
		assert.NoError(t, err)
		_, err = env.service.GetByID(ctx, coord, res.ID)
		assert.NoError(t, err)
		_, err = env.service.GetByID(ctx, student2, res.ID)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("owner deletes a pending reservation", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, student, "room-a", 9, 11)

		require.NoError(t, env.service.Delete(ctx, student, res.ID))
		_, err := env.service.GetByID(ctx, student, res.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("owner cannot delete a confirmed reservation", func(t *testing.T) {
		env := newTestEnv()
		res := mustCreate(t, env, student, "room-a", 9, 11)
		_, err := env.service.UpdateStatus(ctx, coord, res.ID, StatusConfirmed)
		require.NoError(t, err)

		err = env.service.Delete(ctx, student, res.ID)
		assert.ErrorIs(t, err, ErrPermissionDenied)

		// An admin can.
		assert.NoError(t, env.service.Delete(ctx, admin, res.ID))
	})
}

func TestListScoping(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	mustCreate(t, env, student, "room-a", 8, 9)
	mustCreate(t, env, student2, "room-a", 9, 10)
	mustCreate(t, env, profesor, "room-a", 10, 11)
	mustCreate(t, env, coord, "room-a", 11, 12)

	t.Run("students see only their own", func(t *testing.T) {
		list, total, err := env.service.List(ctx, student, Filter{})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, list, 1)
		assert.Equal(t, student.UserID, list[0].UserID)
	})

	t.Run("a student cannot widen the scope via filters", func(t *testing.T) {
		list, _, err := env.service.List(ctx, student, Filter{UserID: profesor.UserID})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("coordinator sees own plus student reservations", func(t *testing.T) {
		list, total, err := env.service.List(ctx, coord, Filter{})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		for _, res := range list {
			ok := res.UserID == coord.UserID || res.UserRole == user.RoleEstudiante
			assert.True(t, ok, "unexpected reservation for %s", res.UserID)
		}
	})

	t.Run("admin sees everything", func(t *testing.T) {
		_, total, err := env.service.List(ctx, admin, Filter{})
		require.NoError(t, err)
		assert.Equal(t, 4, total)
	})
}

func TestAvailability(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	mustCreate(t, env, student, "room-a", 9, 11)

	t.Run("check", func(t *testing.T) {
		start, end := slot(0, 10, 12)
		available, err := env.service.CheckAvailability(ctx, "room-a", start, end)
		require.NoError(t, err)
		assert.False(t, available)

		start, end = slot(0, 11, 13)
		available, err = env.service.CheckAvailability(ctx, "room-a", start, end)
		require.NoError(t, err)
		assert.True(t, available)

		_, err = env.service.CheckAvailability(ctx, "missing", start, end)
		assert.ErrorIs(t, err, ErrClassroomNotFound)
	})

	t.Run("summary", func(t *testing.T) {
		at, _ := slot(0, 10, 11)
		summary, err := env.service.AvailabilitySummary(ctx, at)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Total)
		assert.Equal(t, 1, summary.Unavailable)
		assert.Equal(t, 1, summary.Available)

		at, _ = slot(0, 12, 13)
		summary, err = env.service.AvailabilitySummary(ctx, at)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.Unavailable)
		assert.Equal(t, 2, summary.Available)
	})

	t.Run("schedule lists active reservations in order", func(t *testing.T) {
		res := mustCreate(t, env, student2, "room-a", 14, 16)
		cancelled := mustCreate(t, env, student2, "room-a", 17, 18)
		_, err := env.service.Cancel(ctx, student2, cancelled.ID)
		require.NoError(t, err)

		from, _ := slot(0, 0, 1)
		_, to := slot(0, 23, 24)
		schedule, err := env.service.ClassroomSchedule(ctx, "room-a", from, to)
		require.NoError(t, err)
		require.Len(t, schedule, 2)
		assert.True(t, schedule[0].StartTime.Before(schedule[1].StartTime))
		assert.Equal(t, res.ID, schedule[1].ID)
	})

	t.Run("schedule is not truncated at one page", func(t *testing.T) {
		env := newTestEnv()
		base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		total := schedulePageSize + 30
		for i := 0; i < total; i++ {
			start := base.Add(time.Duration(i) * time.Hour)
			require.NoError(t, env.repo.Create(ctx, &Reservation{
				ClassroomID: "room-a",
				UserID:      student.UserID,
				UserRole:    user.RoleEstudiante,
				StartTime:   start,
				EndTime:     start.Add(time.Hour),
				Purpose:     "block booking",
				Status:      StatusConfirmed,
			}))
		}

		schedule, err := env.service.ClassroomSchedule(ctx, "room-a",
			base, base.Add(time.Duration(total)*time.Hour))
		require.NoError(t, err)
		assert.Len(t, schedule, total)
	})
}
