package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	byEmail map[string]*User
	nextID  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byEmail: make(map[string]*User)}
}

func (r *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) Create(_ context.Context, u *User) error {
	if _, exists := r.byEmail[u.Email]; exists {
		return ErrEmailAlreadyUsed
	}
	r.nextID++
	u.ID = fmt.Sprintf("user-%d", r.nextID)
	u.CreatedAt = time.Now().UTC()
	r.byEmail[u.Email] = u
	return nil
}

func (r *fakeRepo) UpdateLastLogin(_ context.Context, id string, t time.Time) error {
	u, err := r.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	u.LastLoginAt = &t
	return nil
}

func (r *fakeRepo) List(context.Context, Filter) ([]*User, int, error) {
	return nil, 0, nil
}

func (r *fakeRepo) SetActive(_ context.Context, id string, active bool) error {
	u, err := r.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	u.IsActive = active
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	for email, u := range r.byEmail {
		if u.ID == id {
			delete(r.byEmail, email)
			return nil
		}
	}
	return ErrNotFound
}

// plainHasher avoids bcrypt cost in unit tests.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hash:" + plain, nil }

func (plainHasher) Compare(hash, plain string) error {
	if hash != "hash:"+plain {
		return ErrInvalidCredentials
	}
	return nil
}

func newTestService() (Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, plainHasher{}), repo
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("success normalizes the email", func(t *testing.T) {
		svc, _ := newTestService()
		u, err := svc.Register(ctx, RegisterRequest{
			Name: "  Ana Gomez ", Email: " Ana@Uni.EDU ", Password: "sup3rsecret", Role: RoleEstudiante,
		})
		require.NoError(t, err)
		assert.Equal(t, "ana@uni.edu", u.Email)
		assert.Equal(t, "Ana Gomez", u.Name)
		assert.Equal(t, RoleEstudiante, u.Role)
		assert.True(t, u.IsActive)
		assert.NotEmpty(t, u.ID)
	})

	t.Run("validation", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Register(ctx, RegisterRequest{Email: "  ", Password: "sup3rsecret", Role: RoleEstudiante})
		assert.ErrorIs(t, err, ErrEmailRequired)

		_, err = svc.Register(ctx, RegisterRequest{Email: "a@b.c", Password: "short", Role: RoleEstudiante})
		assert.ErrorIs(t, err, ErrPasswordTooShort)

		_, err = svc.Register(ctx, RegisterRequest{Email: "a@b.c", Password: "sup3rsecret", Role: Role("SUPERUSER")})
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.c", Password: "sup3rsecret", Role: RoleEstudiante})
		require.NoError(t, err)

		_, err = svc.Register(ctx, RegisterRequest{Email: "A@B.C", Password: "sup3rsecret", Role: RoleProfesor})
		assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	registered, err := svc.Register(ctx, RegisterRequest{
		Name: "Ana", Email: "ana@uni.edu", Password: "sup3rsecret", Role: RoleEstudiante,
	})
	require.NoError(t, err)

	t.Run("success records last login", func(t *testing.T) {
		u, err := svc.Login(ctx, "ANA@uni.edu", "sup3rsecret")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, u.ID)
		assert.NotNil(t, u.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "ana@uni.edu", "not-the-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email looks identical to wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@uni.edu", "sup3rsecret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("deactivated account", func(t *testing.T) {
		_, err := svc.SetActive(ctx, registered.ID, false)
		require.NoError(t, err)

		_, err = svc.Login(ctx, "ana@uni.edu", "sup3rsecret")
		assert.ErrorIs(t, err, ErrInactiveUser)
	})
}

func TestRoleHelpers(t *testing.T) {
	assert.True(t, RoleAdmin.IsStaff())
	assert.True(t, RoleCoordinador.IsStaff())
	assert.False(t, RoleProfesor.IsStaff())
	assert.False(t, RoleTutor.IsStaff())
	assert.False(t, RoleEstudiante.IsStaff())

	for _, r := range Roles {
		assert.True(t, r.Valid())
	}
	assert.False(t, Role("").Valid())
	assert.False(t, Role("admin").Valid())
}
