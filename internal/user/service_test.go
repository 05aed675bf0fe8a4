// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/talentmarket/internal/core"
)

type memRepo struct {
	Repository
	users   map[string]*User
	deleted []string
}

func newMemRepo(users ...*User) *memRepo {
	r := &memRepo{users: map[string]*User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memRepo) Create(_ context.Context, u *User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return u, nil
}

func (r *memRepo) UpdateName(_ context.Context, u *User) error {
	r.users[u.ID] = u
	return nil
}

func (r *memRepo) UpdateRole(_ context.Context, id, role string) error {
	r.users[id].Role = role
	return nil
}

func (r *memRepo) SoftDelete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func TestCreateRejectsAdminAndUnknownRoles(t *testing.T) {
	svc := NewService(newMemRepo())

	for _, role := range []string{RoleAdmin, "director"} {
		_, err := svc.Create(context.Background(), "a@example.com", "h", "A", role)
		assert.ErrorIs(t, err, core.ErrInvalidInput, role)
	}

	info, err := svc.Create(context.Background(), "Casting@Example.com", "h", "C", RoleAgent)
	require.NoError(t, err)
	assert.Equal(t, "casting@example.com", info.Email)
	assert.NotEmpty(t, info.ID)
}

func TestUpdateUserRole(t *testing.T) {
	repo := newMemRepo(
		&User{ID: "admin-1", Role: RoleAdmin},
		&User{ID: "user-1", Role: RoleTalent},
	)
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.UpdateUserRole(ctx, "admin-1", "user-1", RoleProducer)
	require.NoError(t, err)
	assert.Equal(t, RoleProducer, u.Role)

	_, err = svc.UpdateUserRole(ctx, "admin-1", "user-1", "director")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.UpdateUserRole(ctx, "admin-1", "admin-1", RoleTalent)
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.Equal(t, RoleAdmin, repo.users["admin-1"].Role)
}

func TestDeleteUser(t *testing.T) {
	repo := newMemRepo(
		&User{ID: "admin-1", Role: RoleAdmin},
		&User{ID: "admin-2", Role: RoleAdmin},
		&User{ID: "user-1", Role: RoleTalent},
	)
	svc := NewService(repo)
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteUser(ctx, "admin-1", "admin-1"), core.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteUser(ctx, "admin-1", "admin-2"), core.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteUser(ctx, "admin-1", "ghost"), core.ErrNotFound)

	require.NoError(t, svc.DeleteUser(ctx, "admin-1", "user-1"))
	assert.Equal(t, []string{"user-1"}, repo.deleted)
}

func TestUpdateMe(t *testing.T) {
	svc := NewService(newMemRepo(&User{ID: "user-1", Name: "Old", Role: RoleTalent}))
	name := "New"

	u, err := svc.UpdateMe(context.Background(), "user-1", UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New", u.Name)

	_, err = svc.UpdateMe(context.Background(), "", UpdateUserRequest{Name: &name})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestHasTier(t *testing.T) {
	tier, period := "talent-pro", "monthly"
	u := &User{TierID: &tier, BillingPeriod: &period}

	assert.True(t, u.HasTier("talent-pro", "monthly"))
	assert.False(t, u.HasTier("talent-pro", "annual"))
	assert.False(t, (&User{}).HasTier("talent-pro", "monthly"))
}
