package user

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/bookworld/internal/domain/shared"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

type passthroughTx struct{}

func (passthroughTx) Transaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	users map[string]*User
}

func (r *fakeRepo) Create(_ context.Context, u *User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return apperrors.ErrEmailDuplicate
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeRepo) Update(_ context.Context, u *User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ shared.Page) ([]*User, int64, error) {
	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, int64(len(out)), nil
}

func (r *fakeRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

func newTestService() (*service, *fakeRepo) {
	repo := &fakeRepo{users: map[string]*User{}}
	svc := NewService(repo, passthroughTx{}).(*service)
	svc.bcryptCost = bcrypt.MinCost
	return svc, repo
}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Register(ctx, "Admin@Example.com", "password123", "站长")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, first.Role)
	assert.Equal(t, "admin@example.com", first.Email)

	second, err := svc.Register(ctx, "reader@example.com", "password123", "读者")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, second.Role)

	_, err = svc.Register(ctx, "reader@example.com", "password123", "读者")
	assert.ErrorIs(t, err, apperrors.ErrEmailDuplicate)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "bad-email", "password123", "读者")
	assert.Error(t, err)

	_, err = svc.Register(ctx, "a@example.com", "short1", "读者")
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)

	_, err = svc.Register(ctx, "a@example.com", "onlyletters", "读者")
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)

	_, err = svc.Register(ctx, "a@example.com", "password123", "x")
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, "reader@example.com", "password123", "读者")
	require.NoError(t, err)

	u, err := svc.Login(ctx, "reader@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "读者", u.Nickname)

	_, err = svc.Login(ctx, "reader@example.com", "wrongpass1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestChangeRoleAndDelete_AdminOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	admin, err := svc.Register(ctx, "admin@example.com", "password123", "站长")
	require.NoError(t, err)
	reader, err := svc.Register(ctx, "reader@example.com", "password123", "读者")
	require.NoError(t, err)

	_, err = svc.ChangeRole(ctx, reader, admin.ID, RoleUser)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.ChangeRole(ctx, admin, admin.ID, RoleUser)
	assert.ErrorIs(t, err, ErrCannotChangeOwnRole)

	_, err = svc.ChangeRole(ctx, admin, reader.ID, Role("root"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	updated, err := svc.ChangeRole(ctx, admin, reader.ID, RoleModerator)
	require.NoError(t, err)
	assert.True(t, updated.Role.IsStaff())

	// 版主不是管理员，不能删除用户
	assert.ErrorIs(t, svc.Delete(ctx, updated, admin.ID), apperrors.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, admin, admin.ID), ErrCannotDeleteSelf)
	require.NoError(t, svc.Delete(ctx, admin, reader.ID))

	_, err = svc.Get(ctx, reader.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestRole(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleDeveloper, RoleModerator} {
		assert.True(t, r.IsStaff(), r)
	}
	assert.False(t, RoleUser.IsStaff())

	_, ok := ParseRole("superuser")
	assert.False(t, ok)
}
