package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookworld/internal/domain/shared"
	"github.com/xiebiao/bookworld/internal/domain/user"
	"github.com/xiebiao/bookworld/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
	"github.com/xiebiao/bookworld/pkg/jwt"
)

type env struct {
	service  user.Service
	sessions *memory.SessionStore
	jwt      *jwt.Manager
}

func newEnv() *env {
	store := memory.NewStore(3)
	return &env{
		service:  user.NewService(memory.NewUserRepository(store), store),
		sessions: memory.NewSessionStore(),
		jwt:      jwt.NewManager("test-secret", time.Hour, 24*time.Hour),
	}
}

func (e *env) register(t *testing.T, email, nickname string) *UserInfo {
	t.Helper()
	info, err := NewRegisterUseCase(e.service).Execute(context.Background(), RegisterRequest{
		Email: email, Password: "password123", Nickname: nickname,
	})
	require.NoError(t, err)
	return info
}

func TestLoginRefreshLogout(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	admin := e.register(t, "admin@example.com", "站长")
	assert.Equal(t, "admin", admin.Role)

	resp, err := NewLoginUseCase(e.service, e.jwt, e.sessions).Execute(ctx, LoginRequest{
		Email: "ADMIN@example.com", Password: "password123", ClientIP: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, resp.User.ID)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := e.jwt.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)

	session, err := e.sessions.GetSession(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", session["ip"])

	refreshed, err := NewRefreshTokenUseCase(e.service, e.jwt, e.sessions).Execute(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	require.NoError(t, NewLogoutUseCase(e.sessions, e.jwt).Execute(ctx, admin.ID, resp.AccessToken))
	blacklisted, err := e.sessions.IsInBlacklist(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, blacklisted)

	// 登出后会话已删除，Refresh Token失效
	_, err = NewRefreshTokenUseCase(e.service, e.jwt, e.sessions).Execute(ctx, resp.RefreshToken)
	assert.Error(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newEnv()
	e.register(t, "a@example.com", "读者A")

	_, err := NewLoginUseCase(e.service, e.jwt, e.sessions).Execute(context.Background(), LoginRequest{
		Email: "a@example.com", Password: "wrong-password1",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
}

func TestAdminUseCase(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	admin := e.register(t, "admin@example.com", "站长")
	reader := e.register(t, "reader@example.com", "读者")
	assert.Equal(t, "user", reader.Role)

	uc := NewAdminUseCase(e.service)

	list, err := uc.List(ctx, shared.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)

	changed, err := uc.ChangeRole(ctx, admin.ID, reader.ID, "moderator")
	require.NoError(t, err)
	assert.Equal(t, "moderator", changed.Role)

	// 非管理员不能修改角色
	_, err = uc.ChangeRole(ctx, reader.ID, admin.ID, "user")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = uc.ChangeRole(ctx, admin.ID, reader.ID, "root")
	assert.ErrorIs(t, err, user.ErrInvalidRole)

	assert.ErrorIs(t, uc.Delete(ctx, admin.ID, admin.ID), user.ErrCannotDeleteSelf)
	require.NoError(t, uc.Delete(ctx, admin.ID, reader.ID))

	_, err = uc.Me(ctx, reader.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	me, err := uc.Me(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", me.Email)
}
