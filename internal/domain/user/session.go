package user

import (
	"context"
	"time"
)

// SessionStore 登录会话与Token黑名单
type SessionStore interface {
	SaveSession(ctx context.Context, userID string, data map[string]interface{}, ttl time.Duration) error
	GetSession(ctx context.Context, userID string) (map[string]string, error)
	DeleteSession(ctx context.Context, userID string) error
	// AddToBlacklist 登出后Token在剩余有效期内不可再用
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}
