package user

import (
	"context"

	"github.com/xiebiao/bookworld/internal/domain/shared"
)

// Repository 用户仓储接口
type Repository interface {
	// Create 邮箱已存在时返回errors.ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 不存在时返回errors.ErrUserNotFound
	FindByID(ctx context.Context, id string) (*User, error)

	FindByEmail(ctx context.Context, email string) (*User, error)

	Update(ctx context.Context, user *User) error

	Delete(ctx context.Context, id string) error

	// List 按注册时间倒序
	List(ctx context.Context, page shared.Page) ([]*User, int64, error)

	Count(ctx context.Context) (int64, error)
}
