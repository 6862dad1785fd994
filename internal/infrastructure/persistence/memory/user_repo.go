package memory

import (
	"context"
	"sort"

	"github.com/xiebiao/bookworld/internal/domain/shared"
	"github.com/xiebiao/bookworld/internal/domain/user"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

const collUsers = "users"

type userRepository struct {
	store *Store
}

// NewUserRepository 创建用户仓储（内存文档存储）
func NewUserRepository(store *Store) user.Repository {
	return &userRepository{store: store}
}

func cloneUser(u *user.User) *user.User {
	c := *u
	return &c
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	return r.store.do(ctx, func(t *tx) error {
		for _, v := range t.scan(collUsers) {
			if v.(*user.User).Email == u.Email {
				return apperrors.ErrEmailDuplicate
			}
		}
		t.put(collUsers, u.ID, cloneUser(u))
		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	var out *user.User
	err := r.store.do(ctx, func(t *tx) error {
		v, ok := t.get(collUsers, id)
		if !ok {
			return apperrors.ErrUserNotFound
		}
		out = cloneUser(v.(*user.User))
		return nil
	})
	return out, err
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var out *user.User
	err := r.store.do(ctx, func(t *tx) error {
		for _, v := range t.scan(collUsers) {
			if u := v.(*user.User); u.Email == email {
				out = cloneUser(u)
				return nil
			}
		}
		return apperrors.ErrUserNotFound
	})
	return out, err
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	return r.store.do(ctx, func(t *tx) error {
		if _, ok := t.get(collUsers, u.ID); !ok {
			return apperrors.ErrUserNotFound
		}
		t.put(collUsers, u.ID, cloneUser(u))
		return nil
	})
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.store.do(ctx, func(t *tx) error {
		if _, ok := t.get(collUsers, id); !ok {
			return apperrors.ErrUserNotFound
		}
		t.delete(collUsers, id)
		return nil
	})
}

func (r *userRepository) List(ctx context.Context, page shared.Page) ([]*user.User, int64, error) {
	var users []*user.User
	err := r.store.do(ctx, func(t *tx) error {
		for _, v := range t.scan(collUsers) {
			users = append(users, cloneUser(v.(*user.User)))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return newer(users[i].CreatedAt, users[j].CreatedAt, users[i].ID, users[j].ID)
	})
	page = page.Normalize()
	return paginate(users, page.Offset(), page.PageSize), int64(len(users)), nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.store.do(ctx, func(t *tx) error {
		n = int64(len(t.scan(collUsers)))
		return nil
	})
	return n, err
}
