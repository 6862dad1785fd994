package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/bookworld/internal/domain/shared"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

var (
	ErrCannotChangeOwnRole = apperrors.New(apperrors.ErrCodeForbidden, "不能修改自己的角色")
	ErrCannotDeleteSelf    = apperrors.New(apperrors.ErrCodeForbidden, "不能删除自己")
	ErrInvalidRole         = apperrors.New(apperrors.ErrCodeInvalidParams, "角色不合法")
)

// Service 用户领域服务
type Service interface {
	// Register 注册，系统中第一个用户自动成为管理员
	Register(ctx context.Context, email, password, nickname string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	ValidatePassword(hashedPassword, plainPassword string) error
	// ChangeRole 仅管理员可调用
	ChangeRole(ctx context.Context, operator *User, targetID string, role Role) (*User, error)
	// Delete 仅管理员可调用
	Delete(ctx context.Context, operator *User, targetID string) error
	List(ctx context.Context, page shared.Page) ([]*User, int64, error)
	Get(ctx context.Context, id string) (*User, error)
}

type service struct {
	repo       Repository
	tx         shared.TxManager
	bcryptCost int
	now        func() time.Time
}

// NewService 创建用户服务
func NewService(repo Repository, tx shared.TxManager) Service {
	return &service{repo: repo, tx: tx, bcryptCost: 12, now: time.Now}
}

func (s *service) Register(ctx context.Context, email, password, nickname string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !isValidEmail(email) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	}
	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}
	if n := len([]rune(nickname)); n < 2 || n > 50 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "昵称长度应为2-50个字符")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	var u *User
	err = s.tx.Transaction(ctx, func(txCtx context.Context) error {
		count, err := s.repo.Count(txCtx)
		if err != nil {
			return err
		}
		role := RoleUser
		if count == 0 {
			role = RoleAdmin
		}
		u = NewUser(uuid.NewString(), email, string(hashed), nickname, role, s.now())
		return s.repo.Create(txCtx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if err := s.ValidatePassword(u.Password, password); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) ValidatePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperrors.ErrInvalidPassword
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

func (s *service) ChangeRole(ctx context.Context, operator *User, targetID string, role Role) (*User, error) {
	if operator == nil || !operator.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	if _, ok := ParseRole(string(role)); !ok {
		return nil, ErrInvalidRole
	}
	if operator.ID == targetID {
		return nil, ErrCannotChangeOwnRole
	}

	u, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	u.ChangeRole(role, s.now())
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Delete(ctx context.Context, operator *User, targetID string) error {
	if operator == nil || !operator.IsAdmin() {
		return apperrors.ErrForbidden
	}
	if operator.ID == targetID {
		return ErrCannotDeleteSelf
	}
	return s.repo.Delete(ctx, targetID)
}

func (s *service) List(ctx context.Context, page shared.Page) ([]*User, int64, error) {
	return s.repo.List(ctx, page.Normalize())
}

func (s *service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	letterPattern = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
)

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// validatePasswordStrength 8-20位，必须包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}
	if !letterPattern.MatchString(password) || !digitPattern.MatchString(password) {
		return apperrors.ErrWeakPassword
	}
	return nil
}
