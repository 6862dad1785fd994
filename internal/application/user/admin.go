package user

import (
	"context"

	"github.com/xiebiao/bookworld/internal/domain/shared"
	"github.com/xiebiao/bookworld/internal/domain/user"
	"github.com/xiebiao/bookworld/pkg/logger"
)

// AdminUseCase 后台用户管理
// 列表对所有员工开放，修改角色和删除用户只允许管理员（领域服务校验）
type AdminUseCase struct {
	userService user.Service
}

// NewAdminUseCase 创建用户管理用例
func NewAdminUseCase(userService user.Service) *AdminUseCase {
	return &AdminUseCase{userService: userService}
}

// UserList 用户列表
type UserList struct {
	List     []*UserInfo `json:"list"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// Me 当前用户信息
func (uc *AdminUseCase) Me(ctx context.Context, userID string) (*UserInfo, error) {
	u, err := uc.userService.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// List 用户列表，按注册时间倒序
func (uc *AdminUseCase) List(ctx context.Context, page shared.Page) (*UserList, error) {
	page = page.Normalize()
	users, total, err := uc.userService.List(ctx, page)
	if err != nil {
		return nil, err
	}
	list := make([]*UserInfo, 0, len(users))
	for _, u := range users {
		list = append(list, toUserInfo(u))
	}
	return &UserList{List: list, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

// ChangeRole 修改角色
func (uc *AdminUseCase) ChangeRole(ctx context.Context, operatorID, targetID, role string) (*UserInfo, error) {
	operator, err := uc.userService.Get(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	u, err := uc.userService.ChangeRole(ctx, operator, targetID, user.Role(role))
	if err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info().
		Str("operator", operatorID).
		Str("user_id", targetID).
		Str("role", role).
		Msg("用户角色已修改")
	return toUserInfo(u), nil
}

// Delete 删除用户
func (uc *AdminUseCase) Delete(ctx context.Context, operatorID, targetID string) error {
	operator, err := uc.userService.Get(ctx, operatorID)
	if err != nil {
		return err
	}
	if err := uc.userService.Delete(ctx, operator, targetID); err != nil {
		return err
	}
	logger.Ctx(ctx).Info().Str("operator", operatorID).Str("user_id", targetID).Msg("用户已删除")
	return nil
}
