// Package site 站点设置与团队成员维护
package site

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/xiebiao/bookworld/internal/domain/site"
)

// UseCase 站点数据用例，读取公开，修改只对管理员开放
type UseCase struct {
	repo site.Repository
}

// NewUseCase 创建站点用例
func NewUseCase(repo site.Repository) *UseCase {
	return &UseCase{repo: repo}
}

// Settings 读取所有设置项
func (uc *UseCase) Settings(ctx context.Context) (map[string]string, error) {
	return uc.repo.Settings(ctx)
}

// UpdateSettings 批量修改设置项，不支持的key整体拒绝
func (uc *UseCase) UpdateSettings(ctx context.Context, values map[string]string) (map[string]string, error) {
	for key := range values {
		if !site.IsKnownSetting(key) {
			return nil, site.ErrUnknownSetting.WithDetails(map[string]interface{}{"key": key})
		}
	}
	for key, value := range values {
		if err := uc.repo.SetSetting(ctx, key, strings.TrimSpace(value)); err != nil {
			return nil, err
		}
	}
	return uc.repo.Settings(ctx)
}

// Team 团队成员，按Position排序
func (uc *UseCase) Team(ctx context.Context) ([]site.TeamMember, error) {
	members, err := uc.repo.ListTeam(ctx)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []site.TeamMember{}
	}
	return members, nil
}

// SaveMember 新增（ID为空）或修改团队成员
func (uc *UseCase) SaveMember(ctx context.Context, m site.TeamMember) (*site.TeamMember, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := uc.repo.SaveMember(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMember 删除团队成员
func (uc *UseCase) DeleteMember(ctx context.Context, id string) error {
	return uc.repo.DeleteMember(ctx, id)
}
