// Package site 站点设置与团队成员
package site

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

// 已知的设置项
const (
	SettingLogoURL  = "logo_url"
	SettingSiteName = "site_name"
)

var (
	ErrMemberNotFound = apperrors.New(apperrors.ErrCodeNotFound, "团队成员不存在")
	ErrInvalidMember  = apperrors.New(apperrors.ErrCodeInvalidParams, "团队成员信息不合法")
	ErrUnknownSetting = apperrors.New(apperrors.ErrCodeInvalidParams, "不支持的设置项")
)

// IsKnownSetting 是否为支持的设置项
func IsKnownSetting(key string) bool {
	return key == SettingLogoURL || key == SettingSiteName
}

// TeamMember 团队成员
type TeamMember struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Bio      string `json:"bio"`
	ImageURL string `json:"image_url"`
	Position int    `json:"position"`
}

// Validate 校验成员信息
func (m TeamMember) Validate() error {
	err := validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&m.Role, validation.Required, validation.Length(1, 100)),
		validation.Field(&m.Bio, validation.Length(0, 1000)),
		validation.Field(&m.ImageURL, validation.When(m.ImageURL != "", is.URL)),
	)
	if err != nil {
		return ErrInvalidMember.WithMessage(err.Error())
	}
	return nil
}

// Repository 站点数据仓储
type Repository interface {
	Settings(ctx context.Context) (map[string]string, error)
	SetSetting(ctx context.Context, key, value string) error

	// ListTeam 按Position升序
	ListTeam(ctx context.Context) ([]TeamMember, error)
	SaveMember(ctx context.Context, m TeamMember) error
	// DeleteMember 不存在时返回ErrMemberNotFound
	DeleteMember(ctx context.Context, id string) error
}
