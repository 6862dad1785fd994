package handler

import (
	"github.com/gin-gonic/gin"

	appsite "github.com/xiebiao/bookworld/internal/application/site"
	"github.com/xiebiao/bookworld/internal/domain/site"
	"github.com/xiebiao/bookworld/internal/interface/http/dto"
	"github.com/xiebiao/bookworld/pkg/response"
)

// SiteHandler 站点设置和团队成员
type SiteHandler struct {
	site *appsite.UseCase
}

// NewSiteHandler 创建站点处理器
func NewSiteHandler(site *appsite.UseCase) *SiteHandler {
	return &SiteHandler{site: site}
}

// GetSettings 站点设置
// @Summary      站点设置
// @Tags         站点
// @Produce      json
// @Success      200 {object} response.Response{data=map[string]string}
// @Router       /api/v1/site/settings [get]
func (h *SiteHandler) GetSettings(c *gin.Context) {
	settings, err := h.site.Settings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, settings)
}

// UpdateSettings 修改站点设置
// @Summary      修改站点设置
// @Tags         站点管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.UpdateSettingsRequest true "设置项"
// @Success      200 {object} response.Response{data=map[string]string}
// @Router       /api/v1/admin/site/settings [put]
func (h *SiteHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	settings, err := h.site.UpdateSettings(c.Request.Context(), req.Settings)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, settings)
}

// ListTeam 团队成员
// @Summary      团队成员
// @Tags         站点
// @Produce      json
// @Success      200 {object} response.Response{data=[]site.TeamMember}
// @Router       /api/v1/site/team [get]
func (h *SiteHandler) ListTeam(c *gin.Context) {
	team, err := h.site.Team(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, team)
}

// CreateMember 新增团队成员
// @Summary      新增团队成员
// @Tags         站点管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.TeamMemberRequest true "成员信息"
// @Success      200 {object} response.Response{data=site.TeamMember}
// @Router       /api/v1/admin/site/team [post]
func (h *SiteHandler) CreateMember(c *gin.Context) {
	h.saveMember(c, "")
}

// UpdateMember 修改团队成员
// @Summary      修改团队成员
// @Tags         站点管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                 true "成员ID"
// @Param        request body dto.TeamMemberRequest true "成员信息"
// @Success      200 {object} response.Response{data=site.TeamMember}
// @Router       /api/v1/admin/site/team/{id} [put]
func (h *SiteHandler) UpdateMember(c *gin.Context) {
	h.saveMember(c, c.Param("id"))
}

func (h *SiteHandler) saveMember(c *gin.Context, id string) {
	var req dto.TeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	m, err := h.site.SaveMember(c.Request.Context(), site.TeamMember{
		ID:       id,
		Name:     req.Name,
		Role:     req.Role,
		Bio:      req.Bio,
		ImageURL: req.ImageURL,
		Position: req.Position,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, m)
}

// DeleteMember 删除团队成员
// @Summary      删除团队成员
// @Tags         站点管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "成员ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/admin/site/team/{id} [delete]
func (h *SiteHandler) DeleteMember(c *gin.Context) {
	if err := h.site.DeleteMember(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
