package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookworld/pkg/response"
)

// Health 健康检查
// @Summary      健康检查
// @Tags         系统
// @Produce      json
// @Success      200 {object} response.Response
// @Router       /ping [get]
func Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok", "service": "bookworld"})
}
