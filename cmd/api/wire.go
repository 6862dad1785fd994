//go:build wireinject
// +build wireinject

// 依赖注入配置，修改后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	"github.com/xiebiao/bookworld/internal/infrastructure/config"
)

// InitializeApp 组装HTTP服务，cleanup释放连接
func InitializeApp(cfg *config.Config) (*gin.Engine, func(), error) {
	wire.Build(infrastructureSet, domainSet, applicationSet, handlerSet)
	return nil, nil, nil
}
