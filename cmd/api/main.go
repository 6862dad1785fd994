// Book World 书店后端API服务
//
// @title                      Book World API
// @version                    1.0
// @description                图书目录、购物车、下单（重复提交保护 + 库存校验事务）、订单后台和快递对接
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                格式：Bearer <access_token>
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/xiebiao/bookworld/docs"
	"github.com/xiebiao/bookworld/internal/infrastructure/config"
	"github.com/xiebiao/bookworld/pkg/logger"
	"github.com/xiebiao/bookworld/pkg/tracing"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("加载配置失败", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatal("初始化日志失败", err)
	}

	shutdownTracer, err := tracing.InitTracer(cfg.Tracing)
	if err != nil {
		logger.Fatal("初始化链路追踪失败", err)
	}

	engine, cleanup, err := InitializeApp(cfg)
	if err != nil {
		logger.Fatal("初始化应用失败", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP服务启动", map[string]interface{}{
			"addr":    srv.Addr,
			"mode":    cfg.Server.Mode,
			"storage": cfg.Storage.Driver,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP服务异常退出", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("正在关闭服务", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP服务关闭失败", err, nil)
	}
	cleanup()
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("链路追踪关闭失败", err, nil)
	}
	logger.Info("服务已退出", nil)
}
