package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	appmedia "github.com/xiebiao/bookworld/internal/application/media"
	apporder "github.com/xiebiao/bookworld/internal/application/order"
	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/internal/domain/cart"
	"github.com/xiebiao/bookworld/internal/domain/courier"
	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/domain/shared"
	"github.com/xiebiao/bookworld/internal/infrastructure/config"
	"github.com/xiebiao/bookworld/internal/infrastructure/courier/steadfast"
	"github.com/xiebiao/bookworld/internal/infrastructure/media"
	"github.com/xiebiao/bookworld/internal/infrastructure/persistence"
	"github.com/xiebiao/bookworld/internal/interface/http/handler"
	"github.com/xiebiao/bookworld/internal/interface/http/middleware"
	"github.com/xiebiao/bookworld/internal/interface/http/router"
	"github.com/xiebiao/bookworld/pkg/jwt"
	"github.com/xiebiao/bookworld/pkg/logger"
	"github.com/xiebiao/bookworld/pkg/money"
	"github.com/xiebiao/bookworld/pkg/mq"
)

// provideRepositories 按storage.driver创建仓储，cleanup关闭数据库和Redis连接
func provideRepositories(cfg *config.Config) (*persistence.Repositories, func(), error) {
	repos, err := persistence.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := repos.Close(); err != nil {
			logger.Error("关闭存储连接失败", err, nil)
		}
	}
	return repos, cleanup, nil
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

// providePublisher 未启用RabbitMQ时退化为只打日志的发布者
func providePublisher(cfg *config.Config) (mq.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return mq.NoopPublisher{}, func() {}, nil
	}
	p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType)
	if err != nil {
		return nil, nil, err
	}
	return p, func() { _ = p.Close() }, nil
}

// providePricing 配置中的金额为主货币单位
func providePricing(cfg *config.Config) order.Pricing {
	return order.Pricing{
		FreeDeliveryThreshold: money.FromMajor(cfg.Order.FreeDeliveryThreshold),
		DeliveryCharge:        money.FromMajor(cfg.Order.DeliveryCharge),
		CODFee:                money.FromMajor(cfg.Order.CODFee),
	}
}

func provideCourierClient(cfg *config.Config) courier.Client {
	return steadfast.NewClient(cfg.Courier)
}

// provideObjectStorage 未配置MinIO时图片存在进程内（重启丢失）
func provideObjectStorage(cfg *config.Config) (media.ObjectStorage, error) {
	if cfg.Media.Endpoint == "" {
		logger.Warn("未配置对象存储，上传的图片不会持久化", nil)
		return media.NewMemoryStorage(cfg.Media.PublicURL), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return media.NewMinIOStorage(ctx, cfg.Media)
}

func provideUploadUseCase(cfg *config.Config, storage media.ObjectStorage) *appmedia.UploadUseCase {
	processor := media.NewImageProcessor(cfg.Media.MaxSize, cfg.Media.ThumbSize)
	return appmedia.NewUploadUseCase(storage, processor, cfg.Media.Folder)
}

func provideUploadHandler(cfg *config.Config, upload *appmedia.UploadUseCase) *handler.UploadHandler {
	return handler.NewUploadHandler(upload, cfg.Media.MaxSize)
}

func providePlaceOrderUseCase(
	cfg *config.Config,
	orderRepo order.Repository,
	bookRepo book.Repository,
	cartRepo cart.Repository,
	txManager shared.TxManager,
	publisher mq.EventPublisher,
	pricing order.Pricing,
) *apporder.PlaceOrderUseCase {
	return apporder.NewPlaceOrderUseCase(orderRepo, bookRepo, cartRepo, txManager, publisher, pricing, cfg.Order.DuplicateWindow)
}

func provideEngine(cfg *config.Config, auth *middleware.AuthMiddleware, handlers router.Handlers) *gin.Engine {
	return router.New(cfg.Server, auth, handlers)
}
