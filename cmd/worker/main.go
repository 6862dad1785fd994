// 后台任务进程
//
//   - RabbitMQ消费者：订阅 order.* 事件（低库存检查、状态变更日志）
//   - asynq服务和调度器：定时同步快递状态
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	apporder "github.com/xiebiao/bookworld/internal/application/order"
	"github.com/xiebiao/bookworld/internal/infrastructure/config"
	"github.com/xiebiao/bookworld/internal/infrastructure/courier/steadfast"
	"github.com/xiebiao/bookworld/internal/infrastructure/persistence"
	"github.com/xiebiao/bookworld/internal/infrastructure/queue"
	"github.com/xiebiao/bookworld/internal/interface/job"
	"github.com/xiebiao/bookworld/pkg/logger"
	"github.com/xiebiao/bookworld/pkg/mq"
	"github.com/xiebiao/bookworld/pkg/tracing"
)

// orderEventsPattern 订阅所有订单事件
const orderEventsPattern = "order.*"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("加载配置失败", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatal("初始化日志失败", err)
	}
	if cfg.Tracing.ServiceName == "bookworld" {
		cfg.Tracing.ServiceName = "bookworld-worker"
	}
	shutdownTracer, err := tracing.InitTracer(cfg.Tracing)
	if err != nil {
		logger.Fatal("初始化链路追踪失败", err)
	}

	repos, err := persistence.New(cfg)
	if err != nil {
		logger.Fatal("初始化存储失败", err)
	}
	defer repos.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	if cfg.MQ.Enabled {
		consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType,
			cfg.Worker.EventQueue, []string{orderEventsPattern})
		if err != nil {
			logger.Fatal("创建消息消费者失败", err)
		}
		defer consumer.Close()

		events := apporder.NewEventHandler(repos.Books, cfg.Order.LowStockThreshold)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Consume(ctx, events.Handle); err != nil {
				logger.Error("消息消费异常退出", err, map[string]interface{}{"queue": cfg.Worker.EventQueue})
				stop()
			}
		}()
	} else {
		logger.Warn("消息队列未启用，不消费订单事件", nil)
	}

	redisOpt := queue.RedisOpt(cfg.Redis)
	syncUC := apporder.NewSyncCourierStatusUseCase(repos.Orders, steadfast.NewClient(cfg.Courier), cfg.Worker.SyncBatchSize)

	srv := queue.NewServer(redisOpt, cfg.Worker.Concurrency)
	srv.Handle(queue.TypeCourierSync, job.NewCourierSyncHandler(syncUC))
	if err := srv.Start(); err != nil {
		logger.Fatal("启动任务服务失败", err)
	}

	scheduler := queue.NewScheduler(redisOpt)
	if err := scheduler.RegisterCourierSync(cfg.Worker.CourierSyncCron); err != nil {
		logger.Fatal("注册定时任务失败", err)
	}
	if err := scheduler.Start(); err != nil {
		logger.Fatal("启动调度器失败", err)
	}

	logger.Info("worker已启动", map[string]interface{}{
		"courier_sync_cron": cfg.Worker.CourierSyncCron,
		"concurrency":       cfg.Worker.Concurrency,
	})

	<-ctx.Done()
	logger.Info("正在关闭worker", nil)

	scheduler.Shutdown()
	srv.Shutdown()
	wg.Wait()
	if err := shutdownTracer(context.Background()); err != nil {
		logger.Error("链路追踪关闭失败", err, nil)
	}
	logger.Info("worker已退出", nil)
}
