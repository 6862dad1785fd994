// Package queue 基于asynq的后台任务
package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"github.com/xiebiao/bookworld/internal/infrastructure/config"
)

// 任务类型
const (
	TypeCourierSync = "courier:sync_status"
)

// 队列
const (
	QueueCourier = "courier"
	QueueDefault = "default"
)

const (
	courierSyncMaxRetry = 2
	courierSyncTimeout  = 5 * time.Minute
)

// RedisOpt 由配置生成asynq的Redis连接参数
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// NewCourierSyncTask 快递状态同步任务（无参数）
func NewCourierSyncTask() *asynq.Task {
	return asynq.NewTask(TypeCourierSync, nil,
		asynq.Queue(QueueCourier),
		asynq.MaxRetry(courierSyncMaxRetry),
		asynq.Timeout(courierSyncTimeout),
	)
}
