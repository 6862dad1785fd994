package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"github.com/xiebiao/bookworld/pkg/logger"
)

// Scheduler 定时任务
type Scheduler struct {
	scheduler *asynq.Scheduler
}

// NewScheduler 创建定时任务调度器（UTC）
func NewScheduler(opt asynq.RedisConnOpt) *Scheduler {
	return &Scheduler{
		scheduler: asynq.NewScheduler(opt, &asynq.SchedulerOpts{
			Location: time.UTC,
			Logger:   newAsynqLogger(),
			LogLevel: asynq.WarnLevel,
		}),
	}
}

// RegisterCourierSync 按cron表达式定时同步快递状态
func (s *Scheduler) RegisterCourierSync(cronspec string) error {
	entryID, err := s.scheduler.Register(cronspec, NewCourierSyncTask())
	if err != nil {
		return err
	}
	logger.Info("已注册快递状态同步任务", map[string]interface{}{
		"cron":     cronspec,
		"entry_id": entryID,
	})
	return nil
}

// Start 启动调度（非阻塞）
func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

// Shutdown 停止调度
func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
