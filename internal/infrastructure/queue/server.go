package queue

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/xiebiao/bookworld/pkg/logger"
)

// Handler 任务处理器
type Handler interface {
	ProcessTask(ctx context.Context, task *asynq.Task) error
}

// Server asynq任务服务
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewServer 创建任务服务
func NewServer(opt asynq.RedisConnOpt, concurrency int) *Server {
	if concurrency <= 0 {
		concurrency = 5
	}
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Logger:      newAsynqLogger(),
		Queues: map[string]int{
			QueueCourier: 5,
			QueueDefault: 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Ctx(ctx).Error().Err(err).
				Str("task", task.Type()).
				Int("retried", retried).
				Int("max_retry", maxRetry).
				Msg("后台任务失败")
		}),
	})
	return &Server{server: srv, mux: asynq.NewServeMux()}
}

// Handle 注册任务处理器
func (s *Server) Handle(taskType string, h Handler) {
	s.mux.Handle(taskType, asynq.HandlerFunc(h.ProcessTask))
}

// Start 启动服务（非阻塞）
func (s *Server) Start() error {
	return s.server.Start(s.mux)
}

// Shutdown 等待进行中的任务完成后退出
func (s *Server) Shutdown() {
	s.server.Shutdown()
}
