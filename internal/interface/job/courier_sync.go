// Package job 后台任务处理器
package job

import (
	"context"

	"github.com/hibiken/asynq"

	apporder "github.com/xiebiao/bookworld/internal/application/order"
	"github.com/xiebiao/bookworld/pkg/logger"
)

// CourierSyncHandler 处理 courier:sync_status
type CourierSyncHandler struct {
	syncUC *apporder.SyncCourierStatusUseCase
}

// NewCourierSyncHandler 创建快递状态同步处理器
func NewCourierSyncHandler(syncUC *apporder.SyncCourierStatusUseCase) *CourierSyncHandler {
	return &CourierSyncHandler{syncUC: syncUC}
}

// ProcessTask 执行一次同步，失败返回错误交给asynq重试
func (h *CourierSyncHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	taskID, _ := asynq.GetTaskID(ctx)
	result, err := h.syncUC.Execute(ctx)
	if err != nil {
		return err
	}
	logger.Ctx(ctx).Debug().
		Str("task", task.Type()).
		Str("task_id", taskID).
		Int("checked", result.Checked).
		Int("updated", result.Updated).
		Msg("快递状态同步任务完成")
	return nil
}
