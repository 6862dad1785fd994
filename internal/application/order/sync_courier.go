package order

import (
	"context"
	"time"

	"github.com/xiebiao/bookworld/internal/domain/courier"
	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/domain/shared"
	"github.com/xiebiao/bookworld/pkg/logger"
	"github.com/xiebiao/bookworld/pkg/metrics"
)

// SyncCourierStatusUseCase 批量刷新快递状态
// 只更新courier_status，订单状态仍由后台人工流转
type SyncCourierStatusUseCase struct {
	orderRepo order.Repository
	courier   courier.Client
	batchSize int
	now       shared.Clock
}

// NewSyncCourierStatusUseCase 创建快递状态同步用例
func NewSyncCourierStatusUseCase(orderRepo order.Repository, client courier.Client, batchSize int) *SyncCourierStatusUseCase {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &SyncCourierStatusUseCase{orderRepo: orderRepo, courier: client, batchSize: batchSize, now: time.Now}
}

// SyncResult 同步结果
type SyncResult struct {
	Checked int
	Updated int
}

// Execute 执行一次同步
func (uc *SyncCourierStatusUseCase) Execute(ctx context.Context) (*SyncResult, error) {
	orders, err := uc.orderRepo.ListWithOpenConsignments(ctx, uc.batchSize)
	if err != nil {
		metrics.CourierSyncTotal.WithLabelValues("failure").Inc()
		return nil, err
	}
	result := &SyncResult{Checked: len(orders)}
	if len(orders) == 0 {
		metrics.CourierSyncTotal.WithLabelValues("success").Inc()
		return result, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.Shipment.ConsignmentID
	}
	statuses, err := uc.courier.BulkStatus(ctx, ids)
	if err != nil {
		metrics.CourierSyncTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	log := logger.Ctx(ctx)
	for _, o := range orders {
		status, ok := statuses[o.Shipment.ConsignmentID]
		if !ok || status == o.Shipment.CourierStatus {
			continue
		}
		shipment := o.Shipment
		shipment.CourierStatus = status
		if err := uc.orderRepo.UpdateShipment(ctx, o.ID, shipment, uc.now()); err != nil {
			log.Warn().Err(err).Str("order_id", o.ID).Msg("更新快递状态失败")
			continue
		}
		result.Updated++
	}

	metrics.CourierSyncTotal.WithLabelValues("success").Inc()
	log.Info().Int("checked", result.Checked).Int("updated", result.Updated).Msg("快递状态同步完成")
	return result, nil
}
