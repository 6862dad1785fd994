package order

import (
	"context"
	"time"

	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/domain/shared"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
	"github.com/xiebiao/bookworld/pkg/logger"
	"github.com/xiebiao/bookworld/pkg/mq"
)

// UpdateStatusUseCase 后台修改订单状态
// 只按状态机校验流转，取消订单不回补库存
type UpdateStatusUseCase struct {
	orderRepo order.Repository
	txManager shared.TxManager
	publisher mq.EventPublisher
	now       shared.Clock
}

// NewUpdateStatusUseCase 创建修改订单状态用例
func NewUpdateStatusUseCase(orderRepo order.Repository, txManager shared.TxManager, publisher mq.EventPublisher) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{
		orderRepo: orderRepo,
		txManager: txManager,
		publisher: publisher,
		now:       time.Now,
	}
}

// UpdateStatusCommand 修改状态请求
type UpdateStatusCommand struct {
	OrderID    string
	Status     string
	OperatorID string
}

// Execute 执行状态流转
func (uc *UpdateStatusUseCase) Execute(ctx context.Context, cmd UpdateStatusCommand) (*order.Order, error) {
	target, ok := order.ParseStatus(cmd.Status)
	if !ok {
		return nil, apperrors.ErrInvalidParams.WithMessage("订单状态不合法")
	}

	var (
		updated *order.Order
		from    order.Status
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.FindByID(txCtx, cmd.OrderID)
		if err != nil {
			return err
		}
		from = o.Status
		if err := o.TransitionTo(target, uc.now()); err != nil {
			return err
		}
		if err := uc.orderRepo.UpdateStatus(txCtx, o.ID, o.Status, o.UpdatedAt); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := order.StatusChangedEvent{
		OrderID:    updated.ID,
		From:       from,
		To:         updated.Status,
		ChangedBy:  cmd.OperatorID,
		OccurredAt: updated.UpdatedAt,
	}
	if err := uc.publisher.Publish(ctx, order.EventStatusChanged, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("order_id", updated.ID).Msg("发布状态变更事件失败")
	}

	logger.Ctx(ctx).Info().
		Str("order_id", updated.ID).
		Str("from", string(from)).
		Str("to", string(updated.Status)).
		Str("operator", cmd.OperatorID).
		Msg("订单状态已更新")
	return updated, nil
}
