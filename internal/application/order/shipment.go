package order

import (
	"context"
	"time"

	"github.com/xiebiao/bookworld/internal/domain/courier"
	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/domain/shared"
	"github.com/xiebiao/bookworld/pkg/logger"
	"github.com/xiebiao/bookworld/pkg/saga"
)

const (
	shipmentSagaName    = "create_shipment"
	shipmentSagaTimeout = 30 * time.Second
	cancelReason        = "订单回写失败，自动取消"
)

// CreateShipmentUseCase 在快递平台建单并回写订单
//
// 两步Saga：
//  1. create_consignment  调用快递平台建单，补偿为取消运单
//  2. record_shipment     把运单号、追踪码、快递状态写回订单
//
// 只记录运单信息，不修改订单状态。
type CreateShipmentUseCase struct {
	orderRepo order.Repository
	courier   courier.Client
	now       shared.Clock
}

// NewCreateShipmentUseCase 创建发货用例
func NewCreateShipmentUseCase(orderRepo order.Repository, client courier.Client) *CreateShipmentUseCase {
	return &CreateShipmentUseCase{orderRepo: orderRepo, courier: client, now: time.Now}
}

// Execute 为订单建单
func (uc *CreateShipmentUseCase) Execute(ctx context.Context, orderID string) (*order.Order, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Shipment.HasConsignment() {
		return nil, order.ErrAlreadyShipped
	}
	if o.Status.IsTerminal() {
		return nil, order.ErrNotShippable
	}

	var consignment *courier.Consignment
	s := saga.New(shipmentSagaName, shipmentSagaTimeout).
		AddStep("create_consignment",
			func(ctx context.Context) error {
				c, err := uc.courier.CreateConsignment(ctx, courier.BuildConsignment(o))
				if err != nil {
					return err
				}
				consignment = c
				return nil
			},
			func(ctx context.Context) error {
				return uc.courier.Cancel(ctx, consignment.ConsignmentID, cancelReason)
			}).
		AddStep("record_shipment",
			func(ctx context.Context) error {
				now := uc.now()
				shipment := order.Shipment{
					ConsignmentID: consignment.ConsignmentID,
					TrackingCode:  consignment.TrackingCode,
					CourierStatus: consignment.Status,
					ShippedAt:     &now,
				}
				if err := uc.orderRepo.UpdateShipment(ctx, o.ID, shipment, now); err != nil {
					return err
				}
				o.Shipment = shipment
				o.UpdatedAt = now
				return nil
			}, nil)

	if err := s.Execute(ctx); err != nil {
		if se, ok := saga.IsStepError(err); ok {
			logger.Ctx(ctx).Error().Err(se.Err).
				Str("order_id", o.ID).
				Str("step", se.Step).
				Int("compensation_errors", len(se.CompensationErrs)).
				Msg("快递建单失败")
			return nil, se.Err
		}
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("order_id", o.ID).
		Str("consignment_id", o.Shipment.ConsignmentID).
		Str("tracking_code", o.Shipment.TrackingCode).
		Msg("快递建单成功")
	return o, nil
}
