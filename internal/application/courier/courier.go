// Package courier 后台快递操作
package courier

import (
	"context"
	"strings"

	"github.com/xiebiao/bookworld/internal/domain/courier"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
	"github.com/xiebiao/bookworld/pkg/logger"
	"github.com/xiebiao/bookworld/pkg/money"
)

// UseCase 快递平台查询与运单操作（员工）
type UseCase struct {
	client courier.Client
}

// NewUseCase 创建快递用例
func NewUseCase(client courier.Client) *UseCase {
	return &UseCase{client: client}
}

// BalanceResult 账户余额
type BalanceResult struct {
	CurrentBalance float64 `json:"current_balance"`
}

// Balance 查询快递账户余额
func (uc *UseCase) Balance(ctx context.Context) (*BalanceResult, error) {
	balance, err := uc.client.Balance(ctx)
	if err != nil {
		return nil, err
	}
	return &BalanceResult{CurrentBalance: balance}, nil
}

// StatusResult 运单状态
type StatusResult struct {
	ConsignmentID  string `json:"consignment_id"`
	DeliveryStatus string `json:"delivery_status"`
}

// Status 按运单号查询状态
func (uc *UseCase) Status(ctx context.Context, consignmentID string) (*StatusResult, error) {
	consignmentID = strings.TrimSpace(consignmentID)
	if consignmentID == "" {
		return nil, apperrors.ErrInvalidParams.WithMessage("运单号不能为空")
	}
	status, err := uc.client.StatusByConsignmentID(ctx, consignmentID)
	if err != nil {
		return nil, err
	}
	return &StatusResult{ConsignmentID: consignmentID, DeliveryStatus: status}, nil
}

// ChargeRequest 运费询价，COD为最小货币单位
type ChargeRequest struct {
	Weight   float64
	District string
	COD      int64
}

// ChargeResult 询价结果
type ChargeResult struct {
	DeliveryCharge float64 `json:"delivery_charge"`
}

// DeliveryCharge 运费询价
func (uc *UseCase) DeliveryCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.Weight <= 0 || strings.TrimSpace(req.District) == "" || req.COD < 0 {
		return nil, apperrors.ErrInvalidParams.WithMessage("重量、地区必填，代收金额不能为负")
	}
	charge, err := uc.client.DeliveryCharge(ctx, courier.DeliveryChargeRequest{
		Weight:   req.Weight,
		District: req.District,
		COD:      money.RoundMajor(req.COD),
	})
	if err != nil {
		return nil, err
	}
	return &ChargeResult{DeliveryCharge: charge}, nil
}

// Cancel 取消运单
func (uc *UseCase) Cancel(ctx context.Context, consignmentID, reason, operatorID string) error {
	if strings.TrimSpace(consignmentID) == "" {
		return apperrors.ErrInvalidParams.WithMessage("运单号不能为空")
	}
	if reason == "" {
		reason = "后台取消"
	}
	if err := uc.client.Cancel(ctx, consignmentID, reason); err != nil {
		return err
	}
	logger.Ctx(ctx).Info().
		Str("consignment_id", consignmentID).
		Str("operator", operatorID).
		Str("reason", reason).
		Msg("运单已取消")
	return nil
}
