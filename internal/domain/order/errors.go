package order

import (
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

// 订单领域错误定义
var (
	ErrOrderNotFound           = apperrors.ErrOrderNotFound
	ErrDuplicateOrder          = apperrors.ErrDuplicateOrder
	ErrInvalidStatusTransition = apperrors.ErrInvalidOrderStatus
	ErrInvalidShipping         = apperrors.ErrInvalidShipping

	ErrInvalidOrderItems = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")
	ErrInvalidQuantity   = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")
	ErrInvalidTotal      = apperrors.New(apperrors.ErrCodeInvalidParams, "订单金额不能为负数")
	ErrAlreadyShipped    = apperrors.New(apperrors.ErrCodeBusinessError, "订单已在快递平台建单")
	ErrNotShippable      = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单当前状态不能发货")
)
