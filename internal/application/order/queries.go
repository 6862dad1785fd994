package order

import (
	"context"

	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/domain/shared"
	"github.com/xiebiao/bookworld/internal/domain/user"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

// Viewer 查询订单的当前用户
type Viewer struct {
	UserID string
	Role   user.Role
}

// QueryUseCase 订单查询
type QueryUseCase struct {
	orderRepo order.Repository
}

// NewQueryUseCase 创建订单查询用例
func NewQueryUseCase(orderRepo order.Repository) *QueryUseCase {
	return &QueryUseCase{orderRepo: orderRepo}
}

// ListResult 分页结果
type ListResult struct {
	Orders   []*order.Order
	Total    int64
	Page     int
	PageSize int
}

// Get 订单详情，只有下单用户和员工可以查看
func (uc *QueryUseCase) Get(ctx context.Context, viewer Viewer, orderID string) (*order.Order, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(viewer.UserID) && !viewer.Role.IsStaff() {
		return nil, apperrors.ErrForbidden
	}
	return o, nil
}

// ListMine 当前用户的订单，按下单时间倒序
func (uc *QueryUseCase) ListMine(ctx context.Context, userID string, page shared.Page) (*ListResult, error) {
	page = page.Normalize()
	orders, total, err := uc.orderRepo.ListByUserID(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return &ListResult{Orders: orders, Total: total, Page: page.Page, PageSize: page.PageSize}, nil
}

// ListAll 后台订单列表，status为空时不过滤
func (uc *QueryUseCase) ListAll(ctx context.Context, filter order.Filter) (*ListResult, error) {
	filter.Page = filter.Page.Normalize()
	if filter.Status != "" {
		if _, ok := order.ParseStatus(string(filter.Status)); !ok {
			return nil, apperrors.ErrInvalidParams.WithMessage("订单状态不合法")
		}
	}
	orders, total, err := uc.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ListResult{Orders: orders, Total: total, Page: filter.Page.Page, PageSize: filter.Page.PageSize}, nil
}
