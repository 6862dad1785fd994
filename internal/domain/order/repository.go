package order

import (
	"context"
	"time"

	"github.com/xiebiao/bookworld/internal/domain/shared"
)

// Repository 订单仓储接口
// Create必须在TxManager的事务内调用，与库存扣减一起提交
type Repository interface {
	Create(ctx context.Context, order *Order) error

	FindByID(ctx context.Context, id string) (*Order, error)

	// ListByUserID 用户的订单，按创建时间倒序分页
	ListByUserID(ctx context.Context, userID string, page shared.Page) ([]*Order, int64, error)

	// ListByUserSince 用户在since之后（含）创建的订单，按创建时间倒序
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*Order, error)

	// List 后台订单列表
	List(ctx context.Context, filter Filter) ([]*Order, int64, error)

	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error

	UpdateShipment(ctx context.Context, id string, shipment Shipment, updatedAt time.Time) error

	// ListWithOpenConsignments 已建单且未进入终态的订单（快递状态同步用）
	ListWithOpenConsignments(ctx context.Context, limit int) ([]*Order, error)
}

// Filter 后台订单查询条件
type Filter struct {
	shared.Page
	Status Status // 为空表示不过滤
	UserID string
}
