package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/domain/shared"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

// orderRepository 订单仓储(MySQL)
// Order和OrderItem一起保存；查询时Preload明细，按下单顺序排列
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// Create 必须在事务内调用，GORM会一并插入Items
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	if err := getDB(ctx, r.db).Create(toOrderModel(o)).Error; err != nil {
		return apperrors.Wrap(err, "创建订单失败")
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	var model OrderModel
	if err := preloadItems(getDB(ctx, r.db)).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID string, page shared.Page) ([]*order.Order, int64, error) {
	return r.list(ctx, order.Filter{Page: page, UserID: userID})
}

// ListByUserSince 走(user_id, created_at)联合索引
func (r *orderRepository) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*order.Order, error) {
	var models []OrderModel
	err := preloadItems(getDB(ctx, r.db)).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询近期订单失败")
	}
	return toOrderEntities(models), nil
}

func (r *orderRepository) List(ctx context.Context, f order.Filter) ([]*order.Order, int64, error) {
	return r.list(ctx, f)
}

func (r *orderRepository) list(ctx context.Context, f order.Filter) ([]*order.Order, int64, error) {
	query := getDB(ctx, r.db).Model(&OrderModel{})
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", string(f.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	page := f.Page.Normalize()
	var models []OrderModel
	err := preloadItems(query).
		Order("created_at DESC, id DESC").
		Limit(page.PageSize).Offset(page.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}
	return toOrderEntities(models), total, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status order.Status, updatedAt time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":     string(status),
		"updated_at": updatedAt,
	})
}

func (r *orderRepository) UpdateShipment(ctx context.Context, id string, s order.Shipment, updatedAt time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"courier_consignment_id": s.ConsignmentID,
		"courier_tracking_code":  s.TrackingCode,
		"courier_status":         s.CourierStatus,
		"courier_shipped_at":     s.ShippedAt,
		"updated_at":             updatedAt,
	})
}

func (r *orderRepository) update(ctx context.Context, id string, fields map[string]interface{}) error {
	db := getDB(ctx, r.db)
	result := db.Model(&OrderModel{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单失败")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := db.Model(&OrderModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return apperrors.Wrap(err, "查询订单失败")
	}
	if n == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) ListWithOpenConsignments(ctx context.Context, limit int) ([]*order.Order, error) {
	query := preloadItems(getDB(ctx, r.db)).
		Where("courier_consignment_id <> ''").
		Where("status NOT IN ?", []string{string(order.StatusCompleted), string(order.StatusCancelled)}).
		Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []OrderModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询待同步订单失败")
	}
	return toOrderEntities(models), nil
}

func toOrderEntities(models []OrderModel) []*order.Order {
	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders
}
