package memory

import (
	"context"
	"sort"
	"time"

	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/domain/shared"
)

const collOrders = "orders"

type orderRepository struct {
	store *Store
}

// NewOrderRepository 创建订单仓储（内存文档存储）
func NewOrderRepository(store *Store) order.Repository {
	return &orderRepository{store: store}
}

func cloneOrder(o *order.Order) *order.Order {
	c := *o
	c.Items = append([]order.Item(nil), o.Items...)
	if o.Shipment.ShippedAt != nil {
		at := *o.Shipment.ShippedAt
		c.Shipment.ShippedAt = &at
	}
	return &c
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.store.do(ctx, func(t *tx) error {
		t.put(collOrders, o.ID, cloneOrder(o))
		return nil
	})
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	var out *order.Order
	err := r.store.do(ctx, func(t *tx) error {
		v, ok := t.get(collOrders, id)
		if !ok {
			return order.ErrOrderNotFound
		}
		out = cloneOrder(v.(*order.Order))
		return nil
	})
	return out, err
}

// filter 扫描订单集合，按创建时间倒序返回满足条件的订单
func (r *orderRepository) filter(ctx context.Context, match func(o *order.Order) bool) ([]*order.Order, error) {
	var out []*order.Order
	err := r.store.do(ctx, func(t *tx) error {
		for _, v := range t.scan(collOrders) {
			if o := v.(*order.Order); match(o) {
				out = append(out, cloneOrder(o))
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, err
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID string, page shared.Page) ([]*order.Order, int64, error) {
	orders, err := r.filter(ctx, func(o *order.Order) bool { return o.UserID == userID })
	if err != nil {
		return nil, 0, err
	}
	page = page.Normalize()
	return paginate(orders, page.Offset(), page.PageSize), int64(len(orders)), nil
}

func (r *orderRepository) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*order.Order, error) {
	return r.filter(ctx, func(o *order.Order) bool {
		return o.UserID == userID && !o.CreatedAt.Before(since)
	})
}

func (r *orderRepository) List(ctx context.Context, f order.Filter) ([]*order.Order, int64, error) {
	orders, err := r.filter(ctx, func(o *order.Order) bool {
		if f.Status != "" && o.Status != f.Status {
			return false
		}
		return f.UserID == "" || o.UserID == f.UserID
	})
	if err != nil {
		return nil, 0, err
	}
	page := f.Page.Normalize()
	return paginate(orders, page.Offset(), page.PageSize), int64(len(orders)), nil
}

func (r *orderRepository) update(ctx context.Context, id string, mutate func(o *order.Order)) error {
	return r.store.do(ctx, func(t *tx) error {
		v, ok := t.get(collOrders, id)
		if !ok {
			return order.ErrOrderNotFound
		}
		o := cloneOrder(v.(*order.Order))
		mutate(o)
		t.put(collOrders, id, o)
		return nil
	})
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status order.Status, updatedAt time.Time) error {
	return r.update(ctx, id, func(o *order.Order) {
		o.Status = status
		o.UpdatedAt = updatedAt
	})
}

func (r *orderRepository) UpdateShipment(ctx context.Context, id string, shipment order.Shipment, updatedAt time.Time) error {
	return r.update(ctx, id, func(o *order.Order) {
		o.Shipment = shipment
		o.UpdatedAt = updatedAt
	})
}

func (r *orderRepository) ListWithOpenConsignments(ctx context.Context, limit int) ([]*order.Order, error) {
	orders, err := r.filter(ctx, func(o *order.Order) bool {
		return o.Shipment.HasConsignment() && !o.Status.IsTerminal()
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}
