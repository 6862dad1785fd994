package order

import "time"

// 事件路由键
const (
	EventPlaced        = "order.placed"
	EventStatusChanged = "order.status_changed"
)

// PlacedEvent 下单成功事件
type PlacedEvent struct {
	OrderID    string      `json:"order_id"`
	OrderNo    string      `json:"order_no"`
	UserID     string      `json:"user_id"`
	Total      int64       `json:"total"`
	Items      []EventLine `json:"items"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// EventLine 事件中的明细
type EventLine struct {
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
}

// StatusChangedEvent 订单状态变更事件
type StatusChangedEvent struct {
	OrderID    string    `json:"order_id"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
	ChangedBy  string    `json:"changed_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewPlacedEvent 由订单构造下单事件
func NewPlacedEvent(o *Order) PlacedEvent {
	lines := make([]EventLine, len(o.Items))
	for i, it := range o.Items {
		lines[i] = EventLine{BookID: it.BookID, Quantity: it.Quantity}
	}
	return PlacedEvent{
		OrderID:    o.ID,
		OrderNo:    o.OrderNo,
		UserID:     o.UserID,
		Total:      o.Total,
		Items:      lines,
		OccurredAt: o.CreatedAt,
	}
}
