package order

import (
	"time"
)

// Status 订单状态
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// 合法的状态流转，completed和cancelled为终态
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCompleted, StatusCancelled},
	StatusShipped:    {StatusCompleted},
}

// ParseStatus 解析状态字符串
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

// IsTerminal 是否为终态
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Order 订单（聚合根）
// Items是下单时的快照，创建后不再修改。
type Order struct {
	ID       string
	OrderNo  string
	UserID   string
	Items    []Item
	Subtotal int64
	// CourierCharge 运费，满额包邮时为0
	CourierCharge int64
	CODFee        int64
	Total         int64
	Shipping      ShippingAddress
	Status        Status
	Shipment      Shipment
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Item 订单明细（图书信息的冗余快照）
type Item struct {
	BookID   string
	Title    string
	Author   string
	Price    int64
	Quantity int
	ImageURL string
}

// Shipment 快递信息
type Shipment struct {
	ConsignmentID string
	TrackingCode  string
	CourierStatus string
	ShippedAt     *time.Time
}

// HasConsignment 是否已在快递平台建单
func (s Shipment) HasConsignment() bool {
	return s.ConsignmentID != ""
}

// CanTransitionTo 是否允许流转到目标状态
func (o *Order) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态流转
func (o *Order) TransitionTo(target Status, now time.Time) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition.WithDetails(map[string]interface{}{
			"from": string(o.Status),
			"to":   string(target),
		})
	}
	o.Status = target
	o.UpdatedAt = now
	return nil
}

// IsOwnedBy 订单是否属于指定用户
func (o *Order) IsOwnedBy(userID string) bool {
	return o.UserID == userID
}

// ItemCount 图书总册数
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// Titles 所有图书书名
func (o *Order) Titles() []string {
	titles := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		titles = append(titles, it.Title)
	}
	return titles
}
