package dto

import (
	"time"

	apporder "github.com/xiebiao/bookworld/internal/application/order"
	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/pkg/money"
)

const timeLayout = time.RFC3339

// OrderItemRequest 下单明细，标题等快照字段可留空，由服务端按图书补全
type OrderItemRequest struct {
	BookID   string `json:"book_id" binding:"required" example:"b-1"`
	Quantity int    `json:"quantity" binding:"required,min=1" example:"2"`
	Title    string `json:"title" example:"The Go Programming Language"`
	Author   string `json:"author" example:"Alan Donovan"`
	Price    int64  `json:"price" binding:"min=0" example:"59900"`
	ImageURL string `json:"image_url"`
}

// ShippingRequest 收货信息，详细校验在领域层
type ShippingRequest struct {
	Name       string `json:"name" example:"Rahim"`
	Phone      string `json:"phone" example:"01711000000"`
	Email      string `json:"email" example:"rahim@example.com"`
	Address    string `json:"address" example:"House 12, Road 5"`
	City       string `json:"city" example:"Dhaka"`
	PostalCode string `json:"postal_code" example:"1207"`
	Note       string `json:"note"`
}

// PlaceOrderRequest 下单请求
// total为空时按服务端报价保存
type PlaceOrderRequest struct {
	Items    []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Total    *int64             `json:"total" example:"119800"`
	Shipping ShippingRequest    `json:"shipping"`
}

// ToCommand 转为下单命令
func (r PlaceOrderRequest) ToCommand(userID string) apporder.PlaceOrderCommand {
	items := make([]apporder.PlaceOrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, apporder.PlaceOrderItem{
			BookID:   it.BookID,
			Quantity: it.Quantity,
			Title:    it.Title,
			Author:   it.Author,
			Price:    it.Price,
			ImageURL: it.ImageURL,
		})
	}
	return apporder.PlaceOrderCommand{
		UserID: userID,
		Items:  items,
		Total:  r.Total,
		Shipping: order.ShippingAddress{
			Name:       r.Shipping.Name,
			Phone:      r.Shipping.Phone,
			Email:      r.Shipping.Email,
			Address:    r.Shipping.Address,
			City:       r.Shipping.City,
			PostalCode: r.Shipping.PostalCode,
			Note:       r.Shipping.Note,
		},
	}
}

// UpdateOrderStatusRequest 修改订单状态
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing shipped completed cancelled" example:"processing"`
}

// ListOrdersQuery 后台订单列表查询参数
type ListOrdersQuery struct {
	PageQuery
	Status string `form:"status" binding:"omitempty,oneof=pending processing shipped completed cancelled"`
	UserID string `form:"user_id"`
}

// OrderItemResponse 订单明细
type OrderItemResponse struct {
	BookID       string `json:"book_id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Price        int64  `json:"price"`
	PriceDisplay string `json:"price_display"`
	Quantity     int    `json:"quantity"`
	ImageURL     string `json:"image_url"`
}

// ShipmentResponse 快递信息
type ShipmentResponse struct {
	ConsignmentID string `json:"consignment_id"`
	TrackingCode  string `json:"tracking_code"`
	CourierStatus string `json:"courier_status"`
	ShippedAt     string `json:"shipped_at,omitempty"`
}

// OrderResponse 订单详情
type OrderResponse struct {
	ID            string                `json:"id"`
	OrderNo       string                `json:"order_no" example:"20240501100000123456"`
	UserID        string                `json:"user_id"`
	Items         []OrderItemResponse   `json:"items"`
	Subtotal      int64                 `json:"subtotal"`
	CourierCharge int64                 `json:"courier_charge"`
	CODFee        int64                 `json:"cod_fee"`
	Total         int64                 `json:"total"`
	TotalDisplay  string                `json:"total_display" example:"1198.00"`
	Shipping      order.ShippingAddress `json:"shipping"`
	Status        string                `json:"status" example:"pending"`
	Shipment      *ShipmentResponse     `json:"shipment,omitempty"`
	CreatedAt     string                `json:"created_at"`
	UpdatedAt     string                `json:"updated_at"`
}

// NewOrderResponse 领域订单 → 响应
func NewOrderResponse(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			BookID:       it.BookID,
			Title:        it.Title,
			Author:       it.Author,
			Price:        it.Price,
			PriceDisplay: money.Format(it.Price),
			Quantity:     it.Quantity,
			ImageURL:     it.ImageURL,
		})
	}

	resp := &OrderResponse{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		UserID:        o.UserID,
		Items:         items,
		Subtotal:      o.Subtotal,
		CourierCharge: o.CourierCharge,
		CODFee:        o.CODFee,
		Total:         o.Total,
		TotalDisplay:  money.Format(o.Total),
		Shipping:      o.Shipping,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt.Format(timeLayout),
		UpdatedAt:     o.UpdatedAt.Format(timeLayout),
	}
	if o.Shipment.HasConsignment() {
		resp.Shipment = &ShipmentResponse{
			ConsignmentID: o.Shipment.ConsignmentID,
			TrackingCode:  o.Shipment.TrackingCode,
			CourierStatus: o.Shipment.CourierStatus,
		}
		if o.Shipment.ShippedAt != nil {
			resp.Shipment.ShippedAt = o.Shipment.ShippedAt.Format(timeLayout)
		}
	}
	return resp
}

// NewOrderList 批量转换
func NewOrderList(orders []*order.Order) []*OrderResponse {
	out := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderResponse(o))
	}
	return out
}
