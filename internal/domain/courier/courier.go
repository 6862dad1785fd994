// Package courier 快递平台端口
// 具体实现见 infrastructure/courier/steadfast
package courier

import (
	"context"
	"strings"

	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/pkg/money"
)

const (
	// WeightPerBookKg 每本书按0.5kg计重
	WeightPerBookKg = 0.5
	noteMaxLen      = 100
	descMaxLen      = 200
)

// ConsignmentRequest 建单请求
type ConsignmentRequest struct {
	Invoice          string  `json:"invoice"`
	RecipientName    string  `json:"recipient_name"`
	RecipientPhone   string  `json:"recipient_phone"`
	RecipientAddress string  `json:"recipient_address"`
	CODAmount        int64   `json:"cod_amount"` // 主货币单位
	Note             string  `json:"note"`
	ItemDescription  string  `json:"item_description"`
	TotalLot         int     `json:"total_lot"`
	Weight           float64 `json:"weight"`
}

// Consignment 快递运单
type Consignment struct {
	ConsignmentID string `json:"consignment_id"`
	Invoice       string `json:"invoice"`
	TrackingCode  string `json:"tracking_code"`
	Status        string `json:"status"`
}

// DeliveryChargeRequest 运费询价
type DeliveryChargeRequest struct {
	Weight   float64 `json:"weight"`
	District string  `json:"district"`
	COD      int64   `json:"cod_amount"`
}

// Client 快递平台客户端
type Client interface {
	Balance(ctx context.Context) (float64, error)
	CreateConsignment(ctx context.Context, req ConsignmentRequest) (*Consignment, error)
	StatusByConsignmentID(ctx context.Context, consignmentID string) (string, error)
	// BulkStatus 返回 consignmentID -> status，查不到的ID不在结果中
	BulkStatus(ctx context.Context, consignmentIDs []string) (map[string]string, error)
	Cancel(ctx context.Context, consignmentID, reason string) error
	DeliveryCharge(ctx context.Context, req DeliveryChargeRequest) (float64, error)
}

// BuildConsignment 由订单生成建单请求
func BuildConsignment(o *order.Order) ConsignmentRequest {
	titles := strings.Join(o.Titles(), ", ")
	count := o.ItemCount()
	return ConsignmentRequest{
		Invoice:          o.ID,
		RecipientName:    o.Shipping.Name,
		RecipientPhone:   o.Shipping.Phone,
		RecipientAddress: o.Shipping.FullAddress(),
		CODAmount:        money.RoundMajor(o.Total),
		Note:             truncate("Books: "+titles, noteMaxLen),
		ItemDescription:  truncate(titles, descMaxLen),
		TotalLot:         count,
		Weight:           float64(count) * WeightPerBookKg,
	}
}

// truncate 按字符截断
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
