package order

import "github.com/xiebiao/bookworld/pkg/money"

// Pricing 计价规则（金额均为最小货币单位）
type Pricing struct {
	FreeDeliveryThreshold int64
	DeliveryCharge        int64
	CODFee                int64
}

// DefaultPricing 满1000免运费，运费180，货到付款手续费10
func DefaultPricing() Pricing {
	return Pricing{
		FreeDeliveryThreshold: money.FromMajor(1000),
		DeliveryCharge:        money.FromMajor(180),
		CODFee:                money.FromMajor(10),
	}
}

// Quote 报价明细
type Quote struct {
	Subtotal      int64 `json:"subtotal"`
	CourierCharge int64 `json:"courier_charge"`
	CODFee        int64 `json:"cod_fee"`
	Total         int64 `json:"total"`
}

// Quote 按明细计算订单金额
func (p Pricing) Quote(items []Item) Quote {
	var subtotal int64
	for _, it := range items {
		subtotal += it.Price * int64(it.Quantity)
	}
	q := Quote{Subtotal: subtotal, CODFee: p.CODFee}
	if subtotal < p.FreeDeliveryThreshold {
		q.CourierCharge = p.DeliveryCharge
	}
	q.Total = q.Subtotal + q.CourierCharge + q.CODFee
	return q
}
