package dto

import "github.com/xiebiao/bookworld/internal/domain/order"

// AddCartItemRequest 加入购物车
type AddCartItemRequest struct {
	BookID   string `json:"book_id" binding:"required" example:"b-1"`
	Quantity int    `json:"quantity" binding:"required,min=1" example:"1"`
}

// SetCartQuantityRequest 修改数量，0表示移除
type SetCartQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0" example:"3"`
}

// MergeCartRequest 登录后合并游客购物车
type MergeCartRequest struct {
	Items []AddCartItemRequest `json:"items" binding:"dive"`
}

// QuoteResponse 报价明细
type QuoteResponse struct {
	*order.Quote
	TotalDisplay string `json:"total_display" example:"1198.00"`
}
