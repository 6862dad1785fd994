package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/bookworld/internal/application/cart"
	"github.com/xiebiao/bookworld/internal/interface/http/dto"
	"github.com/xiebiao/bookworld/internal/interface/http/middleware"
	"github.com/xiebiao/bookworld/pkg/money"
	"github.com/xiebiao/bookworld/pkg/response"
)

// CartHandler 购物车HTTP处理器
type CartHandler struct {
	cart *appcart.UseCase
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(cart *appcart.UseCase) *CartHandler {
	return &CartHandler{cart: cart}
}

// GetCart 查看购物车
// @Summary      查看购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appcart.View}
// @Router       /api/v1/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.cart.Get(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// AddItem 加入购物车，已有的条目累加数量
// @Summary      加入购物车
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddCartItemRequest true "图书和数量"
// @Success      200 {object} response.Response{data=appcart.View}
// @Router       /api/v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	view, err := h.cart.Add(c.Request.Context(), middleware.MustGetUserID(c), req.BookID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// SetQuantity 修改数量
// @Summary      修改购物车数量
// @Description  数量为0时移除该条目
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        book_id path string                      true "图书ID"
// @Param        request body dto.SetCartQuantityRequest true "数量"
// @Success      200 {object} response.Response{data=appcart.View}
// @Router       /api/v1/cart/items/{book_id} [put]
func (h *CartHandler) SetQuantity(c *gin.Context) {
	var req dto.SetCartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	view, err := h.cart.SetQuantity(c.Request.Context(), middleware.MustGetUserID(c), c.Param("book_id"), *req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// RemoveItem 移除条目
// @Summary      移除购物车条目
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        book_id path string true "图书ID"
// @Success      200 {object} response.Response{data=appcart.View}
// @Router       /api/v1/cart/items/{book_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	view, err := h.cart.Remove(c.Request.Context(), middleware.MustGetUserID(c), c.Param("book_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// ClearCart 清空购物车
// @Summary      清空购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cart.Clear(c.Request.Context(), middleware.MustGetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// MergeCart 合并游客购物车
// @Summary      合并游客购物车
// @Description  同一本书数量相加，已下架的图书会被跳过
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.MergeCartRequest true "游客购物车"
// @Success      200 {object} response.Response{data=appcart.View}
// @Router       /api/v1/cart/merge [post]
func (h *CartHandler) MergeCart(c *gin.Context) {
	var req dto.MergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	guest := make([]appcart.GuestItem, 0, len(req.Items))
	for _, it := range req.Items {
		guest = append(guest, appcart.GuestItem{BookID: it.BookID, Quantity: it.Quantity})
	}
	view, err := h.cart.Merge(c.Request.Context(), middleware.MustGetUserID(c), guest)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// Quote 购物车报价
// @Summary      购物车报价
// @Description  小计、运费（满额包邮）、货到付款手续费和应付总额
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.QuoteResponse}
// @Failure      200 {object} response.Response "40011 购物车为空"
// @Router       /api/v1/cart/quote [get]
func (h *CartHandler) Quote(c *gin.Context) {
	quote, err := h.cart.Quote(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.QuoteResponse{Quote: quote, TotalDisplay: money.Format(quote.Total)})
}
