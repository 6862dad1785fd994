package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookworld/internal/application/order"
	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/interface/http/dto"
	"github.com/xiebiao/bookworld/internal/interface/http/middleware"
	"github.com/xiebiao/bookworld/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	placeOrder     *apporder.PlaceOrderUseCase
	queries        *apporder.QueryUseCase
	updateStatus   *apporder.UpdateStatusUseCase
	createShipment *apporder.CreateShipmentUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	placeOrder *apporder.PlaceOrderUseCase,
	queries *apporder.QueryUseCase,
	updateStatus *apporder.UpdateStatusUseCase,
	createShipment *apporder.CreateShipmentUseCase,
) *OrderHandler {
	return &OrderHandler{
		placeOrder:     placeOrder,
		queries:        queries,
		updateStatus:   updateStatus,
		createShipment: createShipment,
	}
}

// PlaceOrder 提交订单
// @Summary      提交订单
// @Description  一小时内提交相同图书和数量的订单会被拒绝；库存校验、建单、扣库存在同一事务内完成
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PlaceOrderRequest true "订单信息"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      200 {object} response.Response "40010 重复下单 / 40402 图书不存在 / 40001 库存不足 / 50910 事务冲突"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	o, err := h.placeOrder.Execute(c.Request.Context(), req.ToCommand(middleware.MustGetUserID(c)))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}

// ListMyOrders 我的订单
// @Summary      我的订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.OrderResponse}}
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.queries.ListMine(c.Request.Context(), middleware.MustGetUserID(c), q.ToPage())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, dto.NewOrderList(result.Orders), result.Total, result.Page, result.PageSize)
}

// GetOrder 订单详情
// @Summary      订单详情
// @Description  只有下单用户和员工可以查看
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      200 {object} response.Response "40403 订单不存在 / 40104 无权限"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	viewer := apporder.Viewer{UserID: middleware.MustGetUserID(c), Role: middleware.GetRole(c)}
	o, err := h.queries.Get(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}

// ListAllOrders 后台订单列表
// @Summary      后台订单列表
// @Tags         订单管理
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int    false "页码"
// @Param        page_size query int    false "每页数量"
// @Param        status    query string false "订单状态"
// @Param        user_id   query string false "用户ID"
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.OrderResponse}}
// @Router       /api/v1/admin/orders [get]
func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	var q dto.ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.queries.ListAll(c.Request.Context(), order.Filter{
		Page:   q.ToPage(),
		Status: order.Status(q.Status),
		UserID: q.UserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, dto.NewOrderList(result.Orders), result.Total, result.Page, result.PageSize)
}

// UpdateOrderStatus 修改订单状态
// @Summary      修改订单状态
// @Description  pending→processing/shipped/completed/cancelled，processing→shipped/completed/cancelled，shipped→completed
// @Tags         订单管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                        true "订单ID"
// @Param        request body dto.UpdateOrderStatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      200 {object} response.Response "40002 订单状态不允许此操作"
// @Router       /api/v1/admin/orders/{id}/status [put]
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	o, err := h.updateStatus.Execute(c.Request.Context(), apporder.UpdateStatusCommand{
		OrderID:    c.Param("id"),
		Status:     req.Status,
		OperatorID: middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}

// CreateShipment 创建快递单
// @Summary      创建快递单
// @Description  在快递平台建单并回写到订单，回写失败时自动取消快递单；不修改订单状态
// @Tags         订单管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      200 {object} response.Response "50003 快递服务暂不可用"
// @Router       /api/v1/admin/orders/{id}/shipment [post]
func (h *OrderHandler) CreateShipment(c *gin.Context) {
	o, err := h.createShipment.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}
