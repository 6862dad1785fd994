package handler

import (
	"github.com/gin-gonic/gin"

	appcourier "github.com/xiebiao/bookworld/internal/application/courier"
	"github.com/xiebiao/bookworld/internal/interface/http/dto"
	"github.com/xiebiao/bookworld/internal/interface/http/middleware"
	"github.com/xiebiao/bookworld/pkg/response"
)

// CourierHandler 快递后台接口
type CourierHandler struct {
	courier *appcourier.UseCase
}

// NewCourierHandler 创建快递处理器
func NewCourierHandler(courier *appcourier.UseCase) *CourierHandler {
	return &CourierHandler{courier: courier}
}

// Balance 账户余额
// @Summary      快递账户余额
// @Tags         快递
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appcourier.BalanceResult}
// @Failure      200 {object} response.Response "50003 快递服务暂不可用"
// @Router       /api/v1/admin/courier/balance [get]
func (h *CourierHandler) Balance(c *gin.Context) {
	result, err := h.courier.Balance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Status 快递单状态
// @Summary      快递单状态
// @Tags         快递
// @Produce      json
// @Security     BearerAuth
// @Param        cid path string true "快递单ID"
// @Success      200 {object} response.Response{data=appcourier.StatusResult}
// @Router       /api/v1/admin/courier/status/{cid} [get]
func (h *CourierHandler) Status(c *gin.Context) {
	result, err := h.courier.Status(c.Request.Context(), c.Param("cid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeliveryCharge 运费询价
// @Summary      运费询价
// @Tags         快递
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.DeliveryChargeRequest true "重量、区域、代收金额"
// @Success      200 {object} response.Response{data=appcourier.ChargeResult}
// @Router       /api/v1/admin/courier/delivery-charge [post]
func (h *CourierHandler) DeliveryCharge(c *gin.Context) {
	var req dto.DeliveryChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.courier.DeliveryCharge(c.Request.Context(), appcourier.ChargeRequest{
		Weight:   req.Weight,
		District: req.District,
		COD:      req.CODAmount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Cancel 取消快递单
// @Summary      取消快递单
// @Tags         快递
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        cid     path string                        true  "快递单ID"
// @Param        request body dto.CancelConsignmentRequest false "取消原因"
// @Success      200 {object} response.Response
// @Router       /api/v1/admin/courier/cancel/{cid} [post]
func (h *CourierHandler) Cancel(c *gin.Context) {
	var req dto.CancelConsignmentRequest
	// 请求体可以为空
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
	}

	if err := h.courier.Cancel(c.Request.Context(), c.Param("cid"), req.Reason, middleware.MustGetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
