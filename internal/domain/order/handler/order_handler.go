package handler

import (
	"net/http"

	"shop_checkout/internal/domain/order/model"
	"shop_checkout/internal/domain/order/service"
	"shop_checkout/internal/pkg/apperr"
	"shop_checkout/internal/pkg/middleware"
	"shop_checkout/pkg/response"
	"shop_checkout/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	ledger service.Ledger
	log    *zap.Logger
}

func NewOrderHandler(ledger service.Ledger, log *zap.Logger) *OrderHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderHandler{ledger: ledger, log: log}
}

// OrderView 订单返回结构，保留前端使用的 payment 布尔字段
type OrderView struct {
	*model.Order
	Payment bool `json:"payment"`
}

func toView(o *model.Order) OrderView {
	return OrderView{Order: o, Payment: o.Paid()}
}

// UserOrders 当前用户订单列表
// @Summary 我的订单
// @Tags Order
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} map[string]interface{} "orders, total, page, limit"
// @Router /api/order/userorders [get]
func (h *OrderHandler) UserOrders(c *gin.Context) {
	var page utils.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	page.GetPageOffset()
	orders, total, err := h.ledger.ListUserOrders(c.Request.Context(), middleware.UserID(c), page)
	if err != nil {
		h.fail(c, err)
		return
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, toView(&orders[i]))
	}
	response.Success(c, gin.H{
		"orders": views,
		"total":  total,
		"page":   page.Page,
		"limit":  page.Limit,
	})
}

// GetOrder 订单详情，仅下单用户可见
// @Summary 订单详情
// @Tags Order
// @Produce json
// @Security BearerAuth
// @Param id path string true "订单ID"
// @Success 200 {object} map[string]interface{} "order"
// @Failure 404 {object} response.Response
// @Router /api/order/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.ledger.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	// 不暴露他人订单是否存在
	if order.UserID != middleware.UserID(c) {
		response.Error(c, http.StatusNotFound, response.ErrOrderNotFound, "order not found")
		return
	}
	response.Success(c, gin.H{"order": toView(order)})
}

type UpdateStatusInput struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// UpdateStatus 管理员修改履约状态
// @Summary 更新订单状态
// @Tags Order
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body UpdateStatusInput true "订单ID与状态"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Router /api/order/status [post]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	err := h.ledger.SetFulfillmentStatus(c.Request.Context(), input.OrderID, model.FulfillmentStatus(input.Status))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Status updated"})
}

func (h *OrderHandler) fail(c *gin.Context, err error) {
	if apperr.HTTPStatus(err) >= http.StatusInternalServerError {
		h.log.Error("order request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	response.Error(c, apperr.HTTPStatus(err), apperr.Code(err), apperr.Message(err))
}
