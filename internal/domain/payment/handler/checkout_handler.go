package handler

import (
	"context"
	"net/http"

	cartModel "shop_checkout/internal/domain/cart/model"
	orderModel "shop_checkout/internal/domain/order/model"
	"shop_checkout/internal/domain/payment/service"
	"shop_checkout/internal/pkg/apperr"
	"shop_checkout/internal/pkg/middleware"
	"shop_checkout/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Checkout 下单与支付编排
type Checkout interface {
	PlaceCashOrder(ctx context.Context, req service.CheckoutRequest) (*orderModel.Order, error)
	InitiatePayment(ctx context.Context, req service.CheckoutRequest) (*service.Initiated, error)
	HandleSuccess(ctx context.Context, cb service.Callback) service.Outcome
	HandleIPN(ctx context.Context, cb service.Callback)
	HandleFail(ctx context.Context, cb service.Callback) service.Outcome
	HandleCancel(ctx context.Context, cb service.Callback) service.Outcome
}

type CheckoutHandler struct {
	checkout Checkout
	log      *zap.Logger
}

func NewCheckoutHandler(checkout Checkout, log *zap.Logger) *CheckoutHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutHandler{checkout: checkout, log: log}
}

type CartItemInput struct {
	ProductID string `json:"productId" binding:"required"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type PlaceOrderInput struct {
	Items         []CartItemInput    `json:"items" binding:"required"`
	Amount        decimal.Decimal    `json:"amount" swaggertype:"number"`
	Address       orderModel.Address `json:"address"`
	PaymentMethod string             `json:"paymentMethod"`
}

type InitiatePaymentInput struct {
	PlaceOrderInput
	CustomerName  string `json:"cus_name"`
	CustomerEmail string `json:"cus_email"`
	CustomerPhone string `json:"cus_phone"`
}

// selection 同一商品同一尺码的多行合并数量
func selection(items []CartItemInput) cartModel.Selection {
	sel := make(cartModel.Selection, len(items))
	for _, it := range items {
		sizes, ok := sel[it.ProductID]
		if !ok {
			sizes = make(map[string]int)
			sel[it.ProductID] = sizes
		}
		sizes[it.Size] += it.Quantity
	}
	return sel
}

func (in PlaceOrderInput) request(userID string) service.CheckoutRequest {
	return service.CheckoutRequest{
		UserID:        userID,
		Cart:          selection(in.Items),
		Amount:        in.Amount,
		Address:       in.Address,
		PaymentMethod: in.PaymentMethod,
	}
}

// PlaceOrder 货到付款下单
// @Summary 货到付款下单
// @Tags Checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body PlaceOrderInput true "购物车、地址与支付方式"
// @Success 200 {object} map[string]interface{} "success, orderId"
// @Failure 400 {object} response.Response
// @Router /api/order/create [post]
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var input PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	order, err := h.checkout.PlaceCashOrder(c.Request.Context(), input.request(middleware.UserID(c)))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Order Placed", "orderId": order.ID})
}

// InitiatePayment 网关支付，返回收银台跳转地址
// @Summary 发起 SSLCommerz 支付
// @Tags Checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body InitiatePaymentInput true "购物车、地址、支付方式与付款人"
// @Success 200 {object} map[string]interface{} "success, url, orderId"
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /api/payment/sslcommerz/initiate [post]
func (h *CheckoutHandler) InitiatePayment(c *gin.Context) {
	var input InitiatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	req := input.request(middleware.UserID(c))
	req.Customer = orderModel.Customer{
		Name:  input.CustomerName,
		Email: input.CustomerEmail,
		Phone: input.CustomerPhone,
	}
	res, err := h.checkout.InitiatePayment(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"url": res.RedirectURL, "orderId": res.Order.ID})
}

func (h *CheckoutHandler) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("checkout request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	response.Error(c, status, apperr.Code(err), apperr.Message(err))
}
