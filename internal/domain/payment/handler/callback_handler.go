package handler

import (
	"net/http"
	"strings"

	"shop_checkout/internal/domain/payment/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 前端结果页
const (
	SuccessPath = "/payment-success"
	FailedPath  = "/payment-failed"
	CancelPath  = "/payment-cancel"
)

// CallbackHandler 网关回调，任何情况下都不返回 HTTP 错误
type CallbackHandler struct {
	checkout    Checkout
	frontendURL string
	log         *zap.Logger
}

func NewCallbackHandler(checkout Checkout, frontendURL string, log *zap.Logger) *CallbackHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CallbackHandler{
		checkout:    checkout,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
	}
}

type callbackInput struct {
	ValID         string `form:"val_id" json:"val_id"`
	TransactionID string `form:"tran_id" json:"tran_id"`
}

// bind 网关以表单回传，也接受 JSON；解析失败按空载荷处理
func (h *CallbackHandler) bind(c *gin.Context) service.Callback {
	var in callbackInput
	var err error
	if strings.HasPrefix(c.ContentType(), "application/json") {
		err = c.ShouldBindJSON(&in)
	} else {
		err = c.ShouldBind(&in)
	}
	if err != nil {
		h.log.Warn("unreadable callback payload", zap.String("path", c.FullPath()), zap.Error(err))
	}
	return service.Callback{
		ValID:         strings.TrimSpace(in.ValID),
		TransactionID: strings.TrimSpace(in.TransactionID),
	}
}

func (h *CallbackHandler) redirect(c *gin.Context, outcome service.Outcome) {
	path := FailedPath
	switch outcome {
	case service.OutcomeSucceeded:
		path = SuccessPath
	case service.OutcomeCancelled:
		path = CancelPath
	}
	c.Redirect(http.StatusSeeOther, h.frontendURL+path)
}

// Success 浏览器成功回跳
// @Summary SSLCommerz 成功回调
// @Tags Payment
// @Accept x-www-form-urlencoded
// @Param val_id formData string false "校验ID"
// @Param tran_id formData string false "交易号"
// @Success 303 "跳转到支付结果页"
// @Router /api/payment/sslcommerz/success [post]
func (h *CallbackHandler) Success(c *gin.Context) {
	h.redirect(c, h.checkout.HandleSuccess(c.Request.Context(), h.bind(c)))
}

// Fail 支付失败回跳
// @Summary SSLCommerz 失败回调
// @Tags Payment
// @Accept x-www-form-urlencoded
// @Param tran_id formData string false "交易号"
// @Success 303 "跳转到支付失败页"
// @Router /api/payment/sslcommerz/fail [post]
func (h *CallbackHandler) Fail(c *gin.Context) {
	h.redirect(c, h.checkout.HandleFail(c.Request.Context(), h.bind(c)))
}

// Cancel 用户取消支付
// @Summary SSLCommerz 取消回调
// @Tags Payment
// @Success 303 "跳转到取消页"
// @Router /api/payment/sslcommerz/cancel [post]
func (h *CallbackHandler) Cancel(c *gin.Context) {
	h.redirect(c, h.checkout.HandleCancel(c.Request.Context(), h.bind(c)))
}

// IPN 网关服务端异步通知
// @Summary SSLCommerz IPN
// @Tags Payment
// @Accept x-www-form-urlencoded
// @Param val_id formData string false "校验ID"
// @Param tran_id formData string false "交易号"
// @Success 200 {string} string "IPN OK"
// @Router /api/payment/sslcommerz/ipn [post]
func (h *CallbackHandler) IPN(c *gin.Context) {
	h.checkout.HandleIPN(c.Request.Context(), h.bind(c))
	c.String(http.StatusOK, "IPN OK")
}
