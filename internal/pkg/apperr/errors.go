package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"shop_checkout/pkg/response"
)

// 业务错误分类，具体错误通过 fmt.Errorf("%w: ...") 包装
var (
	ErrValidation         = errors.New("validation")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayProtocol    = errors.New("payment gateway protocol error")
)

// ErrEmptyCart 购物车里没有可下单的商品
var ErrEmptyCart = fmt.Errorf("%w: cart is empty", ErrValidation)

// GatewayMessage 对用户隐藏网关内部响应
const GatewayMessage = "payment gateway did not respond as expected"

// IsGateway 是否为网关 I/O 类错误
func IsGateway(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable) || errors.Is(err, ErrGatewayProtocol)
}

// HTTPStatus 错误对应的 HTTP 状态码
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case IsGateway(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Code 错误对应的业务码
func Code(err error) int {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return response.ErrEmptyCart
	case errors.Is(err, ErrValidation):
		return response.ErrInvalidParam
	case errors.Is(err, ErrNotFound):
		return response.ErrOrderNotFound
	case errors.Is(err, ErrConflict):
		return response.ErrOrderConflict
	case errors.Is(err, ErrGatewayUnavailable):
		return response.ErrGatewayUnavailable
	case errors.Is(err, ErrGatewayProtocol):
		return response.ErrGatewayProtocol
	default:
		return response.ErrServerInternal
	}
}

// Message 面向用户的错误信息，网关错误不透出细节
func Message(err error) string {
	switch {
	case IsGateway(err):
		return GatewayMessage
	case HTTPStatus(err) == http.StatusInternalServerError:
		return "internal server error"
	}
	msg := err.Error()
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict} {
		msg = strings.TrimPrefix(msg, kind.Error()+": ")
	}
	return msg
}
