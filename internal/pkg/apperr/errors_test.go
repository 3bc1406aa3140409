package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"shop_checkout/pkg/response"

	"github.com/stretchr/testify/assert"
)

func TestMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    int
		message string
	}{
		{"Validation", fmt.Errorf("%w: amount must not be negative", ErrValidation), http.StatusBadRequest, response.ErrInvalidParam, "amount must not be negative"},
		{"Empty cart", ErrEmptyCart, http.StatusBadRequest, response.ErrEmptyCart, "cart is empty"},
		{"Not found", fmt.Errorf("%w: order o-1", ErrNotFound), http.StatusNotFound, response.ErrOrderNotFound, "order o-1"},
		{"Conflict", fmt.Errorf("%w: transaction already attached", ErrConflict), http.StatusConflict, response.ErrOrderConflict, "transaction already attached"},
		{"Gateway unavailable", fmt.Errorf("%w: dial tcp: timeout", ErrGatewayUnavailable), http.StatusBadGateway, response.ErrGatewayUnavailable, GatewayMessage},
		{"Gateway protocol", fmt.Errorf("%w: no redirect url", ErrGatewayProtocol), http.StatusBadGateway, response.ErrGatewayProtocol, GatewayMessage},
		{"Internal", errors.New("pq: relation does not exist"), http.StatusInternalServerError, response.ErrServerInternal, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
			assert.Equal(t, tt.code, Code(tt.err))
			assert.Equal(t, tt.message, Message(tt.err))
		})
	}
}

func TestIsGateway(t *testing.T) {
	assert.True(t, IsGateway(fmt.Errorf("initiate: %w", ErrGatewayUnavailable)))
	assert.False(t, IsGateway(ErrValidation))
}
