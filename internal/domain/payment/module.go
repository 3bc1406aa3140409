package payment

import (
	"fmt"
	"net/http"

	cartService "shop_checkout/internal/domain/cart/service"
	"shop_checkout/internal/domain/catalog"
	catalogService "shop_checkout/internal/domain/catalog/service"
	"shop_checkout/internal/domain/order"
	orderService "shop_checkout/internal/domain/order/service"
	"shop_checkout/internal/domain/payment/gateway"
	"shop_checkout/internal/domain/payment/handler"
	paymentService "shop_checkout/internal/domain/payment/service"
	"shop_checkout/internal/pkg/middleware"
	"shop_checkout/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// PaymentModule 下单与 SSLCommerz 支付
type PaymentModule struct{}

func init() {
	registry.Register(&PaymentModule{})
}

func (m *PaymentModule) Name() string {
	return "payment"
}

func (m *PaymentModule) Priority() int {
	// 依赖目录服务与订单账本
	return 20
}

func (m *PaymentModule) Init(ctx *registry.ModuleContext) error {
	catalogSvc, err := lookup[catalogService.CatalogService](catalog.ServiceKey)
	if err != nil {
		return err
	}
	ledger, err := lookup[orderService.Ledger](order.LedgerKey)
	if err != nil {
		return err
	}

	// 1. 依赖注入
	log := ctx.Logger.Named("payment")
	cfg := ctx.Config
	gw := gateway.NewSSLCommerz(gateway.Config{
		StoreID:         cfg.SSLCommerz.StoreID,
		StorePassword:   cfg.SSLCommerz.StorePassword,
		IsLive:          cfg.SSLCommerz.IsLive,
		BaseURL:         cfg.SSLCommerz.BaseURL,
		Currency:        cfg.SSLCommerz.Currency,
		CallbackBaseURL: cfg.App.BackendURL,
		Timeout:         cfg.SSLCommerz.Timeout,
	}, &http.Client{}, log.Named("sslcommerz"), ctx.Metrics)
	if !cfg.GatewayConfigured() {
		log.Warn("sslcommerz credentials missing, only cash on delivery is available")
	}

	var dispatcher paymentService.Dispatcher
	if ctx.Events != nil {
		dispatcher = ctx.Events
	}

	checkout := paymentService.NewCheckoutService(
		ledger,
		cartService.NewBuilder(catalogSvc, log),
		gw,
		dispatcher,
		log,
		ctx.Metrics,
	)

	// 2. 路由注册
	setupRoutes(
		ctx.Router,
		handler.NewCheckoutHandler(checkout, log),
		handler.NewCallbackHandler(checkout, cfg.App.FrontendURL, log),
		cfg.JWT.Secret,
	)
	return nil
}

func lookup[T any](key string) (T, error) {
	var zero T
	v, ok := registry.Lookup(key)
	if !ok {
		return zero, fmt.Errorf("payment: %s not provided", key)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("payment: %s has unexpected type %T", key, v)
	}
	return t, nil
}

func setupRoutes(r *gin.Engine, ch *handler.CheckoutHandler, cb *handler.CallbackHandler, secret string) {
	// 每IP每秒 2 次，突发 5 次
	limiter := middleware.NewIPRateLimiter(2, 5)
	auth := middleware.AuthMiddleware(secret)
	limit := middleware.RateLimitMiddleware(limiter)

	r.POST("/api/order/create", limit, auth, ch.PlaceOrder)

	g := r.Group("/api/payment/sslcommerz")
	{
		g.POST("/initiate", limit, auth, ch.InitiatePayment)

		// 网关回调无需鉴权，不限流
		g.POST("/success", cb.Success)
		g.POST("/fail", cb.Fail)
		g.POST("/cancel", cb.Cancel)
		g.POST("/ipn", cb.IPN)
	}
}
