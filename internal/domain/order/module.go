package order

import (
	"shop_checkout/internal/domain/order/handler"
	"shop_checkout/internal/domain/order/repository"
	"shop_checkout/internal/domain/order/service"
	"shop_checkout/internal/pkg/middleware"
	"shop_checkout/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// LedgerKey 支付模块通过 registry.Lookup 取订单账本
const LedgerKey = "order.ledger"

// OrderModule 订单模块
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	return 10
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	log := ctx.Logger.Named("order")
	ledger := service.NewLedger(repository.NewOrderRepository(ctx.DB), log, ctx.Metrics)
	registry.Provide(LedgerKey, ledger)

	// 2. 路由注册
	setupRoutes(ctx.Router, handler.NewOrderHandler(ledger, log), ctx.Config.JWT.Secret)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.OrderHandler, secret string) {
	g := r.Group("/api/order")
	g.Use(middleware.AuthMiddleware(secret))
	{
		g.GET("/userorders", h.UserOrders)
		g.GET("/:id", h.GetOrder)

		admin := g.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("/status", h.UpdateStatus)
		}
	}
}
