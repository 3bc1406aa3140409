package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	cartModel "shop_checkout/internal/domain/cart/model"
	orderModel "shop_checkout/internal/domain/order/model"
	orderService "shop_checkout/internal/domain/order/service"
	"shop_checkout/internal/domain/payment/gateway"
	"shop_checkout/internal/pkg/apperr"
	"shop_checkout/internal/pkg/events"
	"shop_checkout/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartBuilder 购物车定价
type CartBuilder interface {
	Build(ctx context.Context, cart cartModel.Selection) (*cartModel.Snapshot, error)
}

// Dispatcher 状态提交后的异步副作用（Kafka、推送）
type Dispatcher interface {
	Dispatch(evt events.OrderEvent)
}

// CheckoutRequest 下单/发起支付的入参
type CheckoutRequest struct {
	UserID        string
	Cart          cartModel.Selection
	Amount        decimal.Decimal // 客户端给出的总额，<=0 表示未提供
	Address       orderModel.Address
	PaymentMethod string
	Customer      orderModel.Customer
}

// Initiated 发起支付的结果
type Initiated struct {
	Order       *orderModel.Order
	RedirectURL string
}

// CheckoutService 支付编排：决定走货到付款还是网关，并按网关回调推进支付状态
type CheckoutService struct {
	ledger  orderService.Ledger
	carts   CartBuilder
	gateway gateway.Gateway
	events  Dispatcher
	log     *zap.Logger
	metrics *metrics.MetricsCollector

	newTransactionID func() string
	now              func() time.Time
}

func NewCheckoutService(
	ledger orderService.Ledger,
	carts CartBuilder,
	gw gateway.Gateway,
	dispatcher Dispatcher,
	log *zap.Logger,
	m *metrics.MetricsCollector,
) *CheckoutService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutService{
		ledger:           ledger,
		carts:            carts,
		gateway:          gw,
		events:           dispatcher,
		log:              log,
		metrics:          m,
		newTransactionID: NewTransactionID,
		now:              time.Now,
	}
}

// NewTransactionID TXN_<毫秒时间戳>_<随机串>
func NewTransactionID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return "TXN_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + suffix
}

// PlaceCashOrder 货到付款：订单创建即为已付
func (s *CheckoutService) PlaceCashOrder(ctx context.Context, req CheckoutRequest) (*orderModel.Order, error) {
	method, err := orderModel.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if method.Settlement() != orderModel.SettlementOnDelivery {
		return nil, fmt.Errorf("%w: %s must be paid through the payment gateway", apperr.ErrValidation, method)
	}

	snapshot, err := s.carts.Build(ctx, req.Cart)
	if err != nil {
		return nil, err
	}

	order, err := s.ledger.CreateOrder(ctx, orderService.NewOrder{
		UserID:        req.UserID,
		Items:         snapshot.Items,
		Amount:        s.chargeAmount(req.Amount, snapshot.Total),
		Address:       req.Address,
		PaymentMethod: method,
		AlreadyPaid:   true,
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(events.OrderPlaced, order)
	return order, nil
}

// InitiatePayment 网关支付：先落 Pending 订单并关联交易号，再向网关申请跳转地址
// 网关失败时订单保持 Pending，不返回跳转地址
func (s *CheckoutService) InitiatePayment(ctx context.Context, req CheckoutRequest) (*Initiated, error) {
	method, err := orderModel.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if method.Settlement() != orderModel.SettlementGateway {
		return nil, fmt.Errorf("%w: %s does not use the payment gateway", apperr.ErrValidation, method)
	}

	snapshot, err := s.carts.Build(ctx, req.Cart)
	if err != nil {
		return nil, err
	}

	customer := req.Customer
	if customer.Name == "" {
		customer.Name = req.Address.FullName()
	}
	if customer.Email == "" {
		customer.Email = req.Address.Email
	}
	if customer.Phone == "" {
		customer.Phone = req.Address.Phone
	}
	txnID := s.newTransactionID()

	var order *orderModel.Order
	err = s.ledger.Atomically(ctx, func(l orderService.Ledger) error {
		created, err := l.CreateOrder(ctx, orderService.NewOrder{
			UserID:        req.UserID,
			Items:         snapshot.Items,
			Amount:        s.chargeAmount(req.Amount, snapshot.Total),
			Address:       req.Address,
			Customer:      &customer,
			PaymentMethod: method,
		})
		if err != nil {
			return err
		}
		if err := l.AttachTransaction(ctx, created.ID, txnID); err != nil {
			return err
		}
		created.TransactionID = &txnID
		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(events.OrderPlaced, order)

	url, err := s.gateway.Initiate(ctx, gateway.Session{
		TransactionID: txnID,
		Amount:        order.Amount,
		ItemCount:     len(order.Items),
		Customer: gateway.Customer{
			Name:  customer.Name,
			Email: customer.Email,
			Phone: customer.Phone,
		},
		Address: gateway.Address{
			Street:   req.Address.Street,
			City:     req.Address.City,
			Postcode: req.Address.Zipcode,
			Country:  req.Address.Country,
		},
	})
	if err != nil {
		s.log.Error("payment initiation failed, order left pending",
			zap.String("order_id", order.ID),
			zap.String("transaction_id", txnID),
			zap.Error(err))
		return nil, err
	}

	s.log.Info("payment initiated",
		zap.String("order_id", order.ID),
		zap.String("transaction_id", txnID),
		zap.String("amount", order.Amount.StringFixed(2)))
	return &Initiated{Order: order, RedirectURL: url}, nil
}

// chargeAmount 客户端给出正数总额时采信（含运费等），否则用服务端合计
func (s *CheckoutService) chargeAmount(supplied, computed decimal.Decimal) decimal.Decimal {
	if !supplied.IsPositive() {
		return computed
	}
	if !supplied.Equal(computed) {
		s.log.Info("using client supplied amount",
			zap.String("supplied", supplied.StringFixed(2)),
			zap.String("computed", computed.StringFixed(2)))
	}
	return supplied
}

func (s *CheckoutService) dispatch(typ events.Type, order *orderModel.Order) {
	if s.events == nil || order == nil {
		return
	}
	s.events.Dispatch(events.OrderEvent{
		Type:          typ,
		OrderID:       order.ID,
		UserID:        order.UserID,
		TransactionID: order.TxnID(),
		Amount:        order.Amount.StringFixed(2),
		PaymentMethod: string(order.PaymentMethod),
		PaymentStatus: string(order.PaymentStatus),
		OccurredAt:    s.now().UTC(),
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
