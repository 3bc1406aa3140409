package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shop_checkout/internal/pkg/config"
	"shop_checkout/internal/pkg/events"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/push"
)

// ErrNotConfigured 推送凭证缺失
var ErrNotConfigured = errors.New("push config is missing")

// PushService 按账号推送通知
type PushService interface {
	PushToAccount(ctx context.Context, accountID, title, body string, ext map[string]string) error
}

type pushClient interface {
	Push(request *push.PushRequest) (*push.PushResponse, error)
}

// AliyunPushService 阿里云移动推送
type AliyunPushService struct {
	client pushClient
	appKey int64
}

// NewAliyunPushService 凭证缺失时返回 ErrNotConfigured，调用方据此跳过推送
func NewAliyunPushService(cfg config.PushConfig) (*AliyunPushService, error) {
	if cfg.AccessKeyID == "" || cfg.AppKey == 0 {
		return nil, ErrNotConfigured
	}

	client, err := push.NewClientWithAccessKey(cfg.RegionID, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("aliyun push client: %w", err)
	}

	return &AliyunPushService{client: client, appKey: cfg.AppKey}, nil
}

func (s *AliyunPushService) PushToAccount(_ context.Context, accountID, title, body string, ext map[string]string) error {
	request := push.CreatePushRequest()
	request.AppKey = requests.NewInteger(int(s.appKey))
	request.Target = "ACCOUNT"
	request.TargetValue = accountID
	request.Title = title
	request.Body = body
	request.DeviceType = "ALL"
	request.PushType = "NOTICE"

	if len(ext) > 0 {
		extJSON, err := json.Marshal(ext)
		if err != nil {
			return err
		}
		request.AndroidExtParameters = string(extJSON)
		request.IOSExtParameters = string(extJSON)
	}

	_, err := s.client.Push(request)
	return err
}

// OrderNotifier 订单支付结果推送给下单用户
type OrderNotifier struct {
	svc PushService
}

func NewOrderNotifier(svc PushService) *OrderNotifier {
	return &OrderNotifier{svc: svc}
}

func (n *OrderNotifier) Name() string { return "aliyun_push" }

// Handle 只关心支付成功/失败，其余事件忽略
func (n *OrderNotifier) Handle(ctx context.Context, evt events.OrderEvent) error {
	var title, body string
	switch evt.Type {
	case events.OrderPaid:
		title = "Payment received"
		body = fmt.Sprintf("Your payment of %s BDT was successful.", evt.Amount)
	case events.OrderPaymentFailed:
		title = "Payment failed"
		body = "Your payment could not be completed. You can try again from your orders page."
	default:
		return nil
	}
	if evt.UserID == "" {
		return nil
	}

	return n.svc.PushToAccount(ctx, evt.UserID, title, body, map[string]string{
		"order_id":       evt.OrderID,
		"transaction_id": evt.TransactionID,
	})
}
