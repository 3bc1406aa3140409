package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shop_checkout/internal/pkg/apperr"
	"shop_checkout/pkg/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	SandboxBaseURL = "https://sandbox.sslcommerz.com"
	LiveBaseURL    = "https://securepay.sslcommerz.com"

	initPath     = "/gwprocess/v4/api.php"
	validatePath = "/validator/api/validationserverAPI.php"

	// maxBody 网关响应体上限
	maxBody = 1 << 20
)

// redirectFields 网关返回跳转地址的字段名不固定，按顺序取第一个非空值
var redirectFields = []string{"GatewayPageURL", "GatewayPageUrl", "redirect_url", "redirectUrl", "url"}

// validStates 视为支付成功的网关 status
var validStates = map[string]bool{"VALID": true, "VALIDATED": true}

// Config SSLCommerz 适配器配置，构造时显式传入
type Config struct {
	StoreID         string
	StorePassword   string
	IsLive          bool
	BaseURL         string // 为空时按 IsLive 选择
	Currency        string
	CallbackBaseURL string // 本服务对网关可见的地址，用于拼回调 URL
	Timeout         time.Duration
}

// Configured 凭证是否齐全
func (c Config) Configured() bool {
	return c.StoreID != "" && c.StorePassword != ""
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.IsLive {
		return LiveBaseURL
	}
	return SandboxBaseURL
}

func (c Config) callback(name string) string {
	return strings.TrimRight(c.CallbackBaseURL, "/") + "/api/payment/sslcommerz/" + name
}

type SSLCommerz struct {
	cfg     Config
	client  *http.Client
	log     *zap.Logger
	metrics *metrics.MetricsCollector
}

// NewSSLCommerz client 为 nil 时使用默认 http.Client
func NewSSLCommerz(cfg Config, client *http.Client, log *zap.Logger, m *metrics.MetricsCollector) *SSLCommerz {
	if client == nil {
		client = &http.Client{}
	}
	if cfg.Currency == "" {
		cfg.Currency = "BDT"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SSLCommerz{cfg: cfg, client: client, log: log, metrics: m}
}

var _ Gateway = (*SSLCommerz)(nil)

func (g *SSLCommerz) Initiate(ctx context.Context, s Session) (string, error) {
	if !g.cfg.Configured() {
		return "", fmt.Errorf("%w: store credentials not configured", apperr.ErrGatewayUnavailable)
	}

	form := url.Values{}
	form.Set("store_id", g.cfg.StoreID)
	form.Set("store_passwd", g.cfg.StorePassword)
	form.Set("total_amount", s.Amount.StringFixed(2))
	form.Set("currency", g.cfg.Currency)
	form.Set("tran_id", s.TransactionID)
	form.Set("success_url", g.cfg.callback("success"))
	form.Set("fail_url", g.cfg.callback("fail"))
	form.Set("cancel_url", g.cfg.callback("cancel"))
	form.Set("ipn_url", g.cfg.callback("ipn"))
	form.Set("shipping_method", "NO")
	form.Set("num_of_item", strconv.Itoa(s.ItemCount))
	form.Set("product_name", "Ecommerce Order")
	form.Set("product_category", "General")
	form.Set("product_profile", "general")
	form.Set("cus_name", s.Customer.Name)
	form.Set("cus_email", s.Customer.Email)
	form.Set("cus_phone", s.Customer.Phone)
	form.Set("cus_add1", s.Address.Street)
	form.Set("cus_city", s.Address.City)
	form.Set("cus_postcode", s.Address.Postcode)
	form.Set("cus_country", s.Address.Country)
	form.Set("value_a", s.TransactionID)

	body, err := g.call(ctx, "initiate", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.baseURL()+initPath, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return "", err
	}

	payload, err := decodeObject(body)
	if err != nil {
		g.metrics.RecordGatewayError("initiate", "decode")
		return "", fmt.Errorf("%w: initiate response: %v", apperr.ErrGatewayProtocol, err)
	}

	for _, field := range redirectFields {
		if u := stringField(payload, field); u != "" {
			return u, nil
		}
	}

	g.metrics.RecordGatewayError("initiate", "no_redirect")
	g.log.Warn("gateway returned no redirect url",
		zap.String("transaction_id", s.TransactionID),
		zap.String("status", stringField(payload, "status")),
		zap.String("reason", stringField(payload, "failedreason")))
	return "", fmt.Errorf("%w: no redirect url in initiate response", apperr.ErrGatewayProtocol)
}

func (g *SSLCommerz) Validate(ctx context.Context, valID string) (*Validation, error) {
	if !g.cfg.Configured() {
		return nil, fmt.Errorf("%w: store credentials not configured", apperr.ErrGatewayUnavailable)
	}
	if valID == "" {
		return &Validation{Status: Invalid}, nil
	}

	q := url.Values{}
	q.Set("val_id", valID)
	q.Set("store_id", g.cfg.StoreID)
	q.Set("store_passwd", g.cfg.StorePassword)
	q.Set("v", "1")
	q.Set("format", "json")

	body, err := g.call(ctx, "validate", func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.baseURL()+validatePath+"?"+q.Encode(), nil)
	})
	if err != nil {
		return nil, err
	}

	payload, err := decodeObject(body)
	if err != nil {
		g.metrics.RecordGatewayError("validate", "decode")
		return nil, fmt.Errorf("%w: validate response: %v", apperr.ErrGatewayProtocol, err)
	}

	state := strings.ToUpper(stringField(payload, "status"))
	v := &Validation{
		Status:        Invalid,
		ProviderState: state,
		ValID:         valID,
		TransactionID: stringField(payload, "tran_id"),
		Currency:      stringField(payload, "currency"),
		BankTranID:    stringField(payload, "bank_tran_id"),
	}
	if validStates[state] {
		v.Status = Valid
	}
	if raw := stringField(payload, "amount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			g.metrics.RecordGatewayError("validate", "decode")
			return nil, fmt.Errorf("%w: validate amount %q", apperr.ErrGatewayProtocol, raw)
		}
		v.Amount = amount
	}
	return v, nil
}

// call 执行一次带超时的网关请求；网络错误与超时归为 ErrGatewayUnavailable
func (g *SSLCommerz) call(ctx context.Context, op string, build func(context.Context) (*http.Request, error)) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	req, err := build(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: build %s request: %v", apperr.ErrGatewayProtocol, op, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	g.metrics.ObserveGatewayCall(op, time.Since(start))
	if err != nil {
		kind := "network"
		if errors.Is(err, context.DeadlineExceeded) {
			kind = "timeout"
		}
		g.metrics.RecordGatewayError(op, kind)
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrGatewayUnavailable, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		g.metrics.RecordGatewayError(op, "network")
		return nil, fmt.Errorf("%w: read %s response: %v", apperr.ErrGatewayUnavailable, op, err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		g.metrics.RecordGatewayError(op, "http_5xx")
		return nil, fmt.Errorf("%w: %s returned %d", apperr.ErrGatewayUnavailable, op, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		g.metrics.RecordGatewayError(op, "http_status")
		return nil, fmt.Errorf("%w: %s returned %d", apperr.ErrGatewayProtocol, op, resp.StatusCode)
	}
	return body, nil
}

func decodeObject(body []byte) (map[string]interface{}, error) {
	var payload map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("empty object")
	}
	return payload, nil
}

// stringField 网关字段可能是字符串也可能是数字
func stringField(payload map[string]interface{}, key string) string {
	switch v := payload[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	}
	return ""
}
