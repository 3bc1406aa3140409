package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 支付回调与状态流转
	callbacksTotal     *prometheus.CounterVec
	paymentTransitions *prometheus.CounterVec

	// 网关调用
	gatewayCallDuration *prometheus.HistogramVec
	gatewayErrorsTotal  *prometheus.CounterVec

	// 订单创建
	ordersCreatedTotal *prometheus.CounterVec

	// 缓存
	cacheLookupsTotal *prometheus.CounterVec

	// 数据库连接池
	dbConnections *prometheus.GaugeVec
	dbWaitCount   prometheus.Gauge
}

// NewMetricsCollector 在默认 Registerer 上创建指标收集器
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegisterer(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegisterer 使用指定 Registerer，测试中传入独立 Registry
func NewMetricsCollectorWithRegisterer(reg prometheus.Registerer) *MetricsCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &MetricsCollector{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		callbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_gateway_callbacks_total",
				Help: "Gateway callbacks received grouped by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),
		paymentTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_payment_transitions_total",
				Help: "Payment status transitions grouped by target status and result",
			},
			[]string{"status", "result"},
		),
		gatewayCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "checkout_gateway_call_duration_seconds",
				Help:    "Latency of payment gateway calls",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
			},
			[]string{"operation"},
		),
		gatewayErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_gateway_errors_total",
				Help: "Payment gateway call failures grouped by operation and kind",
			},
			[]string{"operation", "kind"},
		),
		ordersCreatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_orders_created_total",
				Help: "Orders created grouped by payment method",
			},
			[]string{"method"},
		),
		cacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_lookups_total",
				Help: "Cache operations grouped by cache and result",
			},
			[]string{"cache", "result"},
		),
		dbConnections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_pool_connections",
				Help: "Database pool connections grouped by state",
			},
			[]string{"state"},
		),
		dbWaitCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_pool_wait_count",
				Help: "Total number of connections waited for",
			},
		),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.callbacksTotal,
		m.paymentTransitions,
		m.gatewayCallDuration,
		m.gatewayErrorsTotal,
		m.ordersCreatedTotal,
		m.cacheLookupsTotal,
		m.dbConnections,
		m.dbWaitCount,
	)
	return m
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCallback 记录一次网关回调
func (m *MetricsCollector) RecordCallback(channel, outcome string) {
	if m == nil {
		return
	}
	m.callbacksTotal.WithLabelValues(channel, outcome).Inc()
}

// RecordTransition 记录支付状态流转结果（applied / unchanged）
func (m *MetricsCollector) RecordTransition(status, result string) {
	if m == nil {
		return
	}
	m.paymentTransitions.WithLabelValues(status, result).Inc()
}

// ObserveGatewayCall 记录网关调用耗时
func (m *MetricsCollector) ObserveGatewayCall(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.gatewayCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordGatewayError 记录网关调用失败
func (m *MetricsCollector) RecordGatewayError(operation, kind string) {
	if m == nil {
		return
	}
	m.gatewayErrorsTotal.WithLabelValues(operation, kind).Inc()
}

// RecordOrderCreated 记录订单创建
func (m *MetricsCollector) RecordOrderCreated(method string) {
	if m == nil {
		return
	}
	m.ordersCreatedTotal.WithLabelValues(method).Inc()
}

// RecordCacheLookup 记录缓存结果（hit / miss / error / set_error）
func (m *MetricsCollector) RecordCacheLookup(cache, result string) {
	if m == nil {
		return
	}
	m.cacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

// RecordDBPool 记录连接池快照
func (m *MetricsCollector) RecordDBPool(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.dbConnections.WithLabelValues("open").Set(float64(stats.OpenConnections))
	m.dbConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
	m.dbConnections.WithLabelValues("idle").Set(float64(stats.Idle))
	m.dbWaitCount.Set(float64(stats.WaitCount))
}
