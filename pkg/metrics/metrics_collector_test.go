package metrics

import (
	"database/sql"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsCollectorWithRegisterer(reg)

	m.RecordCallback("success", "paid")
	m.RecordCallback("success", "paid")
	m.RecordCallback("ipn", "unknown_transaction")
	m.RecordTransition("paid", "applied")
	m.RecordGatewayError("initiate", "timeout")
	m.ObserveGatewayCall("validate", 120*time.Millisecond)
	m.RecordOrderCreated("cod")
	m.RecordHTTPRequest("POST", "/api/order/create", "200", 10*time.Millisecond)
	m.RecordDBPool(sql.DBStats{OpenConnections: 5, InUse: 2, Idle: 3, WaitCount: 7})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.callbacksTotal.WithLabelValues("success", "paid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callbacksTotal.WithLabelValues("ipn", "unknown_transaction")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.paymentTransitions.WithLabelValues("paid", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gatewayErrorsTotal.WithLabelValues("initiate", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersCreatedTotal.WithLabelValues("cod")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.gatewayCallDuration))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.dbConnections.WithLabelValues("in_use")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.dbWaitCount))
}

func TestMetricsCollector_NilSafe(t *testing.T) {
	var m *MetricsCollector
	assert.NotPanics(t, func() {
		m.RecordCallback("fail", "failed")
		m.RecordTransition("failed", "applied")
		m.ObserveGatewayCall("initiate", time.Second)
		m.RecordGatewayError("initiate", "protocol")
		m.RecordOrderCreated("bkash")
		m.RecordHTTPRequest("GET", "/", "200", time.Millisecond)
		m.RecordDBPool(sql.DBStats{})
	})
}
