package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"shop_checkout/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type stubCache struct {
	getErr error
	setErr error
}

func (s stubCache) Get(context.Context, string, interface{}) error { return s.getErr }
func (s stubCache) Set(context.Context, string, interface{}, time.Duration) error {
	return s.setErr
}
func (s stubCache) Delete(context.Context, string) error { return nil }

func TestMonitoredCache(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetricsCollectorWithRegisterer(reg)
	ctx := context.Background()
	var dest struct{}

	_ = NewMonitoredCache(stubCache{}, "catalog", m).Get(ctx, "k", &dest)
	err := NewMonitoredCache(stubCache{getErr: ErrCacheMiss}, "catalog", m).Get(ctx, "k", &dest)
	assert.ErrorIs(t, err, ErrCacheMiss)
	_ = NewMonitoredCache(stubCache{getErr: errors.New("conn refused")}, "catalog", m).Get(ctx, "k", &dest)
	_ = NewMonitoredCache(stubCache{setErr: errors.New("oom")}, "catalog", m).Set(ctx, "k", 1, time.Minute)

	// hit, miss, error, set_error 各一条
	n, err := testutil.GatherAndCount(reg, "cache_lookups_total")
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestMonitoredCache_NilMetrics(t *testing.T) {
	c := NewMonitoredCache(stubCache{getErr: ErrCacheMiss}, "catalog", nil)
	var dest struct{}
	assert.NotPanics(t, func() { _ = c.Get(context.Background(), "k", &dest) })
}
