package cache

import (
	"context"
	"errors"
	"time"

	"shop_checkout/pkg/metrics"
)

// MonitoredCache 为任意 CacheService 记录命中、未命中与错误次数
type MonitoredCache struct {
	next    CacheService
	name    string
	metrics *metrics.MetricsCollector
}

// NewMonitoredCache name 作为指标的 cache 标签
func NewMonitoredCache(next CacheService, name string, m *metrics.MetricsCollector) *MonitoredCache {
	return &MonitoredCache{next: next, name: name, metrics: m}
}

func (c *MonitoredCache) Get(ctx context.Context, key string, dest interface{}) error {
	err := c.next.Get(ctx, key, dest)
	switch {
	case err == nil:
		c.metrics.RecordCacheLookup(c.name, "hit")
	case errors.Is(err, ErrCacheMiss):
		c.metrics.RecordCacheLookup(c.name, "miss")
	default:
		c.metrics.RecordCacheLookup(c.name, "error")
	}
	return err
}

func (c *MonitoredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	err := c.next.Set(ctx, key, value, expiration)
	if err != nil {
		c.metrics.RecordCacheLookup(c.name, "set_error")
	}
	return err
}

func (c *MonitoredCache) Delete(ctx context.Context, key string) error {
	return c.next.Delete(ctx, key)
}

var _ CacheService = (*MonitoredCache)(nil)
