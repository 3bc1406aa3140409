package database

import (
	"database/sql"
	"sync"
	"time"

	"shop_checkout/pkg/metrics"

	"go.uber.org/zap"
)

// PoolMonitor 定期采集连接池状态写入指标，出现排队等待时告警
type PoolMonitor struct {
	db       *sql.DB
	metrics  *metrics.MetricsCollector
	log      *zap.Logger
	interval time.Duration

	mu       sync.Mutex
	last     sql.DBStats
	started  bool
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewPoolMonitor interval <= 0 时默认 15s
func NewPoolMonitor(db *sql.DB, m *metrics.MetricsCollector, log *zap.Logger, interval time.Duration) *PoolMonitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PoolMonitor{
		db:       db,
		metrics:  m,
		log:      log,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start 后台采集，重复调用无效
func (p *PoolMonitor) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.Collect()
			case <-p.stopCh:
				return
			}
		}
	}()
}

// Collect 采集一次并返回快照
func (p *PoolMonitor) Collect() sql.DBStats {
	stats := p.db.Stats()
	p.metrics.RecordDBPool(stats)

	p.mu.Lock()
	waited := stats.WaitCount - p.last.WaitCount
	p.last = stats
	p.mu.Unlock()

	if waited > 0 {
		p.log.Warn("database pool saturated",
			zap.Int64("waited", waited),
			zap.Int("in_use", stats.InUse),
			zap.Int("max_open", stats.MaxOpenConnections))
	}
	return stats
}

// Stop 停止采集并等待后台协程退出
func (p *PoolMonitor) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if started {
		<-p.done
	}
}
