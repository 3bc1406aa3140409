package database

import (
	"testing"
	"time"

	"shop_checkout/pkg/metrics"
	"shop_checkout/pkg/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolMonitor(t *testing.T) {
	db := testutil.NewDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())

	m := metrics.NewMetricsCollectorWithRegisterer(prometheus.NewRegistry())
	mon := NewPoolMonitor(sqlDB, m, nil, 10*time.Millisecond)

	stats := mon.Collect()
	assert.Equal(t, 1, stats.MaxOpenConnections)
	assert.GreaterOrEqual(t, stats.OpenConnections, 1)

	mon.Start()
	time.Sleep(30 * time.Millisecond)
	assert.NotPanics(t, mon.Stop)
	assert.NotPanics(t, mon.Stop)
}
