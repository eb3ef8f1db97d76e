package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// poolMetric pairs a metric descriptor with the pool stat it reads.
type poolMetric struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(s *pgxpool.Stat) float64
}

// PoolStatsCollector exports pgxpool connection pool statistics as
// Prometheus metrics, labelled with the owning service name.
type PoolStatsCollector struct {
	pool    *pgxpool.Pool
	metrics []poolMetric
}

// NewPoolStatsCollector builds a collector over the given pool. Register it
// with a Prometheus registry to expose the metrics.
func NewPoolStatsCollector(pool *pgxpool.Pool, service string) *PoolStatsCollector {
	labels := prometheus.Labels{"service": service}

	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(name, help, nil, labels)
	}

	return &PoolStatsCollector{
		pool: pool,
		metrics: []poolMetric{
			{
				desc:  desc("db_pool_acquired_connections", "Connections currently checked out of the pool"),
				kind:  prometheus.GaugeValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) },
			},
			{
				desc:  desc("db_pool_idle_connections", "Connections currently idle in the pool"),
				kind:  prometheus.GaugeValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) },
			},
			{
				desc:  desc("db_pool_total_connections", "Total connections currently held by the pool"),
				kind:  prometheus.GaugeValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) },
			},
			{
				desc:  desc("db_pool_max_connections", "Configured pool size ceiling"),
				kind:  prometheus.GaugeValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) },
			},
			{
				desc:  desc("db_pool_acquire_count_total", "Total successful connection acquires"),
				kind:  prometheus.CounterValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) },
			},
			{
				desc:  desc("db_pool_acquire_duration_seconds_total", "Cumulative time spent acquiring connections"),
				kind:  prometheus.CounterValue,
				value: func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() },
			},
			{
				desc:  desc("db_pool_empty_acquire_count_total", "Acquires that had to wait for a free connection"),
				kind:  prometheus.CounterValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) },
			},
			{
				desc:  desc("db_pool_new_connections_total", "Connections opened over the pool's lifetime"),
				kind:  prometheus.CounterValue,
				value: func(s *pgxpool.Stat) float64 { return float64(s.NewConnsCount()) },
			},
		},
	}
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.Stat()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.kind, m.value(stat))
	}
}
