package metrics

import (
	"database/sql"
	"strings"
	"time"
)

// UpdateDBStats mirrors the connection pool. WaitCount and WaitDuration
// are running totals in sql.DBStats, hence gauges.
func (m *Metrics) UpdateDBStats(stats sql.DBStats) {
	m.safeExecute("UpdateDBStats", func() {
		for gauge, v := range map[interface{ Set(float64) }]float64{
			m.DBConnectionsOpen:        float64(stats.OpenConnections),
			m.DBConnectionsInUse:       float64(stats.InUse),
			m.DBConnectionsIdle:        float64(stats.Idle),
			m.DBConnectionsMax:         float64(stats.MaxOpenConnections),
			m.DBConnectionWaitTotal:    float64(stats.WaitCount),
			m.DBConnectionWaitDuration: stats.WaitDuration.Seconds(),
		} {
			gauge.Set(v)
		}
	})
}

// RecordDBQuery observes one gorm statement. Operations are lower-cased
// and an unresolved table is reported as "unknown".
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration, err error) {
	m.safeExecute("RecordDBQuery", func() {
		op := strings.ToLower(operation)
		if table == "" {
			table = "unknown"
		}
		m.DBQueryDuration.WithLabelValues(op, table).Observe(duration.Seconds())
		if err != nil {
			m.DBQueryErrors.WithLabelValues(op, table).Inc()
		}
	})
}
