package api

import (
	"sync/atomic"
	"time"
)

// Metrics collects in-memory server metrics using atomic counters.
type Metrics struct {
	startTime    time.Time
	requests     atomic.Int64
	serverErrors atomic.Int64
	clientErrors atomic.Int64
	created      atomic.Int64
	updated      atomic.Int64
	deleted      atomic.Int64
	streamConns  atomic.Int64
}

// MetricsSnapshot is a point-in-time view of server metrics.
type MetricsSnapshot struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	Requests      int64   `json:"requests"`
	ServerErrors  int64   `json:"server_errors"`
	ClientErrors  int64   `json:"client_errors"`
	TodosCreated  int64   `json:"todos_created"`
	TodosUpdated  int64   `json:"todos_updated"`
	TodosDeleted  int64   `json:"todos_deleted"`
	StreamClients int64   `json:"stream_clients"`
}

// NewMetrics creates a new Metrics instance with the current time as start.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordRequest increments the total request counter.
func (m *Metrics) RecordRequest() {
	m.requests.Add(1)
}

// RecordError increments the server error (5xx) counter.
func (m *Metrics) RecordError() {
	m.serverErrors.Add(1)
}

// RecordClientError increments the client error (4xx) counter.
func (m *Metrics) RecordClientError() {
	m.clientErrors.Add(1)
}

// RecordCreate increments the created-todos counter.
func (m *Metrics) RecordCreate() {
	m.created.Add(1)
}

// RecordUpdate increments the updated-todos counter.
func (m *Metrics) RecordUpdate() {
	m.updated.Add(1)
}

// RecordDelete increments the deleted-todos counter.
func (m *Metrics) RecordDelete() {
	m.deleted.Add(1)
}

// StreamConnected increments the connected stream-client gauge.
func (m *Metrics) StreamConnected() {
	m.streamConns.Add(1)
}

// StreamDisconnected decrements the connected stream-client gauge.
func (m *Metrics) StreamDisconnected() {
	m.streamConns.Add(-1)
}

// Snapshot returns a point-in-time copy of the metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		UptimeSeconds: time.Since(m.startTime).Seconds(),
		Requests:      m.requests.Load(),
		ServerErrors:  m.serverErrors.Load(),
		ClientErrors:  m.clientErrors.Load(),
		TodosCreated:  m.created.Load(),
		TodosUpdated:  m.updated.Load(),
		TodosDeleted:  m.deleted.Load(),
		StreamClients: m.streamConns.Load(),
	}
}
