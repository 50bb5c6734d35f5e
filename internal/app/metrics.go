package app

import (
	"sync/atomic"
	"time"
)

// Metrics counts host activity.
type Metrics struct {
	opens         atomic.Int64
	saves         atomic.Int64
	saveFailures  atomic.Int64
	editsApplied  atomic.Int64
	externalSaves atomic.Int64

	startTime time.Time
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Opens         int64
	Saves         int64
	SaveFailures  int64
	EditsApplied  int64
	ExternalSaves int64
	Uptime        time.Duration
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordOpen records an opened document.
func (m *Metrics) RecordOpen() {
	m.opens.Add(1)
}

// RecordSave records a written document and the edits applied before it.
func (m *Metrics) RecordSave(edits int) {
	m.saves.Add(1)
	m.editsApplied.Add(int64(edits))
}

// RecordSaveFailure records a save that did not write.
func (m *Metrics) RecordSaveFailure() {
	m.saveFailures.Add(1)
}

// RecordExternalSave records a change reported by the file watcher.
func (m *Metrics) RecordExternalSave() {
	m.externalSaves.Add(1)
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Opens:         m.opens.Load(),
		Saves:         m.saves.Load(),
		SaveFailures:  m.saveFailures.Load(),
		EditsApplied:  m.editsApplied.Load(),
		ExternalSaves: m.externalSaves.Load(),
		Uptime:        time.Since(m.startTime),
	}
}
