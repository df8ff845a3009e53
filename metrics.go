package dramsim

import "sync/atomic"

// LatencyBuckets are the cycle-count histogram bucket upper bounds, with
// logarithmic spacing analogous to the teacher's nanosecond buckets
// (adapted here to cycles since the simulator never touches wall time).
var LatencyBuckets = []uint64{
	10, 50, 100, 500, 1_000, 5_000, 10_000, 50_000,
}

const numLatencyBuckets = 8

// Metrics tracks per-channel retirement statistics. Fields are atomic so
// a reader on another goroutine can take a snapshot without interrupting
// the single-threaded simulation loop that updates them.
type Metrics struct {
	ReadOps  atomic.Uint64
	WriteOps atomic.Uint64

	ReadBytes  atomic.Uint64
	WriteBytes atomic.Uint64

	QueueDepthTotal atomic.Uint64
	QueueDepthCount atomic.Uint64
	MaxQueueDepth   atomic.Uint32

	TotalLatencyCycles atomic.Uint64
	OpCount            atomic.Uint64

	LatencyBuckets [numLatencyBuckets]atomic.Uint64
}

// NewMetrics returns a zeroed Metrics ready for use.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordRetire records one retired transaction's observed latency.
func (m *Metrics) RecordRetire(isRead bool, bytes uint64, latencyCycles uint64) {
	if isRead {
		m.ReadOps.Add(1)
		m.ReadBytes.Add(bytes)
	} else {
		m.WriteOps.Add(1)
		m.WriteBytes.Add(bytes)
	}
	m.recordLatency(latencyCycles)
}

// RecordQueueDepth records one queue-depth sample.
func (m *Metrics) RecordQueueDepth(depth uint32) {
	m.QueueDepthTotal.Add(uint64(depth))
	m.QueueDepthCount.Add(1)
	for {
		cur := m.MaxQueueDepth.Load()
		if depth <= cur {
			break
		}
		if m.MaxQueueDepth.CompareAndSwap(cur, depth) {
			break
		}
	}
}

func (m *Metrics) recordLatency(latencyCycles uint64) {
	m.TotalLatencyCycles.Add(latencyCycles)
	m.OpCount.Add(1)
	for i, bucket := range LatencyBuckets {
		if latencyCycles <= bucket {
			m.LatencyBuckets[i].Add(1)
		}
	}
}

// MetricsSnapshot is a point-in-time, non-atomic copy of a Metrics,
// suitable for rendering (Summary.WriteStats).
type MetricsSnapshot struct {
	ReadOps  uint64
	WriteOps uint64

	ReadBytes  uint64
	WriteBytes uint64

	AvgQueueDepth float64
	MaxQueueDepth uint32

	AvgLatencyCycles uint64

	LatencyP50 uint64
	LatencyP99 uint64

	LatencyHistogram [numLatencyBuckets]uint64

	TotalOps   uint64
	TotalBytes uint64
}

// Snapshot takes a point-in-time snapshot of m.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		ReadOps:       m.ReadOps.Load(),
		WriteOps:      m.WriteOps.Load(),
		ReadBytes:     m.ReadBytes.Load(),
		WriteBytes:    m.WriteBytes.Load(),
		MaxQueueDepth: m.MaxQueueDepth.Load(),
	}
	snap.TotalOps = snap.ReadOps + snap.WriteOps
	snap.TotalBytes = snap.ReadBytes + snap.WriteBytes

	if qc := m.QueueDepthCount.Load(); qc > 0 {
		snap.AvgQueueDepth = float64(m.QueueDepthTotal.Load()) / float64(qc)
	}

	opCount := m.OpCount.Load()
	if opCount > 0 {
		snap.AvgLatencyCycles = m.TotalLatencyCycles.Load() / opCount
	}

	for i := 0; i < numLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyBuckets[i].Load()
	}

	if opCount > 0 {
		snap.LatencyP50 = m.calculatePercentile(0.50)
		snap.LatencyP99 = m.calculatePercentile(0.99)
	}

	return snap
}

// calculatePercentile interpolates a latency percentile from the
// cumulative histogram buckets, mirroring the teacher's bucket-boundary
// interpolation (exact only to bucket granularity).
func (m *Metrics) calculatePercentile(p float64) uint64 {
	total := m.OpCount.Load()
	if total == 0 {
		return 0
	}
	target := uint64(float64(total) * p)
	for i, bound := range LatencyBuckets {
		if m.LatencyBuckets[i].Load() >= target {
			return bound
		}
	}
	return LatencyBuckets[len(LatencyBuckets)-1]
}
