package dramsim

import "testing"

func TestRecordRetireSplitsReadAndWrite(t *testing.T) {
	m := NewMetrics()
	m.RecordRetire(true, 64, 20)
	m.RecordRetire(false, 32, 30)
	m.RecordRetire(true, 64, 10)

	snap := m.Snapshot()
	if snap.ReadOps != 2 {
		t.Errorf("ReadOps = %d, want 2", snap.ReadOps)
	}
	if snap.WriteOps != 1 {
		t.Errorf("WriteOps = %d, want 1", snap.WriteOps)
	}
	if snap.ReadBytes != 128 {
		t.Errorf("ReadBytes = %d, want 128", snap.ReadBytes)
	}
	if snap.WriteBytes != 32 {
		t.Errorf("WriteBytes = %d, want 32", snap.WriteBytes)
	}
	if snap.TotalOps != 3 {
		t.Errorf("TotalOps = %d, want 3", snap.TotalOps)
	}
	if snap.TotalBytes != 160 {
		t.Errorf("TotalBytes = %d, want 160", snap.TotalBytes)
	}
}

func TestRecordQueueDepthTracksMaxAndAverage(t *testing.T) {
	m := NewMetrics()
	m.RecordQueueDepth(2)
	m.RecordQueueDepth(8)
	m.RecordQueueDepth(4)

	snap := m.Snapshot()
	if snap.MaxQueueDepth != 8 {
		t.Errorf("MaxQueueDepth = %d, want 8", snap.MaxQueueDepth)
	}
	wantAvg := float64(2+8+4) / 3
	if snap.AvgQueueDepth != wantAvg {
		t.Errorf("AvgQueueDepth = %v, want %v", snap.AvgQueueDepth, wantAvg)
	}
}

func TestSnapshotWithNoSamplesIsZero(t *testing.T) {
	m := NewMetrics()
	snap := m.Snapshot()

	if snap.TotalOps != 0 || snap.AvgLatencyCycles != 0 || snap.AvgQueueDepth != 0 {
		t.Errorf("expected a zeroed snapshot, got %+v", snap)
	}
	if snap.LatencyP50 != 0 || snap.LatencyP99 != 0 {
		t.Errorf("expected zero percentiles with no recorded retirements, got p50=%d p99=%d", snap.LatencyP50, snap.LatencyP99)
	}
}

func TestAvgLatencyCyclesIsMeanOfRetires(t *testing.T) {
	m := NewMetrics()
	m.RecordRetire(true, 64, 10)
	m.RecordRetire(true, 64, 20)
	m.RecordRetire(true, 64, 30)

	snap := m.Snapshot()
	if snap.AvgLatencyCycles != 20 {
		t.Errorf("AvgLatencyCycles = %d, want 20", snap.AvgLatencyCycles)
	}
}

func TestCalculatePercentileWithinBucketRange(t *testing.T) {
	m := NewMetrics()
	// Four samples spread across the low buckets; each LatencyBuckets[i]
	// holds a cumulative count of samples <= that boundary, so p50/p99
	// resolve to the first boundary whose cumulative count reaches the
	// target rank.
	m.RecordRetire(true, 64, 5)
	m.RecordRetire(true, 64, 40)
	m.RecordRetire(true, 64, 80)
	m.RecordRetire(true, 64, 400)

	snap := m.Snapshot()
	if snap.LatencyP50 != 50 {
		t.Errorf("LatencyP50 = %d, want 50", snap.LatencyP50)
	}
	if snap.LatencyP99 != 100 {
		t.Errorf("LatencyP99 = %d, want 100", snap.LatencyP99)
	}
}

func TestLatencyHistogramIsCumulativePerBucket(t *testing.T) {
	m := NewMetrics()
	m.RecordRetire(true, 64, 5)  // <= every bucket boundary
	m.RecordRetire(true, 64, 60) // <= buckets from 100 upward only

	snap := m.Snapshot()
	if snap.LatencyHistogram[0] != 1 { // bucket boundary 10
		t.Errorf("bucket[0] = %d, want 1", snap.LatencyHistogram[0])
	}
	if snap.LatencyHistogram[2] != 2 { // bucket boundary 100, both latencies qualify
		t.Errorf("bucket[2] = %d, want 2", snap.LatencyHistogram[2])
	}
}
