package dramsim

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteStatsIncludesAggregateAndPerChannel(t *testing.T) {
	s := Summary{
		Cycles:         1000,
		TransactionsIn: 3,
		PerChannel: []MetricsSnapshot{
			{ReadOps: 2, WriteOps: 1, ReadBytes: 128, WriteBytes: 64, AvgQueueDepth: 1.5, MaxQueueDepth: 4, AvgLatencyCycles: 50, LatencyP50: 40, LatencyP99: 90},
		},
	}
	var buf bytes.Buffer
	if err := s.WriteStats(&buf); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"cycles=1000", "channel 0:", "read_ops=2", "aggregate: read_ops=2 write_ops=1 read_bytes=128 write_bytes=64"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got: %s", want, out)
		}
	}
}
