package dramsim

import (
	"fmt"
	"io"
)

// WriteStats renders a Summary as the §6.8 aggregate-statistics report:
// per-channel and aggregate counts of retired read/write transactions,
// per-channel bandwidth, queue depth and average/p50/p99 retirement
// latency, the same derived values Metrics.Snapshot computes from its
// cumulative atomic counters and latency histogram.
func (s Summary) WriteStats(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "cycles=%d transactions=%d\n", s.Cycles, s.TransactionsIn); err != nil {
		return err
	}

	var aggReadOps, aggWriteOps, aggReadBytes, aggWriteBytes uint64
	for i, ch := range s.PerChannel {
		aggReadOps += ch.ReadOps
		aggWriteOps += ch.WriteOps
		aggReadBytes += ch.ReadBytes
		aggWriteBytes += ch.WriteBytes

		var readBW, writeBW float64
		if s.Cycles > 0 {
			readBW = float64(ch.ReadBytes) / float64(s.Cycles)
			writeBW = float64(ch.WriteBytes) / float64(s.Cycles)
		}

		_, err := fmt.Fprintf(w,
			"channel %d: read_ops=%d write_ops=%d read_bw=%.4f write_bw=%.4f "+
				"avg_queue_depth=%.2f max_queue_depth=%d avg_latency_cycles=%d p50=%d p99=%d\n",
			i, ch.ReadOps, ch.WriteOps, readBW, writeBW,
			ch.AvgQueueDepth, ch.MaxQueueDepth, ch.AvgLatencyCycles, ch.LatencyP50, ch.LatencyP99)
		if err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "aggregate: read_ops=%d write_ops=%d read_bytes=%d write_bytes=%d\n",
		aggReadOps, aggWriteOps, aggReadBytes, aggWriteBytes)
	return err
}
