// Package dramsim is a cycle-accurate DRAM memory-system simulator: it
// replays a memory-request trace through a JEDEC timing model (channel
// -> scheduler -> bank) and reports the issued command trace and
// aggregate statistics the run produced.
package dramsim

import (
	"context"
	"io"

	"github.com/ossdram/dramsim/internal/addrmap"
	"github.com/ossdram/dramsim/internal/channel"
	"github.com/ossdram/dramsim/internal/command"
	"github.com/ossdram/dramsim/internal/config"
	"github.com/ossdram/dramsim/internal/interfaces"
	"github.com/ossdram/dramsim/internal/trace"
)

// MemorySystem routes transactions to the owning channel by interleave
// bits and drives the global simulator clock. It owns every Channel by
// single reference (see the shared-resources design note): nothing
// outside MemorySystem holds a mutable reference to a Channel.
type MemorySystem struct {
	ctrl    *config.ControllerConfig
	addrMap *addrmap.AddressMap
	chans   []*channel.Channel

	ids   command.IDGenerator
	cycle uint64

	metrics []*Metrics
}

// New constructs a MemorySystem with one channel per ctrl.NumChan, each
// sharing the same AddressMap (decode differs only by which channel's
// decoded chan field matches) and holding its own Metrics.
func New(ctrl *config.ControllerConfig, devs []*config.DeviceConfig, numRank int, tracers []interfaces.CommandTracer) (*MemorySystem, error) {
	// AddressMap sizes its rank field from device geometry, so it needs to
	// see the same rank count every channel is built with. Decode off a
	// copy rather than mutating the caller's DeviceConfig.
	addrDev := *devs[0]
	addrDev.NumRank = numRank
	am, err := addrmap.Init(ctrl, &addrDev)
	if err != nil {
		return nil, NewAddressMapError("MemorySystem.New", err)
	}

	ms := &MemorySystem{ctrl: ctrl, addrMap: am}
	for i := 0; i < ctrl.NumChan; i++ {
		dev := devs[0]
		if i < len(devs) {
			dev = devs[i]
		}
		m := NewMetrics()
		ms.metrics = append(ms.metrics, m)

		var tracer interfaces.CommandTracer
		if i < len(tracers) {
			tracer = tracers[i]
		}

		ch := channel.New(channel.Config{
			ID:       i,
			AddrMap:  am,
			Ctrl:     ctrl,
			Dev:      dev,
			NumRank:  numRank,
			Observer: &metricsObserver{m: m},
			Tracer:   tracer,
		})
		ms.chans = append(ms.chans, ch)
	}
	return ms, nil
}

// log2 mirrors internal/addrmap's helper; duplicated rather than exported
// since FindChanId is the only caller outside addrmap itself.
func log2(n int) int {
	b := 0
	for (1 << b) < n {
		b++
	}
	return b
}

// FindChanId returns the channel index tx.Addr decodes to. This fixes
// the source's masking bug (documented in the design notes): the mask is
// (1<<log2(numChan))-1, not (1<<numChan)-1.
func (ms *MemorySystem) FindChanId(tx *command.Transaction) int {
	n := ms.ctrl.NumChan
	mask := uint64((1 << uint(log2(n))) - 1)
	return int((tx.Addr >> uint(ms.ctrl.ChanInterleaveBit)) & mask)
}

// AddTx admits tx to its decoded channel, rejecting any transaction
// whose length exceeds the channel interleave granularity.
func (ms *MemorySystem) AddTx(tx *command.Transaction) bool {
	if tx.Len > uint32(1<<uint(ms.ctrl.ChanInterleaveBit)) {
		return false
	}
	id := ms.FindChanId(tx)
	if id < 0 || id >= len(ms.chans) {
		return false
	}
	return ms.chans[id].AddTx(tx)
}

// Step advances the global cycle then steps every channel in index order
// (see the concurrency model note: serial stepping is specified for
// bit-for-bit determinism, not required by any data dependency).
func (ms *MemorySystem) Step() {
	ms.cycle++
	for _, ch := range ms.chans {
		ch.Step()
	}
}

// Idle reports whether every channel has fully drained.
func (ms *MemorySystem) Idle() bool {
	for _, ch := range ms.chans {
		if !ch.Idle() {
			return false
		}
	}
	return true
}

// Summary aggregates per-channel statistics at the end of a Run.
type Summary struct {
	Cycles         uint64
	TransactionsIn uint64
	PerChannel     []MetricsSnapshot
}

// TraceSource supplies transactions in non-decreasing arrival-cycle
// order, matching internal/trace.Source's Next contract.
type TraceSource interface {
	Next() (trace.Record, error)
}

// Run pulls transactions from source in arrival order, admits them once
// their cycle has arrived (retrying on back-pressure the following
// cycle), steps the clock once per cycle, and returns once source is
// exhausted and every channel has drained. ctx is checked once per cycle
// only — the core never blocks or yields, so this is the only point an
// external cancellation (the CLI's interactive abort, §6.4) can take
// effect.
func (ms *MemorySystem) Run(ctx context.Context, source TraceSource) (Summary, error) {
	var pending *trace.Record
	exhausted := false

	for {
		select {
		case <-ctx.Done():
			return ms.summary(), nil
		default:
		}

		if pending == nil && !exhausted {
			rec, err := source.Next()
			switch {
			case err == io.EOF:
				exhausted = true
			case err != nil:
				return ms.summary(), err
			default:
				pending = &rec
			}
		}

		if pending != nil {
			cycle := pending.CycleOf(ms.ctrl.CtrlFreqMHz)
			if cycle <= ms.cycle {
				tx := &command.Transaction{
					ID:           ms.ids.Next(),
					Addr:         pending.Addr,
					Len:          pending.Len,
					Dir:          pending.Dir,
					Priority:     pending.Priority,
					ArrivalCycle: cycle,
				}
				if ms.AddTx(tx) {
					pending = nil
				}
				// else: back-pressure, retry same pending record next cycle
			}
		}

		if exhausted && pending == nil && ms.Idle() {
			return ms.summary(), nil
		}

		ms.Step()
	}
}

func (ms *MemorySystem) summary() Summary {
	s := Summary{Cycles: ms.cycle}
	for _, m := range ms.metrics {
		snap := m.Snapshot()
		s.TransactionsIn += snap.TotalOps
		s.PerChannel = append(s.PerChannel, snap)
	}
	return s
}

// metricsObserver adapts a *Metrics to interfaces.Observer.
type metricsObserver struct {
	m *Metrics
}

var _ interfaces.Observer = (*metricsObserver)(nil)

func (o *metricsObserver) ObserveCommand(channel int, kind string, issuedAt, birthCycle uint64) {}

func (o *metricsObserver) ObserveRetire(channel int, isRead bool, bytes uint64, latencyCycles uint64) {
	o.m.RecordRetire(isRead, bytes, latencyCycles)
}

func (o *metricsObserver) ObserveQueueDepth(channel int, depth int) {
	o.m.RecordQueueDepth(uint32(depth))
}
