// Package channel holds one memory channel's transaction queues, drives
// its scheduler and bank table one cycle at a time, and implements the
// FR-FCFS transaction-selection and write-drain hysteresis policies.
package channel

import (
	"fmt"

	"github.com/ossdram/dramsim/internal/addrmap"
	"github.com/ossdram/dramsim/internal/bank"
	"github.com/ossdram/dramsim/internal/command"
	"github.com/ossdram/dramsim/internal/config"
	"github.com/ossdram/dramsim/internal/interfaces"
	"github.com/ossdram/dramsim/internal/scheduler"
)

// Channel owns its Scheduler and bank table by single ownership
// (per the "shared resources" model in the spec): nothing outside the
// channel holds a mutable reference to either.
type Channel struct {
	id      int
	addrMap *addrmap.AddressMap
	banks   [][]*bank.Bank // banks[rank][bank]
	sched   *scheduler.Scheduler

	mal uint32 // minimum access length, in bytes

	rdQueue     []*command.Transaction
	rdRespQueue []*command.Transaction
	wrQueue     []*command.Transaction
	wrRespQueue []*command.Transaction

	maxRdDepth int
	maxWrDepth int
	wrDraining bool

	cycle command.Cycle

	observer interfaces.Observer
	logger   interfaces.Logger
	tracer   interfaces.CommandTracer
}

// Config bundles the construction-time dependencies a Channel needs.
type Config struct {
	ID          int
	AddrMap     *addrmap.AddressMap
	Ctrl        *config.ControllerConfig
	Dev         *config.DeviceConfig
	NumRank     int
	Observer    interfaces.Observer
	Logger      interfaces.Logger
	Tracer      interfaces.CommandTracer
}

// New constructs a Channel with a fresh bank table (NumRank x Dev.NumBank)
// and a Scheduler bound to it.
func New(cfg Config) *Channel {
	banks := make([][]*bank.Bank, cfg.NumRank)
	for r := range banks {
		row := make([]*bank.Bank, cfg.Dev.NumBank)
		for b := range row {
			row[b] = bank.New(cfg.Dev)
		}
		banks[r] = row
	}

	c := &Channel{
		id:         cfg.ID,
		addrMap:    cfg.AddrMap,
		banks:      banks,
		mal:        uint32(cfg.Ctrl.DataBusBits/8) * uint32(cfg.Dev.BurstLen),
		maxRdDepth: cfg.Ctrl.ReadQueueDepth,
		maxWrDepth: cfg.Ctrl.WriteQueueDepth,
		observer:   cfg.Observer,
		logger:     cfg.Logger,
		tracer:     cfg.Tracer,
	}
	c.sched = scheduler.New(cfg.ID, banks, c, cfg.Ctrl.CmdQueueDepth)
	return c
}

// ID reports the channel's index within its MemorySystem.
func (c *Channel) ID() int { return c.id }

// AddTx admits tx to the appropriate transaction queue, applying the
// backpressure and write-drain-entry rules.
func (c *Channel) AddTx(tx *command.Transaction) bool {
	if tx.IsRead() {
		if len(c.rdQueue)+len(c.rdRespQueue) >= c.maxRdDepth {
			return false
		}
		c.rdQueue = append(c.rdQueue, tx)
		return true
	}
	if len(c.wrQueue)+len(c.wrRespQueue) >= c.maxWrDepth {
		return false
	}
	c.wrQueue = append(c.wrQueue, tx)
	if len(c.wrQueue) == c.maxWrDepth {
		c.wrDraining = true
	}
	return true
}

// candidate is an in-flight scan result used by DispatchRead/DispatchWrite.
type candidate struct {
	idx     int
	tx      *command.Transaction
	rank    int
	bnk     int
	row     uint32
	col     uint32
	earlist command.Cycle
}

// selectCandidate scans queue for the FR-FCFS winner: the transaction
// with the minimum EarliestCycle, first-seen wins ties.
func (c *Channel) selectCandidate(queue []*command.Transaction, isRead bool) (candidate, bool) {
	best := candidate{earlist: command.CycleNever}
	found := false

	for i, tx := range queue {
		chanID, rank, bnk, row, col := c.addrMap.Map(tx.Addr)
		if int(chanID) != c.id {
			panic(fmt.Sprintf("channel %d: transaction %d decoded to channel %d", c.id, tx.ID, chanID))
		}
		if int(rank) >= len(c.banks) || int(bnk) >= len(c.banks[rank]) {
			continue
		}
		ec := c.banks[rank][bnk].EarliestCycle(c.cycle, row, isRead)
		if !found || ec < best.earlist {
			best = candidate{idx: i, tx: tx, rank: int(rank), bnk: int(bnk), row: row, col: col, earlist: ec}
			found = true
		}
	}
	return best, found
}

// dispatch attempts to admit the FR-FCFS winner of queue into the
// scheduler, classifying page hit/conflict/miss, and on success moves the
// transaction from queue to respQueue and marks its bank in-use.
func (c *Channel) dispatch(queue *[]*command.Transaction, respQueue *[]*command.Transaction, isRead bool) {
	cand, ok := c.selectCandidate(*queue, isRead)
	if !ok || cand.earlist == command.CycleNever {
		return // no candidate, or every candidate's bank is in use
	}

	b := c.banks[cand.rank][cand.bnk]
	var needAct, needPre bool
	switch {
	case b.State() == bank.Active && b.OpenRow() == cand.row:
		needAct, needPre = false, false
	case b.State() == bank.Active && b.OpenRow() != cand.row:
		needAct, needPre = true, true
	default:
		needAct, needPre = true, false
	}

	tgt := scheduler.Target{Rank: cand.rank, Bank: cand.bnk, Row: cand.row, Col: cand.col}
	if !c.sched.AddTx(cand.tx, tgt, c.mal, needAct, needPre) {
		return // scheduler full; retry next cycle
	}

	*respQueue = append(*respQueue, cand.tx)
	*queue = append((*queue)[:cand.idx], (*queue)[cand.idx+1:]...)
	b.SetInUse(true)
}

// DispatchTransaction is called once per cycle after Step: it admits at
// most one transaction into the scheduler, preferring reads unless the
// channel is write-draining.
func (c *Channel) DispatchTransaction() {
	if len(c.rdQueue) == 0 && len(c.wrQueue) == 0 {
		return
	}
	if len(c.rdQueue) > 0 && !c.wrDraining {
		c.dispatch(&c.rdQueue, &c.rdRespQueue, true)
	} else if len(c.wrQueue) > 0 {
		c.dispatch(&c.wrQueue, &c.wrRespQueue, false)
	}

	if len(c.rdQueue) == 0 && len(c.wrQueue) > 0 {
		c.wrDraining = true
	}
	if len(c.wrQueue) == 0 {
		c.wrDraining = false
	}

	if c.observer != nil {
		c.observer.ObserveQueueDepth(c.id, len(c.rdQueue)+len(c.wrQueue))
	}
}

// CommandCompleted implements interfaces.CompletionSink: it is invoked by
// the Scheduler when a READ/WRITE command's effects have been applied.
func (c *Channel) CommandCompleted(txID uint64) {
	if tx, rank, bnk := c.removeFromRespQueue(&c.rdRespQueue, txID); tx != nil {
		c.retire(tx, rank, bnk, true)
		return
	}
	if tx, rank, bnk := c.removeFromRespQueue(&c.wrRespQueue, txID); tx != nil {
		c.retire(tx, rank, bnk, false)
	}
}

func (c *Channel) removeFromRespQueue(q *[]*command.Transaction, txID uint64) (*command.Transaction, int, int) {
	for i, tx := range *q {
		if tx.ID == txID {
			_, rank, bnk, _, _ := c.addrMap.Map(tx.Addr)
			*q = append((*q)[:i], (*q)[i+1:]...)
			return tx, int(rank), int(bnk)
		}
	}
	return nil, 0, 0
}

func (c *Channel) retire(tx *command.Transaction, rank, bnk int, isRead bool) {
	c.banks[rank][bnk].SetInUse(false)
	if c.observer != nil {
		latency := uint64(c.cycle) - tx.ArrivalCycle
		c.observer.ObserveRetire(c.id, isRead, uint64(tx.Len), latency)
	}
}

// Step drives the scheduler one cycle, steps every bank, advances the
// channel's cycle, then attempts one transaction dispatch.
func (c *Channel) Step() {
	issued := c.sched.Step()
	if issued != nil && c.tracer != nil {
		c.tracer.TraceCommand(formatTraceLine(c.id, uint64(c.cycle), issued))
	}

	for _, rankBanks := range c.banks {
		for _, b := range rankBanks {
			b.Step()
		}
	}

	c.cycle++
	c.DispatchTransaction()

	if issued != nil {
		if c.observer != nil {
			c.observer.ObserveCommand(c.id, issued.Kind.String(), uint64(c.cycle), uint64(issued.Birth))
		}
		c.sched.Retire(issued)
	}
}

func formatTraceLine(chanID int, cycle uint64, cmd *command.Command) string {
	return fmt.Sprintf("CH%d %d %s %d %d %d %d %d",
		chanID, cycle, cmd.Kind.String(), cmd.TxID, cmd.Rank, cmd.Bank, cmd.Row, cmd.Col)
}

// QueueDepths reports the current (read, write) combined queue depths,
// each counting the pending and the response queue.
func (c *Channel) QueueDepths() (rd, wr int) {
	return len(c.rdQueue) + len(c.rdRespQueue), len(c.wrQueue) + len(c.wrRespQueue)
}

// Idle reports whether the channel has no pending or in-flight
// transactions, used by MemorySystem.Run to detect drain completion.
func (c *Channel) Idle() bool {
	return len(c.rdQueue) == 0 && len(c.rdRespQueue) == 0 && len(c.wrQueue) == 0 && len(c.wrRespQueue) == 0
}

// WrDraining reports the channel's current write-drain hysteresis state.
func (c *Channel) WrDraining() bool { return c.wrDraining }
