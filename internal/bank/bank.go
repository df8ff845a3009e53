// Package bank implements the per-bank JEDEC timing state machine: bank
// state transitions, the countdown-driven transient states, and the
// earliest-allowed-cycle bookkeeping the scheduler consults before
// issuing a command.
package bank

import (
	"github.com/ossdram/dramsim/internal/command"
	"github.com/ossdram/dramsim/internal/config"
)

// State is a bank's JEDEC lifecycle state.
type State int

const (
	Idle State = iota
	Activating
	Active
	Precharging
	Refreshing
	PowerDown
	DeepPowerDown
	SelfRefreshing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Activating:
		return "ACTIVATING"
	case Active:
		return "ACTIVE"
	case Precharging:
		return "PRECHARGING"
	case Refreshing:
		return "REFRESHING"
	case PowerDown:
		return "POWER_DOWN"
	case DeepPowerDown:
		return "DEEP_POWER_DOWN"
	case SelfRefreshing:
		return "SELF_REFRESHING"
	default:
		return "UNKNOWN"
	}
}

// Bank is one DRAM bank's state machine. It has no notion of which
// channel/rank/bank index it is; the owning Scheduler supplies that
// context when it decides whether a command targets "this" bank/rank.
type Bank struct {
	dev *config.DeviceConfig

	state    State
	openRow  uint32
	inUse    bool
	countdown int

	nextRd  command.Cycle
	nextWr  command.Cycle
	nextAct command.Cycle
	nextPre command.Cycle
	nextPd  command.Cycle
	nextPu  command.Cycle
}

// New returns a Bank in the IDLE state, ready to accept an ACTIVATE.
func New(dev *config.DeviceConfig) *Bank {
	return &Bank{dev: dev, state: Idle}
}

// State reports the bank's current lifecycle state.
func (b *Bank) State() State { return b.state }

// OpenRow reports the currently open row; only meaningful in ACTIVE.
func (b *Bank) OpenRow() uint32 { return b.openRow }

// InUse reports whether the bank currently holds a scheduled-but-unfinished
// transaction.
func (b *Bank) InUse() bool { return b.inUse }

// SetInUse marks/unmarks the bank as holding a scheduled transaction; the
// owning channel calls this when it dispatches a transaction to the bank
// and when that transaction retires.
func (b *Bank) SetInUse(v bool) { b.inUse = v }

// Step advances the bank by one cycle: transient states count down to
// their designated steady state.
func (b *Bank) Step() {
	if b.countdown <= 0 {
		return
	}
	b.countdown--
	if b.countdown > 0 {
		return
	}
	switch b.state {
	case Activating:
		b.state = Active
	case Precharging:
		b.state = Idle
	case Refreshing:
		b.state = Idle
	}
}

func max(a, b command.Cycle) command.Cycle {
	if a > b {
		return a
	}
	return b
}

// Activate applies an ACTIVATE targeting row at the given cycle.
// thisBank selects whether the command targets this exact bank; thisRank
// (without thisBank) models the tRRD same-rank-different-bank cost.
func (b *Bank) Activate(cycle command.Cycle, row uint32, thisBank, thisRank bool) {
	if thisBank {
		if b.state != Idle {
			return
		}
		b.state = Activating
		b.openRow = row
		b.countdown = b.dev.TRCD
		b.nextRd = max(b.nextRd, cycle+command.Cycle(b.dev.TRCD-b.dev.AL))
		b.nextWr = max(b.nextWr, cycle+command.Cycle(b.dev.TRCD-b.dev.AL))
		b.nextAct = max(b.nextAct, cycle+command.Cycle(b.dev.TRC()))
		b.nextPre = max(b.nextPre, cycle+command.Cycle(b.dev.TRAS))
		return
	}
	if thisRank {
		b.nextAct = max(b.nextAct, cycle+command.Cycle(b.dev.TRRD))
	}
}

// Precharge applies a PRECHARGE at the given cycle.
func (b *Bank) Precharge(cycle command.Cycle, thisBank, thisRank bool) {
	if !thisBank {
		return
	}
	if b.state != Active {
		return
	}
	b.state = Precharging
	b.countdown = b.dev.TRPab
	b.nextAct = max(b.nextAct, cycle+command.Cycle(b.dev.TRPab))
	b.nextRd = max(b.nextRd, b.nextAct+command.Cycle(b.dev.TRCD))
	b.nextWr = max(b.nextWr, b.nextAct+command.Cycle(b.dev.TRCD))
	b.nextPre = max(b.nextPre, b.nextAct+command.Cycle(b.dev.TRAS))
	_ = thisRank
}

// Read applies a READ at the given cycle. sameRank selects the tighter
// same-rank tCCD spacing for the next read. Every bank on the targeted
// rank shares the data bus, so nextRd/nextWr update regardless of
// thisBank; only the page-state-derived nextPre/nextAct are specific to
// the exact bank targeted.
func (b *Bank) Read(cycle command.Cycle, thisBank, sameRank bool) {
	if sameRank {
		b.nextRd = max(b.nextRd, cycle+command.Cycle(b.dev.TCCD))
	} else {
		b.nextRd = max(b.nextRd, cycle+command.Cycle(b.dev.BL()/b.dev.DataRate+1))
	}
	b.nextWr = max(b.nextWr, cycle+command.Cycle(b.dev.RdToWr()))

	if !thisBank || b.state != Active {
		return
	}
	b.nextPre = max(b.nextPre, cycle+command.Cycle(b.dev.RdToPre()))
	b.nextAct = max(b.nextAct, b.nextPre+command.Cycle(b.dev.TRPab))
}

// Write applies a WRITE at the given cycle, symmetric with Read: the
// same-bank spacing that Read derives for nextRd, Write derives for
// nextWr, and the cross formulas swap accordingly (WrToRd, WrToPre).
func (b *Bank) Write(cycle command.Cycle, thisBank, sameRank bool) {
	if sameRank {
		b.nextWr = max(b.nextWr, cycle+command.Cycle(b.dev.TCCD))
	} else {
		b.nextWr = max(b.nextWr, cycle+command.Cycle(b.dev.BL()/b.dev.DataRate+1))
	}
	b.nextRd = max(b.nextRd, cycle+command.Cycle(b.dev.WrToRd(sameRank)))

	if !thisBank || b.state != Active {
		return
	}
	b.nextPre = max(b.nextPre, cycle+command.Cycle(b.dev.WrToPre()))
	b.nextAct = max(b.nextAct, b.nextPre+command.Cycle(b.dev.TRPab))
}

// Operate dispatches cmd.Kind to the appropriate state-update method.
func (b *Bank) Operate(cycle command.Cycle, cmd *command.Command, thisBank, thisRank bool) {
	switch cmd.Kind {
	case command.ActivateCmd:
		b.Activate(cycle, cmd.Row, thisBank, thisRank)
	case command.PrechargeCmd:
		b.Precharge(cycle, thisBank, thisRank)
	case command.ReadCmd:
		b.Read(cycle, thisBank, thisRank)
	case command.WriteCmd:
		b.Write(cycle, thisBank, thisRank)
	}
}

// Next returns the earliest cycle at which cmd is legal given the bank's
// current state, or command.CycleNever if the kind is not issuable from
// this state at all.
func (b *Bank) Next(cmd *command.Command) command.Cycle {
	switch cmd.Kind {
	case command.ReadCmd:
		if b.state == Active && b.openRow == cmd.Row {
			return b.nextRd
		}
		return command.CycleNever
	case command.WriteCmd:
		if b.state == Active && b.openRow == cmd.Row {
			return b.nextWr
		}
		return command.CycleNever
	case command.ActivateCmd:
		if b.state == Idle {
			return b.nextAct
		}
		return command.CycleNever
	case command.PrechargeCmd:
		if b.state == Active {
			return b.nextPre
		}
		return command.CycleNever
	default:
		return command.CycleNever
	}
}

// EarliestCycle is the earliest cycle at which a transaction targeting
// row could be issued, accounting for page hit/conflict/miss and the
// in-use guard.
func (b *Bank) EarliestCycle(cycle command.Cycle, row uint32, isRead bool) command.Cycle {
	if b.inUse {
		return command.CycleNever
	}
	switch {
	case b.state == Active && b.openRow == row:
		if isRead {
			return b.nextRd
		}
		return b.nextWr
	case b.state == Active && b.openRow != row:
		return b.nextAct + command.Cycle(b.dev.TRCD)
	case b.state == Idle:
		return b.nextAct + command.Cycle(b.dev.TRCD)
	default:
		// Power modes (PD/DEEP_PD/SELF_REFRESHING) are stubbed per the
		// design note; treat as immediately issuable rather than modelling
		// the exit latency.
		return cycle
	}
}
