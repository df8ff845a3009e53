// Package scheduler expands admitted transactions into bank-level
// commands, holds the priority-ordered command queue, and issues at
// most one command per cycle (FR-FCFS at the command level; the
// transaction-level FR-FCFS selection lives in internal/channel).
package scheduler

import (
	"github.com/ossdram/dramsim/internal/bank"
	"github.com/ossdram/dramsim/internal/command"
	"github.com/ossdram/dramsim/internal/constants"
	"github.com/ossdram/dramsim/internal/interfaces"
)

// Target describes the (rank, bank) a transaction is addressed to, plus
// the decoded row/col the scheduler stamps onto generated commands.
type Target struct {
	Rank int
	Bank int
	Row  uint32
	Col  uint32
}

// Scheduler holds one channel's command queue. It borrows the channel's
// bank table and completion sink rather than owning them, per the design
// note on breaking the Scheduler/Channel reference cycle: Channel owns
// Scheduler and the bank table; Scheduler only ever sees a borrowed
// handle to both.
type Scheduler struct {
	channel int
	banks   [][]*bank.Bank // banks[rank][bank]
	sink    interfaces.CompletionSink
	ids     command.IDGenerator

	maxDepth int
	queue    []*command.Command
	cycle    command.Cycle
}

// New returns a Scheduler bound to the given channel index and bank
// table. banks is a borrowed reference: the Channel retains ownership.
func New(channelID int, banks [][]*bank.Bank, sink interfaces.CompletionSink, maxDepth int) *Scheduler {
	return &Scheduler{
		channel:  channelID,
		banks:    banks,
		sink:     sink,
		maxDepth: maxDepth,
	}
}

// Cycle reports the scheduler's current cycle.
func (s *Scheduler) Cycle() command.Cycle { return s.cycle }

// QueueLen reports the current occupied command-queue slots.
func (s *Scheduler) QueueLen() int { return len(s.queue) }

// malAligned reports whether length is exactly one minimum access length,
// the only transaction size the scheduler supports. The start address is
// not checked.
func malAligned(length uint32, mal uint32) bool {
	return length == mal
}

// AddTx admits tx, already resolved to Target by the channel's
// AddressMap lookup, expanding it into 1-3 commands (PRE?, ACT?, R/W).
// mal is the minimum access length in bytes (chanWidth*BL/8); needAct
// and needPre are the channel dispatcher's page-hit/conflict/miss
// classification.
func (s *Scheduler) AddTx(tx *command.Transaction, tgt Target, mal uint32, needAct, needPre bool) bool {
	if !malAligned(tx.Len, mal) {
		return false
	}

	slots := 1
	if needAct {
		slots++
	}
	if needPre {
		slots++
	}
	slots *= constants.CmdQueueReservationFactor // headroom for a follow-on ACT; see design notes

	if len(s.queue)+slots > s.maxDepth {
		return false
	}

	kind := command.ReadCmd
	if !tx.IsRead() {
		kind = command.WriteCmd
	}

	if needPre {
		s.enqueue(command.PrechargeCmd, tgt, tx.Priority, tx.ID)
	}
	if needAct {
		s.enqueue(command.ActivateCmd, tgt, tx.Priority, tx.ID)
	}
	s.enqueue(kind, tgt, tx.Priority, tx.ID)

	return true
}

func (s *Scheduler) enqueue(kind command.Kind, tgt Target, priority uint16, txID uint64) {
	c := command.Get()
	c.ID = s.ids.Next()
	c.Birth = s.cycle
	c.Kind = kind
	c.Channel = s.channel
	c.Rank = tgt.Rank
	c.Bank = tgt.Bank
	c.Row = tgt.Row
	c.Col = tgt.Col
	c.Priority = priority
	c.TxID = txID
	s.insert(c)
}

// insert keeps the queue ordered by command.Less without a full re-sort
// every cycle: binary-search the insertion point, then splice.
func (s *Scheduler) insert(c *command.Command) {
	lo, hi := 0, len(s.queue)
	for lo < hi {
		mid := (lo + hi) / 2
		if command.Less(s.queue[mid], c) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	s.queue = append(s.queue, nil)
	copy(s.queue[lo+1:], s.queue[lo:])
	s.queue[lo] = c
}

// Schedule returns the first queued command whose bank-level earliest
// cycle has arrived, in priority/age order, or ok=false if none is
// issuable this cycle.
func (s *Scheduler) Schedule() (*command.Command, bool) {
	for _, c := range s.queue {
		b := s.banks[c.Rank][c.Bank]
		if next := b.Next(c); next != command.CycleNever && next <= s.cycle {
			return c, true
		}
	}
	return nil, false
}

// Execute applies cmd's effects to every bank on the channel, with the
// this-bank/this-rank flags Bank.Operate expects, and notifies the
// completion sink for data-bearing commands.
func (s *Scheduler) Execute(cmd *command.Command) {
	for r, rankBanks := range s.banks {
		for bIdx, b := range rankBanks {
			thisRank := r == cmd.Rank
			thisBank := thisRank && bIdx == cmd.Bank
			b.Operate(s.cycle, cmd, thisBank, thisRank)
		}
	}
	if cmd.IsReadWrite() && s.sink != nil {
		s.sink.CommandCompleted(cmd.TxID)
	}
}

// remove deletes the command at index i from the queue, preserving order.
func (s *Scheduler) remove(i int) *command.Command {
	c := s.queue[i]
	copy(s.queue[i:], s.queue[i+1:])
	s.queue[len(s.queue)-1] = nil
	s.queue = s.queue[:len(s.queue)-1]
	return c
}

// Step attempts Schedule, and on success executes and dequeues the
// command, then advances the scheduler's cycle. It returns the issued
// command (nil if none) so the caller can emit a trace line; the caller
// must call Retire once it is done reading the command, returning it to
// the pool.
func (s *Scheduler) Step() *command.Command {
	var issued *command.Command
	if c, ok := s.Schedule(); ok {
		s.Execute(c)
		for i, qc := range s.queue {
			if qc == c {
				s.remove(i)
				break
			}
		}
		issued = c
	}
	s.cycle++
	return issued
}

// Retire returns a command previously returned by Step to the pool.
// Callers must not read cmd after calling Retire.
func (s *Scheduler) Retire(cmd *command.Command) {
	if cmd != nil {
		command.Put(cmd)
	}
}
