package scheduler

import (
	"testing"

	"github.com/ossdram/dramsim/internal/bank"
	"github.com/ossdram/dramsim/internal/command"
	"github.com/ossdram/dramsim/internal/config"
)

type fakeSink struct {
	retired []uint64
}

func (f *fakeSink) CommandCompleted(txID uint64) {
	f.retired = append(f.retired, txID)
}

func testDevice() *config.DeviceConfig {
	return &config.DeviceConfig{
		BurstLen: 8, DataRate: 2, RL: 12, WL: 10, AL: 0,
		TCCD: 4, TRTP: 6, TRCD: 12, TRPab: 12, TRPpb: 12, TRAS: 28,
		TWR: 10, TWTR: 6, TRRD: 5, TDQSCK: 1, TDQSS: 1,
	}
}

func oneBankTable(dev *config.DeviceConfig) [][]*bank.Bank {
	return [][]*bank.Bank{{bank.New(dev)}}
}

func TestAddTxRejectsUnalignedLength(t *testing.T) {
	dev := testDevice()
	s := New(0, oneBankTable(dev), &fakeSink{}, 64)
	tx := &command.Transaction{ID: 1, Len: 7}
	if s.AddTx(tx, Target{}, 8, true, false) {
		t.Fatalf("expected rejection of non-MAL-aligned length")
	}
}

func TestAddTxPageMissEnqueuesActAndRW(t *testing.T) {
	dev := testDevice()
	s := New(0, oneBankTable(dev), &fakeSink{}, 64)
	tx := &command.Transaction{ID: 1, Len: 8, Dir: command.Read, Priority: 1}
	if !s.AddTx(tx, Target{Rank: 0, Bank: 0, Row: 3}, 8, true, false) {
		t.Fatalf("expected AddTx to succeed")
	}
	if s.QueueLen() != 2 {
		t.Fatalf("expected 2 queued commands (ACT, READ), got %d", s.QueueLen())
	}
}

func TestAddTxQueueFullRejects(t *testing.T) {
	dev := testDevice()
	s := New(0, oneBankTable(dev), &fakeSink{}, 2)
	tx := &command.Transaction{ID: 1, Len: 8, Dir: command.Read, Priority: 1}
	if s.AddTx(tx, Target{Rank: 0, Bank: 0, Row: 3}, 8, true, true) {
		t.Fatalf("expected rejection: needAct+needPre+rw = 3 slots *2 = 6 > maxDepth 2")
	}
	if s.QueueLen() != 0 {
		t.Fatalf("expected no state mutation on queue-full rejection, got %d", s.QueueLen())
	}
}

func TestScheduleIssuesActivateFromIdle(t *testing.T) {
	dev := testDevice()
	s := New(0, oneBankTable(dev), &fakeSink{}, 64)
	tx := &command.Transaction{ID: 1, Len: 8, Dir: command.Read, Priority: 1}
	s.AddTx(tx, Target{Rank: 0, Bank: 0, Row: 3}, 8, true, false)

	c, ok := s.Schedule()
	if !ok {
		t.Fatalf("expected ACTIVATE to be immediately issuable from IDLE")
	}
	if c.Kind != command.ActivateCmd {
		t.Fatalf("expected ACTIVATE first, got %s", c.Kind)
	}
}

func TestPriorityOrderingWins(t *testing.T) {
	dev := testDevice()
	s := New(0, oneBankTable(dev), &fakeSink{}, 64)

	low := &command.Transaction{ID: 1, Len: 8, Dir: command.Read, Priority: 1}
	high := &command.Transaction{ID: 2, Len: 8, Dir: command.Read, Priority: 5}
	s.AddTx(low, Target{Rank: 0, Bank: 0, Row: 1}, 8, true, false)
	s.AddTx(high, Target{Rank: 0, Bank: 0, Row: 1}, 8, true, false)

	c, ok := s.Schedule()
	if !ok {
		t.Fatalf("expected a schedulable command")
	}
	if c.Priority != 5 {
		t.Fatalf("expected priority-5 command to be selected first, got priority %d", c.Priority)
	}
	if c.Kind != command.ActivateCmd {
		t.Fatalf("expected the priority-5 transaction's ACTIVATE to be selected, got %s", c.Kind)
	}
}

func TestExecuteNotifiesSinkOnReadWrite(t *testing.T) {
	dev := testDevice()
	sink := &fakeSink{}
	s := New(0, oneBankTable(dev), sink, 64)
	cmd := &command.Command{Kind: command.ReadCmd, Rank: 0, Bank: 0, Row: 0, TxID: 42}
	s.Execute(cmd)
	if len(sink.retired) != 1 || sink.retired[0] != 42 {
		t.Fatalf("expected sink notified with txID 42, got %v", sink.retired)
	}
}
