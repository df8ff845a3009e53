package bank

import (
	"testing"

	"github.com/ossdram/dramsim/internal/command"
	"github.com/ossdram/dramsim/internal/config"
)

func testDevice() *config.DeviceConfig {
	return &config.DeviceConfig{
		BurstLen: 8,
		DataRate: 2,
		RL:       12,
		WL:       10,
		AL:       0,
		TCCD:     4,
		TRTP:     6,
		TRCD:     12,
		TRPab:    12,
		TRPpb:    12,
		TRAS:     28,
		TWR:      10,
		TWTR:     6,
		TRRD:     5,
		TDQSCK:   1,
		TDQSS:    1,
	}
}

func TestBankStartsIdle(t *testing.T) {
	b := New(testDevice())
	if b.State() != Idle {
		t.Fatalf("expected IDLE at construction, got %s", b.State())
	}
}

func TestActivateTransitionsToActivating(t *testing.T) {
	b := New(testDevice())
	b.Activate(0, 5, true, true)
	if b.State() != Activating {
		t.Fatalf("expected ACTIVATING after Activate, got %s", b.State())
	}
	if b.OpenRow() != 5 {
		t.Fatalf("expected open row 5, got %d", b.OpenRow())
	}
}

func TestStepAdvancesActivatingToActive(t *testing.T) {
	dev := testDevice()
	b := New(dev)
	b.Activate(0, 1, true, true)
	for i := 0; i < dev.TRCD; i++ {
		b.Step()
	}
	if b.State() != Active {
		t.Fatalf("expected ACTIVE after tRCD cycles, got %s", b.State())
	}
}

func TestReadHitAdvancesToActiveSameRow(t *testing.T) {
	dev := testDevice()
	b := New(dev)
	b.Activate(0, 1, true, true)
	for i := 0; i < dev.TRCD; i++ {
		b.Step()
	}
	cmd := &command.Command{Kind: command.ReadCmd, Row: 1}
	if b.Next(cmd) == command.CycleNever {
		t.Fatalf("expected READ to same open row to be issuable")
	}
}

func TestReadMissOnDifferentRow(t *testing.T) {
	dev := testDevice()
	b := New(dev)
	b.Activate(0, 1, true, true)
	for i := 0; i < dev.TRCD; i++ {
		b.Step()
	}
	cmd := &command.Command{Kind: command.ReadCmd, Row: 2}
	if b.Next(cmd) != command.CycleNever {
		t.Fatalf("expected READ to a different row than open to be illegal")
	}
}

func TestEarliestCycleInUseIsNever(t *testing.T) {
	b := New(testDevice())
	b.SetInUse(true)
	if b.EarliestCycle(0, 0, true) != command.CycleNever {
		t.Fatalf("expected in-use bank to report CycleNever")
	}
}

func TestEarliestCyclePageMiss(t *testing.T) {
	dev := testDevice()
	b := New(dev)
	got := b.EarliestCycle(0, 3, true)
	want := b.Next(&command.Command{Kind: command.ActivateCmd}) + command.Cycle(dev.TRCD)
	if got != want {
		t.Fatalf("page-miss earliest cycle = %d, want %d", got, want)
	}
}

func TestPrechargeRequiresActive(t *testing.T) {
	dev := testDevice()
	b := New(dev)
	b.Precharge(0, true, true) // IDLE -> no-op contract broken is caller's responsibility
	if b.State() == Precharging {
		t.Fatalf("precharge from IDLE should not be issued by a correct caller, but state changed unexpectedly")
	}
}
