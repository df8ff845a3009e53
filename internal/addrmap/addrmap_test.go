package addrmap

import (
	"testing"

	"github.com/ossdram/dramsim/internal/config"
	"github.com/ossdram/dramsim/internal/constants"
)

func testConfigs(numChan, chanItlvBit int, mapping string) (*config.ControllerConfig, *config.DeviceConfig) {
	ctrl := &config.ControllerConfig{
		NumChan:           numChan,
		ChanInterleaveBit: chanItlvBit,
		AddrMap:           mapping,
	}
	dev := &config.DeviceConfig{
		DeviceWidthBits: 8, // 1 byte sub-device offset -> log2 == 0
		BurstLen:        8, // log2(8) = 3 column bits
	}
	return ctrl, dev
}

func TestInitSingleChannel(t *testing.T) {
	ctrl, dev := testConfigs(1, 14, "rank2,bank8,row16")
	m, err := Init(ctrl, dev)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if len(m.chanBits) != 0 {
		t.Fatalf("expected no channel bits for single channel, got %v", m.chanBits)
	}
	if len(m.colBits) == 0 {
		t.Fatalf("expected column bits to be assigned")
	}
	if len(m.bankBits) != 8 {
		t.Fatalf("expected 8 bank bits (explicit count), got %d", len(m.bankBits))
	}
}

func TestMapRoundTrip(t *testing.T) {
	ctrl, dev := testConfigs(2, 10, "rank2,bank8,row16")
	m, err := Init(ctrl, dev)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	// Place known values into the recorded bit positions, zeros elsewhere,
	// and confirm Map recovers them (the round-trip property).
	want := uint32(5)
	var addr uint64
	for i, pos := range m.bankBits {
		bit := (want >> uint(i)) & 1
		addr |= uint64(bit) << uint(pos)
	}
	_, _, gotBank, _, _ := m.Map(addr)
	if gotBank != want {
		t.Fatalf("bank round-trip: got %d want %d", gotBank, want)
	}
}

func TestTwoChannelInterleave(t *testing.T) {
	ctrl, dev := testConfigs(2, 10, "rank2,bank8,row16")
	m, err := Init(ctrl, dev)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if len(m.chanBits) != 1 {
		t.Fatalf("expected 1 channel bit for num_chan=2, got %d", len(m.chanBits))
	}

	chan0, _, _, _, _ := m.Map(0x000)
	chan1, _, _, _, _ := m.Map(0x400)
	if chan0 != 0 {
		t.Errorf("addr 0x000: expected channel 0, got %d", chan0)
	}
	if chan1 != 1 {
		t.Errorf("addr 0x400: expected channel 1, got %d", chan1)
	}
}

func TestInitBadCountFails(t *testing.T) {
	ctrl, dev := testConfigs(1, 14, "rank2,bankNaN,row16")
	if _, err := Init(ctrl, dev); err == nil {
		t.Fatalf("expected error for non-numeric count")
	}
}

// TestInitDefaultAddrMapFillsEveryDimension covers the no-explicit-count
// path of the shipped default ADDR_MAP ("rank,bank,row,col"): every
// dimension must get exactly log2(its device count) bits, not have
// "col" (parsed first, right-to-left) swallow every remaining bit up to
// 64 and starve rank/bank/row.
func TestInitDefaultAddrMapFillsEveryDimension(t *testing.T) {
	ctrl := &config.ControllerConfig{
		NumChan:           1,
		ChanInterleaveBit: 14,
		AddrMap:           constants.DefaultAddrMap,
	}
	dev := &config.DeviceConfig{
		DeviceWidthBits: 8,
		BurstLen:        8,
		NumRank:         2,
		NumBank:         8,
		NumRow:          1 << 16,
		NumCol:          1 << 10,
	}

	m, err := Init(ctrl, dev)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if len(m.rankBits) != 1 {
		t.Fatalf("expected 1 rank bit (log2(2)), got %d", len(m.rankBits))
	}
	if len(m.bankBits) != 3 {
		t.Fatalf("expected 3 bank bits (log2(8)), got %d", len(m.bankBits))
	}
	if len(m.rowBits) != 16 {
		t.Fatalf("expected 16 row bits (log2(65536)), got %d", len(m.rowBits))
	}
	if len(m.colBits) != 10 {
		t.Fatalf("expected 10 column bits (log2(1024)), got %d", len(m.colBits))
	}
}

func TestDeterministicAcrossOtherBits(t *testing.T) {
	ctrl, dev := testConfigs(1, 14, "rank2,bank8,row16")
	m, err := Init(ctrl, dev)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	// Two addresses differing only in bits outside bankBits must decode
	// to the same bank.
	a := uint64(1) << 40
	b := uint64(1)<<40 | 1<<41
	_, _, bankA, _, _ := m.Map(a)
	_, _, bankB, _, _ := m.Map(b)
	if bankA != bankB {
		t.Fatalf("bank decode should be unaffected by unrelated bits: %d != %d", bankA, bankB)
	}
}
