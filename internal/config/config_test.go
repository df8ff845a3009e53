package config

import (
	"strings"
	"testing"
)

func TestParseControllerDefaults(t *testing.T) {
	cfg, err := ParseController(strings.NewReader("NUM_CHAN=2\nADDR_MAP=rank,bank8,row16\n"))
	if err != nil {
		t.Fatalf("ParseController: %v", err)
	}
	if cfg.NumChan != 2 {
		t.Errorf("NumChan = %d, want 2", cfg.NumChan)
	}
	if cfg.CtrlFreqMHz != 800 {
		t.Errorf("expected default CtrlFreqMHz=800, got %d", cfg.CtrlFreqMHz)
	}
	if cfg.AddrMap != "rank,bank8,row16" {
		t.Errorf("AddrMap = %q", cfg.AddrMap)
	}
}

func TestParseControllerCaseInsensitiveAndComments(t *testing.T) {
	doc := "# this is a comment\nnum_chan = 4   # inline comment\n"
	cfg, err := ParseController(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseController: %v", err)
	}
	if cfg.NumChan != 4 {
		t.Errorf("NumChan = %d, want 4", cfg.NumChan)
	}
}

func TestParseControllerRejectsBadInt(t *testing.T) {
	_, err := ParseController(strings.NewReader("NUM_CHAN=banana\n"))
	if err == nil {
		t.Fatalf("expected error for non-numeric NUM_CHAN")
	}
}

func TestResolveTimingNsFloor(t *testing.T) {
	got, err := resolveTiming("tRCD", "15ns,10", 1.25)
	if err != nil {
		t.Fatalf("resolveTiming: %v", err)
	}
	if got != 12 {
		t.Fatalf("resolveTiming(15ns,10 @ tCK=1.25) = %d, want 12", got)
	}
}

func TestResolveTimingBareCycles(t *testing.T) {
	got, err := resolveTiming("tCCD", "4", 1.25)
	if err != nil {
		t.Fatalf("resolveTiming: %v", err)
	}
	if got != 4 {
		t.Fatalf("resolveTiming(4) = %d, want 4", got)
	}
}

func TestResolveTimingBareNs(t *testing.T) {
	got, err := resolveTiming("tRAS", "35ns", 1.25)
	if err != nil {
		t.Fatalf("resolveTiming: %v", err)
	}
	if got != 28 {
		t.Fatalf("resolveTiming(35ns @ tCK=1.25) = %d, want 28", got)
	}
}

func TestControllerRoundTrip(t *testing.T) {
	orig, err := ParseController(strings.NewReader("NUM_CHAN=2\nCHAN_INTERLEAVE_BIT=10\nADDR_MAP=rank,bank8,row16\n"))
	if err != nil {
		t.Fatalf("ParseController: %v", err)
	}
	doc := SerializeController(orig)
	reparsed, err := ParseController(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseController (round trip): %v", err)
	}
	if *reparsed != *orig {
		t.Fatalf("round trip mismatch: %+v != %+v", reparsed, orig)
	}
}

func TestDeviceRoundTrip(t *testing.T) {
	orig, err := ParseDevice(strings.NewReader("MEM_TYPE=DDR4\nNUM_BANK=16\nBL=8\ntCK=1.25\ntRCD=15ns,10\n"))
	if err != nil {
		t.Fatalf("ParseDevice: %v", err)
	}
	doc := SerializeDevice(orig)
	reparsed, err := ParseDevice(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseDevice (round trip): %v", err)
	}
	if reparsed.TRCD != orig.TRCD || reparsed.NumBank != orig.NumBank || reparsed.MemType != orig.MemType {
		t.Fatalf("round trip mismatch: %+v != %+v", reparsed, orig)
	}
}
