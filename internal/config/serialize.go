package config

import (
	"fmt"
	"strconv"
	"strings"
)

// SerializeController renders cfg as a KEY=VALUE document that ParseController
// re-parses into a semantically equal ControllerConfig.
func SerializeController(cfg *ControllerConfig) string {
	var b strings.Builder
	writeKV(&b, "CTRL_FREQ", strconv.Itoa(cfg.CtrlFreqMHz))
	writeKV(&b, "NUM_CHAN", strconv.Itoa(cfg.NumChan))
	writeKV(&b, "CHAN_INTERLEAVE_BIT", strconv.Itoa(cfg.ChanInterleaveBit))
	writeKV(&b, "DATA_BUS_BIT", strconv.Itoa(cfg.DataBusBits))
	writeKV(&b, "READ_TRANS_QUEUE", strconv.Itoa(cfg.ReadQueueDepth))
	writeKV(&b, "WRITE_TRANS_QUEUE", strconv.Itoa(cfg.WriteQueueDepth))
	writeKV(&b, "CMD_QUEUE", strconv.Itoa(cfg.CmdQueueDepth))
	writeKV(&b, "ADDR_MAP", cfg.AddrMap)
	return b.String()
}

// SerializeDevice renders cfg as a KEY=VALUE document; timing fields are
// written as bare cycle counts since resolveTiming treats a bare integer
// as a cycle count and ceil(ns/tCK) is already folded in by ParseDevice.
func SerializeDevice(cfg *DeviceConfig) string {
	var b strings.Builder
	writeKV(&b, "MEM_TYPE", cfg.MemType)
	writeKV(&b, "NUM_BANK", strconv.Itoa(cfg.NumBank))
	writeKV(&b, "NUM_ROW", strconv.Itoa(cfg.NumRow))
	writeKV(&b, "NUM_COL", strconv.Itoa(cfg.NumCol))
	writeKV(&b, "DEVICE_WIDTH", strconv.Itoa(cfg.DeviceWidthBits))
	writeKV(&b, "BL", strconv.Itoa(cfg.BurstLen))
	writeKV(&b, "DATA_RATE", strconv.Itoa(cfg.DataRate))
	writeKV(&b, "tCK", strconv.FormatFloat(cfg.TCKNanos, 'g', -1, 64))

	timings := map[string]int{
		"tREFI": cfg.TREFI, "RL": cfg.RL, "WL": cfg.WL, "AL": cfg.AL,
		"tCCD": cfg.TCCD, "tRTP": cfg.TRTP, "tRCD": cfg.TRCD,
		"tRPpb": cfg.TRPpb, "tRPab": cfg.TRPab, "tRAS": cfg.TRAS,
		"tWR": cfg.TWR, "tWTR": cfg.TWTR, "tRRD": cfg.TRRD,
		"tFAW": cfg.TFAW, "tDQSCK": cfg.TDQSCK, "tDQSS": cfg.TDQSS,
		"tRFCab": cfg.TRFCab, "tRFCpb": cfg.TRFCpb, "tCMD": cfg.TCMD,
	}
	for _, key := range timingKeys {
		if v := timings[key]; v != 0 {
			writeKV(&b, strings.ToUpper(key), strconv.Itoa(v))
		}
	}
	return b.String()
}

func writeKV(b *strings.Builder, key, val string) {
	if val == "" {
		return
	}
	fmt.Fprintf(b, "%s=%s\n", key, val)
}
