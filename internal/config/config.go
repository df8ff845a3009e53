// Package config holds the typed controller and device configuration
// records the rest of the simulator is built from, and the KEY=VALUE
// parser that populates them from *.ctrl/*.spec/*.idd/*.io files.
//
// This replaces the source's untyped key/value union registry (see the
// design note on dynamic config registries) with named fields; the
// ns-vs-cycles resolution rule the source used for timing values is kept.
package config

// ControllerConfig holds the parameters recognised in a *.ctrl file.
type ControllerConfig struct {
	CtrlFreqMHz       int
	NumChan           int
	ChanInterleaveBit int
	DataBusBits       int
	ReadQueueDepth    int
	WriteQueueDepth   int
	CmdQueueDepth     int
	AddrMap           string
}

// DeviceConfig holds the parameters recognised in a *.spec file, plus the
// IDD/IO auxiliary values it names. Timing fields are resolved cycle
// counts (see resolveTiming), not raw ns/cycle pairs.
type DeviceConfig struct {
	MemType string

	NumRank int
	NumBank int
	NumRow  int
	NumCol  int

	DeviceWidthBits int
	BurstLen        int
	DataRate        int

	TCKNanos float64

	TREFI  int
	RL     int
	WL     int
	AL     int
	TCCD   int
	TRTP   int
	TRCD   int
	TRPpb  int
	TRPab  int
	TRAS   int
	TWR    int
	TWTR   int
	TRRD   int
	TFAW   int
	TDQSCK int
	TDQSS  int
	TRFCab int
	TRFCpb int
	TCMD   int

	Vdd float64

	IDD0, IDD1, IDD2P, IDD2N, IDD3P, IDD3N, IDD4R, IDD4W, IDD5, IDD6, IDD7 float64

	IOCapacitance float64
	IOVoltage     float64
}

// DeviceWidthBytes is the device data width in bytes, used by AddressMap
// to size the sub-device byte offset.
func (d *DeviceConfig) DeviceWidthBytes() int {
	return d.DeviceWidthBits / 8
}

// TRC is the derived bank cycle time: the minimum interval between two
// ACTIVATEs to the same bank.
func (d *DeviceConfig) TRC() int {
	return d.TRAS + d.TRPab
}

// RdToPre is the derived READ-to-PRECHARGE interval.
func (d *DeviceConfig) RdToPre() int {
	ccd := d.TCCD
	rtp := d.TRTP
	m := ccd
	if rtp > m {
		m = rtp
	}
	return d.AL + d.BL()/d.DataRate + m - ccd
}

// WrToPre is the derived WRITE-to-PRECHARGE interval.
func (d *DeviceConfig) WrToPre() int {
	return d.WL + d.BL()/d.DataRate + d.TWR + d.TDQSS
}

// RdToWr is the derived READ-to-WRITE interval.
func (d *DeviceConfig) RdToWr() int {
	lhs := d.RL + d.BL()/d.DataRate + 1 + d.TDQSCK
	rhs := d.WL
	m := lhs
	if rhs > m {
		m = rhs
	}
	return m - d.WL
}

// WrToRd is the derived WRITE-to-READ interval. sameRank selects the
// tighter same-rank timing; cross-rank uses the RL-based formula.
func (d *DeviceConfig) WrToRd(sameRank bool) int {
	if sameRank {
		return d.WL + d.BL()/d.DataRate + d.TWTR + d.TDQSS
	}
	lhs := d.WL + d.BL()/d.DataRate + 1
	rhs := d.RL
	m := lhs
	if rhs > m {
		m = rhs
	}
	return m - d.RL + d.TDQSS
}

// BL is the burst length, exposed as a method so the derived-timing
// formulas above read identically to the spec's algebra.
func (d *DeviceConfig) BL() int {
	return d.BurstLen
}

// DeriveNumRank computes a device's per-channel rank count from the
// channel's total capacity and the device's geometry, mirroring
// DevCfg::derive's num_rank = size / rank_size (device_config.cpp), where
// rank_size = NumRow*NumCol*NumBank*chan_width/8. Ranks must tile the
// channel capacity exactly in the source; here we floor instead of
// erroring, so an odd capacity still yields a usable (if truncated) rank
// count rather than refusing to start.
func DeriveNumRank(ctrl *ControllerConfig, dev *DeviceConfig, channelCapacityBytes int64) int {
	rankSizeBytes := int64(dev.NumRow) * int64(dev.NumCol) * int64(dev.NumBank) * int64(ctrl.DataBusBits) / 8
	if rankSizeBytes <= 0 {
		return 1
	}
	n := channelCapacityBytes / rankSizeBytes
	if n < 1 {
		n = 1
	}
	return int(n)
}
