package config

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ossdram/dramsim/internal/constants"
)

// rawParams is the intermediate line-oriented KEY=VALUE view of a
// *.ctrl/*.spec/*.idd/*.io file, before being resolved into a typed
// ControllerConfig/DeviceConfig. Keys are upper-cased on insertion so
// lookups are case-insensitive.
type rawParams map[string]string

// parseKV reads a line-oriented KEY=VALUE document: '#' starts a comment,
// blank lines are ignored, keys are case-insensitive, surrounding
// whitespace is stripped from both key and value.
func parseKV(r io.Reader) (rawParams, error) {
	out := make(rawParams)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if idx := strings.IndexByte(text, '#'); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		eq := strings.IndexByte(text, '=')
		if eq < 0 {
			return nil, fmt.Errorf("config: line %d: missing '='", line)
		}
		key := strings.ToUpper(strings.TrimSpace(text[:eq]))
		val := strings.TrimSpace(text[eq+1:])
		out[key] = val
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p rawParams) str(key, def string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

func (p rawParams) int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %q is not an integer", key, v)
	}
	return n, nil
}

func (p rawParams) float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %q is not a number", key, v)
	}
	return f, nil
}

func (p rawParams) bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch strings.ToLower(v) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("config: %s: %q is not a boolean", key, v)
	}
}

// resolveTiming parses a timing field accepting "<ns>ns", "<cycles>", or
// "<ns>ns,<cycles>", resolving to max(cycles, ceil(ns/tCK)) per §6.3.
func resolveTiming(key, raw string, tCK float64) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	var nsPart, cyclesPart string
	if idx := strings.IndexByte(raw, ','); idx >= 0 {
		nsPart, cyclesPart = raw[:idx], raw[idx+1:]
	} else if strings.HasSuffix(strings.ToLower(raw), "ns") {
		nsPart = raw
	} else {
		cyclesPart = raw
	}

	best := 0
	if nsPart != "" {
		nsPart = strings.TrimSpace(nsPart)
		nsPart = strings.TrimSuffix(strings.ToLower(nsPart), "ns")
		ns, err := strconv.ParseFloat(strings.TrimSpace(nsPart), 64)
		if err != nil {
			return 0, fmt.Errorf("config: %s: bad ns value %q", key, raw)
		}
		cycles := int(math.Ceil(ns / tCK))
		if cycles > best {
			best = cycles
		}
	}
	if cyclesPart != "" {
		cyclesPart = strings.TrimSpace(cyclesPart)
		n, err := strconv.Atoi(cyclesPart)
		if err != nil {
			return 0, fmt.Errorf("config: %s: bad cycle value %q", key, raw)
		}
		if n > best {
			best = n
		}
	}
	return best, nil
}

// ParseController builds a ControllerConfig from a *.ctrl document.
func ParseController(r io.Reader) (*ControllerConfig, error) {
	p, err := parseKV(r)
	if err != nil {
		return nil, err
	}
	cfg := &ControllerConfig{}
	var ierr error
	if cfg.CtrlFreqMHz, ierr = p.int("CTRL_FREQ", constants.DefaultCtrlFreqMHz); ierr != nil {
		return nil, ierr
	}
	if cfg.NumChan, ierr = p.int("NUM_CHAN", constants.DefaultNumChan); ierr != nil {
		return nil, ierr
	}
	if cfg.ChanInterleaveBit, ierr = p.int("CHAN_INTERLEAVE_BIT", constants.DefaultChanInterleaveBit); ierr != nil {
		return nil, ierr
	}
	if cfg.DataBusBits, ierr = p.int("DATA_BUS_BIT", constants.DefaultDataBusBits); ierr != nil {
		return nil, ierr
	}
	if cfg.ReadQueueDepth, ierr = p.int("READ_TRANS_QUEUE", constants.DefaultReadQueueDepth); ierr != nil {
		return nil, ierr
	}
	if cfg.WriteQueueDepth, ierr = p.int("WRITE_TRANS_QUEUE", constants.DefaultWriteQueueDepth); ierr != nil {
		return nil, ierr
	}
	if cfg.CmdQueueDepth, ierr = p.int("CMD_QUEUE", constants.DefaultCmdQueueDepth); ierr != nil {
		return nil, ierr
	}
	cfg.AddrMap = p.str("ADDR_MAP", constants.DefaultAddrMap)

	if err := validateController(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateController(cfg *ControllerConfig) error {
	if cfg.NumChan <= 0 {
		return fmt.Errorf("config: NUM_CHAN must be positive, got %d", cfg.NumChan)
	}
	if cfg.DataBusBits <= 0 {
		return fmt.Errorf("config: DATA_BUS_BIT must be positive, got %d", cfg.DataBusBits)
	}
	return nil
}

var timingKeys = []string{
	"tREFI", "RL", "WL", "AL", "tCCD", "tRTP", "tRCD", "tRPpb", "tRPab",
	"tRAS", "tWR", "tWTR", "tRRD", "tFAW", "tDQSCK", "tDQSS", "tRFCab",
	"tRFCpb", "tCMD",
}

// ParseDevice builds a DeviceConfig from a *.spec document.
func ParseDevice(r io.Reader) (*DeviceConfig, error) {
	p, err := parseKV(r)
	if err != nil {
		return nil, err
	}

	cfg := &DeviceConfig{MemType: p.str("MEM_TYPE", "")}

	var ierr, ferr error
	if cfg.NumBank, ierr = p.int("NUM_BANK", 8); ierr != nil {
		return nil, ierr
	}
	if cfg.NumRow, ierr = p.int("NUM_ROW", 1<<16); ierr != nil {
		return nil, ierr
	}
	if cfg.NumCol, ierr = p.int("NUM_COL", 1<<10); ierr != nil {
		return nil, ierr
	}
	if cfg.DeviceWidthBits, ierr = p.int("DEVICE_WIDTH", 8); ierr != nil {
		return nil, ierr
	}
	if cfg.BurstLen, ierr = p.int("BL", 8); ierr != nil {
		return nil, ierr
	}
	if cfg.DataRate, ierr = p.int("DATA_RATE", 2); ierr != nil {
		return nil, ierr
	}
	if cfg.TCKNanos, ferr = p.float("tCK", 1.25); ferr != nil {
		return nil, ferr
	}

	timings := map[string]*int{
		"tREFI": &cfg.TREFI, "RL": &cfg.RL, "WL": &cfg.WL, "AL": &cfg.AL,
		"tCCD": &cfg.TCCD, "tRTP": &cfg.TRTP, "tRCD": &cfg.TRCD,
		"tRPpb": &cfg.TRPpb, "tRPab": &cfg.TRPab, "tRAS": &cfg.TRAS,
		"tWR": &cfg.TWR, "tWTR": &cfg.TWTR, "tRRD": &cfg.TRRD,
		"tFAW": &cfg.TFAW, "tDQSCK": &cfg.TDQSCK, "tDQSS": &cfg.TDQSS,
		"tRFCab": &cfg.TRFCab, "tRFCpb": &cfg.TRFCpb, "tCMD": &cfg.TCMD,
	}
	for _, key := range timingKeys {
		raw, ok := p[strings.ToUpper(key)]
		if !ok {
			continue
		}
		v, err := resolveTiming(key, raw, cfg.TCKNanos)
		if err != nil {
			return nil, err
		}
		*timings[key] = v
	}

	if cfg.Vdd, ferr = p.float("VDD", 0); ferr != nil {
		return nil, ferr
	}
	iddFields := map[string]*float64{
		"IDD0": &cfg.IDD0, "IDD1": &cfg.IDD1, "IDD2P": &cfg.IDD2P, "IDD2N": &cfg.IDD2N,
		"IDD3P": &cfg.IDD3P, "IDD3N": &cfg.IDD3N, "IDD4R": &cfg.IDD4R, "IDD4W": &cfg.IDD4W,
		"IDD5": &cfg.IDD5, "IDD6": &cfg.IDD6, "IDD7": &cfg.IDD7,
	}
	for key, dst := range iddFields {
		if v, ferr := p.float(key, 0); ferr == nil {
			*dst = v
		}
	}

	if err := validateDevice(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateDevice(cfg *DeviceConfig) error {
	if cfg.NumBank <= 0 {
		return fmt.Errorf("config: NUM_BANK must be positive, got %d", cfg.NumBank)
	}
	if cfg.BurstLen <= 0 {
		return fmt.Errorf("config: BL must be positive, got %d", cfg.BurstLen)
	}
	if cfg.DataRate <= 0 {
		return fmt.Errorf("config: DATA_RATE must be positive, got %d", cfg.DataRate)
	}
	return nil
}
