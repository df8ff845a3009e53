// Package addrmap decodes a 64-bit physical address into
// (channel, rank, bank, row, column) coordinates according to a
// controller's ADDR_MAP mapping string.
package addrmap

import (
	"strconv"
	"strings"

	"github.com/ossdram/dramsim/internal/config"
)

// dimension identifies one of the five address fields a bit position can
// belong to.
type dimension int

const (
	dimChan dimension = iota
	dimRank
	dimBank
	dimRow
	dimCol
)

// AddressMap holds, per dimension, the ordered bit positions (LSB first)
// that field occupies in a 64-bit physical address. It is built once by
// Init and is a pure function afterwards.
type AddressMap struct {
	chanBits []int
	rankBits []int
	bankBits []int
	rowBits  []int
	colBits  []int
}

func log2(n int) int {
	b := 0
	for (1 << b) < n {
		b++
	}
	return b
}

// increment advances pos by one, then skips over the channel-bit run if
// it lands inside it, matching the source's `increment` primitive.
func increment(pos int, chanStart, chanCount int) int {
	pos++
	if chanCount > 0 && pos >= chanStart && pos < chanStart+chanCount {
		pos = chanStart + chanCount
	}
	return pos
}

// Init builds the five bit-position sequences from ctrlCfg.AddrMap.
func Init(ctrlCfg *config.ControllerConfig, devCfg *config.DeviceConfig) (*AddressMap, error) {
	m := &AddressMap{}

	chanCount := log2(ctrlCfg.NumChan)
	chanStart := ctrlCfg.ChanInterleaveBit

	curPos := log2(devCfg.DeviceWidthBytes())
	if curPos >= chanStart && curPos < chanStart+chanCount {
		curPos = chanStart + chanCount
	}

	if chanCount > 0 {
		for i := 0; i < chanCount; i++ {
			m.chanBits = append(m.chanBits, chanStart+i)
		}
	}

	colCount := log2(devCfg.BurstLen)
	for i := 0; i < colCount; i++ {
		m.colBits = append(m.colBits, curPos)
		curPos = increment(curPos, chanStart, chanCount)
	}

	tokens := strings.Split(ctrlCfg.AddrMap, ",")
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := strings.TrimSpace(tokens[i])
		if tok == "" {
			continue
		}
		name, count, hasCount, err := parseToken(tok)
		if err != nil {
			return nil, err
		}

		var dst *[]int
		var target int
		switch name {
		case "rank":
			dst, target = &m.rankBits, log2(devCfg.NumRank)
		case "bank":
			dst, target = &m.bankBits, log2(devCfg.NumBank)
		case "row":
			dst, target = &m.rowBits, log2(devCfg.NumRow)
		case "col":
			dst, target = &m.colBits, log2(devCfg.NumCol)
		default:
			continue // unrecognized tokens are skipped silently
		}

		// "remaining": fill up to this dimension's target bit width,
		// matching address_map.cpp's to_fill = log_num_X - X_bits.size().
		n := count
		if !hasCount {
			n = target - len(*dst)
		}
		if n < 0 || len(*dst)+n > 32 {
			return nil, errDimensionOverflow(name)
		}
		for j := 0; j < n; j++ {
			*dst = append(*dst, curPos)
			curPos = increment(curPos, chanStart, chanCount)
		}
	}

	return m, nil
}

func parseToken(tok string) (name string, count int, hasCount bool, err error) {
	i := 0
	for i < len(tok) && (tok[i] < '0' || tok[i] > '9') {
		i++
	}
	name = strings.ToLower(strings.TrimSpace(tok[:i]))
	rest := strings.TrimSpace(tok[i:])
	// A dimension name followed by a non-numeric count ("bankNaN") is a
	// bad count, not an unrecognized token.
	for _, dim := range []string{"rank", "bank", "row", "col"} {
		if name != dim && strings.HasPrefix(name, dim) {
			return "", 0, false, errBadCount(tok)
		}
	}
	if rest == "" {
		return name, 0, false, nil
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return "", 0, false, errBadCount(tok)
	}
	return name, n, true, nil
}

// Map decodes a 64-bit physical address into its five coordinates.
func (m *AddressMap) Map(addr uint64) (chanID, rank, bank, row, col uint32) {
	return extract(addr, m.chanBits), extract(addr, m.rankBits), extract(addr, m.bankBits),
		extract(addr, m.rowBits), extract(addr, m.colBits)
}

// extract gathers the bits at positions (LSB-first) into a value whose
// bit i is addr's bit positions[i].
func extract(addr uint64, positions []int) uint32 {
	var v uint32
	for i, pos := range positions {
		bit := (addr >> uint(pos)) & 1
		v |= uint32(bit) << uint(i)
	}
	return v
}

// ChanBits returns a copy of the recorded channel bit positions.
// MemorySystem.FindChanId does not use it; it masks the address directly.
func (m *AddressMap) ChanBits() []int { return append([]int(nil), m.chanBits...) }
