// Package trace reads input request traces and writes the per-channel
// command trace the simulator emits as it runs.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ossdram/dramsim/internal/command"
)

// Record is one parsed trace-file line, still in wall timestamp form;
// Source converts TimestampPs to a cycle using the controller frequency.
type Record struct {
	TimestampPs uint64
	Dir         command.Direction
	Addr        uint64
	Len         uint32
	Priority    uint16
}

// ParseLine parses one whitespace-separated trace record:
// "<timestamp_ps> <R|W> 0x<addr_hex> <len_dec> <priority_dec> [opaque...]".
// Blank lines and '#'-prefixed comments are the caller's responsibility to
// skip (Source.Next does so), matching the line-oriented format of §6.2.
func ParseLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Record{}, fmt.Errorf("trace: malformed record %q: want at least 5 fields", line)
	}

	ts, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("trace: bad timestamp %q: %w", fields[0], err)
	}

	var dir command.Direction
	switch strings.ToUpper(fields[1]) {
	case "R":
		dir = command.Read
	case "W":
		dir = command.Write
	default:
		return Record{}, fmt.Errorf("trace: bad direction %q, want R or W", fields[1])
	}

	addrStr := strings.TrimPrefix(strings.TrimPrefix(fields[2], "0x"), "0X")
	addr, err := strconv.ParseUint(addrStr, 16, 64)
	if err != nil {
		return Record{}, fmt.Errorf("trace: bad address %q: %w", fields[2], err)
	}

	length, err := strconv.ParseUint(fields[3], 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("trace: bad length %q: %w", fields[3], err)
	}

	priority, err := strconv.ParseUint(fields[4], 10, 16)
	if err != nil {
		return Record{}, fmt.Errorf("trace: bad priority %q: %w", fields[4], err)
	}

	return Record{
		TimestampPs: ts,
		Dir:         dir,
		Addr:        addr,
		Len:         uint32(length),
		Priority:    uint16(priority),
	}, nil
}

// CycleOf converts a record's wall timestamp to a simulator cycle:
// floor(timestamp_ps / 1e6 * freq_MHz).
func (rec Record) CycleOf(freqMHz int) uint64 {
	return (rec.TimestampPs * uint64(freqMHz)) / 1_000_000
}

// Source streams Records from an underlying reader in file order,
// skipping blank lines and '#' comments.
type Source struct {
	sc *bufio.Scanner
}

// NewSource wraps r as a Source.
func NewSource(r io.Reader) *Source {
	return &Source{sc: bufio.NewScanner(r)}
}

// Next returns the next Record, or io.EOF once the underlying reader is
// exhausted.
func (s *Source) Next() (Record, error) {
	for s.sc.Scan() {
		line := s.sc.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return ParseLine(line)
	}
	if err := s.sc.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}
