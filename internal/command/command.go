package command

// Kind identifies the bus-level primitive a Command represents.
type Kind uint8

const (
	ReadCmd Kind = iota
	WriteCmd
	ReadAPCmd     // auto-precharge read; enumerated, never constructed by the scheduler
	WriteAPCmd    // auto-precharge write; enumerated, never constructed by the scheduler
	ActivateCmd
	PrechargeCmd
	PrechargeABCmd // precharge-all-banks; enumerated, never constructed by the scheduler
	RefreshCmd     // enumerated, never constructed by the scheduler
	RefreshPBCmd   // per-bank refresh; enumerated, never constructed by the scheduler
	EnterPDCmd
	EnterDeepPDCmd
	EnterSelfRefreshCmd
	ExitPDCmd
)

// String renders the output-trace opcode for the kinds the scheduler
// actually issues. Reserved kinds render an upper-case name (e.g.
// "READ_AP") for diagnostics.
func (k Kind) String() string {
	switch k {
	case ReadCmd:
		return "READ"
	case WriteCmd:
		return "WRITE"
	case ActivateCmd:
		return "ROWACT"
	case PrechargeCmd:
		return "PRECHARGE"
	case ReadAPCmd:
		return "READ_AP"
	case WriteAPCmd:
		return "WRITE_AP"
	case PrechargeABCmd:
		return "PRECHARGE_AB"
	case RefreshCmd:
		return "REFRESH"
	case RefreshPBCmd:
		return "REFRESH_PB"
	case EnterPDCmd:
		return "ENTER_PD"
	case EnterDeepPDCmd:
		return "ENTER_DEEP_PD"
	case EnterSelfRefreshCmd:
		return "ENTER_SELF_REFRESH"
	case ExitPDCmd:
		return "EXIT_PD"
	default:
		return "UNKNOWN"
	}
}

// Cycle is a simulator cycle count. A handful of "earliest legal cycle"
// computations need a sentinel for "never under current state"; CycleNever
// serves that role so Bank.Next/EarliestCycle need no separate (value, ok)
// return.
type Cycle uint64

// CycleNever represents "not issuable in the current bank state".
const CycleNever = ^Cycle(0)

// Command is a bus-level primitive generated by the scheduler from a
// Transaction. One concrete type carries every kind's fields (see the design
// note on substituting a tagged struct for the source's Command subclasses):
// only Kind, Row and Col vary in meaning across kinds, and every kind shares
// the same addressing/priority/birth metadata.
type Command struct {
	// ID is a monotonic id, unique within the owning channel's Scheduler.
	ID uint64

	// Birth is the cycle at which the command was created (inserted into
	// the scheduler's queue).
	Birth Cycle

	Kind Kind

	Channel int
	Rank    int
	Bank    int
	Row     uint32
	Col     uint32

	Priority uint16

	// TxID back-references the parent Transaction this command serves.
	// Non-R/W commands (ACT, PRE) still carry it so the trace can report
	// which transaction caused them.
	TxID uint64
}

// Less implements the scheduler's total order: higher priority first,
// then older (lower id) first. This is `a < b` from the spec's Command
// ordering relation.
func Less(a, b *Command) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.ID < b.ID
}

// IsReadWrite reports whether the command is a data-bearing READ or WRITE,
// i.e. the kind that retires a Transaction when applied.
func (c *Command) IsReadWrite() bool {
	return c.Kind == ReadCmd || c.Kind == WriteCmd
}
