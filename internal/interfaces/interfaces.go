// Package interfaces provides internal interface definitions for dramsim.
// These are separate from the public interfaces to avoid circular imports
// between the root package and the internal packages that make up the core.
package interfaces

// Logger is satisfied by the logging package's *Logger as well as any
// caller-supplied stand-in used in tests.
type Logger interface {
	Printf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// Observer collects per-command-completion metrics. Implementations must be
// safe to call from a single simulation goroutine; the core never calls an
// Observer concurrently, but an implementation (e.g. the live dashboard) may
// be read from a separate goroutine and must guard its own state.
type Observer interface {
	// ObserveCommand is called once a command has had its effects applied to
	// every bank on its channel, i.e. at the point the source spec calls
	// "destroyed after its effects are applied".
	ObserveCommand(channel int, kind string, issuedAt, birthCycle uint64)

	// ObserveRetire is called when a transaction's owning command completes
	// and the transaction is removed from its response queue.
	ObserveRetire(channel int, isRead bool, bytes uint64, latencyCycles uint64)

	// ObserveQueueDepth is called once per dispatch cycle with the current
	// combined depth of a channel's read and write transaction queues.
	ObserveQueueDepth(channel int, depth int)
}

// CommandTracer receives one formatted line per issued command, in the
// "CH<id> <cycle> <OP> <txid> <r> <b> <row> <col>" format. Implementations
// (internal/trace) own file locking and buffering; the channel only ever
// sees this interface, not a concrete file handle.
type CommandTracer interface {
	TraceCommand(line string)
}

// CompletionSink receives a command completion event from a Scheduler. A
// Channel implements this interface; the Scheduler holds only the interface,
// not a concrete *Channel, which keeps Scheduler -> Channel from being a back
// reference to a concrete owner (see the "cross-component references without
// cycles" design note).
type CompletionSink interface {
	// CommandCompleted is invoked exactly once per READ/WRITE command, at the
	// moment the scheduler applies that command's effects to its channel's
	// banks. txID identifies the transaction that the command was serving.
	CommandCompleted(txID uint64)
}
