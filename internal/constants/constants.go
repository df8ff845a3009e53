// Package constants holds default configuration values shared across the
// simulator core so that a missing key in a controller config file falls
// back to a sensible value instead of a zero.
package constants

// Default controller parameters, used by internal/config when a recognised
// key is absent from the input file.
const (
	// DefaultCtrlFreqMHz is the default controller clock frequency.
	DefaultCtrlFreqMHz = 800

	// DefaultNumChan is the default channel count (single channel).
	DefaultNumChan = 1

	// DefaultChanInterleaveBit is the default address bit at which the
	// channel-select field begins.
	DefaultChanInterleaveBit = 14

	// DefaultDataBusBits is the default data bus width in bits (64-bit bus).
	DefaultDataBusBits = 64

	// DefaultReadQueueDepth is the default per-channel read transaction
	// queue depth.
	DefaultReadQueueDepth = 32

	// DefaultWriteQueueDepth is the default per-channel write transaction
	// queue depth.
	DefaultWriteQueueDepth = 32

	// DefaultCmdQueueDepth is the default per-channel scheduler command
	// queue depth.
	DefaultCmdQueueDepth = 64

	// DefaultAddrMap is used when ADDR_MAP is absent from a controller
	// config file.
	DefaultAddrMap = "rank,bank,row,col"

	// DefaultChannelCapacityBytes is the per-channel memory capacity used to
	// derive a device's rank count when the CLI is not given an explicit
	// size (main.cpp's "-s" flag defaults to 1024 MB / 1GB).
	DefaultChannelCapacityBytes = 1 << 30
)

// Derived-timing reservation headroom. Scheduler.AddTx reserves 2x the
// naive command count for a follow-on ACT; see the design notes on why
// this is kept rather than "fixed".
const CmdQueueReservationFactor = 2
