package dramsim

import (
	"errors"
	"fmt"
)

// ErrorCategory is a high-level error classification, analogous to the
// teacher's UblkErrorCode.
type ErrorCategory string

const (
	ErrCodeConfigParse        ErrorCategory = "config parse error"
	ErrCodeConfigValidation   ErrorCategory = "config validation error"
	ErrCodeAddressMap         ErrorCategory = "address map error"
	ErrCodeInvariantViolation ErrorCategory = "invariant violation"

	// ErrCodeBackpressure documents the category for AddTx-style
	// rejections; back-pressure is communicated to callers via a bool
	// return (see Channel.AddTx, MemorySystem.AddTx), never as an error,
	// so this constant exists for tests and documentation only.
	ErrCodeBackpressure ErrorCategory = "backpressure"
)

// Error is dramsim's structured error type, adapted from the teacher's
// *ublk.Error: carries enough context (channel/rank/bank/cycle) to locate
// a failure in a running simulation without parsing the message.
type Error struct {
	Op       string
	Category ErrorCategory
	Channel  int // -1 if not applicable
	Rank     int // -1 if not applicable
	Bank     int // -1 if not applicable
	Cycle    uint64
	Msg      string
	Inner    error
}

func (e *Error) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Channel >= 0 {
		parts = append(parts, fmt.Sprintf("chan=%d", e.Channel))
	}
	if e.Rank >= 0 {
		parts = append(parts, fmt.Sprintf("rank=%d", e.Rank))
	}
	if e.Bank >= 0 {
		parts = append(parts, fmt.Sprintf("bank=%d", e.Bank))
	}
	if e.Cycle != 0 {
		parts = append(parts, fmt.Sprintf("cycle=%d", e.Cycle))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Category)
	}
	if len(parts) > 0 {
		return fmt.Sprintf("dramsim: %s (%s)", msg, parts[0])
	}
	return fmt.Sprintf("dramsim: %s", msg)
}

func (e *Error) Unwrap() error { return e.Inner }

func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if te, ok := target.(*Error); ok {
		return e.Category == te.Category
	}
	return false
}

// newError is the common constructor the category-specific helpers below
// wrap; Channel/Rank/Bank default to -1 ("n/a") per the field docs.
func newError(op string, category ErrorCategory, msg string) *Error {
	return &Error{Op: op, Category: category, Channel: -1, Rank: -1, Bank: -1, Msg: msg}
}

// NewConfigError wraps a config-parsing/validation failure.
func NewConfigError(op string, category ErrorCategory, inner error) *Error {
	e := newError(op, category, "")
	if inner != nil {
		e.Msg = inner.Error()
		e.Inner = inner
	}
	return e
}

// NewAddressMapError wraps an AddressMap construction failure.
func NewAddressMapError(op string, inner error) *Error {
	e := newError(op, ErrCodeAddressMap, "")
	if inner != nil {
		e.Msg = inner.Error()
		e.Inner = inner
	}
	return e
}

// NewInvariantError reports a fatal, scheduler-caused invariant
// violation, with cycle/channel context for diagnosis.
func NewInvariantError(op string, channel int, cycle uint64, msg string) *Error {
	e := newError(op, ErrCodeInvariantViolation, msg)
	e.Channel = channel
	e.Cycle = cycle
	return e
}

// IsCategory reports whether err is a *Error of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Category == category
	}
	return false
}
