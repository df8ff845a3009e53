package dramsim

import (
	"fmt"
	"sync"

	"github.com/ossdram/dramsim/internal/interfaces"
)

// MockTracer is an interfaces.CommandTracer that records every traced line
// instead of writing it anywhere, for tests that want to assert on the exact
// command sequence a run produced without parsing a trace file off disk.
// This mirrors the teacher's MockBackend: a recording stand-in for an
// interface this package only ever calls through, not a concrete type.
type MockTracer struct {
	mu    sync.Mutex
	lines []string
}

// NewMockTracer returns an empty MockTracer.
func NewMockTracer() *MockTracer {
	return &MockTracer{}
}

// TraceCommand implements interfaces.CommandTracer.
func (t *MockTracer) TraceCommand(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
}

// Lines returns a copy of every line traced so far, in issue order.
func (t *MockTracer) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

// Reset discards every recorded line.
func (t *MockTracer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = nil
}

// MockObserver is an interfaces.Observer that records every observed event,
// for tests that assert on exact Observe call sequences rather than only the
// aggregated Metrics a real run keeps.
type MockObserver struct {
	mu sync.Mutex

	commandCalls     int
	retireCalls      int
	queueDepthCalls  int
	lastQueueDepth   int
	retiredReadBytes uint64
	retiredWriteOps  int
	retiredReadOps   int
}

// NewMockObserver returns an empty MockObserver.
func NewMockObserver() *MockObserver {
	return &MockObserver{}
}

// ObserveCommand implements interfaces.Observer.
func (o *MockObserver) ObserveCommand(channel int, kind string, issuedAt, birthCycle uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.commandCalls++
}

// ObserveRetire implements interfaces.Observer.
func (o *MockObserver) ObserveRetire(channel int, isRead bool, bytes uint64, latencyCycles uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.retireCalls++
	if isRead {
		o.retiredReadOps++
		o.retiredReadBytes += bytes
	} else {
		o.retiredWriteOps++
	}
}

// ObserveQueueDepth implements interfaces.Observer.
func (o *MockObserver) ObserveQueueDepth(channel int, depth int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queueDepthCalls++
	o.lastQueueDepth = depth
}

// CallCounts reports how many times each Observe method has fired, keyed by
// method name, analogous to the teacher's MockBackend.CallCounts.
func (o *MockObserver) CallCounts() map[string]int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return map[string]int{
		"ObserveCommand":    o.commandCalls,
		"ObserveRetire":     o.retireCalls,
		"ObserveQueueDepth": o.queueDepthCalls,
	}
}

// RetiredReadOps reports the number of ObserveRetire calls seen with isRead true.
func (o *MockObserver) RetiredReadOps() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.retiredReadOps
}

// RetiredWriteOps reports the number of ObserveRetire calls seen with isRead false.
func (o *MockObserver) RetiredWriteOps() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.retiredWriteOps
}

// LastQueueDepth reports the depth passed to the most recent ObserveQueueDepth call.
func (o *MockObserver) LastQueueDepth() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastQueueDepth
}

// Reset clears every recorded count, so a MockObserver can be reused across
// subtests.
func (o *MockObserver) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	*o = MockObserver{}
}

// MockLogger is an interfaces.Logger that records every formatted message
// instead of writing it anywhere.
type MockLogger struct {
	mu     sync.Mutex
	Infos  []string
	Debugs []string
}

// NewMockLogger returns an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

// Printf implements interfaces.Logger.
func (l *MockLogger) Printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, fmt.Sprintf(format, args...))
}

// Debugf implements interfaces.Logger.
func (l *MockLogger) Debugf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, fmt.Sprintf(format, args...))
}

var (
	_ interfaces.CommandTracer = (*MockTracer)(nil)
	_ interfaces.Observer      = (*MockObserver)(nil)
	_ interfaces.Logger        = (*MockLogger)(nil)
)
