package command

import "sync"

// pool recycles *Command values so the scheduler's hot path (one AddTx per
// dispatched transaction, up to a few Commands each) does not allocate.
// Unlike a byte-buffer pool serving many size classes, every Command is the
// same fixed size, so a single sync.Pool bucket suffices; the *T-in-sync.Pool
// pattern itself follows the source's buffer pool (size-bucketed only
// because its payloads vary in size, ours don't).
var pool = sync.Pool{
	New: func() any { return new(Command) },
}

// Get returns a zeroed *Command ready to be populated by the scheduler.
func Get() *Command {
	c := pool.Get().(*Command)
	*c = Command{}
	return c
}

// Put returns a Command to the pool. Callers must not retain c afterwards.
func Put(c *Command) {
	pool.Put(c)
}
