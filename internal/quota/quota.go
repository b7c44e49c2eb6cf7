package quota

import (
	"sync"
	"time"
)

// Controller enforces the per-session daily document quota and the static
// file-size ceiling. The counter resets lazily: the first access after the
// calendar date changes zeroes it, there is no timer.
//
// All methods are safe for concurrent use; a service handling parallel batch
// submissions must still go through Admit/Commit so the processed count never
// exceeds the daily limit.
type Controller struct {
	mu           sync.Mutex
	limit        int
	maxFileBytes int64
	used         int
	day          string // ISO date of the last reset

	now func() time.Time // stubable clock
}

func NewController(dailyLimit, maxFileSizeMB int) *Controller {
	c := &Controller{
		limit:        dailyLimit,
		maxFileBytes: int64(maxFileSizeMB) << 20,
		now:          time.Now,
	}
	c.day = c.today()
	return c
}

func (c *Controller) today() string {
	return c.now().Format("2006-01-02")
}

// rollover must be called with the mutex held.
func (c *Controller) rollover() {
	if d := c.today(); d != c.day {
		c.day = d
		c.used = 0
	}
}

// Admit returns how many of n candidate documents may be processed:
// min(n, remaining). It does not consume quota; callers Commit per document
// actually extracted.
func (c *Controller) Admit(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollover()
	remaining := c.limit - c.used
	if remaining < 0 {
		remaining = 0
	}
	if n < remaining {
		return n
	}
	return remaining
}

// Commit records one processed document. Size-skipped documents are never
// committed.
func (c *Controller) Commit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollover()
	c.used++
}

// Remaining reports how many documents the session may still process today.
func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollover()
	if r := c.limit - c.used; r > 0 {
		return r
	}
	return 0
}

// Used reports the processed count since the last daily reset.
func (c *Controller) Used() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollover()
	return c.used
}

// Restore seeds the counter from persisted state, e.g. when a session is
// reopened. A stale day is discarded by the next rollover check.
func (c *Controller) Restore(day string, used int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.day = day
	c.used = used
}

// Snapshot returns the current day and used count for persistence.
func (c *Controller) Snapshot() (day string, used int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollover()
	return c.day, c.used
}

// Oversized reports whether a document of size bytes exceeds the ceiling.
func (c *Controller) Oversized(size int64) bool {
	return size > c.maxFileBytes
}
