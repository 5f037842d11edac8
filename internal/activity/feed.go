// Package activity keeps the console's transient activity timeline: one line
// per API call plus ad-hoc system events, bounded to the most recent entries.
package activity

import (
	"fmt"
	"sync"
	"time"

	"github.com/lkscloud/order-console/internal/apiclient"
)

// DefaultLimit matches the original timeline length.
const DefaultLimit = 20

const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelError   = "error"
)

// Entry is one timeline line, newest first in Feed.Entries.
type Entry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
	Level   string    `json:"level"`
}

// Feed is an in-memory, bounded activity log. It also tracks the latency of
// the most recent API call for the "last response time" gauge. Safe for
// concurrent use; overlapping calls land in arrival order, last writer wins
// on the gauge.
type Feed struct {
	mu          sync.Mutex
	entries     []Entry
	limit       int
	lastLatency time.Duration
	hasLatency  bool
	nowFunc     func() time.Time
}

// NewFeed returns a feed bounded to limit entries (DefaultLimit if <= 0).
func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Feed{limit: limit, nowFunc: time.Now}
}

// Add appends a timeline entry, evicting the oldest once over the limit.
func (f *Feed) Add(message, level string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.add(message, level)
}

func (f *Feed) add(message, level string) {
	f.entries = append(f.entries, Entry{Time: f.nowFunc(), Message: message, Level: level})
	if len(f.entries) > f.limit {
		f.entries = f.entries[len(f.entries)-f.limit:]
	}
}

// RecordCall implements apiclient.Sink: one line per call, failures with a
// truncated message, plus the latency gauge update.
func (f *Feed) RecordCall(rec apiclient.CallRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastLatency = rec.Duration
	f.hasLatency = true

	if rec.Err != nil {
		short := apiclient.Truncate(rec.Err.Error(), 50)
		f.add(fmt.Sprintf("API %s %s - Failed: %s", rec.Method, rec.Path, short), LevelError)
		return
	}
	f.add(fmt.Sprintf("API %s %s - Success (%dms)", rec.Method, rec.Path, rec.Duration.Milliseconds()), LevelSuccess)
}

// Entries returns the timeline newest first.
func (f *Feed) Entries() []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Entry, len(f.entries))
	for i, e := range f.entries {
		out[len(f.entries)-1-i] = e
	}
	return out
}

// LastLatency returns the round-trip time of the most recent call and whether
// any call has been made yet.
func (f *Feed) LastLatency() (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLatency, f.hasLatency
}
