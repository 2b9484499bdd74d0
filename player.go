package inputwire

import (
	"time"

	"github.com/doolittlekyle/inputwire/clock"
)

// PlayHistory replays a history by scheduling each entry at a delay
// equal to its recorded offset from the current session start. A nil
// history replays the active one. Entries whose offset has already
// passed are scheduled with a non-positive delay and fire as soon as
// possible; entries sharing a timestamp keep their insertion order.
//
// Each scheduled callback re-enters Call directly, bypassing the pipe's
// recording step, so replay is never re-recorded. The returned handles
// cancel individual pending dispatches.
func (d *Dispatcher) PlayHistory(h *History) []clock.Handle {
	d.mu.Lock()
	if h == nil {
		h = d.history
	}
	start := d.startTime
	entries := make([]Entry, len(h.Entries))
	copy(entries, h.Entries)
	d.mu.Unlock()

	handles := make([]clock.Handle, 0, len(entries))
	for _, entry := range entries {
		ref := entryRef(entry)
		delay := time.Duration(entry.At-start) * time.Millisecond
		handles = append(handles, d.sched.ScheduleAfter(delay, func() {
			d.Call(ref)
		}))
	}
	return handles
}

func entryRef(e Entry) Ref {
	if e.Label != "" {
		return LabelRef(e.Trigger, e.Label)
	}
	return CodeRef(e.Trigger, e.Code)
}
