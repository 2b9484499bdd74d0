package inputwire

import "github.com/google/uuid"

// Entry is one recorded dispatch. Exactly one of Code or Label is
// meaningful: Label is set when the dispatch was keyed on a label rather
// than a raw code.
type Entry struct {
	// At is the clock reading, in milliseconds, when the dispatch
	// happened.
	At int64

	// Trigger is the trigger-group name the dispatch went through.
	Trigger string

	// Code is the raw code that was dispatched.
	Code Code

	// Label is the label that was dispatched, when the occurrence was a
	// label instead of a code.
	Label string
}

// History is the ordered log of recorded dispatches for one session.
// Entry timestamps are non-decreasing in insertion order.
type History struct {
	// ID uniquely identifies the session.
	ID string

	// Name is the caller-supplied archive name, if any.
	Name string

	// Start is the clock reading when the session began.
	Start int64

	// Entries are the recorded dispatches, oldest first.
	Entries []Entry
}

func newHistory(start int64) *History {
	return &History{
		ID:    uuid.NewString(),
		Start: start,
	}
}

// restartHistoryLocked starts a fresh session. Caller must hold the lock.
func (d *Dispatcher) restartHistoryLocked() {
	d.startTime = d.clk.Now()
	d.history = newHistory(d.startTime)
}

// RestartHistory starts a new empty history and re-bases the session
// start time on the clock's current reading. When keep is true the
// outgoing history is archived first; when false it is discarded.
func (d *Dispatcher) RestartHistory(keep bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if keep && d.history != nil {
		d.archive = append(d.archive, d.history)
	}
	d.restartHistoryLocked()
}

// SaveHistory appends the active history to the archive without starting
// a new session. A non-empty name additionally makes the snapshot
// addressable through HistoryNamed; the positional copy remains either
// way.
func (d *Dispatcher) SaveHistory(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.archive = append(d.archive, d.history)
	if name != "" {
		d.history.Name = name
		d.named[name] = d.history
	}
}

// History returns the active history.
func (d *Dispatcher) History() *History {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.history
}

// HistoryNamed returns the archived history saved under name.
func (d *Dispatcher) HistoryNamed(name string) (*History, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.named[name]
	return h, ok
}

// HistoryAt returns the archived history at positional index i.
func (d *Dispatcher) HistoryAt(i int) (*History, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.archive) {
		return nil, false
	}
	return d.archive[i], true
}

// Histories returns the archive, oldest first.
func (d *Dispatcher) Histories() []*History {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*History, len(d.archive))
	copy(out, d.archive)
	return out
}
