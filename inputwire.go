package inputwire

import (
	"sync"

	"go.uber.org/zap"

	"github.com/doolittlekyle/inputwire/clock"
)

// Config is the full configuration accepted by Reset. Every field is
// optional; a zero Config yields empty triggers and aliases, a nil event
// context, and recording enabled.
type Config struct {
	// Triggers maps trigger-group names to their handler groups.
	Triggers map[string]*Group

	// Recipients is opaque passthrough storage. No resolution or dispatch
	// logic touches it; it exists for callers to stash arbitrary data
	// alongside the configuration.
	Recipients map[string]any

	// Aliases maps human-readable labels to the raw codes they stand for.
	Aliases map[string][]Code

	// EventContext is passed unchanged to every handler invocation.
	EventContext any

	// Recording gates history writes. Nil defaults to true.
	Recording *bool
}

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithLogger sets the logger used for configuration and dispatch
// warnings. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(d *Dispatcher) {
		d.log = log
	}
}

// WithClock sets the elapsed-time source. If the clock also implements
// clock.Scheduler and no scheduler was set explicitly, it is used for
// replay scheduling as well.
func WithClock(c clock.Clock) Option {
	return func(d *Dispatcher) {
		d.clk = c
	}
}

// WithScheduler sets the scheduler used for history replay.
func WithScheduler(s clock.Scheduler) Option {
	return func(d *Dispatcher) {
		d.sched = s
	}
}

// Dispatcher routes raw input occurrences to handlers through trigger
// groups and aliases, and records dispatches for later replay. Each
// Dispatcher owns all of its configuration, history, and clock state;
// construct as many independent instances as needed.
type Dispatcher struct {
	mu    sync.Mutex
	clk   clock.Clock
	sched clock.Scheduler
	log   *zap.Logger

	triggers     map[string]*Group
	recipients   map[string]any
	aliases      map[string][]Code
	eventContext any
	recording    bool

	startTime int64
	history   *History
	archive   []*History
	named     map[string]*History
}

// New creates a Dispatcher and applies cfg as its initial configuration.
func New(cfg Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}

	if d.clk == nil {
		d.clk = clock.NewSystem()
	}
	if d.sched == nil {
		if s, ok := d.clk.(clock.Scheduler); ok {
			d.sched = s
		} else {
			d.sched = clock.NewSystem()
		}
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}

	d.Reset(cfg)
	return d
}

// Reset fully replaces the dispatcher's configuration: trigger groups,
// recipients, aliases, event context, and the recording flag. The history
// archive is cleared, the session start time is re-read from the clock,
// and alias resolution runs over the new trigger groups before Reset
// returns, so no dispatch can observe unresolved aliases.
func (d *Dispatcher) Reset(cfg Config) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.triggers = make(map[string]*Group, len(cfg.Triggers))
	for name, group := range cfg.Triggers {
		if group == nil {
			group = NewGroup()
		}
		d.triggers[name] = group.Clone()
	}

	d.recipients = make(map[string]any, len(cfg.Recipients))
	for key, value := range cfg.Recipients {
		d.recipients[key] = value
	}

	d.aliases = make(map[string][]Code, len(cfg.Aliases))
	for label, codes := range cfg.Aliases {
		copied := make([]Code, len(codes))
		copy(copied, codes)
		d.aliases[label] = copied
	}

	d.eventContext = cfg.EventContext
	d.recording = cfg.Recording == nil || *cfg.Recording

	d.archive = nil
	d.named = make(map[string]*History)
	d.restartHistoryLocked()

	d.resolveAliasesLocked()
}

// resolveAliasesLocked applies every alias to every trigger group.
// Idempotent: re-running with the same configuration yields the same
// bindings. Caller must hold the lock.
func (d *Dispatcher) resolveAliasesLocked() {
	for label, codes := range d.aliases {
		for _, group := range d.triggers {
			group.resolveAlias(label, codes)
		}
	}
}

// Trigger returns the named trigger group, or nil if unknown. The
// returned group is the dispatcher's live state; mutating it outside
// AddBinding and friends leaves alias bindings unmaintained until the
// next Reset.
func (d *Dispatcher) Trigger(name string) *Group {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.triggers[name]
}

// Recording reports whether dispatches are written to the history.
func (d *Dispatcher) Recording() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recording
}

// SetRecording enables or disables history writes.
func (d *Dispatcher) SetRecording(recording bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recording = recording
}

// EventContext returns the shared object passed to handler invocations.
func (d *Dispatcher) EventContext() any {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.eventContext
}

// SetEventContext replaces the shared event context wholesale.
func (d *Dispatcher) SetEventContext(ctx any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.eventContext = ctx
}

// Recipients returns the opaque passthrough storage supplied at Reset.
func (d *Dispatcher) Recipients() map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recipients
}

// AddAlias registers or replaces an alias after Reset and immediately
// re-binds its codes in every trigger group.
func (d *Dispatcher) AddAlias(label string, codes []Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	copied := make([]Code, len(codes))
	copy(copied, codes)
	d.aliases[label] = copied

	for _, group := range d.triggers {
		group.resolveAlias(label, copied)
	}
}

// RemoveAlias deletes an alias and unbinds its codes from every trigger
// group. Unknown labels are a no-op.
func (d *Dispatcher) RemoveAlias(label string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	codes, ok := d.aliases[label]
	if !ok {
		return
	}
	delete(d.aliases, label)

	for _, group := range d.triggers {
		group.unbindAlias(codes)
	}
}

// AddBinding registers a handler under a label in the named trigger
// group and re-resolves the label's alias codes, if any. Unknown trigger
// names are logged and ignored.
func (d *Dispatcher) AddBinding(trigger, label string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	group, ok := d.triggers[trigger]
	if !ok {
		d.log.Warn("unknown trigger group",
			zap.String("trigger", trigger),
			zap.String("op", "AddBinding"))
		return
	}

	group.Bind(label, h)
	if codes, ok := d.aliases[label]; ok {
		group.resolveAlias(label, codes)
	}
}

// RemoveBinding removes a label binding from the named trigger group
// along with the code bindings derived from its alias. Unknown trigger
// names are logged and ignored.
func (d *Dispatcher) RemoveBinding(trigger, label string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	group, ok := d.triggers[trigger]
	if !ok {
		d.log.Warn("unknown trigger group",
			zap.String("trigger", trigger),
			zap.String("op", "RemoveBinding"))
		return
	}

	delete(group.labels, label)
	if codes, ok := d.aliases[label]; ok {
		group.unbindAlias(codes)
	}
}
