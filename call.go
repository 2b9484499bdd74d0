package inputwire

import "go.uber.org/zap"

type refKind int

const (
	refDirect refKind = iota
	refCode
	refLabel
)

// Ref identifies a handler to call: either a handler value itself, or a
// (trigger, code) / (trigger, label) pair resolved against the current
// trigger groups at call time.
type Ref struct {
	kind    refKind
	fn      Handler
	trigger string
	code    Code
	label   string
}

// Direct wraps a handler value.
func Direct(h Handler) Ref {
	return Ref{kind: refDirect, fn: h}
}

// CodeRef refers to the handler bound under a raw code in a trigger
// group.
func CodeRef(trigger string, code Code) Ref {
	return Ref{kind: refCode, trigger: trigger, code: code}
}

// LabelRef refers to the handler bound under a label in a trigger group.
func LabelRef(trigger string, label string) Ref {
	return Ref{kind: refLabel, trigger: trigger, label: label}
}

// Call resolves ref and invokes the handler with the shared event
// context, returning the handler's result. A blank or unresolvable
// handler is logged as a warning and yields nil without invoking
// anything.
func (d *Dispatcher) Call(ref Ref) any {
	d.mu.Lock()

	var h Handler
	switch ref.kind {
	case refDirect:
		h = ref.fn
	case refCode:
		if group, ok := d.triggers[ref.trigger]; ok {
			h = group.codes[ref.code]
		}
	case refLabel:
		if group, ok := d.triggers[ref.trigger]; ok {
			h = group.labels[ref.label]
		}
	}
	ctx := d.eventContext
	d.mu.Unlock()

	if h == nil {
		d.log.Warn("blank handler",
			zap.String("trigger", ref.trigger),
			zap.Int("code", int(ref.code)),
			zap.String("label", ref.label))
		return nil
	}

	return h(ctx)
}
