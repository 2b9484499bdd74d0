package inputwire

import "go.uber.org/zap"

// Pipe is a bound dispatch function for one trigger group. It accepts a
// raw input occurrence from the host environment: a Code, an integer, a
// label string, or a structured occurrence the pipe extracts a code
// from.
type Pipe func(occurrence any)

// Preventable is implemented by occurrences that can suppress the host
// environment's default handling.
type Preventable interface {
	PreventDefault()
}

// Fielder exposes named fields of a structured occurrence, used when a
// pipe was created with a code field.
type Fielder interface {
	Field(name string) any
}

// MakePipe builds a dispatch function bound to the named trigger group.
// If codeField is non-empty the pipe extracts the code from that field
// of each occurrence; otherwise the occurrence itself is the code or
// label. If preventDefault is set the pipe suppresses the host default
// handling on occurrences that support it.
//
// An unknown trigger name is logged as a warning and yields a nil Pipe;
// callers must check for nil.
func (d *Dispatcher) MakePipe(trigger, codeField string, preventDefault bool) Pipe {
	d.mu.Lock()
	_, ok := d.triggers[trigger]
	d.mu.Unlock()

	if !ok {
		d.log.Warn("unknown trigger group",
			zap.String("trigger", trigger),
			zap.String("op", "MakePipe"))
		return nil
	}

	return func(occurrence any) {
		d.dispatch(trigger, codeField, preventDefault, occurrence)
	}
}

// dispatch is the body of every pipe. The trigger group is looked up by
// name on each call, so pipes stay valid across Reset. A code with no
// bound handler is skipped silently, with no handler call and no history
// entry.
func (d *Dispatcher) dispatch(trigger, codeField string, preventDefault bool, occurrence any) {
	if preventDefault {
		if p, ok := occurrence.(Preventable); ok {
			p.PreventDefault()
		}
	}

	if codeField != "" {
		switch o := occurrence.(type) {
		case Fielder:
			occurrence = o.Field(codeField)
		case map[string]any:
			occurrence = o[codeField]
		default:
			occurrence = nil
		}
	}

	code, label, ok := occurrenceKey(occurrence)
	if !ok {
		return
	}

	d.mu.Lock()
	group, exists := d.triggers[trigger]
	if !exists {
		d.mu.Unlock()
		return
	}

	var h Handler
	if label != "" {
		h = group.labels[label]
	} else {
		h = group.codes[code]
	}
	if h == nil {
		d.mu.Unlock()
		return
	}

	if d.recording {
		d.history.Entries = append(d.history.Entries, Entry{
			At:      d.clk.Now(),
			Trigger: trigger,
			Code:    code,
			Label:   label,
		})
	}
	d.mu.Unlock()

	d.Call(Direct(h))
}

// occurrenceKey coerces an occurrence (or extracted field value) to a
// raw code or label. Anything else is not dispatchable.
func occurrenceKey(v any) (Code, string, bool) {
	switch v := v.(type) {
	case Code:
		return v, "", true
	case int:
		return Code(v), "", true
	case int64:
		return Code(v), "", true
	case float64:
		return Code(v), "", true
	case string:
		return 0, v, true
	default:
		return 0, "", false
	}
}
