package inputwire

// Code is a raw input code delivered by the host environment, such as a
// keyboard code or mouse button number.
type Code int

// Handler reacts to a dispatched input. It receives the shared event
// context and its return value becomes the result of the dispatch.
type Handler func(eventContext any) any

// Group holds the handlers for one category of input event, such as
// "key-down". Handlers are bound under human-readable labels and under
// raw codes; alias resolution copies label bindings onto their codes.
type Group struct {
	labels map[string]Handler
	codes  map[Code]Handler
}

// NewGroup creates an empty trigger group.
func NewGroup() *Group {
	return &Group{
		labels: make(map[string]Handler),
		codes:  make(map[Code]Handler),
	}
}

// Bind registers a handler under a human-readable label.
func (g *Group) Bind(label string, h Handler) *Group {
	g.labels[label] = h
	return g
}

// BindCode registers a handler directly under a raw code.
func (g *Group) BindCode(code Code, h Handler) *Group {
	g.codes[code] = h
	return g
}

// Label returns the handler bound under a label, or nil.
func (g *Group) Label(label string) Handler {
	return g.labels[label]
}

// Code returns the handler bound under a raw code, or nil.
func (g *Group) Code(code Code) Handler {
	return g.codes[code]
}

// Clone creates a deep copy of the group.
func (g *Group) Clone() *Group {
	clone := &Group{
		labels: make(map[string]Handler, len(g.labels)),
		codes:  make(map[Code]Handler, len(g.codes)),
	}
	for label, h := range g.labels {
		clone.labels[label] = h
	}
	for code, h := range g.codes {
		clone.codes[code] = h
	}
	return clone
}

// resolveAlias copies the handler bound under label onto every code in
// codes. When the label is unbound the codes receive a nil handler, which
// later fails the dispatch presence check.
func (g *Group) resolveAlias(label string, codes []Code) {
	h := g.labels[label]
	for _, code := range codes {
		g.codes[code] = h
	}
}

// unbindAlias removes the code bindings derived from an alias.
func (g *Group) unbindAlias(codes []Code) {
	for _, code := range codes {
		delete(g.codes, code)
	}
}
