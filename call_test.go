package inputwire

import "testing"

func TestCallDirect(t *testing.T) {
	d, _, _ := newTestDispatcher(t, Config{EventContext: "ctx"})

	got := d.Call(Direct(func(ctx any) any {
		if ctx != "ctx" {
			t.Errorf("handler context = %v, want ctx", ctx)
		}
		return 42
	}))

	if got != 42 {
		t.Errorf("Call result = %v, want 42", got)
	}
}

func TestCallCodeRef(t *testing.T) {
	d, _, _ := newTestDispatcher(t, Config{
		Triggers: map[string]*Group{
			"key-down": NewGroup().Bind("move-left", func(ctx any) any { return "left" }),
		},
		Aliases: map[string][]Code{"move-left": {37}},
	})

	if got := d.Call(CodeRef("key-down", 37)); got != "left" {
		t.Errorf("Call(CodeRef) = %v, want left", got)
	}
}

func TestCallLabelRef(t *testing.T) {
	d, _, _ := newTestDispatcher(t, Config{
		Triggers: map[string]*Group{
			"key-down": NewGroup().Bind("move-left", func(ctx any) any { return "left" }),
		},
	})

	if got := d.Call(LabelRef("key-down", "move-left")); got != "left" {
		t.Errorf("Call(LabelRef) = %v, want left", got)
	}
}

func TestCallBlankHandler(t *testing.T) {
	tests := []struct {
		name string
		ref  Ref
	}{
		{"nil direct handler", Direct(nil)},
		{"unknown trigger", CodeRef("no-such-trigger", 37)},
		{"unbound code", CodeRef("key-down", 999)},
		{"unbound label", LabelRef("key-down", "no-such-label")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, logs := newTestDispatcher(t, Config{
				Triggers: map[string]*Group{"key-down": NewGroup()},
			})

			if got := d.Call(tt.ref); got != nil {
				t.Errorf("Call = %v, want nil", got)
			}
			if got := logs.Len(); got != 1 {
				t.Errorf("logged %d warnings, want exactly 1", got)
			}
		})
	}
}

func TestCallDoesNotRecord(t *testing.T) {
	d, _, _ := newTestDispatcher(t, Config{
		Triggers: map[string]*Group{
			"key-down": NewGroup().Bind("move-left", func(ctx any) any { return nil }),
		},
		Aliases: map[string][]Code{"move-left": {37}},
	})

	d.Call(CodeRef("key-down", 37))

	if got := len(d.History().Entries); got != 0 {
		t.Errorf("Call recorded %d history entries, want 0", got)
	}
}

func TestCallHandlerCanReenterDispatcher(t *testing.T) {
	d, _, _ := newTestDispatcher(t, Config{
		Triggers: map[string]*Group{
			"key-down": NewGroup().
				Bind("outer", nil).
				Bind("inner", func(ctx any) any { return "inner" }),
		},
	})

	// Re-binding from inside a handler must not deadlock.
	d.AddBinding("key-down", "outer", func(ctx any) any {
		return d.Call(LabelRef("key-down", "inner"))
	})

	if got := d.Call(LabelRef("key-down", "outer")); got != "inner" {
		t.Errorf("nested Call = %v, want inner", got)
	}
}
