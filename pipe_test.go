package inputwire

import "testing"

// fakeOccurrence is a structured occurrence with a code field and a
// default-suppression capability.
type fakeOccurrence struct {
	fields    map[string]any
	prevented bool
}

func (o *fakeOccurrence) Field(name string) any {
	return o.fields[name]
}

func (o *fakeOccurrence) PreventDefault() {
	o.prevented = true
}

func TestMakePipeUnknownTrigger(t *testing.T) {
	d, _, logs := newTestDispatcher(t, Config{
		Triggers: map[string]*Group{"key-down": NewGroup()},
	})

	pipe := d.MakePipe("unknown", "", false)

	if pipe != nil {
		t.Error("MakePipe(unknown) != nil")
	}
	if got := logs.Len(); got != 1 {
		t.Errorf("logged %d warnings, want exactly 1", got)
	}
	if d.Trigger("unknown") != nil {
		t.Error("unknown trigger group was created as a side effect")
	}
}

func TestPipeDispatchRecordsAndCalls(t *testing.T) {
	var calls []any
	fnA := func(ctx any) any {
		calls = append(calls, ctx)
		return nil
	}
	context := map[string]any{"score": 0}

	d, manual, _ := newTestDispatcher(t, Config{
		Triggers: map[string]*Group{
			"key-down": NewGroup().Bind("move-left", fnA),
		},
		Aliases:      map[string][]Code{"move-left": {37, 65}},
		EventContext: context,
	})

	manual.Set(120)
	pipe := d.MakePipe("key-down", "keyCode", false)
	pipe(&fakeOccurrence{fields: map[string]any{"keyCode": 37}})

	if len(calls) != 1 {
		t.Fatalf("handler invoked %d times, want 1", len(calls))
	}
	if got, ok := calls[0].(map[string]any); !ok || got["score"] != 0 {
		t.Errorf("handler context = %v, want the shared event context", calls[0])
	}

	entries := d.History().Entries
	if len(entries) != 1 {
		t.Fatalf("history has %d entries, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Trigger != "key-down" || entry.Code != 37 {
		t.Errorf("entry = (%s, %d), want (key-down, 37)", entry.Trigger, entry.Code)
	}
	if entry.At < d.History().Start {
		t.Errorf("entry.At = %d, want >= session start %d", entry.At, d.History().Start)
	}
	if entry.At != 120 {
		t.Errorf("entry.At = %d, want clock reading 120", entry.At)
	}
}

func TestPipeMapOccurrence(t *testing.T) {
	invoked := 0
	d, _, _ := newTestDispatcher(t, Config{
		Triggers: map[string]*Group{
			"key-down": NewGroup().Bind("move-left", func(ctx any) any {
				invoked++
				return nil
			}),
		},
		Aliases: map[string][]Code{"move-left": {37}},
	})

	pipe := d.MakePipe("key-down", "keyCode", false)
	pipe(map[string]any{"keyCode": 37})

	if invoked != 1 {
		t.Errorf("handler invoked %d times, want 1", invoked)
	}
}

func TestPipeBareCodeOccurrence(t *testing.T) {
	invoked := 0
	d, _, _ := newTestDispatcher(t, Config{
		Triggers: map[string]*Group{
			"key-down": NewGroup().Bind("move-left", func(ctx any) any {
				invoked++
				return nil
			}),
		},
		Aliases: map[string][]Code{"move-left": {37}},
	})

	// No code field: the occurrence itself is the code.
	pipe := d.MakePipe("key-down", "", false)
	pipe(37)
	pipe(Code(37))
	pipe(int64(37))
	pipe(float64(37))

	if invoked != 4 {
		t.Errorf("handler invoked %d times, want 4", invoked)
	}
}

func TestPipeLabelOccurrence(t *testing.T) {
	invoked := 0
	d, _, _ := newTestDispatcher(t, Config{
		Triggers: map[string]*Group{
			"key-down": NewGroup().Bind("move-left", func(ctx any) any {
				invoked++
				return nil
			}),
		},
	})

	pipe := d.MakePipe("key-down", "", false)
	pipe("move-left")

	if invoked != 1 {
		t.Fatalf("handler invoked %d times, want 1", invoked)
	}

	entries := d.History().Entries
	if len(entries) != 1 {
		t.Fatalf("history has %d entries, want 1", len(entries))
	}
	if entries[0].Label != "move-left" {
		t.Errorf("entry label = %q, want move-left", entries[0].Label)
	}
}

func TestPipeRecordingDisabled(t *testing.T) {
	invoked := 0
	recording := false
	d, _, _ := newTestDispatcher(t, Config{
		Triggers: map[string]*Group{
			"key-down": NewGroup().Bind("move-left", func(ctx any) any {
				invoked++
				return nil
			}),
		},
		Aliases:   map[string][]Code{"move-left": {37}},
		Recording: &recording,
	})

	pipe := d.MakePipe("key-down", "", false)
	pipe(37)

	if invoked != 1 {
		t.Errorf("handler invoked %d times, want 1 (recording off still dispatches)", invoked)
	}
	if got := len(d.History().Entries); got != 0 {
		t.Errorf("history has %d entries with recording off, want 0", got)
	}
}

func TestPipeSilentMiss(t *testing.T) {
	d, _, logs := newTestDispatcher(t, Config{
		Triggers: map[string]*Group{"key-down": NewGroup()},
	})

	pipe := d.MakePipe("key-down", "", false)
	pipe(999)
	pipe("no-such-label")
	pipe(struct{}{}) // not coercible to a code or label at all

	if got := len(d.History().Entries); got != 0 {
		t.Errorf("history has %d entries, want 0", got)
	}
	if got := logs.Len(); got != 0 {
		t.Errorf("logged %d warnings for unbound dispatch, want 0", got)
	}
}

func TestPipeMissingField(t *testing.T) {
	invoked := 0
	d, _, _ := newTestDispatcher(t, Config{
		Triggers: map[string]*Group{
			"key-down": NewGroup().BindCode(0, func(ctx any) any {
				invoked++
				return nil
			}),
		},
	})

	pipe := d.MakePipe("key-down", "keyCode", false)
	pipe(&fakeOccurrence{fields: map[string]any{}})
	pipe(42) // not a Fielder or map; extraction yields nothing

	// A missing field must not fall back to code zero.
	if invoked != 0 {
		t.Errorf("handler invoked %d times for missing fields, want 0", invoked)
	}
}

func TestPipePreventDefault(t *testing.T) {
	tests := []struct {
		name           string
		preventDefault bool
		want           bool
	}{
		{"enabled", true, true},
		{"disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, _ := newTestDispatcher(t, Config{
				Triggers: map[string]*Group{"key-down": NewGroup()},
			})

			pipe := d.MakePipe("key-down", "keyCode", tt.preventDefault)
			occ := &fakeOccurrence{fields: map[string]any{"keyCode": 1}}
			pipe(occ)

			if occ.prevented != tt.want {
				t.Errorf("prevented = %v, want %v", occ.prevented, tt.want)
			}
		})
	}
}

func TestPipeSurvivesReset(t *testing.T) {
	invoked := 0
	fn := func(ctx any) any {
		invoked++
		return nil
	}
	cfg := Config{
		Triggers: map[string]*Group{
			"key-down": NewGroup().Bind("move-left", fn),
		},
		Aliases: map[string][]Code{"move-left": {37}},
	}

	d, _, _ := newTestDispatcher(t, cfg)
	pipe := d.MakePipe("key-down", "", false)

	d.Reset(cfg)
	pipe(37)

	if invoked != 1 {
		t.Errorf("handler invoked %d times after reset, want 1", invoked)
	}

	// A reset that drops the trigger group turns the pipe into a no-op.
	d.Reset(Config{})
	pipe(37)
	if invoked != 1 {
		t.Errorf("handler invoked %d times after trigger removal, want still 1", invoked)
	}
}
