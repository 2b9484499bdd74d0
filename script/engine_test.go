package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/doolittlekyle/inputwire"
	"github.com/doolittlekyle/inputwire/clock"
)

const testScript = `
alias("move-left", {37, 65})

bind("key-down", "move-left", function(ctx)
    ctx.x = ctx.x - 1
    return ctx.x
end)

bind("key-up", "move-left", function(ctx)
    return "stopped"
end)
`

func TestLoadStringBindings(t *testing.T) {
	engine := New()
	defer engine.Close()

	if err := engine.LoadString(testScript); err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	cfg := engine.Config()
	if got := cfg.Aliases["move-left"]; len(got) != 2 || got[0] != 37 || got[1] != 65 {
		t.Fatalf("move-left alias = %v, want [37 65]", got)
	}
	if len(cfg.Triggers) != 2 {
		t.Fatalf("declared %d trigger groups, want 2", len(cfg.Triggers))
	}
}

func TestLuaHandlerSharesContext(t *testing.T) {
	engine := New()
	defer engine.Close()

	if err := engine.LoadString(testScript); err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	state := map[string]any{"x": int64(10)}
	cfg := engine.Config()
	cfg.EventContext = state

	d := inputwire.New(cfg, inputwire.WithClock(clock.NewManual()))
	pipe := d.MakePipe("key-down", "", false)
	pipe(37)
	pipe(65)

	// Lua assignments write through to the Go map.
	if got := state["x"]; got != int64(8) {
		t.Errorf("state.x = %v after two dispatches, want 8", got)
	}
}

func TestLuaHandlerResult(t *testing.T) {
	engine := New()
	defer engine.Close()

	if err := engine.LoadString(testScript); err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	d := inputwire.New(engine.Config(), inputwire.WithClock(clock.NewManual()))

	if got := d.Call(inputwire.LabelRef("key-up", "move-left")); got != "stopped" {
		t.Errorf("Call = %v, want stopped", got)
	}
}

func TestLoadStringSyntaxError(t *testing.T) {
	engine := New()
	defer engine.Close()

	if err := engine.LoadString("bind("); err == nil {
		t.Fatal("LoadString succeeded on broken Lua")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindings.lua")
	if err := os.WriteFile(path, []byte(testScript), 0o644); err != nil {
		t.Fatal(err)
	}

	engine := New()
	defer engine.Close()

	if err := engine.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(engine.Config().Triggers) != 2 {
		t.Error("file script did not register its triggers")
	}
}

func TestAliasRejectsNonNumericCodes(t *testing.T) {
	engine := New()
	defer engine.Close()

	if err := engine.LoadString(`alias("bad", {"x"})`); err == nil {
		t.Fatal("alias accepted a non-numeric code")
	}
}

func TestClosedEngineHandlerIsInert(t *testing.T) {
	engine := New()
	if err := engine.LoadString(testScript); err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	d := inputwire.New(engine.Config(), inputwire.WithClock(clock.NewManual()))
	engine.Close()

	if got := d.Call(inputwire.LabelRef("key-up", "move-left")); got != nil {
		t.Errorf("Call = %v after engine close, want nil", got)
	}
}
