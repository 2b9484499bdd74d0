// Package script lets dispatcher bindings be written in Lua.
//
// A script declares aliases and handlers through two globals installed
// by the engine:
//
//	alias("move-left", {37, 65})
//	bind("key-down", "move-left", function(ctx)
//	    ctx.x = ctx.x - 1
//	end)
//
// Handlers receive the dispatcher's event context. Map contexts are
// bridged by reference, so assignments made from Lua are visible to Go
// handlers and to later invocations, matching the shared-context
// contract of the dispatcher.
package script

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/doolittlekyle/inputwire"
)

// Engine owns a Lua state and the bindings its scripts declare.
//
// gopher-lua states are not goroutine-safe; the engine serializes all
// script execution, including handler invocations, behind one mutex.
type Engine struct {
	mu       sync.Mutex
	state    *lua.LState
	aliases  map[string][]inputwire.Code
	triggers map[string]*inputwire.Group
	closed   bool
}

// New creates an engine with the binding globals installed.
func New() *Engine {
	e := &Engine{
		state:    lua.NewState(),
		aliases:  make(map[string][]inputwire.Code),
		triggers: make(map[string]*inputwire.Group),
	}
	e.state.SetGlobal("alias", e.state.NewFunction(e.luaAlias))
	e.state.SetGlobal("bind", e.state.NewFunction(e.luaBind))
	return e
}

// LoadFile executes a binding script from a file.
func (e *Engine) LoadFile(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return fmt.Errorf("engine is closed")
	}
	if err := e.state.DoFile(path); err != nil {
		return fmt.Errorf("running script %s: %w", path, err)
	}
	return nil
}

// LoadString executes a binding script from source text.
func (e *Engine) LoadString(src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return fmt.Errorf("engine is closed")
	}
	if err := e.state.DoString(src); err != nil {
		return fmt.Errorf("running script: %w", err)
	}
	return nil
}

// Config returns the configuration accumulated by the scripts run so
// far. The engine must stay open while the returned handlers are in
// use.
func (e *Engine) Config() inputwire.Config {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := inputwire.Config{
		Triggers: make(map[string]*inputwire.Group, len(e.triggers)),
		Aliases:  make(map[string][]inputwire.Code, len(e.aliases)),
	}
	for name, group := range e.triggers {
		cfg.Triggers[name] = group
	}
	for label, codes := range e.aliases {
		copied := make([]inputwire.Code, len(codes))
		copy(copied, codes)
		cfg.Aliases[label] = copied
	}
	return cfg
}

// Close releases the Lua state. Handlers produced by this engine stop
// working once it is closed.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.closed {
		e.closed = true
		e.state.Close()
	}
}

// luaAlias implements alias(label, {codes}).
func (e *Engine) luaAlias(L *lua.LState) int {
	label := L.CheckString(1)
	table := L.CheckTable(2)

	codes := make([]inputwire.Code, 0, table.Len())
	for i := 1; i <= table.Len(); i++ {
		n, ok := table.RawGetInt(i).(lua.LNumber)
		if !ok {
			L.ArgError(2, fmt.Sprintf("alias %q: code %d is not a number", label, i))
			return 0
		}
		codes = append(codes, inputwire.Code(n))
	}

	e.aliases[label] = codes
	return 0
}

// luaBind implements bind(trigger, label, fn).
func (e *Engine) luaBind(L *lua.LState) int {
	trigger := L.CheckString(1)
	label := L.CheckString(2)
	fn := L.CheckFunction(3)

	group, ok := e.triggers[trigger]
	if !ok {
		group = inputwire.NewGroup()
		e.triggers[trigger] = group
	}
	group.Bind(label, e.wrap(fn))
	return 0
}

// wrap adapts a Lua function into a dispatcher handler. The handler
// bridges the event context in, calls the function, and bridges its
// first return value out.
func (e *Engine) wrap(fn *lua.LFunction) inputwire.Handler {
	return func(ctx any) any {
		e.mu.Lock()
		defer e.mu.Unlock()

		if e.closed {
			return nil
		}

		err := e.state.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, e.contextValue(ctx))
		if err != nil {
			return err
		}

		ret := e.state.Get(-1)
		e.state.Pop(1)
		return toGo(ret)
	}
}

// contextValue bridges the event context into Lua. Map contexts become
// a write-through proxy so mutation stays shared; everything else is
// converted by value.
func (e *Engine) contextValue(ctx any) lua.LValue {
	if m, ok := ctx.(map[string]any); ok {
		return e.mapProxy(m)
	}
	return toLua(e.state, ctx)
}

// mapProxy wraps a Go map in userdata whose index metamethods read and
// write the map directly.
func (e *Engine) mapProxy(m map[string]any) lua.LValue {
	ud := e.state.NewUserData()
	ud.Value = m

	mt := e.state.NewTable()
	e.state.SetField(mt, "__index", e.state.NewFunction(func(L *lua.LState) int {
		target := L.CheckUserData(1).Value.(map[string]any)
		key := L.CheckString(2)
		L.Push(toLua(L, target[key]))
		return 1
	}))
	e.state.SetField(mt, "__newindex", e.state.NewFunction(func(L *lua.LState) int {
		target := L.CheckUserData(1).Value.(map[string]any)
		key := L.CheckString(2)
		target[key] = toGo(L.Get(3))
		return 0
	}))
	e.state.SetMetatable(ud, mt)
	return ud
}
