// Package main is an interactive terminal demonstration of inputwire.
//
// Arrow keys and WASD move a marker; every key press flows through a
// dispatch pipe built over a "key-down" trigger group. Ctrl+R restarts
// the history (archiving the old one) and Ctrl+P replays the active
// history with its original timing.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/doolittlekyle/inputwire"
	"github.com/doolittlekyle/inputwire/loader"
	"github.com/doolittlekyle/inputwire/script"
)

// Classic browser key codes, used as the raw code space for the demo.
const (
	codeLeft  inputwire.Code = 37
	codeUp    inputwire.Code = 38
	codeRight inputwire.Code = 39
	codeDown  inputwire.Code = 40
)

type options struct {
	bindingsPath string
	scriptPath   string
	logPath      string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	log, closeLog, err := newLogger(opts.logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create screen: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init screen: %v\n", err)
		return 1
	}
	defer screen.Fini()

	state := map[string]any{"x": 10, "y": 5}

	cfg, cleanup, err := buildConfig(opts, state)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	d := inputwire.New(cfg, inputwire.WithLogger(log))

	pipe := d.MakePipe("key-down", "keyCode", false)
	if pipe == nil {
		screen.Fini()
		fmt.Fprintln(os.Stderr, "Error: bindings declare no key-down trigger")
		return 1
	}

	for {
		draw(screen, state, d)

		ev := screen.PollEvent()
		key, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}

		switch {
		case key.Key() == tcell.KeyCtrlC || key.Key() == tcell.KeyEscape:
			return 0
		case key.Key() == tcell.KeyCtrlR:
			d.RestartHistory(true)
		case key.Key() == tcell.KeyCtrlP:
			d.PlayHistory(nil)
		default:
			pipe(keyOccurrence{event: key})
		}
	}
}

// buildConfig assembles the dispatcher configuration from a TOML binding
// file, a Lua script, or the built-in defaults, in that order of
// preference.
func buildConfig(opts options, state map[string]any) (inputwire.Config, func(), error) {
	noop := func() {}

	if opts.bindingsPath != "" {
		ldr := loader.New().
			RegisterAction("move-left", mover(state, "x", -1)).
			RegisterAction("move-right", mover(state, "x", +1)).
			RegisterAction("move-up", mover(state, "y", -1)).
			RegisterAction("move-down", mover(state, "y", +1))
		cfg, err := ldr.LoadFile(opts.bindingsPath)
		if err != nil {
			return inputwire.Config{}, noop, err
		}
		cfg.EventContext = state
		return cfg, noop, nil
	}

	if opts.scriptPath != "" {
		engine := script.New()
		if err := engine.LoadFile(opts.scriptPath); err != nil {
			engine.Close()
			return inputwire.Config{}, noop, err
		}
		cfg := engine.Config()
		cfg.EventContext = state
		return cfg, engine.Close, nil
	}

	cfg := inputwire.Config{
		Triggers: map[string]*inputwire.Group{
			"key-down": inputwire.NewGroup().
				Bind("move-left", mover(state, "x", -1)).
				Bind("move-right", mover(state, "x", +1)).
				Bind("move-up", mover(state, "y", -1)).
				Bind("move-down", mover(state, "y", +1)),
		},
		Aliases: map[string][]inputwire.Code{
			"move-left":  {codeLeft, 'A'},
			"move-right": {codeRight, 'D'},
			"move-up":    {codeUp, 'W'},
			"move-down":  {codeDown, 'S'},
		},
		EventContext: state,
	}
	return cfg, noop, nil
}

// mover returns a handler that shifts one coordinate of the shared
// state.
func mover(state map[string]any, axis string, delta int) inputwire.Handler {
	return func(ctx any) any {
		m, ok := ctx.(map[string]any)
		if !ok {
			m = state
		}
		if cur, ok := m[axis].(int); ok {
			m[axis] = cur + delta
		}
		return nil
	}
}

// keyOccurrence adapts a tcell key event to the pipe's field-extraction
// contract.
type keyOccurrence struct {
	event *tcell.EventKey
}

func (o keyOccurrence) Field(name string) any {
	if name != "keyCode" {
		return nil
	}
	switch o.event.Key() {
	case tcell.KeyLeft:
		return int(codeLeft)
	case tcell.KeyUp:
		return int(codeUp)
	case tcell.KeyRight:
		return int(codeRight)
	case tcell.KeyDown:
		return int(codeDown)
	case tcell.KeyRune:
		r := o.event.Rune()
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		return int(r)
	default:
		return nil
	}
}

func draw(screen tcell.Screen, state map[string]any, d *inputwire.Dispatcher) {
	screen.Clear()

	style := tcell.StyleDefault
	putString(screen, 0, 0, style, "inputwire demo — arrows/WASD move, Ctrl+R restart, Ctrl+P replay, Esc quit")

	entries := len(d.History().Entries)
	archived := len(d.Histories())
	putString(screen, 0, 1, style,
		fmt.Sprintf("history: %d entries, %d archived", entries, archived))

	x, _ := state["x"].(int)
	y, _ := state["y"].(int)
	screen.SetContent(x, y+3, '@', nil, style.Bold(true))

	screen.Show()
}

func putString(screen tcell.Screen, x, y int, style tcell.Style, s string) {
	for i, r := range s {
		screen.SetContent(x+i, y, r, nil, style)
	}
}

func parseFlags() options {
	var opts options

	flag.StringVar(&opts.bindingsPath, "bindings", "", "Path to a TOML binding file")
	flag.StringVar(&opts.scriptPath, "script", "", "Path to a Lua binding script")
	flag.StringVar(&opts.logPath, "log", "inputwire-demo.log", "Path to the warning log")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "inputwire-demo - input dispatch demonstration\n\n")
		fmt.Fprintf(os.Stderr, "Usage: inputwire-demo [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()
	return opts
}

// newLogger builds a console-format zap logger writing to a file, so
// warnings do not fight the terminal screen for output.
func newLogger(path string) (*zap.Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "time",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})

	core := zapcore.NewCore(encoder, zapcore.AddSync(f), zap.WarnLevel)
	log := zap.New(core)

	return log, func() {
		_ = log.Sync()
		_ = f.Close()
	}, nil
}
