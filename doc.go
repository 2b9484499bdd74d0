// Package inputwire decouples raw input signals from the application
// logic that reacts to them.
//
// Raw codes (key codes, mouse codes, or any discrete event codes) reach
// the application through a two-level indirection: triggers are named
// groups of handlers such as "key-down", and aliases map human-readable
// labels such as "move-left" onto one or more raw codes. Every dispatch
// is timestamped into a history that can be replayed later with the
// original relative timing preserved.
//
// # Dispatch
//
// A Dispatcher is configured wholesale through Reset and produces pipes,
// one per trigger group, that the host environment feeds occurrences
// into:
//
//	d := inputwire.New(inputwire.Config{
//	    Triggers: map[string]*inputwire.Group{
//	        "key-down": inputwire.NewGroup().Bind("move-left", walkLeft),
//	    },
//	    Aliases: map[string][]inputwire.Code{
//	        "move-left": {37, 65},
//	    },
//	})
//	pipe := d.MakePipe("key-down", "keyCode", false)
//	pipe(occurrence) // looks up the code, records it, calls walkLeft
//
// Alias resolution runs during Reset: the handler registered under each
// alias label is copied onto every raw code the alias stands for, in
// every trigger group.
//
// # Recording and replay
//
// While recording is enabled, each successful pipe dispatch appends a
// (trigger, code) entry keyed by the clock's current millisecond
// reading. RestartHistory archives or discards the active history and
// re-bases the session start time. PlayHistory schedules every entry of
// a history at its recorded offset from the session start; replayed
// entries re-enter the event caller directly and are never re-recorded.
//
// # Clocks
//
// Elapsed time and deferred scheduling come from the clock package.
// Production dispatchers default to clock.System; tests inject
// clock.Manual for deterministic timing.
package inputwire
