// Package loader builds dispatcher configurations from TOML files.
//
// A binding file declares aliases and trigger bindings by action name.
// Handlers themselves stay in Go code: callers register them under
// action names, and the loader resolves each binding's action name
// against that set.
//
// Example file:
//
//	[aliases]
//	move-left = [37, 65]
//	move-right = [39, 68]
//
//	[triggers.key-down]
//	move-left = "walk-left"
//	move-right = "walk-right"
package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/doolittlekyle/inputwire"
)

// Loader resolves TOML binding files against a set of named actions.
type Loader struct {
	actions map[string]inputwire.Handler
}

// New creates a loader with no registered actions.
func New() *Loader {
	return &Loader{
		actions: make(map[string]inputwire.Handler),
	}
}

// RegisterAction makes a handler available to binding files under the
// given action name, replacing any previous registration.
func (l *Loader) RegisterAction(name string, h inputwire.Handler) *Loader {
	l.actions[name] = h
	return l
}

// LoadFile reads a binding file and returns the dispatcher
// configuration it describes.
func (l *Loader) LoadFile(path string) (inputwire.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return inputwire.Config{}, fmt.Errorf("opening binding file: %w", err)
	}
	defer f.Close()

	cfg, err := l.LoadReader(f)
	if err != nil {
		return inputwire.Config{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// LoadReader reads a binding file from r.
func (l *Loader) LoadReader(r io.Reader) (inputwire.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return inputwire.Config{}, fmt.Errorf("reading bindings: %w", err)
	}

	var file bindingFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return inputwire.Config{}, fmt.Errorf("decoding bindings: %w", err)
	}

	return l.resolve(file)
}

// resolve converts the raw file structure into a Config, looking up each
// action name against the registered actions.
func (l *Loader) resolve(file bindingFile) (inputwire.Config, error) {
	cfg := inputwire.Config{
		Triggers: make(map[string]*inputwire.Group, len(file.Triggers)),
		Aliases:  make(map[string][]inputwire.Code, len(file.Aliases)),
	}

	for label, codes := range file.Aliases {
		cfg.Aliases[label] = codes
	}

	for trigger, bindings := range file.Triggers {
		group := inputwire.NewGroup()
		for label, action := range bindings {
			h, ok := l.actions[action]
			if !ok {
				return inputwire.Config{}, fmt.Errorf(
					"trigger %q binding %q: unknown action %q", trigger, label, action)
			}
			group.Bind(label, h)
		}
		cfg.Triggers[trigger] = group
	}

	return cfg, nil
}

// bindingFile is the TOML structure for binding files.
type bindingFile struct {
	Aliases  map[string][]inputwire.Code  `toml:"aliases"`
	Triggers map[string]map[string]string `toml:"triggers"`
}
