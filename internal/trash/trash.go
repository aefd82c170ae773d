// Package trash abstracts "move this file out of the way permanently" the
// way internal/vcs abstracts git vs jj: a small interface, a registry of
// named constructors, and a factory that picks one at startup. This lets
// tests substitute a fake mover without touching the real trash.
package trash

import "fmt"

// Mover moves a file to the trash (or equivalent) and reports whether it
// succeeded. Implementations must not delete the file by any other means on
// failure — the caller falls back to leaving it in place.
type Mover interface {
	// Name identifies the implementation, e.g. "macos" or "fake".
	Name() string

	// MoveToTrash moves path out of its watch folder. It must be a no-op
	// (returning an error) rather than a hard delete if the move cannot be
	// completed.
	MoveToTrash(path string) error
}

// Constructor builds a Mover, returning an error if the implementation isn't
// usable on the current platform.
type Constructor func() (Mover, error)

var registry = make(map[string]Constructor)

// Register adds a named constructor to the registry. Implementations call
// this from an init() function, the same pattern internal/vcs uses for git
// and jj backends.
func Register(name string, constructor Constructor) {
	if constructor == nil {
		panic(fmt.Sprintf("trash: Register constructor is nil for %s", name))
	}
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("trash: Register called twice for %s", name))
	}
	registry[name] = constructor
}

// Get builds the Mover registered under name.
func Get(name string) (Mover, error) {
	constructor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("trash: no implementation registered for %q", name)
	}
	return constructor()
}

// Default resolves the Mover appropriate for the running platform: "macos"
// when available, otherwise "fake" (used by tests and non-macOS builds of
// the core, which only specifies the capability's contract).
func Default() (Mover, error) {
	if _, ok := registry["macos"]; ok {
		if m, err := Get("macos"); err == nil {
			return m, nil
		}
	}
	return Get("fake")
}
