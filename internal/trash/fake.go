package trash

import "sync"

func init() {
	Register("fake", func() (Mover, error) { return NewFake(), nil })
}

// Fake is a test double that records every call instead of touching a real
// trash can. Safe for concurrent use.
type Fake struct {
	mu    sync.Mutex
	moved []string
	err   error
}

// NewFake returns a Fake that succeeds on every call.
func NewFake() *Fake {
	return &Fake{}
}

// NewFakeFailing returns a Fake whose MoveToTrash always returns err.
func NewFakeFailing(err error) *Fake {
	return &Fake{err: err}
}

func (f *Fake) Name() string { return "fake" }

// MoveToTrash records path and returns the configured error, if any.
func (f *Fake) MoveToTrash(path string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.moved = append(f.moved, path)
	f.mu.Unlock()
	return nil
}

// Moved returns every path passed to MoveToTrash, in call order.
func (f *Fake) Moved() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.moved))
	copy(out, f.moved)
	return out
}
