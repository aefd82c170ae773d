//go:build darwin

package trash

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

func init() {
	Register("macos", func() (Mover, error) { return newMacOS() })
}

// macOS moves files into ~/.Trash, matching Finder's "Move to Trash"
// semantics closely enough for a headless daemon: same-volume rename where
// possible, falling back to copy-then-remove across volumes. It does not
// shell out to Finder/NSFileManager — those require a running UI session,
// which a background daemon may not have.
type macOS struct {
	trashDir string
}

func newMacOS() (*macOS, error) {
	u, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("trash: resolve current user: %w", err)
	}
	dir := filepath.Join(u.HomeDir, ".Trash")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("trash: create %s: %w", dir, err)
	}
	return &macOS{trashDir: dir}, nil
}

func (m *macOS) Name() string { return "macos" }

func (m *macOS) MoveToTrash(path string) error {
	target := m.uniqueTarget(filepath.Base(path))

	if sameVolume(path, m.trashDir) {
		if err := os.Rename(path, target); err == nil {
			return nil
		}
	}

	// Different volumes (or an unexpected rename failure on the same one):
	// fall back to copy+remove.
	if err := copyFile(path, target); err != nil {
		return fmt.Errorf("trash: move %s: %w", path, err)
	}
	return os.Remove(path)
}

// sameVolume reports whether path and dir live on the same filesystem, by
// comparing device numbers the way the kernel would reject a cross-device
// rename(2) (EXDEV). Checking up front avoids paying for a failed syscall
// on the common cross-volume case.
func sameVolume(path, dir string) bool {
	var pathStat, dirStat unix.Stat_t
	if err := unix.Stat(path, &pathStat); err != nil {
		return false
	}
	if err := unix.Stat(dir, &dirStat); err != nil {
		return false
	}
	return pathStat.Dev == dirStat.Dev
}

func (m *macOS) uniqueTarget(name string) string {
	candidate := filepath.Join(m.trashDir, name)
	if _, err := os.Lstat(candidate); err != nil {
		return candidate
	}

	ext := filepath.Ext(name)
	base := name[:len(name)-len(ext)]
	stamp := time.Now().UnixNano()
	return filepath.Join(m.trashDir, fmt.Sprintf("%s-%d%s", base, stamp, ext))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
