//go:build unix

package atomicwrite

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncFile opens path and calls fsync(2) directly via golang.org/x/sys/unix
// rather than *os.File.Sync, matching the exact durability guarantee §4.4
// asks for (data reaches stable storage before the rename that exposes it).
func syncFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	return unix.Fsync(int(f.Fd()))
}
