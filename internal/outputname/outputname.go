// Package outputname implements C5: picking a non-colliding .jpg target next
// to a HEIC/HEIF source.
package outputname

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxCollisionAttempts bounds the "(n)" suffix search.
const MaxCollisionAttempts = 9999

// ErrCollisionOverflow is returned when no free name was found within
// MaxCollisionAttempts tries.
var ErrCollisionOverflow = errors.New("collision-overflow")

// Preferred returns the target path a source would get if nothing is in the
// way: /d/base.heic -> /d/base.jpg.
func Preferred(source string) string {
	dir := filepath.Dir(source)
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(dir, base+".jpg")
}

// Resolve returns the first non-existent path in the sequence base.jpg,
// "base (1).jpg", "base (2).jpg", ... An existing path of any kind (file,
// directory, symlink) counts as a collision; Resolve never overwrites.
func Resolve(source string) (string, error) {
	preferred := Preferred(source)
	if !exists(preferred) {
		return preferred, nil
	}

	dir := filepath.Dir(preferred)
	base := strings.TrimSuffix(filepath.Base(preferred), ".jpg")

	for n := 1; n <= MaxCollisionAttempts; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d).jpg", base, n))
		if !exists(candidate) {
			return candidate, nil
		}
	}

	return "", ErrCollisionOverflow
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
