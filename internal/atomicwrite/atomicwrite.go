package atomicwrite

import (
	"errors"
	"fmt"
	"os"

	"heic-readyd/internal/config"
	"heic-readyd/internal/trash"
)

// Commit flushes tmpPath's contents to disk and renames it to finalPath.
// tmpPath must be in the same directory as finalPath so the rename is
// atomic. On any failure, tmpPath is best-effort removed before the error is
// returned.
func Commit(tmpPath, finalPath string) error {
	if err := syncFile(tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file into place: %w", err)
	}

	return nil
}

// PostProcessOutcome reports what happened to the source file after a
// successful commit.
type PostProcessOutcome int

const (
	// Kept means the source was left untouched (coexist, or replace
	// downgraded at the config layer).
	Kept PostProcessOutcome = iota

	// Trashed means the source was successfully moved to the trash.
	Trashed

	// TrashFailed means replace was requested but the move failed; the
	// source was left in place and the conversion is still a success.
	TrashFailed
)

// ApplyPolicy runs the post-process step described in §4.4: coexist leaves
// the source alone; replace moves it to trash via mover, tolerating failure
// (the source is never deleted by any other means).
func ApplyPolicy(mover trash.Mover, sourcePath string, policy config.OutputPolicy) (PostProcessOutcome, error) {
	if policy != config.PolicyReplace {
		return Kept, nil
	}

	if err := mover.MoveToTrash(sourcePath); err != nil {
		return TrashFailed, err
	}
	return Trashed, nil
}

// ErrSourceMissing is a shared sentinel for a source file that is no longer
// present. Neither Commit nor ApplyPolicy returns it.
var ErrSourceMissing = errors.New("atomicwrite: source file no longer present")
