//go:build darwin

package transcode

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

func init() {
	Register("macos", func() (Transcoder, error) { return &macOS{}, nil })
}

// macOS shells out to the system's sips tool, the same way internal/vcs/git
// wraps the git binary: no cgo, no bundled codec, just the host image stack
// the spec calls for. sips bakes EXIF orientation into pixels on save and
// preserves the embedded color profile (falling back to sRGB) by default,
// satisfying the capability's contract without extra flags.
type macOS struct{}

func (m *macOS) Name() string { return "macos" }

func (m *macOS) Transcode(sourcePath, tmpTargetPath string, quality int) (int64, error) {
	if _, err := os.Stat(sourcePath); err != nil {
		return 0, decodeFailed(sourcePath, err)
	}

	cmd := exec.Command("sips",
		"-s", "format", "jpeg",
		"-s", "formatOptions", strconv.Itoa(quality),
		sourcePath,
		"--out", tmpTargetPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return 0, encodeFailed(tmpTargetPath, fmt.Errorf("sips: %w: %s", err, output))
	}

	info, err := os.Stat(tmpTargetPath)
	if err != nil {
		return 0, metadataFailed(tmpTargetPath, err)
	}
	return info.Size(), nil
}
