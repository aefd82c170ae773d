// Package classify implements C3: deciding whether a path is an eligible
// HEIC/HEIF source file under a watched root.
package classify

import (
	"path/filepath"
	"strings"
)

// Roots is the subset of Config the classifier needs: the watched
// directories and whether watching is recursive.
type Roots struct {
	WatchFolders   []string
	RecursiveWatch bool
}

// IsEligible reports whether path is absolute, has a .heic/.heif extension
// (case-insensitive), lies under one of the watched roots, and — when
// recursion is off — is a direct child of that root. It does not resolve
// symlinks or touch the filesystem; it is a pure path computation so the
// watch dispatcher and rescan ticker can share it cheaply.
func IsEligible(path string, roots Roots) bool {
	if !filepath.IsAbs(path) {
		return false
	}
	if !hasImageExtension(path) {
		return false
	}

	if _, ok := containingRoot(path, roots.WatchFolders); !ok {
		return false
	}

	if !roots.RecursiveWatch {
		dir := filepath.Dir(path)
		for _, root := range roots.WatchFolders {
			if dir == root {
				return true
			}
		}
		return false
	}

	return true
}

func hasImageExtension(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	return ext == "heic" || ext == "heif"
}

// containingRoot returns the first watched root that is an ancestor of (or
// equal to) path's directory.
func containingRoot(path string, roots []string) (string, bool) {
	dir := filepath.Dir(path)
	for _, root := range roots {
		if dir == root || strings.HasPrefix(dir, root+string(filepath.Separator)) {
			return root, true
		}
	}
	return "", false
}
