package classify

import "testing"

func TestIsEligibleAcceptsHeicAndHeif(t *testing.T) {
	roots := Roots{WatchFolders: []string{"/w"}, RecursiveWatch: false}

	if !IsEligible("/w/a.heic", roots) {
		t.Error("expected /w/a.heic to be eligible")
	}
	if !IsEligible("/w/a.HEIF", roots) {
		t.Error("expected case-insensitive extension match")
	}
	if IsEligible("/w/a.jpg", roots) {
		t.Error("expected .jpg to be ineligible")
	}
}

func TestIsEligibleRejectsRelativePath(t *testing.T) {
	roots := Roots{WatchFolders: []string{"/w"}}
	if IsEligible("w/a.heic", roots) {
		t.Error("expected relative path to be ineligible")
	}
}

func TestIsEligibleRequiresWatchedRoot(t *testing.T) {
	roots := Roots{WatchFolders: []string{"/w"}}
	if IsEligible("/elsewhere/a.heic", roots) {
		t.Error("expected path outside watched roots to be ineligible")
	}
}

func TestIsEligibleNonRecursiveRejectsSubdirectory(t *testing.T) {
	roots := Roots{WatchFolders: []string{"/w"}, RecursiveWatch: false}
	if IsEligible("/w/sub/a.heic", roots) {
		t.Error("expected subdirectory file to be ineligible when non-recursive")
	}
}

func TestIsEligibleRecursiveAcceptsSubdirectory(t *testing.T) {
	roots := Roots{WatchFolders: []string{"/w"}, RecursiveWatch: true}
	if !IsEligible("/w/sub/deep/a.heic", roots) {
		t.Error("expected nested subdirectory file to be eligible when recursive")
	}
}
