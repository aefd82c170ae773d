// Package config defines the daemon's configuration snapshot: its on-disk
// JSON shape, defaults, validation, and an in-memory store that hands out
// immutable snapshots to readers without locking.
package config

import (
	"path/filepath"
	"strings"
)

// OutputPolicy controls what happens to the source file after a successful
// conversion.
type OutputPolicy string

const (
	// PolicyCoexist leaves the source file next to the generated JPEG.
	PolicyCoexist OutputPolicy = "coexist"

	// PolicyReplace moves the source file to the trash after conversion.
	PolicyReplace OutputPolicy = "replace"
)

// Locale is passed through to the tray shell; it has no effect on core
// behavior.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleJA Locale = "ja"
)

const (
	// MinJPEGQuality and MaxJPEGQuality bound Config.JPEGQuality.
	MinJPEGQuality = 0
	MaxJPEGQuality = 100

	// MinRescanIntervalSecs and MaxRescanIntervalSecs bound
	// Config.RescanIntervalSecs.
	MinRescanIntervalSecs = 15
	MaxRescanIntervalSecs = 3600

	// DefaultRescanIntervalSecs is used when the field is absent from a
	// loaded config file.
	DefaultRescanIntervalSecs = 60

	// DefaultJPEGQuality is used when the field is absent from a loaded
	// config file.
	DefaultJPEGQuality = 92
)

// Config is an immutable snapshot of the daemon's settings. Callers never
// mutate a Config in place; they build a new one and hand it to
// (*Store).Replace.
type Config struct {
	WatchFolders       []string     `json:"watch_folders"`
	RecursiveWatch     bool         `json:"recursive_watch"`
	OutputPolicy       OutputPolicy `json:"output_policy"`
	JPEGQuality        int          `json:"jpeg_quality"`
	RescanIntervalSecs int          `json:"rescan_interval_secs"`
	Paused             bool         `json:"paused"`
	Locale             Locale       `json:"locale"`
}

// Default returns the configuration used when no config file exists yet.
func Default() Config {
	return Config{
		WatchFolders:       nil,
		RecursiveWatch:     false,
		OutputPolicy:       PolicyCoexist,
		JPEGQuality:        DefaultJPEGQuality,
		RescanIntervalSecs: DefaultRescanIntervalSecs,
		Paused:             false,
		Locale:             LocaleEN,
	}
}

// Normalize deduplicates and cleans WatchFolders (filepath.Clean, no
// trailing separators) and fills in zero-valued optional fields with their
// defaults. Relative folders stay relative; Validate rejects them. It does
// not validate ranges; call Validate for that.
func (c Config) Normalize() Config {
	out := c
	out.WatchFolders = normalizeWatchFolders(c.WatchFolders)

	if out.OutputPolicy == "" {
		out.OutputPolicy = PolicyCoexist
	}
	if out.RescanIntervalSecs == 0 {
		out.RescanIntervalSecs = DefaultRescanIntervalSecs
	}
	if out.Locale == "" {
		out.Locale = LocaleEN
	}
	return out
}

// normalizeWatchFolders dedupes and cleans folders, preserving the order
// they were given in (first occurrence wins) rather than reordering them.
func normalizeWatchFolders(folders []string) []string {
	seen := make(map[string]struct{}, len(folders))
	out := make([]string, 0, len(folders))
	for _, f := range folders {
		clean := strings.TrimRight(filepath.Clean(f), string(filepath.Separator))
		if clean == "" {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}

// Validate checks the invariants from the data model: every watch folder is
// absolute, and numeric fields lie within their documented ranges. It does
// not check writability; that is the loader's job (see
// Store.downgradeIfUnwritable).
func (c Config) Validate() error {
	for _, f := range c.WatchFolders {
		if !filepath.IsAbs(f) {
			return &ValidationError{Field: "watch_folders", Reason: "path must be absolute: " + f}
		}
	}
	if c.JPEGQuality < MinJPEGQuality || c.JPEGQuality > MaxJPEGQuality {
		return &ValidationError{Field: "jpeg_quality", Reason: "must be in 0..=100"}
	}
	if c.RescanIntervalSecs < MinRescanIntervalSecs || c.RescanIntervalSecs > MaxRescanIntervalSecs {
		return &ValidationError{Field: "rescan_interval_secs", Reason: "must be in 15..=3600"}
	}
	switch c.OutputPolicy {
	case PolicyCoexist, PolicyReplace:
	default:
		return &ValidationError{Field: "output_policy", Reason: "must be coexist or replace"}
	}
	switch c.Locale {
	case LocaleEN, LocaleJA:
	default:
		return &ValidationError{Field: "locale", Reason: "must be en or ja"}
	}
	return nil
}

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}
