package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// DevOverrides is a partial config read from an optional TOML sidecar next
// to the JSON config file. It exists purely as a local-development escape
// hatch (e.g. pointing jpeg_quality or watch_folders at a throwaway
// directory without touching the persisted JSON); the canonical on-disk
// format remains JSON. Zero-valued fields are left untouched by ApplyTo.
type DevOverrides struct {
	WatchFolders       []string `toml:"watch_folders"`
	RecursiveWatch     *bool    `toml:"recursive_watch"`
	OutputPolicy       string   `toml:"output_policy"`
	JPEGQuality        int      `toml:"jpeg_quality"`
	RescanIntervalSecs int      `toml:"rescan_interval_secs"`
}

// LoadDevOverrides decodes a TOML file at path. A missing file is not an
// error; it simply yields a zero-valued DevOverrides that ApplyTo leaves
// inert.
func LoadDevOverrides(path string) (DevOverrides, error) {
	var out DevOverrides
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DevOverrides{}, nil
	}
	if _, err := toml.DecodeFile(path, &out); err != nil {
		return DevOverrides{}, err
	}
	return out, nil
}

// ApplyTo overlays non-zero override fields onto cfg and returns the
// result. cfg is not mutated.
func (o DevOverrides) ApplyTo(cfg Config) Config {
	out := cfg
	if len(o.WatchFolders) > 0 {
		out.WatchFolders = o.WatchFolders
	}
	if o.RecursiveWatch != nil {
		out.RecursiveWatch = *o.RecursiveWatch
	}
	if o.OutputPolicy != "" {
		out.OutputPolicy = OutputPolicy(o.OutputPolicy)
	}
	if o.JPEGQuality != 0 {
		out.JPEGQuality = o.JPEGQuality
	}
	if o.RescanIntervalSecs != 0 {
		out.RescanIntervalSecs = o.RescanIntervalSecs
	}
	return out
}
