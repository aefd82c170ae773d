// Package config is the daemon's C1 leaf: an immutable settings snapshot,
// JSON persistence, and a Store that hands out snapshots to readers without
// locking and notifies subscribers of changes (see Store.Subscribe).
package config
