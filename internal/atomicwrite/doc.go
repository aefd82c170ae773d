// Package atomicwrite commits a finished transcode into place. A JPEG is
// never visible to readers half-written: the worker pool encodes into a
// ".tmp" sibling of the final name and only atomicwrite.Commit exposes it,
// via fsync-then-rename. ApplyPolicy runs strictly after a successful
// commit and governs what happens to the original HEIC/HEIF source.
package atomicwrite
