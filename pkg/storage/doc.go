// Package storage persists entity collections as JSON files.
//
// A File wraps one path and an injected Provider for raw I/O. Every write
// first copies the previous contents to a timestamped backup next to the
// original:
//
//	labs.gnmd -> labs_bak_2023-04-18T09_54_41.123456.gnmd
//
// Disk writes go to a temporary file that is renamed over the target.
package storage
