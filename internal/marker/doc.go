// Package marker implements the reversible file mutations that give each
// backdated commit something to record.
//
// Two files participate:
//
//   - the flag file, a one-character "0"/"1" toggle flipped once per cycle
//   - target files, selected by filename suffix, whose trailing sentinel
//     line is appended on one cycle and stripped on the next
//
// Both operations are involutions: running a full cycle twice restores every
// file byte-for-byte, so a backfilled history can be unwound by running the
// same number of cycles again.
//
// # Core Components
//
// - Toggle: flips the flag file and returns the new value
// - Reconcile: appends or strips the sentinel line on one file
// - Touch: appends a bare newline to force a diff without a sentinel
// - Walker: applies the above across a directory, filtered by suffix
//
// # Error Handling
//
// A flag file holding anything but "0" or "1" fails with
// errors.ErrInvalidFlagValue; missing files propagate their os error
// unchanged so callers can use os.IsNotExist. Nothing is retried and
// nothing is swallowed.
package marker
