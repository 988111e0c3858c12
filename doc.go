// Package backdate replays a range of calendar days as backdated git commits.
//
// backdate automates a simple daily routine over an existing repository: flip
// a one-character flag file, append or strip a sentinel line on every target
// file selected by suffix, and commit the result with author and committer
// dates set to the day being replayed. The commit dates come from git's own
// date environment variables; the system clock is never read for the commit
// timestamp and never modified.
//
// # Quick Start
//
//	# Navigate to the repository to backfill
//	cd /path/to/your/repo
//
//	# Create the flag file once
//	echo -n 0 > zero.md
//
//	# Replay a date range, one commit per day
//	backdate -start 2017-08-31 -end 2017-12-28
//
// # Key Features
//
//   - Reversible mutations: toggling and sentinel reconciliation are
//     involutions, so replaying the same range undoes every file change
//   - Dry-run mode showing the planned commits without writing anything
//   - Weekend skipping for a more plausible commit cadence
//   - Per-repository locking so two runs never interleave
//   - Configuration via TOML file, environment variables, or flags
package backdate
