// Command backdate replays a range of calendar days as backdated git
// commits in the current repository.
//
// For each day in the range it flips a one-character flag file, appends or
// strips a sentinel line on every target file (selected by suffix), and
// creates a commit whose author and committer dates are that day. Running
// the same range again reverses every file mutation, because both the
// toggle and the sentinel reconciliation are involutions.
//
// Usage:
//
//	backdate -start 2017-08-31 -end 2017-12-28
//	backdate -start 2017-08-31 -dry-run
//	backdate -start 2017-08-31 -end 2017-09-30 -skip-weekends -yes
//
// Configuration can also come from backdate.toml in the repository,
// ~/.config/backdate/config.toml, or BACKDATE_* environment variables;
// flags win over both.
package main
