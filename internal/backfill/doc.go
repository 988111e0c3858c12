// Package backfill drives the per-day replay loop: for every date in the
// configured range it flips the flag file, reconciles the sentinel line
// across the target files, and asks the Committer for a commit carrying that
// date.
//
// The session owns no git or clock behavior itself; both arrive as injected
// collaborators (Committer, common.Clock) so the loop can be exercised
// without a repository or a real calendar. Failures are terminal for the
// run: a day that cannot be committed stops the session and surfaces the
// error.
package backfill
