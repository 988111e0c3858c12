// Package git wraps the git command line for the backdate application.
//
// The central type is Committer, which runs git against a single repository
// through a CommandExecutor seam. The one unusual operation is CommitAllAt,
// which creates a commit whose author and committer dates are supplied by
// the caller: the dates travel in GIT_AUTHOR_DATE / GIT_COMMITTER_DATE on
// the child process environment, so neither backdate nor git ever changes
// the system clock.
//
// # Core Components
//
// - Committer: date-injecting commit, status, branch and history queries
// - CommandExecutor: interface over os/exec, replaceable in tests
// - IsRepository: cheap work-tree check used before anything else runs
//
// # Error Handling
//
// Failed commands surface as *errors.GitError wrapping
// errors.ErrGitOperationFailed, carrying the operation, its arguments and
// any captured stderr.
package git
