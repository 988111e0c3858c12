// Package lock provides file-based locking so that only one backdate run
// operates on a given repository at a time.
//
// The lock file lives in the system temporary directory under a name derived
// from the repository's absolute path:
//
//	/tmp/backdate-<repo-hash>.lock
//
// and contains the PID of the owning process. Acquisition combines atomic
// O_CREATE|O_EXCL creation with a non-blocking flock; if the file already
// exists but its recorded process is dead, the stale lock is removed and
// re-acquired.
//
// Lock conflicts surface as *errors.LockError wrapping
// errors.ErrAlreadyRunning. A Locker is not safe for concurrent use by
// multiple goroutines; one instance belongs to one run.
package lock
