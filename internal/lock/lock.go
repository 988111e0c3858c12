package lock

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	backdateErrors "github.com/jalbritt/backdate/internal/errors"
)

// Locker prevents two backdate runs from rewriting the same repository at
// the same time. A history-rewriting tool interleaving with itself would
// corrupt both the flag file and the commit sequence, so the lock is
// mandatory rather than advisory.
type Locker struct {
	lockFile string
	lockFd   *os.File
	pid      int
	acquired bool
}

// New creates a Locker for the specified repository path
func New(repoPath string) (*Locker, error) {
	if runtime.GOOS == "windows" {
		return nil, backdateErrors.NewLockError("", 0,
			backdateErrors.Wrap(backdateErrors.ErrLockAcquisitionFailure,
				"backdate currently only supports Unix-like operating systems"))
	}

	repoHash := fmt.Sprintf("%x", sha256.Sum256([]byte(repoPath)))[:16]
	lockFile := filepath.Join(os.TempDir(), fmt.Sprintf("backdate-%s.lock", repoHash))

	return &Locker{
		lockFile: lockFile,
		pid:      os.Getpid(),
	}, nil
}

// Acquire tries to acquire the lock, recovering from stale lock files left
// behind by crashed processes.
func (l *Locker) Acquire() error {
	err := l.tryCreateLock()
	if err == nil {
		return nil
	}
	if os.IsExist(err) {
		return l.tryAcquireExistingLock()
	}
	return err
}

// tryCreateLock attempts to create and lock a new lock file
func (l *Locker) tryCreateLock() error {
	var err error

	// O_EXCL with O_CREATE ensures the file is created atomically
	l.lockFd, err = os.OpenFile(l.lockFile, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0666)
	if err != nil {
		if os.IsExist(err) {
			return err
		}
		return backdateErrors.NewLockError(l.lockFile, 0,
			backdateErrors.Wrap(err, "failed to create lock file"))
	}

	if err = l.acquireFlock(); err != nil {
		l.closeFileDescriptor()
		return backdateErrors.NewLockError(l.lockFile, 0,
			backdateErrors.Wrap(err, "failed to acquire lock on newly created lock file"))
	}

	if err = l.writePid(); err != nil {
		if releaseErr := l.Release(); releaseErr != nil {
			return backdateErrors.Wrap(err,
				fmt.Sprintf("failed to write PID and failed to release lock: %v", releaseErr))
		}
		return err
	}

	l.acquired = true
	return nil
}

// tryAcquireExistingLock acquires a lock on an existing lock file
func (l *Locker) tryAcquireExistingLock() error {
	var err error
	l.lockFd, err = os.OpenFile(l.lockFile, os.O_RDWR, 0666)
	if err != nil {
		return backdateErrors.NewLockError(l.lockFile, 0,
			backdateErrors.Wrap(err, "failed to open existing lock file"))
	}

	if err = l.acquireFlock(); err != nil {
		l.closeFileDescriptor()

		// Older unices report EWOULDBLOCK and EAGAIN as distinct codes;
		// treat them the same.
		if backdateErrors.Is(err, syscall.EWOULDBLOCK) || backdateErrors.Is(err, syscall.EAGAIN) {
			return l.handleBlockedLock()
		}

		return backdateErrors.NewLockError(l.lockFile, 0,
			backdateErrors.Wrap(err, "failed to acquire lock"))
	}

	if err = l.resetAndWritePid(); err != nil {
		if releaseErr := l.Release(); releaseErr != nil {
			return backdateErrors.Wrap(err,
				fmt.Sprintf("failed to write PID and failed to release lock: %v", releaseErr))
		}
		return err
	}

	l.acquired = true
	return nil
}

// handleBlockedLock inspects a lock held elsewhere and recovers it if the
// owning process is gone.
func (l *Locker) handleBlockedLock() error {
	otherPid, pidErr := l.readLockFilePid()
	if pidErr != nil {
		return backdateErrors.NewLockError(l.lockFile, 0,
			backdateErrors.Wrap(pidErr, "another backdate instance is running, but couldn't identify its PID"))
	}

	if isProcessRunning(otherPid) {
		return backdateErrors.NewLockError(l.lockFile, otherPid, backdateErrors.ErrAlreadyRunning)
	}

	return l.recoverStaleLock(otherPid)
}

// recoverStaleLock removes and recreates a lock whose owner has exited.
func (l *Locker) recoverStaleLock(otherPid int) error {
	l.closeFileDescriptor()

	if err := os.Remove(l.lockFile); err != nil {
		return backdateErrors.NewLockError(l.lockFile, otherPid,
			backdateErrors.Wrap(err, fmt.Sprintf("found stale lock file from PID %d, but failed to remove it", otherPid)))
	}

	var err error
	l.lockFd, err = os.OpenFile(l.lockFile, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0666)
	if err != nil {
		if os.IsExist(err) {
			return backdateErrors.NewLockError(l.lockFile, 0,
				backdateErrors.Wrap(err, "another instance took the lock immediately after the stale lock was removed"))
		}
		return backdateErrors.NewLockError(l.lockFile, 0,
			backdateErrors.Wrap(err, "failed to open lock file after removing stale lock"))
	}

	if err = l.acquireFlock(); err != nil {
		l.closeFileDescriptor()
		return backdateErrors.NewLockError(l.lockFile, 0,
			backdateErrors.Wrap(err, "failed to acquire lock even after removing stale lock"))
	}

	if err = l.writePid(); err != nil {
		if releaseErr := l.Release(); releaseErr != nil {
			return backdateErrors.Wrap(err,
				fmt.Sprintf("failed to write PID and failed to release lock: %v", releaseErr))
		}
		return err
	}

	l.acquired = true
	return nil
}

// acquireFlock gets an exclusive non-blocking lock
func (l *Locker) acquireFlock() error {
	return syscall.Flock(int(l.lockFd.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
}

// writePid writes the current PID at the start of the lock file.
func (l *Locker) writePid() error {
	if _, err := l.lockFd.WriteAt([]byte(strconv.Itoa(l.pid)), 0); err != nil {
		return backdateErrors.NewLockError(l.lockFile, l.pid,
			backdateErrors.Wrap(err, "failed to write PID to lock file"))
	}
	return nil
}

// resetAndWritePid clears the file and writes the current PID
func (l *Locker) resetAndWritePid() error {
	if err := l.lockFd.Truncate(0); err != nil {
		return backdateErrors.NewLockError(l.lockFile, l.pid,
			backdateErrors.Wrap(err, "failed to truncate lock file"))
	}
	return l.writePid()
}

// readLockFilePid reads and parses the PID from the lock file
func (l *Locker) readLockFilePid() (int, error) {
	data, err := os.ReadFile(l.lockFile)
	if err != nil {
		return 0, backdateErrors.Wrap(err, "failed to read lock file")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, backdateErrors.Wrap(err, "invalid PID in lock file")
	}
	return pid, nil
}

// closeFileDescriptor closes the lock file descriptor
func (l *Locker) closeFileDescriptor() {
	if l.lockFd != nil {
		_ = l.lockFd.Close()
		l.lockFd = nil
	}
}

// isProcessRunning checks if a process exists using signal 0
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// Release releases the lock and removes the lock file.
func (l *Locker) Release() error {
	if l.lockFd == nil {
		return nil
	}

	var err error

	if unlockErr := syscall.Flock(int(l.lockFd.Fd()), syscall.LOCK_UN); unlockErr != nil {
		err = backdateErrors.NewLockError(l.lockFile, l.pid,
			backdateErrors.Wrap(unlockErr, "failed to release flock"))
	}

	if closeErr := l.lockFd.Close(); closeErr != nil && err == nil {
		err = backdateErrors.NewLockError(l.lockFile, l.pid,
			backdateErrors.Wrap(closeErr, "failed to close lock file"))
	}

	l.lockFd = nil
	l.acquired = false

	// Remove the lock file regardless of earlier errors so the next run can
	// start clean; only report the removal error if nothing else failed.
	if removeErr := os.Remove(l.lockFile); removeErr != nil && !os.IsNotExist(removeErr) && err == nil {
		err = backdateErrors.NewLockError(l.lockFile, l.pid,
			backdateErrors.Wrap(removeErr, "failed to remove lock file"))
	}

	return err
}

// LockFile returns the path of the lock file; intended for tests.
func (l *Locker) LockFile() string {
	return l.lockFile
}
