package git

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/jalbritt/backdate/internal/common"
	"github.com/jalbritt/backdate/internal/errors"
)

// Logger alias to common.Logger
type Logger = common.Logger

// Committer runs git commands against one repository and knows how to create
// commits whose recorded dates differ from the wall clock. Dates are injected
// through GIT_AUTHOR_DATE and GIT_COMMITTER_DATE on the commit process; the
// system clock is never consulted or modified.
type Committer struct {
	repoPath string
	logger   Logger
	executor CommandExecutor
}

// NewCommitter creates a Committer with the default exec-backed executor.
func NewCommitter(repoPath string, logger Logger) *Committer {
	return NewCommitterWithExecutor(repoPath, logger, NewExecExecutor())
}

// NewCommitterWithExecutor creates a Committer with a custom executor.
func NewCommitterWithExecutor(repoPath string, logger Logger, executor CommandExecutor) *Committer {
	return &Committer{
		repoPath: repoPath,
		logger:   logger,
		executor: executor,
	}
}

// IsRepository checks if the given path is a git repository
func IsRepository(path string) bool {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--is-inside-work-tree")
	executor := NewExecExecutor()
	return executor.Execute(cmd) == nil
}

// CommitAllAt commits every tracked change with both the author and
// committer date set to at. Equivalent to `git commit -a -m message` under a
// spoofed clock, without touching the clock.
func (c *Committer) CommitAllAt(ctx context.Context, message string, at time.Time) error {
	dateSpec := at.Format(time.RFC3339)

	cmd := c.gitCommand(ctx, "commit", "-a", "-m", message)
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_DATE="+dateSpec,
		"GIT_COMMITTER_DATE="+dateSpec,
	)

	if err := c.executor.Execute(cmd); err != nil {
		c.logger.Warning("Failed to create commit dated %s: %v", dateSpec, err)
		if errors.Is(err, errors.ErrGitOperationFailed) {
			return err
		}
		return errors.NewGitError("commit", []string{"-a", "-m", message},
			errors.Wrap(errors.ErrGitOperationFailed, "failed to create commit"), "")
	}

	c.logger.Info("Created commit dated %s", dateSpec)
	return nil
}

// HasUncommittedChanges returns true if the repository contains changes
// that have not been committed yet.
func (c *Committer) HasUncommittedChanges(ctx context.Context) (bool, error) {
	output, err := c.runWithOutput(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(output) != "", nil
}

// CurrentBranch returns the name of the current git branch.
func (c *Committer) CurrentBranch(ctx context.Context) (string, error) {
	output, err := c.runWithOutput(ctx, "branch", "--show-current")
	if err != nil {
		return "unknown", err
	}
	return strings.TrimSpace(output), nil
}

// CountCommits returns the number of commits on HEAD whose committer date
// falls inside [since, until].
func (c *Committer) CountCommits(ctx context.Context, since, until time.Time) (int, error) {
	output, err := c.runWithOutput(ctx, "rev-list", "--count", "HEAD",
		"--since="+since.Format(time.RFC3339),
		"--until="+until.Format(time.RFC3339))
	if err != nil {
		return 0, err
	}

	count, err := strconv.Atoi(strings.TrimSpace(output))
	if err != nil {
		return 0, errors.Wrapf(errors.ErrGitOperationFailed,
			"unexpected rev-list output %q", strings.TrimSpace(output))
	}
	return count, nil
}

// LogGraph returns a short decorated log for the summary display.
func (c *Committer) LogGraph(ctx context.Context, limit int) (string, error) {
	return c.runWithOutput(ctx, "log", "--graph", "--oneline", "--decorate",
		"-n", strconv.Itoa(limit))
}

// gitCommand builds a git invocation rooted at the repository.
func (c *Committer) gitCommand(ctx context.Context, args ...string) *exec.Cmd {
	baseArgs := []string{"-C", c.repoPath}
	cmd := exec.CommandContext(ctx, "git", append(baseArgs, args...)...)
	cmd.Dir = c.repoPath
	return cmd
}

// runWithOutput executes a git command and returns its output.
func (c *Committer) runWithOutput(ctx context.Context, args ...string) (string, error) {
	return c.executor.ExecuteWithOutput(c.gitCommand(ctx, args...))
}
