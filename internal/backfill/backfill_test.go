package backfill

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalbritt/backdate/internal/common"
	"github.com/jalbritt/backdate/internal/errors"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})          {}
func (nopLogger) Warning(string, ...interface{})       {}
func (nopLogger) Error(string, ...interface{})         {}
func (nopLogger) InfoToUser(string, ...interface{})    {}
func (nopLogger) WarningToUser(string, ...interface{}) {}
func (nopLogger) Success(string, ...interface{})       {}
func (nopLogger) StatusMessage(string, ...interface{}) {}

// fakeCommitter records the commits it is asked to make.
type fakeCommitter struct {
	commits  []fakeCommit
	branch   string
	failFrom int // fail on the n-th commit (1-based), 0 means never

	// pre-existing commit counts by day, keyed "2006-01-02"
	existingByDay map[string]int
}

type fakeCommit struct {
	message string
	at      time.Time
}

func (f *fakeCommitter) CommitAllAt(ctx context.Context, message string, at time.Time) error {
	if f.failFrom > 0 && len(f.commits)+1 >= f.failFrom {
		return errors.NewGitError("commit", nil, errors.ErrGitOperationFailed, "")
	}
	f.commits = append(f.commits, fakeCommit{message: message, at: at})
	return nil
}

func (f *fakeCommitter) HasUncommittedChanges(ctx context.Context) (bool, error) {
	return false, nil
}

func (f *fakeCommitter) CurrentBranch(ctx context.Context) (string, error) {
	if f.branch == "" {
		return "main", nil
	}
	return f.branch, nil
}

func (f *fakeCommitter) CountCommits(ctx context.Context, since, until time.Time) (int, error) {
	total := 0
	for day := since; day.Before(until); day = day.AddDate(0, 0, 1) {
		total += f.existingByDay[day.Format("2006-01-02")]
	}
	return total, nil
}

func (f *fakeCommitter) LogGraph(ctx context.Context, limit int) (string, error) {
	return "", nil
}

type promptRecorder struct {
	answer bool
	asked  []string
}

func (p *promptRecorder) PromptYesNo(question string) bool {
	p.asked = append(p.asked, question)
	return p.answer
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// setupRepoDir creates a directory with a flag file and two target files.
func setupRepoDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zero.md"), []byte("0"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.rs"), []byte("fn main() {}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), []byte("png"), 0644))
	return dir
}

func testConfig(dir string) Config {
	return Config{
		RepoPath:       dir,
		Start:          day(2017, time.August, 31),
		End:            day(2017, time.September, 2),
		FlagFile:       "zero.md",
		Suffixes:       []string{".rs", ".png"},
		Sentinel:       "#999",
		CommitMessage:  "merge and update",
		CommitHour:     12,
		NonInteractive: true,
	}
}

func newTestBackfill(cfg Config, committer Committer, interactor UserInteractor) *Backfill {
	if interactor == nil {
		interactor = NewNonInteractiveInteractor()
	}
	clock := common.FixedClock{Time: day(2018, time.January, 1)}
	return NewWithDeps(cfg, nopLogger{}, committer, interactor, clock)
}

func TestRunCommitsOncePerDay(t *testing.T) {
	dir := setupRepoDir(t)
	committer := &fakeCommitter{}

	b := newTestBackfill(testConfig(dir), committer, nil)
	require.NoError(t, b.Run(context.Background()))

	require.Len(t, committer.commits, 3)
	assert.Equal(t, 3, b.CommitsCount())

	for i, c := range committer.commits {
		assert.Equal(t, "merge and update", c.message)
		want := time.Date(2017, time.August, 31+i, 12, 0, 0, 0, time.Local)
		assert.Equal(t, want, c.at, "commit %d date", i)
	}
}

func TestRunAlternatesMarkerState(t *testing.T) {
	dir := setupRepoDir(t)
	committer := &fakeCommitter{}

	b := newTestBackfill(testConfig(dir), committer, nil)
	require.NoError(t, b.Run(context.Background()))

	// Three cycles: flag toggled 0->1->0->1, sentinel appended, removed, appended
	flag, err := os.ReadFile(filepath.Join(dir, "zero.md"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(flag))

	lib, err := os.ReadFile(filepath.Join(dir, "lib.rs"))
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}\n#999", string(lib))
}

func TestRunSkipsWeekends(t *testing.T) {
	dir := setupRepoDir(t)
	committer := &fakeCommitter{}

	cfg := testConfig(dir)
	// 2017-09-02 and 2017-09-03 are Saturday and Sunday
	cfg.End = day(2017, time.September, 4)
	cfg.SkipWeekends = true

	b := newTestBackfill(cfg, committer, nil)
	require.NoError(t, b.Run(context.Background()))

	require.Len(t, committer.commits, 3)
	assert.Equal(t, day(2017, time.August, 31).Day(), committer.commits[0].at.Day())
	assert.Equal(t, time.Friday, committer.commits[1].at.Weekday())
	assert.Equal(t, time.Monday, committer.commits[2].at.Weekday())
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	dir := setupRepoDir(t)
	committer := &fakeCommitter{}

	cfg := testConfig(dir)
	cfg.DryRun = true

	b := newTestBackfill(cfg, committer, nil)
	require.NoError(t, b.Run(context.Background()))

	assert.Empty(t, committer.commits)

	flag, err := os.ReadFile(filepath.Join(dir, "zero.md"))
	require.NoError(t, err)
	assert.Equal(t, "0", string(flag))

	lib, err := os.ReadFile(filepath.Join(dir, "lib.rs"))
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}", string(lib))
}

func TestRunDeclinedPrompt(t *testing.T) {
	dir := setupRepoDir(t)
	committer := &fakeCommitter{}

	cfg := testConfig(dir)
	cfg.NonInteractive = false
	prompt := &promptRecorder{answer: false}

	b := newTestBackfill(cfg, committer, prompt)
	err := b.Run(context.Background())

	require.ErrorIs(t, err, errors.ErrAborted)
	assert.Len(t, prompt.asked, 1)
	assert.Contains(t, prompt.asked[0], "3 backdated commits")
	assert.Empty(t, committer.commits)
}

func TestRunMissingFlagFile(t *testing.T) {
	dir := t.TempDir()
	committer := &fakeCommitter{}

	b := newTestBackfill(testConfig(dir), committer, nil)
	err := b.Run(context.Background())

	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, committer.commits)
}

func TestRunStopsOnCommitFailure(t *testing.T) {
	dir := setupRepoDir(t)
	committer := &fakeCommitter{failFrom: 2}

	b := newTestBackfill(testConfig(dir), committer, nil)
	err := b.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrGitOperationFailed)
	assert.Equal(t, 1, b.CommitsCount())
}

func TestRunSkipExistingLeavesCoveredDaysAlone(t *testing.T) {
	dir := setupRepoDir(t)
	committer := &fakeCommitter{
		existingByDay: map[string]int{"2017-09-01": 1},
	}

	cfg := testConfig(dir)
	cfg.SkipExisting = true

	b := newTestBackfill(cfg, committer, nil)
	require.NoError(t, b.Run(context.Background()))

	// 2017-09-01 already has a commit; only the other two days get one
	require.Len(t, committer.commits, 2)
	assert.Equal(t, 2, b.CommitsCount())
	assert.Equal(t, 31, committer.commits[0].at.Day())
	assert.Equal(t, 2, committer.commits[1].at.Day())

	// Two toggle cycles, so the flag is back to its starting value
	flag, err := os.ReadFile(filepath.Join(dir, "zero.md"))
	require.NoError(t, err)
	assert.Equal(t, "0", string(flag))
}

func TestRunHonorsCancellation(t *testing.T) {
	dir := setupRepoDir(t)
	committer := &fakeCommitter{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := newTestBackfill(testConfig(dir), committer, nil)
	err := b.Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, committer.commits)
}

func TestRunEmptyRangeAfterWeekendFilter(t *testing.T) {
	dir := setupRepoDir(t)
	committer := &fakeCommitter{}

	cfg := testConfig(dir)
	// Saturday and Sunday only
	cfg.Start = day(2017, time.September, 2)
	cfg.End = day(2017, time.September, 3)
	cfg.SkipWeekends = true

	b := newTestBackfill(cfg, committer, nil)
	require.NoError(t, b.Run(context.Background()))
	assert.Empty(t, committer.commits)
}
