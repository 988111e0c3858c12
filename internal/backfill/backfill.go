package backfill

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jalbritt/backdate/internal/common"
	"github.com/jalbritt/backdate/internal/errors"
	"github.com/jalbritt/backdate/internal/git"
	"github.com/jalbritt/backdate/internal/marker"
)

// Logger alias to common.Logger
type Logger = common.Logger

// Committer is the version-control collaborator the session drives. The
// production implementation is git.Committer.
type Committer interface {
	CommitAllAt(ctx context.Context, message string, at time.Time) error
	HasUncommittedChanges(ctx context.Context) (bool, error)
	CurrentBranch(ctx context.Context) (string, error)
	CountCommits(ctx context.Context, since, until time.Time) (int, error)
	LogGraph(ctx context.Context, limit int) (string, error)
}

// Config contains configuration for one backfill session
type Config struct {
	// Repository path
	RepoPath string

	// Inclusive date range to replay, both at midnight local time
	Start time.Time
	End   time.Time

	// Marker settings
	FlagFile string
	Suffixes []string
	Sentinel string

	// Commit settings
	CommitMessage string
	CommitHour    int

	// Behavior switches
	DryRun       bool
	SkipWeekends bool
	SkipExisting bool

	// Output configuration
	Verbose bool

	// When true, disables prompts and proceeds with defaults
	NonInteractive bool
}

// Backfill replays a date range as one backdated commit per day: toggle the
// flag file, reconcile the sentinel line across all target files, commit
// with that day's date.
type Backfill struct {
	config       Config
	logger       Logger
	committer    Committer
	interactor   UserInteractor
	clock        common.Clock
	walker       *marker.Walker
	commitsCount int
	startTime    time.Time
	branch       string
}

// New creates a backfill session with default dependencies.
func New(config Config, logger Logger) *Backfill {
	committer := git.NewCommitter(config.RepoPath, logger)

	var interactor UserInteractor
	if config.NonInteractive {
		interactor = NewNonInteractiveInteractor()
	} else {
		interactor = NewDefaultInteractor()
	}

	return NewWithDeps(config, logger, committer, interactor, common.SystemClock{})
}

// NewWithDeps creates a backfill session with custom dependencies.
func NewWithDeps(
	config Config,
	logger Logger,
	committer Committer,
	interactor UserInteractor,
	clock common.Clock,
) *Backfill {
	walker := marker.NewWalker(config.RepoPath, config.Suffixes)
	walker.Exclude = []string{filepath.Base(config.FlagFile)}

	return &Backfill{
		config:     config,
		logger:     logger,
		committer:  committer,
		interactor: interactor,
		clock:      clock,
		walker:     walker,
	}
}

// Run executes the session with the given context for cancellation.
func (b *Backfill) Run(ctx context.Context) error {
	b.startTime = b.clock.Now()

	if err := b.initialize(ctx); err != nil {
		return err
	}

	days := b.plannedDays()
	if len(days) == 0 {
		b.logger.InfoToUser("Nothing to do: no days in range")
		return nil
	}

	if !b.confirm(len(days)) {
		b.logger.StatusMessage("Aborted, repository untouched.")
		return errors.ErrAborted
	}

	return b.replayLoop(ctx, days)
}

// initialize verifies the flag file and records the working branch.
func (b *Backfill) initialize(ctx context.Context) error {
	if _, err := os.Stat(b.flagPath()); err != nil {
		b.logger.Error("Flag file not usable: %v", err)
		return err
	}

	branch, err := b.committer.CurrentBranch(ctx)
	if err != nil {
		b.logger.Error("Failed to get current branch: %v", err)
		if errors.Is(err, errors.ErrGitOperationFailed) {
			return err
		}
		return errors.Wrap(errors.ErrGitOperationFailed, "failed to get current branch")
	}
	b.branch = branch

	if dirty, err := b.committer.HasUncommittedChanges(ctx); err == nil && dirty && !b.config.DryRun {
		b.logger.WarningToUser("repository has uncommitted changes; the first backdated commit will sweep them in")
	}

	b.displayStartupInfo()
	return nil
}

// displayStartupInfo outputs the active configuration to the user
func (b *Backfill) displayStartupInfo() {
	b.logger.StatusMessage("backdate session on branch: %s", b.branch)
	b.logger.StatusMessage("  repository:  %s", b.config.RepoPath)
	b.logger.StatusMessage("  date range:  %s .. %s",
		b.config.Start.Format("2006-01-02"), b.config.End.Format("2006-01-02"))
	b.logger.StatusMessage("  flag file:   %s", b.config.FlagFile)
	b.logger.StatusMessage("  sentinel:    %s", b.config.Sentinel)
	b.logger.StatusMessage("  suffixes:    %v", b.config.Suffixes)
	if b.config.SkipWeekends {
		b.logger.StatusMessage("  weekends:    skipped")
	}
	if b.config.DryRun {
		b.logger.StatusMessage("  mode:        dry run, nothing will be written")
	}
}

// plannedDays enumerates the dates that will receive a commit.
func (b *Backfill) plannedDays() []time.Time {
	var days []time.Time
	for day := b.config.Start; !day.After(b.config.End); day = day.AddDate(0, 0, 1) {
		if b.config.SkipWeekends {
			if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}
		}
		days = append(days, day)
	}
	return days
}

// confirm asks the user before rewriting anything. Dry runs touch nothing
// and need no confirmation.
func (b *Backfill) confirm(count int) bool {
	if b.config.DryRun || b.config.NonInteractive {
		return true
	}
	question := fmt.Sprintf("About to create %d backdated commits on branch '%s'. Continue?", count, b.branch)
	return b.interactor.PromptYesNo(question)
}

// replayLoop creates one commit per planned day, oldest first. A failed day
// terminates the session; there are no retries.
func (b *Backfill) replayLoop(ctx context.Context, days []time.Time) error {
	for _, day := range days {
		select {
		case <-ctx.Done():
			b.logger.Info("Received cancellation signal, stopping before %s", day.Format("2006-01-02"))
			return ctx.Err()
		default:
		}

		if err := b.commitDay(ctx, day); err != nil {
			b.logger.Error("Failed on %s: %v", day.Format("2006-01-02"), err)
			return err
		}
	}

	if b.config.DryRun {
		b.logger.Success("Dry run complete: %d commits planned", len(days))
	} else {
		b.logger.Success("Created %d backdated commits", b.commitsCount)
	}
	return nil
}

// commitDay runs one toggle-reconcile-commit cycle for a single date.
func (b *Backfill) commitDay(ctx context.Context, day time.Time) error {
	at := time.Date(day.Year(), day.Month(), day.Day(),
		b.config.CommitHour, 0, 0, 0, day.Location())

	if b.config.SkipExisting {
		existing, err := b.committer.CountCommits(ctx, day, day.AddDate(0, 0, 1))
		if err != nil {
			return err
		}
		if existing > 0 {
			b.logger.Info("Skipping %s: %d commits already present", day.Format("2006-01-02"), existing)
			if b.config.Verbose {
				b.logger.InfoToUser("skipping %s, already has commits", day.Format("2006-01-02"))
			}
			return nil
		}
	}

	if b.config.DryRun {
		b.logger.InfoToUser("would commit %q dated %s", b.config.CommitMessage, at.Format(time.RFC3339))
		return nil
	}

	newFlag, err := marker.Toggle(b.flagPath())
	if err != nil {
		return err
	}
	b.logger.Info("Flag file now holds %d", newFlag)

	results, err := b.walker.ReconcileAll(b.config.Sentinel)
	if err != nil {
		return err
	}
	for _, res := range results {
		b.logger.Info("%s: %s", res.Path, res.Action)
		if b.config.Verbose {
			b.logger.InfoToUser("  %s %s", res.Action, filepath.Base(res.Path))
		}
	}

	if err := b.committer.CommitAllAt(ctx, b.config.CommitMessage, at); err != nil {
		return err
	}

	b.commitsCount++
	b.logger.Info("Committed day %s (%d total)", day.Format("2006-01-02"), b.commitsCount)
	if b.config.Verbose {
		b.logger.StatusMessage("committed %s", day.Format("2006-01-02"))
	}
	return nil
}

// CommitsCount reports how many commits the session has created so far.
func (b *Backfill) CommitsCount() int {
	return b.commitsCount
}

// PrintSummary prints a closing summary of the session.
func (b *Backfill) PrintSummary() {
	duration := b.clock.Now().Sub(b.startTime)

	b.logger.StatusMessage("")
	b.logger.StatusMessage("---------------------------------------------")
	b.logger.StatusMessage("backdate session summary")
	b.logger.StatusMessage("---------------------------------------------")
	b.logger.StatusMessage("commits created:  %d", b.commitsCount)
	if total, err := b.committer.CountCommits(context.Background(),
		b.config.Start, b.config.End.AddDate(0, 0, 1)); err == nil {
		b.logger.StatusMessage("commits in range: %d", total)
	}
	b.logger.StatusMessage("date range:       %s .. %s",
		b.config.Start.Format("2006-01-02"), b.config.End.Format("2006-01-02"))
	b.logger.StatusMessage("working branch:   %s", b.branch)
	b.logger.StatusMessage("elapsed:          %s", duration.Round(time.Millisecond))

	if b.commitsCount > 0 {
		if graph, err := b.committer.LogGraph(context.Background(), 10); err == nil && graph != "" {
			b.logger.StatusMessage("")
			b.logger.StatusMessage("recent history:")
			b.logger.StatusMessage("%s", graph)
		}
	}
	b.logger.StatusMessage("---------------------------------------------")
}

func (b *Backfill) flagPath() string {
	if filepath.IsAbs(b.config.FlagFile) {
		return b.config.FlagFile
	}
	return filepath.Join(b.config.RepoPath, b.config.FlagFile)
}
