package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/jalbritt/backdate/internal/backfill"
	"github.com/jalbritt/backdate/internal/common"
	"github.com/jalbritt/backdate/internal/config"
	"github.com/jalbritt/backdate/internal/constants"
	internalErrors "github.com/jalbritt/backdate/internal/errors"
	"github.com/jalbritt/backdate/internal/git"
	"github.com/jalbritt/backdate/internal/lock"
	"github.com/jalbritt/backdate/internal/logger"
)

// Backfiller runs the replay session
type Backfiller interface {
	Run(ctx context.Context) error
	PrintSummary()
}

// Locker manages file locking
type Locker interface {
	Acquire() error
	Release() error
}

// Logger alias to common.Logger
type Logger = common.Logger

// AppOptions contains app configuration and dependencies
type AppOptions struct {
	// Required
	Config *config.Config

	// Optional components
	Logger     Logger
	Locker     Locker
	Backfiller Backfiller

	// I/O dependencies
	Stdout io.Writer
	Stderr io.Writer

	// System dependencies
	Exit         func(code int)
	ExecLookPath func(file string) (string, error)
	IsRepository func(string) bool
}

// App is the main backdate application
type App struct {
	Config     *config.Config
	Logger     Logger
	Locker     Locker
	Backfiller Backfiller

	// I/O streams
	Stdout io.Writer
	Stderr io.Writer

	// System dependencies
	exit         func(code int)
	execLookPath func(file string) (string, error)
	isRepository func(string) bool
}

// NewDefaultApp creates an App with standard dependencies
func NewDefaultApp(versionInfo config.VersionInfo) *App {
	cfg := config.New()
	cfg.VersionInfo = versionInfo
	cfg.LoadFromEnvironment()

	return NewApp(AppOptions{
		Config:       cfg,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Exit:         os.Exit,
		ExecLookPath: exec.LookPath,
		IsRepository: git.IsRepository,
	})
}

// NewApp creates an App with custom dependencies
func NewApp(opts AppOptions) *App {
	if opts.Config == nil {
		panic("Config is required in AppOptions")
	}

	app := &App{
		Config:       opts.Config,
		Logger:       opts.Logger,
		Locker:       opts.Locker,
		Backfiller:   opts.Backfiller,
		Stdout:       opts.Stdout,
		Stderr:       opts.Stderr,
		exit:         opts.Exit,
		execLookPath: opts.ExecLookPath,
		isRepository: opts.IsRepository,
	}

	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.exit == nil {
		app.exit = os.Exit
	}
	if app.execLookPath == nil {
		app.execLookPath = exec.LookPath
	}
	if app.isRepository == nil {
		app.isRepository = git.IsRepository
	}

	return app
}

// Initialize sets up components not provided during construction
func (a *App) Initialize() error {
	// The config file is loaded here, not at construction: only after flags
	// are parsed is the repository named by -repo known, and its
	// backdate.toml is the one that must be found. Keys already set by env
	// or flags are left alone.
	if !a.Config.Version {
		if err := a.Config.LoadFromFile(); err != nil {
			return err
		}
	}

	if err := a.Config.Finalize(); err != nil {
		if internalErrors.Is(err, internalErrors.ErrInvalidConfiguration) {
			return err
		}
		return internalErrors.Wrap(internalErrors.ErrInvalidConfiguration, err.Error())
	}

	if a.Logger == nil {
		a.Logger = logger.New(a.Config.Debug, a.Config.LogFile, a.Config.Verbose)
	}

	if a.Locker == nil {
		locker, err := lock.New(a.Config.RepoPath)
		if err != nil {
			return internalErrors.Wrap(err, "failed to initialize lock")
		}
		a.Locker = locker
	}

	if a.Backfiller == nil {
		a.Backfiller = backfill.New(backfill.Config{
			RepoPath:       a.Config.RepoPath,
			Start:          a.Config.Start,
			End:            a.Config.End,
			FlagFile:       a.Config.FlagFile,
			Suffixes:       a.Config.Suffixes,
			Sentinel:       a.Config.Sentinel,
			CommitMessage:  a.Config.CommitMessage,
			CommitHour:     a.Config.CommitHour,
			DryRun:         a.Config.DryRun,
			SkipWeekends:   a.Config.SkipWeekends,
			SkipExisting:   a.Config.SkipExisting,
			Verbose:        a.Config.Verbose,
			NonInteractive: a.Config.NonInteractive,
		}, a.Logger)
	}

	return nil
}

// Run executes the application with the given context.
// Handles special flags and runs the backfill session.
func (a *App) Run(ctx context.Context) error {
	if err := a.Initialize(); err != nil {
		return err
	}

	if a.Config.Version {
		a.ShowVersion()
		return nil
	}

	defer func() {
		if err := a.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "error during cleanup: %v\n", err)
		}
	}()

	if err := a.checkRequiredCommands(); err != nil {
		_, _ = fmt.Fprintf(a.Stderr, "error: %v. Please install it and try again.\n", err)
		return err
	}

	if !a.isRepository(a.Config.RepoPath) {
		return internalErrors.ErrNotGitRepository
	}
	a.Logger.Info("Git repository verified")

	if err := a.Locker.Acquire(); err != nil {
		if internalErrors.Is(err, internalErrors.ErrAlreadyRunning) {
			return err
		}
		return internalErrors.Wrap(internalErrors.ErrLockAcquisitionFailure, err.Error())
	}

	return a.Backfiller.Run(ctx)
}

// ShowVersion displays version information
func (a *App) ShowVersion() {
	_, _ = fmt.Fprintf(a.Stdout, "%s %s (%s) built on %s\n",
		constants.AppName,
		a.Config.VersionInfo.Version,
		a.Config.VersionInfo.Commit,
		a.Config.VersionInfo.Date)
	_, _ = fmt.Fprintln(a.Stdout, constants.Tagline)
}

// checkRequiredCommands verifies git is available in PATH
func (a *App) checkRequiredCommands() error {
	if _, err := a.execLookPath("git"); err != nil {
		return fmt.Errorf("git is not found in PATH")
	}
	return nil
}

// Close releases resources held by the App
func (a *App) Close() error {
	var errs []error

	if a.Locker != nil {
		if err := a.Locker.Release(); err != nil {
			if a.Logger != nil {
				a.Logger.Error("Failed to release lock during cleanup: %v", err)
			} else {
				_, _ = fmt.Fprintf(a.Stderr, "failed to release lock during cleanup: %v\n", err)
			}
			errs = append(errs, err)
		}
	}

	if a.Logger != nil {
		if l, ok := a.Logger.(logger.Logger); ok {
			if err := l.Close(); err != nil {
				_, _ = fmt.Fprintf(a.Stderr, "failed to close logger: %v\n", err)
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// CleanupOnSignal releases resources and shows the summary on interruption
func (a *App) CleanupOnSignal() {
	if err := a.Close(); err != nil {
		_, _ = fmt.Fprintf(a.Stderr, "error during cleanup: %v\n", err)
	}

	if !a.Config.Version && a.Backfiller != nil {
		a.Backfiller.PrintSummary()
	}
}
