package config

import (
	"crypto/sha256"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jalbritt/backdate/internal/errors"
)

const (
	// DefaultFlagFile is the toggle state file, relative to the repository
	DefaultFlagFile = "zero.md"

	// DefaultSentinel is the marker line appended to and stripped from targets
	DefaultSentinel = "#999"

	// DefaultCommitMessage matches what every commit in the replayed range says
	DefaultCommitMessage = "merge and update"

	// DefaultCommitHour is the local hour of day stamped on each commit
	DefaultCommitHour = 12

	// DateLayout is the accepted format for -start and -end
	DateLayout = "2006-01-02"
)

// DefaultSuffixes select the target files mutated between commits.
func DefaultSuffixes() []string {
	return []string{".rs", ".png"}
}

// Config holds all backdate application settings
type Config struct {
	// Repository configuration
	RepoPath  string
	StartDate string
	EndDate   string

	// Parsed forms of StartDate/EndDate, populated by Finalize
	Start time.Time
	End   time.Time

	// Marker configuration
	FlagFile    string
	SuffixList  string // comma-separated, as given on the command line
	Suffixes    []string
	Sentinel    string

	// Commit configuration
	CommitMessage string
	CommitHour    int

	// Behavior
	DryRun         bool
	SkipWeekends   bool
	SkipExisting   bool
	NonInteractive bool

	// User experience
	Verbose bool

	// Debugging
	Debug   bool
	LogFile string

	// Special flags
	Version bool

	// Build metadata
	VersionInfo VersionInfo

	// Keys set explicitly through the environment or flags. The config file
	// is loaded last, after the repository path is known, and must not
	// override these.
	explicit map[string]bool
}

// markExplicit records that the file-settable key was set by env or flag.
func (c *Config) markExplicit(key string) {
	if key == "" {
		return
	}
	if c.explicit == nil {
		c.explicit = make(map[string]bool)
	}
	c.explicit[key] = true
}

// isExplicit reports whether env or flags already set the given key.
func (c *Config) isExplicit(key string) bool {
	return c.explicit[key]
}

// VersionInfo contains build-time version metadata
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// New creates a new Config with default values
func New() *Config {
	return &Config{
		FlagFile:      DefaultFlagFile,
		Suffixes:      DefaultSuffixes(),
		Sentinel:      DefaultSentinel,
		CommitMessage: DefaultCommitMessage,
		CommitHour:    DefaultCommitHour,
		Verbose:       true,

		VersionInfo: VersionInfo{
			Version: "dev",
			Commit:  "unknown",
			Date:    "unknown",
		},
	}
}

// LoadFromEnvironment updates config from BACKDATE_* environment variables
func (c *Config) LoadFromEnvironment() {
	c.RepoPath = c.envString("BACKDATE_REPO", "", c.RepoPath)
	c.StartDate = c.envString("BACKDATE_START", "", c.StartDate)
	c.EndDate = c.envString("BACKDATE_END", "", c.EndDate)
	c.FlagFile = c.envString("BACKDATE_FLAG_FILE", "flag_file", c.FlagFile)
	c.Sentinel = c.envString("BACKDATE_SENTINEL", "sentinel", c.Sentinel)
	c.CommitMessage = c.envString("BACKDATE_MESSAGE", "commit_message", c.CommitMessage)
	c.CommitHour = c.envInt("BACKDATE_HOUR", "commit_hour", c.CommitHour)
	c.DryRun = c.envBool("BACKDATE_DRY_RUN", "", c.DryRun)
	c.SkipWeekends = c.envBool("BACKDATE_SKIP_WEEKENDS", "skip_weekends", c.SkipWeekends)
	c.SkipExisting = c.envBool("BACKDATE_SKIP_EXISTING", "skip_existing", c.SkipExisting)
	c.NonInteractive = c.envBool("BACKDATE_YES", "", c.NonInteractive)
	c.Verbose = c.envBool("BACKDATE_VERBOSE", "verbose", c.Verbose)
	c.Debug = c.envBool("BACKDATE_DEBUG", "", c.Debug)
	c.LogFile = c.envString("BACKDATE_LOG_FILE", "log_file", c.LogFile)

	if suffixes := os.Getenv("BACKDATE_SUFFIXES"); suffixes != "" {
		c.SuffixList = suffixes
		c.markExplicit("suffixes")
	}
}

// SetupFlags sets up command-line flags to override config values
func (c *Config) SetupFlags(fs *flag.FlagSet) {
	origVerbose := c.Verbose

	fs.StringVar(&c.RepoPath, "repo", c.RepoPath, "Path to repository (default: current directory)")
	fs.StringVar(&c.StartDate, "start", c.StartDate, "First day to replay, YYYY-MM-DD (required)")
	fs.StringVar(&c.EndDate, "end", c.EndDate, "Last day to replay, YYYY-MM-DD (default: same as -start)")
	fs.StringVar(&c.FlagFile, "flag-file", c.FlagFile, "Toggle state file, relative to the repository")
	fs.StringVar(&c.SuffixList, "suffixes", c.SuffixList, "Comma-separated target suffixes (default: .rs,.png)")
	fs.StringVar(&c.Sentinel, "sentinel", c.Sentinel, "Marker line appended to / stripped from targets")
	fs.StringVar(&c.CommitMessage, "message", c.CommitMessage, "Commit message for every replayed day")
	fs.IntVar(&c.CommitHour, "hour", c.CommitHour, "Local hour of day stamped on each commit (0-23)")
	fs.BoolVar(&c.DryRun, "dry-run", c.DryRun, "Show the planned commits without writing anything")
	fs.BoolVar(&c.SkipWeekends, "skip-weekends", c.SkipWeekends, "Do not create commits on Saturdays and Sundays")
	fs.BoolVar(&c.SkipExisting, "skip-existing", c.SkipExisting, "Skip days that already have commits in the repository")
	fs.BoolVar(&c.NonInteractive, "yes", c.NonInteractive, "Skip the confirmation prompt")
	fs.BoolVar(&c.Verbose, "quiet", !origVerbose, "Hide per-day progress messages")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Path to log file (default: ~/.local/share/backdate/logs/backdate-{repo-hash}.log)")
	fs.BoolVar(&c.Version, "version", c.Version, "Print version information and exit")
}

// flagFileKeys maps flag names to the config-file keys they shadow. Flags
// without a file counterpart are absent.
var flagFileKeys = map[string]string{
	"flag-file":     "flag_file",
	"suffixes":      "suffixes",
	"sentinel":      "sentinel",
	"message":       "commit_message",
	"hour":          "commit_hour",
	"skip-weekends": "skip_weekends",
	"skip-existing": "skip_existing",
	"quiet":         "verbose",
	"log-file":      "log_file",
}

// ParseFlags parses the command-line arguments and updates the config
func (c *Config) ParseFlags() error {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)

	var appArgs []string
	if len(os.Args) > 1 {
		appArgs = os.Args[1:]
	}

	return c.parseFlagSet(fs, appArgs)
}

// parseFlagSet applies args to the config and records which file-settable
// keys the user set on the command line.
func (c *Config) parseFlagSet(fs *flag.FlagSet, args []string) error {
	c.SetupFlags(fs)

	if err := fs.Parse(args); err != nil {
		return errors.NewConfigError("flags", nil,
			errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to parse command-line arguments: %v", err)))
	}

	// -quiet is inverted: the flag name implies the opposite of the field
	c.Verbose = !c.Verbose

	fs.Visit(func(f *flag.Flag) {
		c.markExplicit(flagFileKeys[f.Name])
	})

	return nil
}

// Finalize validates and finalizes the configuration
func (c *Config) Finalize() error {
	if c.Version {
		return nil
	}

	if c.StartDate == "" {
		return errors.NewConfigError("start", nil,
			errors.Wrap(errors.ErrInvalidConfiguration, "-start is required (YYYY-MM-DD)"))
	}

	start, err := time.ParseInLocation(DateLayout, c.StartDate, time.Local)
	if err != nil {
		return errors.NewConfigError("start", c.StartDate,
			errors.Wrap(errors.ErrInvalidConfiguration, "not a YYYY-MM-DD date"))
	}
	c.Start = start

	if c.EndDate == "" {
		c.EndDate = c.StartDate
	}
	end, err := time.ParseInLocation(DateLayout, c.EndDate, time.Local)
	if err != nil {
		return errors.NewConfigError("end", c.EndDate,
			errors.Wrap(errors.ErrInvalidConfiguration, "not a YYYY-MM-DD date"))
	}
	c.End = end

	if c.End.Before(c.Start) {
		return errors.NewConfigError("end", c.EndDate,
			errors.Wrap(errors.ErrInvalidConfiguration, "end date precedes start date"))
	}

	if c.CommitHour < 0 || c.CommitHour > 23 {
		return errors.NewConfigError("hour", c.CommitHour,
			errors.Wrap(errors.ErrInvalidConfiguration, "hour must be between 0 and 23"))
	}

	if c.Sentinel == "" {
		return errors.NewConfigError("sentinel", nil,
			errors.Wrap(errors.ErrInvalidConfiguration, "sentinel must not be empty"))
	}
	if strings.Contains(c.Sentinel, "\n") {
		return errors.NewConfigError("sentinel", c.Sentinel,
			errors.Wrap(errors.ErrInvalidConfiguration, "sentinel must be a single line"))
	}

	if c.SuffixList != "" {
		c.Suffixes = splitSuffixes(c.SuffixList)
	}
	if len(c.Suffixes) == 0 {
		return errors.NewConfigError("suffixes", c.SuffixList,
			errors.Wrap(errors.ErrInvalidConfiguration, "at least one target suffix is required"))
	}

	if c.FlagFile == "" {
		return errors.NewConfigError("flag-file", nil,
			errors.Wrap(errors.ErrInvalidConfiguration, "flag file must not be empty"))
	}

	if c.RepoPath == "" {
		c.RepoPath, err = os.Getwd()
		if err != nil {
			return errors.NewConfigError("repo", "",
				errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to get current directory: %v", err)))
		}
	}

	absRepoPath, err := filepath.Abs(c.RepoPath)
	if err != nil {
		return errors.NewConfigError("repo", c.RepoPath,
			errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to resolve absolute path: %v", err)))
	}
	c.RepoPath = absRepoPath

	if c.LogFile == "" {
		c.LogFile = defaultLogFile(c.RepoPath)
	}

	return nil
}

// defaultLogFile places logs under the XDG data directory, keyed by a hash
// of the repository path.
func defaultLogFile(repoPath string) string {
	logDir := os.Getenv("XDG_DATA_HOME")
	if logDir == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			logDir = filepath.Join(homeDir, ".local", "share")
		} else {
			logDir = os.TempDir()
		}
	}

	repoHash := fmt.Sprintf("%x", sha256.Sum256([]byte(repoPath)))[:16]
	return filepath.Join(logDir, "backdate", "logs", fmt.Sprintf("backdate-%s.log", repoHash))
}

// splitSuffixes parses a comma-separated suffix list, normalizing each entry
// to start with a dot.
func splitSuffixes(list string) []string {
	var suffixes []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		suffixes = append(suffixes, part)
	}
	return suffixes
}

// envString returns an environment variable string or a default value,
// recording fileKey as explicitly set when the variable is present.
func (c *Config) envString(key, fileKey, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		c.markExplicit(fileKey)
		return value
	}
	return defaultValue
}

// envInt returns an environment variable as int or a default value.
func (c *Config) envInt(key, fileKey string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			c.markExplicit(fileKey)
			return value
		}
	}
	return defaultValue
}

// envBool returns an environment variable as bool or a default value.
func (c *Config) envBool(key, fileKey string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(valueStr) {
		case "true", "1", "yes":
			c.markExplicit(fileKey)
			return true
		case "false", "0", "no":
			c.markExplicit(fileKey)
			return false
		}
	}
	return defaultValue
}
