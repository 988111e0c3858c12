package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalbritt/backdate/internal/errors"
)

func TestNewDefaults(t *testing.T) {
	c := New()

	assert.Equal(t, DefaultFlagFile, c.FlagFile)
	assert.Equal(t, DefaultSentinel, c.Sentinel)
	assert.Equal(t, DefaultCommitMessage, c.CommitMessage)
	assert.Equal(t, DefaultCommitHour, c.CommitHour)
	assert.Equal(t, []string{".rs", ".png"}, c.Suffixes)
	assert.True(t, c.Verbose)
	assert.False(t, c.DryRun)
	assert.False(t, c.NonInteractive)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BACKDATE_START", "2017-08-31")
	t.Setenv("BACKDATE_END", "2017-12-28")
	t.Setenv("BACKDATE_SENTINEL", "//999")
	t.Setenv("BACKDATE_MESSAGE", "routine update")
	t.Setenv("BACKDATE_HOUR", "9")
	t.Setenv("BACKDATE_SKIP_WEEKENDS", "true")
	t.Setenv("BACKDATE_SKIP_EXISTING", "true")
	t.Setenv("BACKDATE_SUFFIXES", ".go,.md")
	t.Setenv("BACKDATE_YES", "1")

	c := New()
	c.LoadFromEnvironment()

	assert.Equal(t, "2017-08-31", c.StartDate)
	assert.Equal(t, "2017-12-28", c.EndDate)
	assert.Equal(t, "//999", c.Sentinel)
	assert.Equal(t, "routine update", c.CommitMessage)
	assert.Equal(t, 9, c.CommitHour)
	assert.True(t, c.SkipWeekends)
	assert.True(t, c.SkipExisting)
	assert.True(t, c.NonInteractive)
	assert.Equal(t, ".go,.md", c.SuffixList)
}

func TestFlags(t *testing.T) {
	c := New()
	fs := flag.NewFlagSet("backdate", flag.ContinueOnError)
	c.SetupFlags(fs)

	err := fs.Parse([]string{
		"-start", "2017-08-31",
		"-end", "2017-09-02",
		"-suffixes", "rs,png",
		"-dry-run",
		"-skip-existing",
		"-quiet",
	})
	require.NoError(t, err)
	c.Verbose = !c.Verbose // ParseFlags does this after parsing

	assert.Equal(t, "2017-08-31", c.StartDate)
	assert.Equal(t, "2017-09-02", c.EndDate)
	assert.True(t, c.DryRun)
	assert.True(t, c.SkipExisting)
	assert.False(t, c.Verbose)

	require.NoError(t, c.Finalize())
	assert.Equal(t, []string{".rs", ".png"}, c.Suffixes, "bare suffixes get a leading dot")
}

func TestFinalizeParsesDates(t *testing.T) {
	c := New()
	c.StartDate = "2017-08-31"
	c.EndDate = "2017-12-28"
	c.RepoPath = t.TempDir()

	require.NoError(t, c.Finalize())

	assert.Equal(t, time.Date(2017, time.August, 31, 0, 0, 0, 0, time.Local), c.Start)
	assert.Equal(t, time.Date(2017, time.December, 28, 0, 0, 0, 0, time.Local), c.End)
	assert.True(t, filepath.IsAbs(c.RepoPath))
	assert.NotEmpty(t, c.LogFile)
}

func TestFinalizeDefaultsEndToStart(t *testing.T) {
	c := New()
	c.StartDate = "2017-08-31"
	c.RepoPath = t.TempDir()

	require.NoError(t, c.Finalize())
	assert.Equal(t, c.Start, c.End)
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		param  string
	}{
		{"missing start", func(c *Config) { c.StartDate = "" }, "start"},
		{"bad start format", func(c *Config) { c.StartDate = "31/08/2017" }, "start"},
		{"bad end format", func(c *Config) { c.EndDate = "soon" }, "end"},
		{"end before start", func(c *Config) { c.StartDate = "2017-09-02"; c.EndDate = "2017-08-31" }, "end"},
		{"hour too large", func(c *Config) { c.CommitHour = 24 }, "hour"},
		{"hour negative", func(c *Config) { c.CommitHour = -1 }, "hour"},
		{"empty sentinel", func(c *Config) { c.Sentinel = "" }, "sentinel"},
		{"multiline sentinel", func(c *Config) { c.Sentinel = "a\nb" }, "sentinel"},
		{"no suffixes", func(c *Config) { c.Suffixes = nil }, "suffixes"},
		{"empty flag file", func(c *Config) { c.FlagFile = "" }, "flag-file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.StartDate = "2017-08-31"
			c.RepoPath = t.TempDir()
			tt.mutate(c)

			err := c.Finalize()
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)

			var cfgErr *errors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.param, cfgErr.Parameter)
		})
	}
}

func TestFinalizeSkipsValidationForVersion(t *testing.T) {
	c := New()
	c.Version = true
	assert.NoError(t, c.Finalize())
}

func TestLoadFromFileRepoLevel(t *testing.T) {
	dir := t.TempDir()
	content := `
flag_file = "toggle.md"
sentinel = "//999"
suffixes = [".go", ".txt"]
commit_hour = 18
skip_weekends = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))

	c := New()
	c.RepoPath = dir
	require.NoError(t, c.LoadFromFile())

	assert.Equal(t, "toggle.md", c.FlagFile)
	assert.Equal(t, "//999", c.Sentinel)
	assert.Equal(t, []string{".go", ".txt"}, c.Suffixes)
	assert.Equal(t, 18, c.CommitHour)
	assert.True(t, c.SkipWeekends)
	// Untouched values keep their defaults
	assert.Equal(t, DefaultCommitMessage, c.CommitMessage)
}

func TestLoadFromFileUserLevel(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	appDir := filepath.Join(configHome, "backdate")
	require.NoError(t, os.MkdirAll(appDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "config.toml"),
		[]byte(`sentinel = "#end"`), 0644))

	c := New()
	c.RepoPath = t.TempDir() // no repo-level file
	require.NoError(t, c.LoadFromFile())

	assert.Equal(t, "#end", c.Sentinel)
}

func TestLoadFromFileMissingIsFine(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c := New()
	c.RepoPath = t.TempDir()
	assert.NoError(t, c.LoadFromFile())
	assert.Equal(t, DefaultSentinel, c.Sentinel)
}

func TestLoadFromFileRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName),
		[]byte(`sentinnel = "typo"`), 0644))

	c := New()
	c.RepoPath = dir

	err := c.LoadFromFile()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "sentinnel")
}

func TestRepoFlagSelectsRepoConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	repoDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, FileName),
		[]byte(`sentinel = "//999"`), 0644))

	// Same layering order as the binary: defaults, env, flags, then the
	// config file once the repository path is known.
	c := New()
	c.LoadFromEnvironment()
	fs := flag.NewFlagSet("backdate", flag.ContinueOnError)
	require.NoError(t, c.parseFlagSet(fs, []string{"-repo", repoDir, "-start", "2017-08-31"}))
	require.NoError(t, c.LoadFromFile())
	require.NoError(t, c.Finalize())

	assert.Equal(t, "//999", c.Sentinel,
		"backdate.toml in the repository named by -repo must be applied")
}

func TestPrecedenceFileBelowEnvBelowFlags(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	repoDir := t.TempDir()
	content := `
sentinel = "//file"
commit_hour = 9
`
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, FileName), []byte(content), 0644))

	t.Run("flag beats env beats file", func(t *testing.T) {
		t.Setenv("BACKDATE_SENTINEL", "//env")

		c := New()
		c.LoadFromEnvironment()
		fs := flag.NewFlagSet("backdate", flag.ContinueOnError)
		require.NoError(t, c.parseFlagSet(fs, []string{
			"-repo", repoDir, "-start", "2017-08-31", "-sentinel", "//flag",
		}))
		require.NoError(t, c.LoadFromFile())
		require.NoError(t, c.Finalize())

		assert.Equal(t, "//flag", c.Sentinel)
		assert.Equal(t, 9, c.CommitHour, "keys only the file sets still apply")
	})

	t.Run("env beats file", func(t *testing.T) {
		t.Setenv("BACKDATE_SENTINEL", "//env")

		c := New()
		c.LoadFromEnvironment()
		fs := flag.NewFlagSet("backdate", flag.ContinueOnError)
		require.NoError(t, c.parseFlagSet(fs, []string{"-repo", repoDir, "-start", "2017-08-31"}))
		require.NoError(t, c.LoadFromFile())
		require.NoError(t, c.Finalize())

		assert.Equal(t, "//env", c.Sentinel)
		assert.Equal(t, 9, c.CommitHour)
	})

	t.Run("file applies when nothing else set", func(t *testing.T) {
		c := New()
		c.LoadFromEnvironment()
		fs := flag.NewFlagSet("backdate", flag.ContinueOnError)
		require.NoError(t, c.parseFlagSet(fs, []string{"-repo", repoDir, "-start", "2017-08-31"}))
		require.NoError(t, c.LoadFromFile())
		require.NoError(t, c.Finalize())

		assert.Equal(t, "//file", c.Sentinel)
		assert.Equal(t, 9, c.CommitHour)
	})
}

func TestLoadFromFileRejectsBadTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName),
		[]byte(`sentinel = unquoted`), 0644))

	c := New()
	c.RepoPath = dir

	err := c.LoadFromFile()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)
}
