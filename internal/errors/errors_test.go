package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrap(ErrInvalidFlagValue, "reading zero.md")

	assert.ErrorIs(t, err, ErrInvalidFlagValue)
	assert.Contains(t, err.Error(), "reading zero.md")
}

func TestWrapfFormats(t *testing.T) {
	err := Wrapf(ErrGitOperationFailed, "day %s", "2017-08-31")

	assert.ErrorIs(t, err, ErrGitOperationFailed)
	assert.Contains(t, err.Error(), "day 2017-08-31")
}

func TestGitErrorChain(t *testing.T) {
	inner := Wrap(ErrGitOperationFailed, "exit status 1")
	err := NewGitError("commit", []string{"-a", "-m", "msg"}, inner, "nothing to commit")

	assert.ErrorIs(t, err, ErrGitOperationFailed)

	var gitErr *GitError
	require.ErrorAs(t, err, &gitErr)
	assert.Equal(t, "commit", gitErr.Operation)
	assert.Contains(t, gitErr.Error(), "git commit failed")
	assert.Contains(t, gitErr.Error(), "nothing to commit")
}

func TestMarkerErrorChain(t *testing.T) {
	err := NewMarkerError("toggle", "/repo/zero.md", Wrap(ErrInvalidFlagValue, "unexpected leading byte"))

	assert.ErrorIs(t, err, ErrInvalidFlagValue)

	var markerErr *MarkerError
	require.ErrorAs(t, err, &markerErr)
	assert.Equal(t, "/repo/zero.md", markerErr.Path)
	assert.Equal(t, "toggle", markerErr.Op)
	assert.Contains(t, markerErr.Error(), "marker toggle failed")
}

func TestLockErrorIncludesPid(t *testing.T) {
	err := NewLockError("/tmp/backdate-abc.lock", 4242, ErrAlreadyRunning)

	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Contains(t, err.Error(), "4242")
	assert.Contains(t, err.Error(), "/tmp/backdate-abc.lock")
}

func TestConfigErrorWithAndWithoutValue(t *testing.T) {
	withValue := NewConfigError("hour", 24, Wrap(ErrInvalidConfiguration, "hour must be between 0 and 23"))
	assert.ErrorIs(t, withValue, ErrInvalidConfiguration)
	assert.Contains(t, withValue.Error(), "hour = 24")

	withoutValue := NewConfigError("start", nil, ErrInvalidConfiguration)
	assert.Contains(t, withoutValue.Error(), "configuration error for start:")
}
