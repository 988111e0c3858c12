package marker

import (
	"os"
	"strings"

	"github.com/jalbritt/backdate/internal/errors"
)

// Action describes what Reconcile or Touch did to a file.
type Action int

const (
	// ActionNone means the file was left untouched
	ActionNone Action = iota

	// ActionAppended means the sentinel line was appended
	ActionAppended

	// ActionRemoved means the trailing sentinel line was stripped
	ActionRemoved

	// ActionTouched means a bare newline was appended
	ActionTouched
)

// String returns a short human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionAppended:
		return "appended"
	case ActionRemoved:
		return "removed"
	case ActionTouched:
		return "touched"
	default:
		return "none"
	}
}

// filePerm is used when rewriting files that Toggle or Reconcile own.
const filePerm = 0644

// Toggle flips the single-character flag held in the file at path.
//
// The first byte of the file is interpreted as the current flag value and
// must be '0' or '1'; anything else (including an empty file) yields an
// error wrapping errors.ErrInvalidFlagValue. The file is rewritten so that
// its entire content is the single opposite character, and the new value is
// returned. A missing file is reported as-is so callers can test for it
// with os.IsNotExist.
//
// There is no partial-write recovery: a crash between read and write can
// leave the file empty, and the next invocation will then fail loudly
// rather than guess.
func Toggle(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	if len(data) == 0 {
		return 0, errors.NewMarkerError("toggle", path,
			errors.Wrap(errors.ErrInvalidFlagValue, "flag file is empty"))
	}

	var next int
	switch data[0] {
	case '0':
		next = 1
	case '1':
		next = 0
	default:
		return 0, errors.NewMarkerError("toggle", path,
			errors.Wrapf(errors.ErrInvalidFlagValue, "unexpected leading byte %q", data[0]))
	}

	if err := os.WriteFile(path, []byte{byte('0' + next)}, filePerm); err != nil {
		return 0, errors.NewMarkerError("toggle", path, err)
	}

	return next, nil
}

// Reconcile adds or removes the sentinel as the last line of the file at
// path, whichever applies.
//
// The file content is split on "\n". If the final element equals sentinel,
// the file is rewritten as every line except the last, newline-joined, and
// ActionRemoved is returned. Otherwise "\n"+sentinel is appended and
// ActionAppended is returned; for a zero-length file the sentinel is written
// alone so that no leading blank line is introduced. Applying Reconcile
// twice is always a byte-identical round trip.
func Reconcile(path, sentinel string) (Action, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ActionNone, err
	}

	content := string(data)
	lines := strings.Split(content, "\n")

	if lines[len(lines)-1] == sentinel {
		trimmed := strings.Join(lines[:len(lines)-1], "\n")
		if err := os.WriteFile(path, []byte(trimmed), filePerm); err != nil {
			return ActionNone, errors.NewMarkerError("reconcile", path, err)
		}
		return ActionRemoved, nil
	}

	appended := sentinel
	if len(content) > 0 {
		appended = content + "\n" + sentinel
	}
	if err := os.WriteFile(path, []byte(appended), filePerm); err != nil {
		return ActionNone, errors.NewMarkerError("reconcile", path, err)
	}
	return ActionAppended, nil
}

// Touch appends a single newline to the file at path so that git sees a
// change. Empty files are left alone, matching the behavior documented for
// Reconcile: no operation ever introduces a leading blank line.
func Touch(path string) (Action, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ActionNone, err
	}
	if info.Size() == 0 {
		return ActionNone, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, filePerm)
	if err != nil {
		return ActionNone, errors.NewMarkerError("touch", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString("\n"); err != nil {
		return ActionNone, errors.NewMarkerError("touch", path, err)
	}
	return ActionTouched, nil
}
