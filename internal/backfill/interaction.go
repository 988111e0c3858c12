package backfill

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// UserInteractor defines an interface for interacting with the user
type UserInteractor interface {
	// PromptYesNo asks the user a yes/no question and returns their response
	PromptYesNo(question string) bool
}

// DefaultInteractor reads answers from stdin. History rewriting is the kind
// of operation that deserves a confirmation step, so the default session is
// interactive.
type DefaultInteractor struct {
	Reader io.Reader
	Writer io.Writer
}

// NewDefaultInteractor creates a DefaultInteractor on stdin and stdout.
func NewDefaultInteractor() *DefaultInteractor {
	return &DefaultInteractor{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// PromptYesNo asks the user a yes/no question and returns their response.
// The prompt has no trailing newline so the answer is typed on the same
// line. Any read error counts as "no".
func (i *DefaultInteractor) PromptYesNo(question string) bool {
	_, _ = fmt.Fprintf(i.Writer, "%s (y/n): ", question)

	answer, err := bufio.NewReader(i.Reader).ReadString('\n')
	if err != nil {
		return false
	}

	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y")
}

// NonInteractiveInteractor answers prompts without asking. Used when the
// session runs with --yes or from scripts.
type NonInteractiveInteractor struct{}

// NewNonInteractiveInteractor creates a new NonInteractiveInteractor
func NewNonInteractiveInteractor() *NonInteractiveInteractor {
	return &NonInteractiveInteractor{}
}

// PromptYesNo always returns true; non-interactive runs have already opted
// in on the command line.
func (i *NonInteractiveInteractor) PromptYesNo(question string) bool {
	return true
}
