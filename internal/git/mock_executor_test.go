package git

import (
	"os/exec"
)

// mockExecutor records every command it is asked to run instead of
// executing anything.
type mockExecutor struct {
	Output              string
	LastCmd             *exec.Cmd
	Commands            []*exec.Cmd
	ExecuteFn           func(cmd *exec.Cmd) error
	ExecuteWithOutputFn func(cmd *exec.Cmd) (string, error)
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{}
}

// Execute implements the CommandExecutor interface
func (m *mockExecutor) Execute(cmd *exec.Cmd) error {
	m.LastCmd = cmd
	m.Commands = append(m.Commands, cmd)

	if m.ExecuteFn != nil {
		return m.ExecuteFn(cmd)
	}
	return nil
}

// ExecuteWithOutput implements the CommandExecutor interface
func (m *mockExecutor) ExecuteWithOutput(cmd *exec.Cmd) (string, error) {
	m.LastCmd = cmd
	m.Commands = append(m.Commands, cmd)

	if m.ExecuteWithOutputFn != nil {
		return m.ExecuteWithOutputFn(cmd)
	}
	return m.Output, nil
}
