// Package testutil provides test doubles shared across osintscan packages.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// MockCommandRunner implements runner.CommandRunner for testing
type MockCommandRunner struct {
	mu        sync.RWMutex
	commands  []ExecutedCommand
	responses map[string]CommandResponse
}

type ExecutedCommand struct {
	Command string
	Args    []string
}

type CommandResponse struct {
	Output []byte
	Error  error
	Delay  time.Duration
}

func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		responses: make(map[string]CommandResponse),
	}
}

// Run returns the response registered for command+args, or empty output.
// A Delay is cut short by ctx.
func (m *MockCommandRunner) Run(ctx context.Context, command string, args []string) ([]byte, error) {
	m.mu.Lock()
	m.commands = append(m.commands, ExecutedCommand{
		Command: command,
		Args:    append([]string(nil), args...),
	})
	response, exists := m.responses[key(command, args)]
	m.mu.Unlock()

	if !exists {
		return nil, nil
	}
	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return response.Output, response.Error
}

func (m *MockCommandRunner) SetResponse(command string, args []string, response CommandResponse) {
	m.mu.Lock()
	m.responses[key(command, args)] = response
	m.mu.Unlock()
}

func (m *MockCommandRunner) GetExecutedCommands() []ExecutedCommand {
	m.mu.RLock()
	defer m.mu.RUnlock()

	commands := make([]ExecutedCommand, len(m.commands))
	copy(commands, m.commands)
	return commands
}

func key(command string, args []string) string {
	return command + " " + strings.Join(args, " ")
}

// CreateTestFile creates a test file with the given content
func CreateTestFile(t *testing.T, dir, filename, content string) string {
	t.Helper()

	filePath := filepath.Join(dir, filename)
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", filePath, err)
	}

	return filePath
}
