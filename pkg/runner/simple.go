package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"osintscan/pkg/logger"
)

var (
	safeFilename = regexp.MustCompile(`^[a-zA-Z0-9_\-./]+$`)

	// ErrBinaryNotFound is returned when the command is not on PATH.
	ErrBinaryNotFound = errors.New("binary not found")
)

// SimpleRunner executes system commands directly, without a shell.
// Script paths are dispatched to an interpreter chosen by extension.
type SimpleRunner struct {
	logger *logger.Logger
}

// NewSimpleRunner creates a new SimpleRunner instance
func NewSimpleRunner(log *logger.Logger) *SimpleRunner {
	if log == nil {
		log = logger.NewNop()
	}
	return &SimpleRunner{logger: log}
}

// Run executes a command and returns its stdout. A non-zero exit is an error
// carrying the captured stderr.
func (r *SimpleRunner) Run(ctx context.Context, command string, args []string) ([]byte, error) {
	if err := r.validateCommand(command); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}

	for i, arg := range args {
		if err := r.validateArgument(arg); err != nil {
			return nil, fmt.Errorf("invalid argument at index %d (%s): %w", i, arg, err)
		}
	}

	finalCommand, finalArgs := r.resolveInterpreter(command, args)

	r.logger.WithFields(logger.Fields{
		"command": finalCommand,
		"args":    finalArgs,
	}).Debug("Executing command")

	cmd := exec.CommandContext(ctx, finalCommand, finalArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stdout.Bytes(), fmt.Errorf("execution aborted: %w", ctxErr)
		}

		errorMsg := fmt.Sprintf("execution failed: %v", err)
		if stderr.Len() > 0 {
			errorMsg = fmt.Sprintf("%s: %s", errorMsg, strings.TrimSpace(stderr.String()))
		}

		r.logger.WithFields(logger.Fields{
			"command": finalCommand,
			"stderr":  stderr.String(),
		}).WithError(err).Warn("Command execution failed")
		return stdout.Bytes(), errors.New(errorMsg)
	}

	return stdout.Bytes(), nil
}

// validateCommand validates that a command is safe to execute
func (r *SimpleRunner) validateCommand(command string) error {
	if command == "" {
		return fmt.Errorf("command is empty")
	}

	if !safeFilename.MatchString(command) {
		return fmt.Errorf("unsafe characters in command: %s", command)
	}

	// Script files are checked on disk, bare names must resolve on PATH.
	if filepath.Ext(command) != "" {
		fi, err := os.Lstat(command)
		if err != nil {
			return fmt.Errorf("command file does not exist: %w", err)
		}
		if fi.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("command is a symlink: %s", command)
		}
		return nil
	}

	if _, err := exec.LookPath(command); err != nil {
		return fmt.Errorf("%w: %s", ErrBinaryNotFound, command)
	}
	return nil
}

// validateArgument validates that a command argument is safe
func (r *SimpleRunner) validateArgument(arg string) error {
	if arg == "" {
		return nil
	}

	dangerous := []string{";", "&", "|", "`", "$", "(", ")", "\n", "\r", "<", ">"}
	for _, char := range dangerous {
		if strings.Contains(arg, char) {
			return fmt.Errorf("argument contains dangerous character: %q", char)
		}
	}

	if strings.Contains(arg, "..") && !strings.Contains(arg, "://") {
		return fmt.Errorf("path traversal detected in argument")
	}

	return nil
}

// resolveInterpreter determines the appropriate interpreter for script files
// based on file extension and returns the command and arguments to execute
func (r *SimpleRunner) resolveInterpreter(command string, args []string) (string, []string) {
	switch filepath.Ext(command) {
	case ".py":
		return "python3", append([]string{command}, args...)
	case ".rb":
		return "ruby", append([]string{command}, args...)
	case ".sh":
		if runtime.GOOS == "windows" {
			return "bash", append([]string{command}, args...)
		}
		return "sh", append([]string{command}, args...)
	}
	return command, args
}

// ExpandArgs substitutes {{KEY}} placeholders in args with the given values.
func ExpandArgs(args []string, values map[string]string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		for k, v := range values {
			arg = strings.ReplaceAll(arg, "{{"+k+"}}", v)
		}
		out[i] = arg
	}
	return out
}
