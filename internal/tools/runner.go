// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package tools

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCommandFailed is wrapped when a command cannot be started, cannot be
// waited on, or exits non-zero.
var ErrCommandFailed = errors.New("external command failed")

// Result is the captured outcome of one command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// CommandRunner abstracts command execution so controllers can be tested
// without spawning processes.
type CommandRunner interface {
	Run(name string, args ...string) (Result, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

// Run starts name with args, waits for it and captures its output.
func (ExecRunner) Run(name string, args ...string) (Result, error) {
	cmd := exec.Command(name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, Failure(name, args, res, nil)
	}

	res.ExitCode = 1
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		res.ExitCode = 127
	}
	return res, Failure(name, args, res, err)
}

// Failure builds an ErrCommandFailed error describing the command line,
// its exit code and the first line of stderr. cause is included when the
// command never ran to completion.
func Failure(name string, args []string, res Result, cause error) error {
	line := CommandLine(name, args...)
	if cause != nil {
		return fmt.Errorf("%w: %s: %v", ErrCommandFailed, line, cause)
	}
	msg := fmt.Sprintf("%s: exit status %d", line, res.ExitCode)
	if first := firstLine(res.Stderr); first != "" {
		msg += ": " + first
	}
	return fmt.Errorf("%w: %s", ErrCommandFailed, msg)
}

// CommandLine renders name and args for logs and errors.
func CommandLine(name string, args ...string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
