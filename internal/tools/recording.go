// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package tools

import "sync"

// RecordedCommand is one invocation seen by a RecordingRunner.
type RecordedCommand struct {
	Name string
	Args []string
}

// Line returns the command line as CommandLine renders it.
func (c RecordedCommand) Line() string {
	return CommandLine(c.Name, c.Args...)
}

// RecordingRunner records commands instead of executing them. Respond, if
// set, decides the result of each command; otherwise every command
// succeeds with empty output.
type RecordingRunner struct {
	mu       sync.Mutex
	commands []RecordedCommand

	Respond func(name string, args []string) (Result, error)
}

// Run records the command and returns the configured response.
func (r *RecordingRunner) Run(name string, args ...string) (Result, error) {
	r.mu.Lock()
	r.commands = append(r.commands, RecordedCommand{Name: name, Args: append([]string(nil), args...)})
	respond := r.Respond
	r.mu.Unlock()

	if respond == nil {
		return Result{}, nil
	}
	return respond(name, args)
}

// Commands returns a copy of every recorded command.
func (r *RecordingRunner) Commands() []RecordedCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedCommand(nil), r.commands...)
}

// Lines returns the recorded commands rendered as command lines.
func (r *RecordingRunner) Lines() []string {
	cmds := r.Commands()
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Line()
	}
	return out
}
