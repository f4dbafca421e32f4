// Copyright 2024 CloudWeGo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package admin implements the device's administrative command queue and
// the per-function mailbox used for host-to-firmware and PF-to-VF
// messaging.
package admin

import "sync"

// CommandOpcode identifies an admin command.
type CommandOpcode uint16

// Command is one entry submitted to the admin queue.
type Command struct {
	ID     uint16
	Opcode CommandOpcode
	Data   []byte
}

// CommandResult is the outcome of processing one Command.
type CommandResult struct {
	ID      uint16
	Success bool
	Data    []byte
}

// maxCommandsPerCall bounds how much work process_commands drains in one
// call, so one admin-heavy function cannot starve others sharing the
// executor.
const maxCommandsPerCall = 16

// Handler processes one command and returns its result.
type Handler func(Command) CommandResult

// Queue is the device's administrative command queue: host software
// submits commands, the device assigns each a 16-bit incrementing ID and
// drains them in FIFO order.
type Queue struct {
	nextID  uint16
	pending []Command
	Handler Handler
}

// NewQueue creates an empty admin queue.
func NewQueue(h Handler) *Queue {
	return &Queue{Handler: h}
}

// Submit assigns the next command ID and enqueues cmd, returning the
// assigned ID.
func (q *Queue) Submit(opcode CommandOpcode, data []byte) uint16 {
	id := q.nextID
	q.nextID++
	q.pending = append(q.pending, Command{ID: id, Opcode: opcode, Data: data})
	return id
}

// Depth returns the number of commands still queued.
func (q *Queue) Depth() int { return len(q.pending) }

// ProcessCommands drains up to maxCommandsPerCall pending commands through
// Handler, returning their results in submission order. If fewer than that
// many are pending, it drains all of them.
func (q *Queue) ProcessCommands() []CommandResult {
	n := len(q.pending)
	if n > maxCommandsPerCall {
		n = maxCommandsPerCall
	}
	results := make([]CommandResult, 0, n)
	for i := 0; i < n; i++ {
		cmd := q.pending[i]
		if q.Handler != nil {
			results = append(results, q.Handler(cmd))
		} else {
			results = append(results, CommandResult{ID: cmd.ID, Success: false})
		}
	}
	q.pending = q.pending[n:]
	return results
}

// ProcessCommandsAsync drains up to maxCommandsPerCall pending commands the
// same way ProcessCommands does, but runs each one on d's worker pool
// instead of inline, and blocks only until every dispatched command has
// completed. Results are returned in submission order even though they may
// complete out of order on the pool.
func (q *Queue) ProcessCommandsAsync(d *Dispatcher) []CommandResult {
	n := len(q.pending)
	if n > maxCommandsPerCall {
		n = maxCommandsPerCall
	}
	batch := q.pending[:n]
	q.pending = q.pending[n:]

	results := make([]CommandResult, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i, cmd := range batch {
		i, cmd := i, cmd
		handler := q.Handler
		if handler == nil {
			handler = func(c Command) CommandResult { return CommandResult{ID: c.ID, Success: false} }
		}
		d.Dispatch(cmd, handler, func(res CommandResult) {
			results[i] = res
			wg.Done()
		})
	}
	wg.Wait()
	return results
}
