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

package admin

import (
	"log"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// DispatcherOption bounds a Dispatcher's worker pool, the same three knobs
// a background goroutine pool needs: how many workers may sit idle, how
// long an idle worker survives before exiting, and how many queued
// commands are allowed to back up before a caller falls back to spawning
// its own goroutine.
type DispatcherOption struct {
	MaxIdleWorkers int
	WorkerMaxAge   time.Duration
	QueueDepth     int
}

// DefaultDispatcherOption matches an admin queue's expected command rate:
// bursty, low-volume, with commands that complete in microseconds.
func DefaultDispatcherOption() *DispatcherOption {
	return &DispatcherOption{
		MaxIdleWorkers: 8,
		WorkerMaxAge:   time.Minute,
		QueueDepth:     64,
	}
}

type dispatchTask struct {
	cmd     Command
	handler Handler
	onDone  func(CommandResult)
}

// Dispatcher runs admin Commands off the caller's goroutine on a small
// self-sizing worker pool, so a PF driver thread posting a command never
// blocks on whatever work the handler does. Workers are created lazily as
// queued commands pile up and exit once idle past WorkerMaxAge, mirroring
// how a real PF's admin-queue interrupt handler hands commands off to a
// bounded thread pool instead of processing them inline.
type Dispatcher struct {
	workers int32
	maxIdle int32
	maxage  int64 // milliseconds

	panicHandler func(r interface{})

	tasks     chan dispatchTask
	unixMilli int64
}

// NewDispatcher builds a Dispatcher. A nil opt uses DefaultDispatcherOption.
func NewDispatcher(opt *DispatcherOption) *Dispatcher {
	if opt == nil {
		opt = DefaultDispatcherOption()
	}
	return &Dispatcher{
		tasks:   make(chan dispatchTask, opt.QueueDepth),
		maxage:  opt.WorkerMaxAge.Milliseconds(),
		maxIdle: int32(opt.MaxIdleWorkers),
	}
}

// SetPanicHandler overrides the default log.Printf recovery behavior for a
// command handler that panics.
func (d *Dispatcher) SetPanicHandler(f func(r interface{})) {
	d.panicHandler = f
}

// CurrentWorkers reports the number of live worker goroutines.
func (d *Dispatcher) CurrentWorkers() int {
	return int(atomic.LoadInt32(&d.workers))
}

// Dispatch queues cmd to run against handler on the pool; onDone is called
// with the result from whichever worker goroutine executes it. If the
// queue is full, Dispatch runs the command on a fresh goroutine outside
// the pool rather than blocking the caller.
func (d *Dispatcher) Dispatch(cmd Command, handler Handler, onDone func(CommandResult)) {
	t := dispatchTask{cmd: cmd, handler: handler, onDone: onDone}
	select {
	case d.tasks <- t:
	default:
		go d.runTask(t)
		return
	}
	if len(d.tasks) == 0 {
		return
	}
	go d.spawnWorker()
}

func (d *Dispatcher) runTask(t dispatchTask) {
	defer func() {
		if r := recover(); r != nil {
			if d.panicHandler != nil {
				d.panicHandler(r)
			} else {
				log.Printf("admin: dispatcher recovered panic in command %d: %v: %s", t.cmd.ID, r, debug.Stack())
			}
		}
	}()
	t.onDone(t.handler(t.cmd))
}

func (d *Dispatcher) spawnWorker() {
	id := atomic.AddInt32(&d.workers, 1)
	defer atomic.AddInt32(&d.workers, -1)

	if id > d.maxIdle {
		for {
			select {
			case t := <-d.tasks:
				d.runTask(t)
			default:
				return
			}
		}
	}

	createdAt := time.Now().UnixMilli()
	for t := range d.tasks {
		d.runTask(t)

		now := atomic.LoadInt64(&d.unixMilli)
		if now == 0 {
			now = time.Now().UnixMilli()
			if atomic.CompareAndSwapInt64(&d.unixMilli, 0, now) {
				go d.runAgingTicker()
			}
		}
		if now-createdAt > d.maxage {
			return
		}
	}
}

var noopDispatchTask = dispatchTask{onDone: func(CommandResult) {}, handler: func(Command) CommandResult { return CommandResult{} }}

// runAgingTicker periodically wakes idle workers so they can notice they
// have outlived WorkerMaxAge and exit, the same lazy-ticker trick used to
// retire idle goroutines without a per-worker timer.
func (d *Dispatcher) runAgingTicker() {
	defer atomic.StoreInt64(&d.unixMilli, 0)

	interval := time.Duration(d.maxage) * time.Millisecond / 100
	if interval < time.Millisecond {
		interval = time.Millisecond
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for now := range t.C {
		if d.CurrentWorkers() == 0 {
			return
		}
		atomic.StoreInt64(&d.unixMilli, now.UnixMilli())
		d.tasks <- noopDispatchTask
	}
}
