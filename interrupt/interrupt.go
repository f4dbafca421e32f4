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

// Package interrupt models an MSI-X table: one entry per vector, each with
// its own mask/enable state and a coalescing window. QueuePair and the RDMA
// engine invoke Dispatcher.Fire on completion posts; the dispatcher does not
// own the completion queues it is fired for — it only counts and gates.
package interrupt

import "time"

// Vector is one MSI-X table entry.
type Vector struct {
	Masked      bool
	Enabled     bool
	CoalesceFor time.Duration

	pending   uint64
	fired     uint64
	lastFired time.Time
}

// Dispatcher owns a fixed-size MSI-X table.
type Dispatcher struct {
	vectors []Vector
	now     func() time.Time
}

// New creates a Dispatcher with n vectors, all enabled and unmasked.
func New(n int) *Dispatcher {
	d := &Dispatcher{vectors: make([]Vector, n), now: time.Now}
	for i := range d.vectors {
		d.vectors[i].Enabled = true
	}
	return d
}

// NumVectors returns the table size.
func (d *Dispatcher) NumVectors() int { return len(d.vectors) }

// SetMask masks/unmasks a vector.
func (d *Dispatcher) SetMask(vector int, masked bool) {
	if vector < 0 || vector >= len(d.vectors) {
		return
	}
	d.vectors[vector].Masked = masked
}

// SetEnabled enables/disables a vector.
func (d *Dispatcher) SetEnabled(vector int, enabled bool) {
	if vector < 0 || vector >= len(d.vectors) {
		return
	}
	d.vectors[vector].Enabled = enabled
}

// SetCoalesce configures the minimum gap between two fires on a vector.
func (d *Dispatcher) SetCoalesce(vector int, window time.Duration) {
	if vector < 0 || vector >= len(d.vectors) {
		return
	}
	d.vectors[vector].CoalesceFor = window
}

// Fire posts an interrupt on vector. Returns false if the vector is masked,
// disabled, or out of range, or if it fires inside its own coalescing
// window (in which case it is counted as pending but not fired).
func (d *Dispatcher) Fire(vector int) bool {
	if vector < 0 || vector >= len(d.vectors) {
		return false
	}
	v := &d.vectors[vector]
	if !v.Enabled || v.Masked {
		return false
	}
	now := d.now()
	if v.CoalesceFor > 0 && !v.lastFired.IsZero() && now.Sub(v.lastFired) < v.CoalesceFor {
		v.pending++
		return false
	}
	v.fired++
	v.pending = 0
	v.lastFired = now
	return true
}

// Stats returns a copy of a vector's counters.
func (d *Dispatcher) Stats(vector int) (fired, pending uint64) {
	if vector < 0 || vector >= len(d.vectors) {
		return 0, 0
	}
	return d.vectors[vector].fired, d.vectors[vector].pending
}
