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

// Package ring implements the bounded descriptor/completion ring buffers
// shared by the Ethernet and RDMA data planes. Slots are fixed-size byte
// records allocated once at construction; Push copies a descriptor's bytes
// into the next slot, Pop copies them back out. Capacity and slot size never
// change after NewDescriptorRing/NewCompletionQueue.
package ring

import (
	"errors"

	"github.com/bytedance/gopkg/lang/dirtmake"
)

// ErrFull is returned by Push when the ring has no free slots.
var ErrFull = errors.New("ring: full")

// ErrEmpty is returned by Pop when the ring has no queued slots.
var ErrEmpty = errors.New("ring: empty")

// Doorbell is the side-effect-free notification a ring rings on Push.
// A ring without a doorbell attached is legal; Bell is nil in that case.
type Doorbell struct {
	QueueID     uint32
	ProducerIdx uint32
}

// Bell receives doorbell notifications. Ring() is called synchronously from
// Push; implementations must not block.
type Bell interface {
	Ring(db Doorbell)
}

// BellFunc adapts a function to Bell.
type BellFunc func(db Doorbell)

func (f BellFunc) Ring(db Doorbell) { f(db) }

// DescriptorRing is a fixed-capacity FIFO of fixed-size byte slots.
type DescriptorRing struct {
	queueID        uint32
	capacity       int
	descriptorSize int
	producerIdx    int
	consumerIdx    int
	count          int
	slots          [][]byte
	bell           Bell
}

// NewDescriptorRing creates a ring of the given capacity and per-slot size.
// bell may be nil.
func NewDescriptorRing(queueID uint32, capacity, descriptorSize int, bell Bell) *DescriptorRing {
	r := &DescriptorRing{
		queueID:        queueID,
		capacity:       capacity,
		descriptorSize: descriptorSize,
		slots:          make([][]byte, capacity),
		bell:           bell,
	}
	for i := range r.slots {
		r.slots[i] = dirtmake.Bytes(descriptorSize, descriptorSize)
	}
	return r
}

func (r *DescriptorRing) Capacity() int       { return r.capacity }
func (r *DescriptorRing) DescriptorSize() int { return r.descriptorSize }
func (r *DescriptorRing) Count() int          { return r.count }
func (r *DescriptorRing) ProducerIdx() int    { return r.producerIdx }
func (r *DescriptorRing) ConsumerIdx() int    { return r.consumerIdx }

func (r *DescriptorRing) IsFull() bool  { return r.count == r.capacity }
func (r *DescriptorRing) IsEmpty() bool { return r.count == 0 }

// Push copies bytes (truncated/zero-padded to descriptor_size) into the next
// free slot, advances the producer index and rings the doorbell.
func (r *DescriptorRing) Push(bytes []byte) error {
	if r.IsFull() {
		return ErrFull
	}
	slot := r.slots[r.producerIdx]
	n := copy(slot, bytes)
	for i := n; i < len(slot); i++ {
		slot[i] = 0
	}
	r.producerIdx = (r.producerIdx + 1) % r.capacity
	r.count++
	if r.bell != nil {
		r.bell.Ring(Doorbell{QueueID: r.queueID, ProducerIdx: uint32(r.producerIdx)})
	}
	return nil
}

// Pop copies out the oldest slot's bytes and advances the consumer index.
func (r *DescriptorRing) Pop() ([]byte, error) {
	if r.IsEmpty() {
		return nil, ErrEmpty
	}
	slot := r.slots[r.consumerIdx]
	out := make([]byte, len(slot))
	copy(out, slot)
	r.consumerIdx = (r.consumerIdx + 1) % r.capacity
	r.count--
	return out, nil
}

// Reset zeros the producer/consumer indices and count; capacity and
// descriptor size are preserved.
func (r *DescriptorRing) Reset() {
	r.producerIdx = 0
	r.consumerIdx = 0
	r.count = 0
}

// CompletionQueue has the same shape as DescriptorRing but stores structured
// completion entries instead of raw bytes.
type CompletionQueue[T any] struct {
	queueID     uint32
	capacity    int
	producerIdx int
	consumerIdx int
	count       int
	slots       []T
	bell        Bell
}

func NewCompletionQueue[T any](queueID uint32, capacity int, bell Bell) *CompletionQueue[T] {
	return &CompletionQueue[T]{
		queueID:  queueID,
		capacity: capacity,
		slots:    make([]T, capacity),
		bell:     bell,
	}
}

func (q *CompletionQueue[T]) Capacity() int    { return q.capacity }
func (q *CompletionQueue[T]) Count() int       { return q.count }
func (q *CompletionQueue[T]) ProducerIdx() int { return q.producerIdx }
func (q *CompletionQueue[T]) ConsumerIdx() int { return q.consumerIdx }
func (q *CompletionQueue[T]) IsFull() bool     { return q.count == q.capacity }
func (q *CompletionQueue[T]) IsEmpty() bool    { return q.count == 0 }

func (q *CompletionQueue[T]) Push(entry T) error {
	if q.IsFull() {
		return ErrFull
	}
	q.slots[q.producerIdx] = entry
	q.producerIdx = (q.producerIdx + 1) % q.capacity
	q.count++
	if q.bell != nil {
		q.bell.Ring(Doorbell{QueueID: q.queueID, ProducerIdx: uint32(q.producerIdx)})
	}
	return nil
}

func (q *CompletionQueue[T]) Pop() (T, error) {
	var zero T
	if q.IsEmpty() {
		return zero, ErrEmpty
	}
	out := q.slots[q.consumerIdx]
	var cleared T
	q.slots[q.consumerIdx] = cleared
	q.consumerIdx = (q.consumerIdx + 1) % q.capacity
	q.count--
	return out, nil
}

func (q *CompletionQueue[T]) Reset() {
	q.producerIdx = 0
	q.consumerIdx = 0
	q.count = 0
	for i := range q.slots {
		var zero T
		q.slots[i] = zero
	}
}
