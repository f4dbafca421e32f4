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

// Package dma performs single, strided-burst, and scatter-gather transfers
// against a hostmem.Memory, counting bytes and operations as it goes.
package dma

import (
	"sync/atomic"

	"github.com/softnic/gonic/hostmem"
)

// Status mirrors hostmem.Status plus AlignmentError, which the engine
// itself raises ahead of ever touching host memory, and Timeout, which no
// Engine method returns.
type Status int

const (
	StatusNone Status = iota
	StatusAccessError
	StatusAlignmentError
	StatusPermissionError
	StatusTimeout
	StatusFault
)

func fromHostMem(s hostmem.Status) Status {
	switch s {
	case hostmem.StatusNone:
		return StatusNone
	case hostmem.StatusAccessError:
		return StatusAccessError
	case hostmem.StatusPermissionError:
		return StatusPermissionError
	case hostmem.StatusFault:
		return StatusFault
	default:
		return StatusFault
	}
}

// SGEntry is one (address, length) pair of a scatter-gather list.
type SGEntry struct {
	Addr   uint64
	Length uint64
}

// Counters accumulate only on success. Reads/writes are single-counter-inc
// per call; bursts count one burst_op plus the aggregate byte total.
type Counters struct {
	bytesRead    uint64
	bytesWritten uint64
	reads        uint64
	writes       uint64
	burstOps     uint64
	sgOps        uint64
}

func (c *Counters) BytesRead() uint64    { return atomic.LoadUint64(&c.bytesRead) }
func (c *Counters) BytesWritten() uint64 { return atomic.LoadUint64(&c.bytesWritten) }
func (c *Counters) Reads() uint64        { return atomic.LoadUint64(&c.reads) }
func (c *Counters) Writes() uint64       { return atomic.LoadUint64(&c.writes) }
func (c *Counters) BurstOps() uint64     { return atomic.LoadUint64(&c.burstOps) }
func (c *Counters) SGOps() uint64        { return atomic.LoadUint64(&c.sgOps) }

// Engine performs DMA transfers against a single hostmem.Memory.
type Engine struct {
	mem      *hostmem.Memory
	counters Counters
}

// New creates an Engine bound to mem.
func New(mem *hostmem.Memory) *Engine {
	return &Engine{mem: mem}
}

// Counters returns the engine's atomic counter tree. Safe to read
// concurrently; no ordering is promised relative to in-flight transfers.
func (e *Engine) Counters() *Counters { return &e.counters }

// Read performs a single-shot read of length bytes from addr.
func (e *Engine) Read(addr, length uint64) ([]byte, Status) {
	data, st := e.mem.Read(addr, length)
	if st != hostmem.StatusNone {
		return nil, fromHostMem(st)
	}
	atomic.AddUint64(&e.counters.bytesRead, uint64(len(data)))
	atomic.AddUint64(&e.counters.reads, 1)
	return data, StatusNone
}

// Write performs a single-shot write of data to addr.
func (e *Engine) Write(addr uint64, data []byte) Status {
	st := e.mem.Write(addr, data)
	if st != hostmem.StatusNone {
		return fromHostMem(st)
	}
	atomic.AddUint64(&e.counters.bytesWritten, uint64(len(data)))
	atomic.AddUint64(&e.counters.writes, 1)
	return StatusNone
}

// BurstRead reads beats beat-sized chunks starting at addr, each stride
// bytes apart, and concatenates them. bufferSize must be a multiple of
// beatBytes and stride must be nonzero, else AlignmentError. All-or-nothing:
// on failure no partial result is returned, though per-beat byte counters
// may already have advanced from earlier beats in this call.
func (e *Engine) BurstRead(addr uint64, beatBytes, beats int, stride uint64) ([]byte, Status) {
	if beatBytes <= 0 || beats <= 0 {
		return nil, StatusAlignmentError
	}
	bufferSize := beatBytes * beats
	if bufferSize%beatBytes != 0 || stride == 0 {
		return nil, StatusAlignmentError
	}
	out := make([]byte, 0, bufferSize)
	cur := addr
	for i := 0; i < beats; i++ {
		chunk, st := e.mem.Read(cur, uint64(beatBytes))
		if st != hostmem.StatusNone {
			return nil, fromHostMem(st)
		}
		out = append(out, chunk...)
		atomic.AddUint64(&e.counters.bytesRead, uint64(beatBytes))
		cur += stride
	}
	atomic.AddUint64(&e.counters.burstOps, 1)
	return out, StatusNone
}

// BurstWrite is the write-direction counterpart of BurstRead: data is split
// into beats beatBytes-sized chunks and written stride bytes apart.
func (e *Engine) BurstWrite(addr uint64, data []byte, beatBytes int, stride uint64) Status {
	if beatBytes <= 0 || len(data)%beatBytes != 0 || stride == 0 {
		return StatusAlignmentError
	}
	beats := len(data) / beatBytes
	cur := addr
	for i := 0; i < beats; i++ {
		chunk := data[i*beatBytes : (i+1)*beatBytes]
		st := e.mem.Write(cur, chunk)
		if st != hostmem.StatusNone {
			return fromHostMem(st)
		}
		atomic.AddUint64(&e.counters.bytesWritten, uint64(beatBytes))
		cur += stride
	}
	atomic.AddUint64(&e.counters.burstOps, 1)
	return StatusNone
}

// ScatterGatherRead reads each SGEntry in order and concatenates the result.
// sgl must be nonempty, else AccessError.
func (e *Engine) ScatterGatherRead(sgl []SGEntry) ([]byte, Status) {
	if len(sgl) == 0 {
		return nil, StatusAccessError
	}
	var total uint64
	for _, e := range sgl {
		total += e.Length
	}
	out := make([]byte, 0, total)
	for _, entry := range sgl {
		chunk, st := e.mem.Read(entry.Addr, entry.Length)
		if st != hostmem.StatusNone {
			return nil, fromHostMem(st)
		}
		out = append(out, chunk...)
		atomic.AddUint64(&e.counters.bytesRead, entry.Length)
	}
	atomic.AddUint64(&e.counters.sgOps, 1)
	return out, StatusNone
}

// ScatterGatherWrite writes data across sgl in order; the target (sum of
// entry lengths) must be at least len(data), else AccessError.
func (e *Engine) ScatterGatherWrite(sgl []SGEntry, data []byte) Status {
	if len(sgl) == 0 {
		return StatusAccessError
	}
	var total uint64
	for _, e := range sgl {
		total += e.Length
	}
	if total < uint64(len(data)) {
		return StatusAccessError
	}
	off := 0
	for _, entry := range sgl {
		n := int(entry.Length)
		if off+n > len(data) {
			n = len(data) - off
		}
		if n <= 0 {
			break
		}
		st := e.mem.Write(entry.Addr, data[off:off+n])
		if st != hostmem.StatusNone {
			return fromHostMem(st)
		}
		atomic.AddUint64(&e.counters.bytesWritten, uint64(n))
		off += n
	}
	atomic.AddUint64(&e.counters.sgOps, 1)
	return StatusNone
}
