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

// Package hostmem is a flat physical-address-space mock. It is the single
// source of truth DMAEngine reads from and writes to; it never allocates a
// descriptor ring, a queue pair, or anything domain-specific — it only
// stores bytes and reports success/fault.
package hostmem

import (
	"github.com/bytedance/gopkg/lang/dirtmake"
)

// Status is the result of a HostMemory access.
type Status int

const (
	StatusNone Status = iota
	StatusAccessError
	StatusPermissionError
	StatusFault
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusAccessError:
		return "access_error"
	case StatusPermissionError:
		return "permission_error"
	case StatusFault:
		return "fault"
	default:
		return "unknown"
	}
}

// Memory is a flat byte-addressable space of a fixed size.
type Memory struct {
	bytes []byte
}

// New allocates a Memory of the given size, zero-initialized.
func New(size uint64) *Memory {
	return &Memory{bytes: dirtmakeZeroed(size)}
}

func dirtmakeZeroed(size uint64) []byte {
	b := dirtmake.Bytes(int(size), int(size))
	for i := range b {
		b[i] = 0
	}
	return b
}

// Size returns the total addressable byte count.
func (m *Memory) Size() uint64 { return uint64(len(m.bytes)) }

func (m *Memory) inBounds(addr, length uint64) bool {
	if length == 0 {
		return addr <= m.Size()
	}
	end := addr + length
	return end >= addr && end <= m.Size()
}

// Read copies length bytes starting at addr into a new slice.
func (m *Memory) Read(addr, length uint64) ([]byte, Status) {
	if !m.inBounds(addr, length) {
		return nil, StatusAccessError
	}
	out := make([]byte, length)
	copy(out, m.bytes[addr:addr+length])
	return out, StatusNone
}

// Write copies data into memory starting at addr.
func (m *Memory) Write(addr uint64, data []byte) Status {
	if !m.inBounds(addr, uint64(len(data))) {
		return StatusAccessError
	}
	copy(m.bytes[addr:addr+uint64(len(data))], data)
	return StatusNone
}
