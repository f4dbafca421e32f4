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

// Package memregion tracks registered memory regions keyed by lkey/rkey and
// validates RDMA access against PD binding, address range, and access
// flags. Table mutations (Register/Deregister) must not race with in-flight
// RDMA operations referencing the affected keys — the caller owns that
// invariant, the table does not lock across a lookup and its use.
package memregion

import "errors"

// AccessFlag is a bit in MemoryRegion.AccessFlags.
type AccessFlag uint8

const (
	LocalRead AccessFlag = 1 << iota
	LocalWrite
	RemoteRead
	RemoteWrite
	Atomic
)

// Has reports whether all bits of want are set in f.
func (f AccessFlag) Has(want AccessFlag) bool { return f&want == want }

// Region is a single registered memory region.
type Region struct {
	LKey         uint32
	RKey         uint32
	PDHandle     uint32
	StartAddress uint64
	Length       uint64
	AccessFlags  AccessFlag
}

func (r Region) contains(addr, length uint64) bool {
	if length == 0 {
		return addr >= r.StartAddress && addr <= r.StartAddress+r.Length
	}
	end := addr + length
	return addr >= r.StartAddress && end >= addr && end <= r.StartAddress+r.Length
}

// ErrNotFound is returned when a key has no registered region.
var ErrNotFound = errors.New("memregion: key not found")

// ErrPDMismatch is returned when the caller's PD handle does not match.
var ErrPDMismatch = errors.New("memregion: protection domain mismatch")

// ErrOutOfRange is returned when [addr, addr+length) is not contained.
var ErrOutOfRange = errors.New("memregion: address range out of bounds")

// ErrAccessDenied is returned when the required access flag is absent.
var ErrAccessDenied = errors.New("memregion: access flag not granted")

// Table is the lkey/rkey-indexed region registry.
type Table struct {
	byLKey map[uint32]Region
	byRKey map[uint32]Region
}

// New creates an empty Table.
func New() *Table {
	return &Table{byLKey: make(map[uint32]Region), byRKey: make(map[uint32]Region)}
}

// Register adds or replaces a region under its lkey and rkey.
func (t *Table) Register(r Region) {
	t.byLKey[r.LKey] = r
	t.byRKey[r.RKey] = r
}

// Deregister removes a region by lkey and rkey.
func (t *Table) Deregister(lkey, rkey uint32) {
	delete(t.byLKey, lkey)
	delete(t.byRKey, rkey)
}

// ValidateLocal checks a local access (by lkey) against pd, address range,
// and a required access flag (LocalRead or LocalWrite).
func (t *Table) ValidateLocal(lkey, pd uint32, addr, length uint64, want AccessFlag) (Region, error) {
	r, ok := t.byLKey[lkey]
	if !ok {
		return Region{}, ErrNotFound
	}
	return t.validate(r, pd, addr, length, want)
}

// ValidateRemote checks a remote access (by rkey) against pd, address
// range, and a required access flag (RemoteRead, RemoteWrite, or Atomic).
func (t *Table) ValidateRemote(rkey, pd uint32, addr, length uint64, want AccessFlag) (Region, error) {
	r, ok := t.byRKey[rkey]
	if !ok {
		return Region{}, ErrNotFound
	}
	return t.validate(r, pd, addr, length, want)
}

func (t *Table) validate(r Region, pd uint32, addr, length uint64, want AccessFlag) (Region, error) {
	if r.PDHandle != pd {
		return Region{}, ErrPDMismatch
	}
	if !r.contains(addr, length) {
		return Region{}, ErrOutOfRange
	}
	if !r.AccessFlags.Has(want) {
		return Region{}, ErrAccessDenied
	}
	return r, nil
}
