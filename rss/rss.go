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

// Package rss computes the Toeplitz hash used for receive-side steering and
// looks the result up in an indirection table to pick an RX queue.
//
// DO NOT confuse this with a general-purpose hash package: the Toeplitz
// function here is a pure function of (key, data) only, and unlike
// hash/fnv-style hashes it is defined bit-by-bit over a sliding 32-bit
// window of the key, as required by RSS implementations (RFC-less, but
// specified by NIC vendor docs and the Microsoft RSS whitepaper).
package rss

// DefaultKey is the 40-byte Microsoft RSS test key used when no key is
// configured.
var DefaultKey = [40]byte{
	0x6d, 0x5a, 0x56, 0xda, 0x25, 0x5b, 0x0e, 0xc2,
	0x41, 0x67, 0x25, 0x3d, 0x43, 0xa3, 0x8f, 0xb0,
	0xd0, 0xca, 0x2b, 0xcb, 0xae, 0x7b, 0x30, 0xb4,
	0x77, 0xcb, 0x2d, 0xa3, 0x80, 0x30, 0xf2, 0x0c,
	0x6a, 0x42, 0xb7, 0x3b, 0xbe, 0xac, 0x01, 0xfa,
}

// DefaultTableLen is the size of the identity-mapped indirection table used
// when no table is configured.
const DefaultTableLen = 128

// DefaultTable returns a fresh 128-entry identity-mapped indirection table.
func DefaultTable() []uint16 {
	t := make([]uint16, DefaultTableLen)
	for i := range t {
		t[i] = uint16(i)
	}
	return t
}

// Hash computes the Toeplitz hash of data under key. It treats key as a
// continuous bit sequence (MSB of byte 0 first); for every set bit of data
// (also MSB-first), it XORs the 32-bit window of key starting at that bit
// offset (modulo key_bits) into the accumulator.
func Hash(key []byte, data []byte) uint32 {
	keyBits := len(key) * 8
	if keyBits == 0 {
		return 0
	}
	var acc uint32
	bitOffset := 0
	for _, b := range data {
		for bit := 7; bit >= 0; bit-- {
			if b&(1<<uint(bit)) != 0 {
				acc ^= window32(key, keyBits, bitOffset)
			}
			bitOffset++
		}
	}
	return acc
}

// window32 extracts the 32-bit big-endian window of the key bit-string
// starting at bitOffset (wrapping modulo keyBits), MSB-first.
func window32(key []byte, keyBits, bitOffset int) uint32 {
	var out uint32
	for i := 0; i < 32; i++ {
		bit := (bitOffset + i) % keyBits
		byteIdx := bit / 8
		bitIdx := 7 - uint(bit%8)
		v := (key[byteIdx] >> bitIdx) & 1
		out = out<<1 | uint32(v)
	}
	return out
}

// Engine selects an RX queue from a Toeplitz hash and an indirection table.
type Engine struct {
	key   []byte
	table []uint16

	totalHashes uint64
	tableHits   []uint64 // indexed by table slot
}

// New creates an Engine. A nil key defaults to DefaultKey; a nil table
// defaults to DefaultTable().
func New(key []byte, table []uint16) *Engine {
	if key == nil {
		key = append([]byte(nil), DefaultKey[:]...)
	}
	if table == nil {
		table = DefaultTable()
	}
	return &Engine{key: key, table: table, tableHits: make([]uint64, len(table))}
}

// SelectQueue hashes data and returns the selected queue id. The second
// return is false if the indirection table is empty (no selection).
func (e *Engine) SelectQueue(data []byte) (uint16, bool) {
	if len(e.table) == 0 {
		return 0, false
	}
	h := Hash(e.key, data)
	idx := int(h) % len(e.table)
	e.totalHashes++
	e.tableHits[idx]++
	return e.table[idx], true
}

// TotalHashes returns the number of hashes computed.
func (e *Engine) TotalHashes() uint64 { return e.totalHashes }

// TableHit returns the hit count for a given table slot (not queue id).
func (e *Engine) TableHit(slot int) uint64 {
	if slot < 0 || slot >= len(e.tableHits) {
		return 0
	}
	return e.tableHits[slot]
}
