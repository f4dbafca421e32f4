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

package rdma

import "github.com/softnic/gonic/wire"

// Packet is one RC transport packet in flight between two queue pairs. It
// carries the BTH every packet has plus whichever optional headers its
// opcode requires; Payload is nil for header-only packets (bare ACKs).
type Packet struct {
	BTH       wire.BTH
	RETH      *wire.RETH
	AETH      *wire.AETH
	Immediate *uint32
	Payload   []byte
}

func pmtuBytes(pmtu uint32) int {
	if pmtu == 0 {
		return 256
	}
	return int(pmtu)
}

// packetCount returns how many PMTU-sized packets a length-byte transfer
// takes, with a floor of one packet for a zero-length transfer.
func packetCount(length int, pmtu uint32) int {
	mtu := pmtuBytes(pmtu)
	if length == 0 {
		return 1
	}
	n := (length + mtu - 1) / mtu
	if n == 0 {
		n = 1
	}
	return n
}

// chunkAt returns the i'th mtu-sized slice of payload out of count total.
func chunkAt(payload []byte, i, count int, pmtu uint32) []byte {
	mtu := pmtuBytes(pmtu)
	start := i * mtu
	if start > len(payload) {
		start = len(payload)
	}
	end := start + mtu
	if end > len(payload) || i == count-1 {
		end = len(payload)
	}
	return payload[start:end]
}
