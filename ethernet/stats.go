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

package ethernet

import "sync/atomic"

// Stats is the QueuePair's atomic counter tree. Safe to read from any
// observer goroutine; no ordering relative to process_once is promised.
type Stats struct {
	txPackets       uint64
	txBytes         uint64
	dropsNoRxDesc   uint64
	dropsChecksum   uint64
	dropsMtu        uint64
	dropsInvalidMss uint64
	dropsTooManySeg uint64
	dropsFault      uint64
	dropsBufferSmall uint64
}

func (s *Stats) TxPackets() uint64        { return atomic.LoadUint64(&s.txPackets) }
func (s *Stats) TxBytes() uint64          { return atomic.LoadUint64(&s.txBytes) }
func (s *Stats) DropsNoRxDesc() uint64    { return atomic.LoadUint64(&s.dropsNoRxDesc) }
func (s *Stats) DropsChecksum() uint64    { return atomic.LoadUint64(&s.dropsChecksum) }
func (s *Stats) DropsMtu() uint64         { return atomic.LoadUint64(&s.dropsMtu) }
func (s *Stats) DropsInvalidMss() uint64  { return atomic.LoadUint64(&s.dropsInvalidMss) }
func (s *Stats) DropsTooManySeg() uint64  { return atomic.LoadUint64(&s.dropsTooManySeg) }
func (s *Stats) DropsFault() uint64       { return atomic.LoadUint64(&s.dropsFault) }
func (s *Stats) DropsBufferSmall() uint64 { return atomic.LoadUint64(&s.dropsBufferSmall) }
