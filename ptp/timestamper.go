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

package ptp

// Timestamper taps the clock on TX and RX per queue. Queue IDs are small
// dense integers assigned at ring-creation time, so a slice indexed
// directly by queue ID outperforms a map for this size of key space and
// avoids the map's hash/bucket overhead entirely.
type Timestamper struct {
	clock *Clock
	tx    []uint64
	rx    []uint64
	txSet []bool
	rxSet []bool
}

// NewTimestamper creates a tap bound to clock with room for numQueues
// queue IDs (0..numQueues-1).
func NewTimestamper(clock *Clock, numQueues int) *Timestamper {
	return &Timestamper{
		clock: clock,
		tx:    make([]uint64, numQueues),
		rx:    make([]uint64, numQueues),
		txSet: make([]bool, numQueues),
		rxSet: make([]bool, numQueues),
	}
}

func (t *Timestamper) grow(queueID int) {
	if queueID < len(t.tx) {
		return
	}
	n := queueID + 1
	t.tx = append(t.tx, make([]uint64, n-len(t.tx))...)
	t.rx = append(t.rx, make([]uint64, n-len(t.rx))...)
	t.txSet = append(t.txSet, make([]bool, n-len(t.txSet))...)
	t.rxSet = append(t.rxSet, make([]bool, n-len(t.rxSet))...)
}

// TapTx stamps the current clock value as queueID's last TX timestamp.
func (t *Timestamper) TapTx(queueID int) uint64 {
	t.grow(queueID)
	ts := t.clock.NowNs()
	t.tx[queueID] = ts
	t.txSet[queueID] = true
	return ts
}

// TapRx stamps the current clock value as queueID's last RX timestamp.
func (t *Timestamper) TapRx(queueID int) uint64 {
	t.grow(queueID)
	ts := t.clock.NowNs()
	t.rx[queueID] = ts
	t.rxSet[queueID] = true
	return ts
}

// LastTx returns queueID's last TX timestamp and whether one has been taken.
func (t *Timestamper) LastTx(queueID int) (uint64, bool) {
	if queueID >= len(t.tx) {
		return 0, false
	}
	return t.tx[queueID], t.txSet[queueID]
}

// LastRx returns queueID's last RX timestamp and whether one has been taken.
func (t *Timestamper) LastRx(queueID int) (uint64, bool) {
	if queueID >= len(t.rx) {
		return 0, false
	}
	return t.rx[queueID], t.rxSet[queueID]
}
