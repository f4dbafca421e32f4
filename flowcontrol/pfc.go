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

package flowcontrol

import "github.com/softnic/gonic/wire"

const numPriorities = 8

// PFCManager is the per-priority counterpart of PauseManager: eight
// independent pause timers, one per 802.1p priority, each armed and
// cleared independently.
type PFCManager struct {
	SrcMAC [6]byte

	// PauseThreshold is the queue-depth watermark (in descriptors or
	// bytes, caller's unit) that arms a priority's pause request; ClearAt
	// is the hysteresis watermark a queue must drop to or below before the
	// pause is withdrawn. Per spec, ClearAt defaults to half of
	// PauseThreshold to avoid chattering at the boundary.
	PauseThreshold uint32
	ClearAt        uint32

	timers  [numPriorities]uint16
	asserted [numPriorities]bool
}

// NewPFCManager creates a manager with threshold and its hysteresis clear
// point at threshold/2, matching the spec's default.
func NewPFCManager(srcMAC [6]byte, threshold uint32) *PFCManager {
	return &PFCManager{SrcMAC: srcMAC, PauseThreshold: threshold, ClearAt: threshold / 2}
}

// Tick decrements every armed priority timer by one quantum.
func (m *PFCManager) Tick() {
	for i := range m.timers {
		if m.timers[i] > 0 {
			m.timers[i]--
		}
	}
}

// Asserted reports whether priority p is currently paused, either by an
// active timer or by queue depth still above the hysteresis clear point.
func (m *PFCManager) Asserted(p int) bool {
	return m.timers[p] > 0 || m.asserted[p]
}

// UpdateQueueDepth applies hysteresis: depth crossing PauseThreshold
// (rising) asserts the priority; depth dropping to or below ClearAt
// (falling) clears it. Between the two watermarks the prior state holds,
// which is the whole point of hysteresis — it suppresses rapid toggling
// right at the threshold.
func (m *PFCManager) UpdateQueueDepth(p int, depth uint32) {
	if depth >= m.PauseThreshold {
		m.asserted[p] = true
	} else if depth <= m.ClearAt {
		m.asserted[p] = false
	}
}

// GeneratePFC builds the 64-byte PFC frame for whichever priorities are
// currently asserted, each carrying quanta pause time.
func (m *PFCManager) GeneratePFC(quanta uint16) []byte {
	var f wire.PFCFrame
	f.SrcMAC = m.SrcMAC
	for p := 0; p < numPriorities; p++ {
		if m.asserted[p] {
			f.EnabledPriorities |= 1 << uint(p)
			f.PauseTimes[p] = quanta
			m.timers[p] = quanta
		}
	}
	return wire.SerializePFC(f)
}

// ReceivePFC applies a peer's PFC frame to this manager's per-priority
// transmit gates.
func (m *PFCManager) ReceivePFC(buf []byte) error {
	f, err := wire.ParsePFC(buf)
	if err != nil {
		return err
	}
	for p := 0; p < numPriorities; p++ {
		if f.EnabledPriorities&(1<<uint(p)) != 0 {
			m.timers[p] = f.PauseTimes[p]
		}
	}
	return nil
}
