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

// EEEState is a link power state in the IEEE 802.3az EEE cycle.
type EEEState int

const (
	EEEActive EEEState = iota
	EEESleepTransit
	EEELPI
	EEEWakeTransit
)

// EEEManager drives one link's Active -> SleepTransit -> LPI ->
// WakeTransit -> Active cycle (spec §4.6). Entry to sleep requires the
// link to have been idle for IdleThresholdNs; a packet becoming ready to
// send at any point before LPI is reached aborts back to Active
// immediately, and while in LPI a ready packet begins the wake transit.
type EEEManager struct {
	State EEEState

	SleepTransitNs uint64
	WakeTransitNs  uint64
	IdleThresholdNs uint64

	idleNs     uint64
	transitNs  uint64
}

// NewEEEManager creates a manager starting Active with the given timing
// parameters (all in nanoseconds).
func NewEEEManager(idleThreshold, sleepTransit, wakeTransit uint64) *EEEManager {
	return &EEEManager{
		IdleThresholdNs: idleThreshold,
		SleepTransitNs:  sleepTransit,
		WakeTransitNs:   wakeTransit,
	}
}

// Tick advances the state machine by elapsedNs, given whether a packet is
// ready to transmit this tick.
func (m *EEEManager) Tick(elapsedNs uint64, packetReady bool) {
	switch m.State {
	case EEEActive:
		if packetReady {
			m.idleNs = 0
			return
		}
		m.idleNs += elapsedNs
		if m.idleNs >= m.IdleThresholdNs {
			m.State = EEESleepTransit
			m.transitNs = 0
		}
	case EEESleepTransit:
		if packetReady {
			m.State = EEEActive
			m.idleNs = 0
			return
		}
		m.transitNs += elapsedNs
		if m.transitNs >= m.SleepTransitNs {
			m.State = EEELPI
			m.transitNs = 0
		}
	case EEELPI:
		if packetReady {
			m.State = EEEWakeTransit
			m.transitNs = 0
		}
	case EEEWakeTransit:
		m.transitNs += elapsedNs
		if m.transitNs >= m.WakeTransitNs {
			m.State = EEEActive
			m.idleNs = 0
		}
	}
}

// CanTransmit reports whether the link can carry a packet immediately:
// true in Active, false in every transitional or sleeping state (the
// caller must wait for WakeTransit to complete).
func (m *EEEManager) CanTransmit() bool {
	return m.State == EEEActive
}
