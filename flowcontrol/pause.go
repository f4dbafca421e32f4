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

// Package flowcontrol implements classic 802.3x PAUSE, per-priority 802.1Qbb
// PFC, backpressure-level classification, and the EEE (Energy Efficient
// Ethernet) link state machine.
package flowcontrol

import "github.com/softnic/gonic/wire"

// PauseManager tracks the single classic-pause timer in quanta (512-bit
// times), decremented on every tick and re-armed by RequestPause.
type PauseManager struct {
	SrcMAC     [6]byte
	pauseTimer uint16
}

// NewPauseManager creates a manager with its timer at zero (not paused).
func NewPauseManager(srcMAC [6]byte) *PauseManager {
	return &PauseManager{SrcMAC: srcMAC}
}

// Paused reports whether the link is currently under a pause quantum.
func (m *PauseManager) Paused() bool { return m.pauseTimer > 0 }

// RemainingQuanta returns the pause timer's current value.
func (m *PauseManager) RemainingQuanta() uint16 { return m.pauseTimer }

// Tick decrements the pause timer by one quantum if armed.
func (m *PauseManager) Tick() {
	if m.pauseTimer > 0 {
		m.pauseTimer--
	}
}

// RequestPause arms the timer to quanta, generating the 802.3x PAUSE frame
// to transmit. A quanta of zero is itself a valid XON (unpause) frame.
func (m *PauseManager) RequestPause(quanta uint16) []byte {
	m.pauseTimer = quanta
	return wire.SerializePause(wire.PauseFrame{SrcMAC: m.SrcMAC, PauseTime: quanta})
}

// ReceivePause applies a peer's PAUSE frame to this manager's own transmit
// gate: the decoded pause_time becomes the new timer value.
func (m *PauseManager) ReceivePause(buf []byte) error {
	f, err := wire.ParsePause(buf)
	if err != nil {
		return err
	}
	m.pauseTimer = f.PauseTime
	return nil
}
