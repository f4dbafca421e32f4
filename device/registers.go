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

// Package device composes the descriptor-ring/DMA core, the Ethernet and
// RDMA transports, flow control, PTP, the admin queue, stats, and error
// injection into a single addressable device.
package device

// Register offsets, matching a conventional NIC BAR0 layout.
const (
	RegCTRL   = 0x0000
	RegSTATUS = 0x0008
	RegICR    = 0x00C0
	RegIMS    = 0x00D0
	RegRCTL   = 0x0100
	RegTCTL   = 0x0400
)

// CTRL bits.
const (
	CtrlReset    uint32 = 1 << 26
	CtrlLinkUp   uint32 = 1 << 6
	CtrlFullDup  uint32 = 1 << 0
)

// STATUS bits.
const (
	StatusLinkUp  uint32 = 1 << 1
	StatusFullDup uint32 = 1 << 0
)

// RCTL/TCTL bits.
const (
	RctlEnable uint32 = 1 << 1
	TctlEnable uint32 = 1 << 1
)

// RegisterFile is the device's flat 32-bit register space with named
// bitfield accessors for the handful of registers software actually pokes.
type RegisterFile struct {
	regs map[uint32]uint32
}

// NewRegisterFile creates a register file with every defined register at
// its power-on-reset value of zero.
func NewRegisterFile() *RegisterFile {
	return &RegisterFile{regs: make(map[uint32]uint32)}
}

// Read returns the raw value at offset.
func (r *RegisterFile) Read(offset uint32) uint32 { return r.regs[offset] }

// Write sets the raw value at offset.
func (r *RegisterFile) Write(offset uint32, v uint32) { r.regs[offset] = v }

// SetBits ORs mask into the register at offset.
func (r *RegisterFile) SetBits(offset uint32, mask uint32) {
	r.regs[offset] |= mask
}

// ClearBits clears mask from the register at offset.
func (r *RegisterFile) ClearBits(offset uint32, mask uint32) {
	r.regs[offset] &^= mask
}

// HasBits reports whether every bit in mask is set at offset.
func (r *RegisterFile) HasBits(offset uint32, mask uint32) bool {
	return r.regs[offset]&mask == mask
}

// ResetRequested reports whether software has set CTRL.RST.
func (r *RegisterFile) ResetRequested() bool { return r.HasBits(RegCTRL, CtrlReset) }

// SetLinkUp updates STATUS.LU to reflect the link state.
func (r *RegisterFile) SetLinkUp(up bool) {
	if up {
		r.SetBits(RegSTATUS, StatusLinkUp)
	} else {
		r.ClearBits(RegSTATUS, StatusLinkUp)
	}
}

// RxEnabled reports whether RCTL.EN is set.
func (r *RegisterFile) RxEnabled() bool { return r.HasBits(RegRCTL, RctlEnable) }

// TxEnabled reports whether TCTL.EN is set.
func (r *RegisterFile) TxEnabled() bool { return r.HasBits(RegTCTL, TctlEnable) }

// RaiseInterruptCause ORs cause bits into ICR, mirroring the hardware
// behavior where ICR accumulates until software reads/clears it.
func (r *RegisterFile) RaiseInterruptCause(mask uint32) { r.SetBits(RegICR, mask) }

// ReadAndClearICR returns ICR's current value and clears it, matching the
// read-to-clear semantics most NIC ICR registers implement.
func (r *RegisterFile) ReadAndClearICR() uint32 {
	v := r.regs[RegICR]
	r.regs[RegICR] = 0
	return v
}

// MaskEnabled reports whether every bit of mask is unmasked in IMS.
func (r *RegisterFile) MaskEnabled(mask uint32) bool { return r.HasBits(RegIMS, mask) }
