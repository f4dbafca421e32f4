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

package device

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T) *Device {
	cfg := DefaultConfig("test0")
	cfg.MACAddress = [6]byte{0xaa, 0xbb, 0xcc, 0, 0, 1}
	return New(cfg, Version{Hardware: 1, Firmware: 2, ABI: 1})
}

func TestNewDeviceWiresEthQueues(t *testing.T) {
	d := newTestDevice(t)
	require.Len(t, d.EthQueues, 4)
	require.True(t, d.Registers.HasBits(RegSTATUS, StatusLinkUp))
}

func TestRegisterFileBitfields(t *testing.T) {
	r := NewRegisterFile()
	require.False(t, r.ResetRequested())
	r.SetBits(RegCTRL, CtrlReset)
	require.True(t, r.ResetRequested())

	r.RaiseInterruptCause(0x1)
	r.RaiseInterruptCause(0x2)
	require.Equal(t, uint32(0x3), r.ReadAndClearICR())
	require.Equal(t, uint32(0), r.ReadAndClearICR())
}

func TestDeviceResetClearsRingsAndRegisters(t *testing.T) {
	d := newTestDevice(t)
	d.Registers.SetBits(RegCTRL, CtrlReset)
	require.NoError(t, d.EthQueues[0].TxRing.Push(make([]byte, d.EthQueues[0].TxRing.DescriptorSize())))
	require.Equal(t, 1, d.EthQueues[0].TxRing.Count())

	d.Reset()

	require.Equal(t, 0, d.EthQueues[0].TxRing.Count())
	require.False(t, d.Registers.ResetRequested())
	require.True(t, d.Registers.HasBits(RegSTATUS, StatusLinkUp))
	require.Equal(t, uint64(1), d.Stats.Resets())
}

func TestNewRdmaQPRegistersMailbox(t *testing.T) {
	d := newTestDevice(t)
	qp := d.NewRdmaQP(1, 2, 0, 512)
	require.NotNil(t, qp)
	require.Contains(t, d.RdmaQPs, uint32(1))
	require.Contains(t, d.Mailboxes, uint32(1))
}
