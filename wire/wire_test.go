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

package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksumZeroByteInvariant(t *testing.T) {
	buf := []byte{0x45, 0x00, 0x00, 0x3c, 0x1c, 0x46}
	c1 := ComputeChecksum(buf)
	c2 := ComputeChecksum(append(append([]byte{}, buf...), 0x00))
	require.Equal(t, c1, c2)
	require.True(t, VerifyChecksum(buf, c1))
}

func TestVlanRoundTrip(t *testing.T) {
	payload := []byte("hello-world-payload")
	tagged := InsertVlanTag(payload, 42)
	require.Equal(t, byte(0x81), tagged[0])
	require.Equal(t, byte(0x00), tagged[1])

	rest, tag := StripVlanTag(tagged)
	require.Equal(t, uint16(42), tag)
	require.Equal(t, payload, rest)
}

func TestPauseFrameSerializeParse(t *testing.T) {
	f := PauseFrame{PauseTime: 356}
	buf := SerializePause(f)
	require.Len(t, buf, 64)
	require.Equal(t, byte(0x88), buf[12])
	require.Equal(t, byte(0x08), buf[13])
	require.Equal(t, byte(0x00), buf[14])
	require.Equal(t, byte(0x01), buf[15])
	require.Equal(t, byte(0x01), buf[16])
	require.Equal(t, byte(0x64), buf[17])

	require.True(t, IsPauseFrame(buf))
	got, err := ParsePause(buf)
	require.NoError(t, err)
	require.Equal(t, uint16(356), got.PauseTime)
}

func TestPFCFrameSerializeParse(t *testing.T) {
	f := PFCFrame{EnabledPriorities: 0x01}
	f.PauseTimes[0] = 120
	buf := SerializePFC(f)
	require.True(t, IsPFCFrame(buf))
	got, err := ParsePFC(buf)
	require.NoError(t, err)
	require.Equal(t, uint8(0x01), got.EnabledPriorities)
	require.Equal(t, uint16(120), got.PauseTimes[0])
}

func TestBTHRoundTrip(t *testing.T) {
	h := BTH{Opcode: OpSendOnly, DestQPN: 0xABCDEF, PSN: 0x123456, AckReq: true, Solicited: true, PadCount: 2}
	buf := make([]byte, BTHLen)
	EncodeBTH(buf, h)
	got, err := DecodeBTH(buf)
	require.NoError(t, err)
	require.Equal(t, h.Opcode, got.Opcode)
	require.Equal(t, h.DestQPN, got.DestQPN)
	require.Equal(t, h.PSN, got.PSN)
	require.Equal(t, h.AckReq, got.AckReq)
	require.Equal(t, h.Solicited, got.Solicited)
	require.Equal(t, h.PadCount, got.PadCount)
}

func TestPSNModularOrdering(t *testing.T) {
	require.Equal(t, uint32(0), NextPSN(PSNMask))
	require.True(t, PSNBefore(10, 20))
	require.True(t, PSNBefore(PSNMask, 5)) // wraps around
	require.False(t, PSNBefore(20, 20))
}

func TestRETHAndAETHRoundTrip(t *testing.T) {
	reth := RETH{VirtualAddress: 0xDEADBEEFCAFE, RKey: 0x1234, DMALength: 2048}
	buf := make([]byte, RETHLen)
	EncodeRETH(buf, reth)
	got, err := DecodeRETH(buf)
	require.NoError(t, err)
	require.Equal(t, reth, got)

	aeth := AETH{Syndrome: SyndromeRnrNak, MSN: 0x001122}
	abuf := make([]byte, AETHLen)
	EncodeAETH(abuf, aeth)
	agot, err := DecodeAETH(abuf)
	require.NoError(t, err)
	require.Equal(t, aeth, agot)
}
