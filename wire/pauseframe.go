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
	"encoding/binary"

	"github.com/bytedance/gopkg/lang/dirtmake"
)

/*
 *	IEEE 802.3x classic PAUSE frame, 64 bytes total
 *	+------6B-------+------6B-------+--2B--+--2B--+--2B--+----rest----+
 *	|   dest MAC    |   src MAC     |ether |opcode|pause |   zero     |
 *	|01:80:C2:00:00:01              |0x8808|0x0001|time  |  padding   |
 *	+---------------+---------------+------+------+------+------------+
 *	  bytes 0-5        bytes 6-11    12-13  14-15  16-17   18-63
 */

const (
	PauseFrameLen = 64

	etherTypeOff  = 12
	opcodeOff     = 14
	pauseTimeOff  = 16
	pfcPriMapOff  = 16
	pfcReservedOff = 17
	pfcTimesOff   = 18
)

// PauseDestMAC is the reserved multicast destination for MAC control frames.
var PauseDestMAC = [6]byte{0x01, 0x80, 0xC2, 0x00, 0x00, 0x01}

const (
	EtherTypeMACControl uint16 = 0x8808
	EtherTypePTP        uint16 = 0x88F7

	OpcodePause uint16 = 0x0001
	OpcodePFC   uint16 = 0x0101
)

// PauseFrame is a parsed classic 802.3x pause frame.
type PauseFrame struct {
	SrcMAC    [6]byte
	PauseTime uint16
}

// SerializePause builds the 64-byte wire form of a pause frame.
func SerializePause(f PauseFrame) []byte {
	buf := dirtmake.Bytes(PauseFrameLen, PauseFrameLen)
	copy(buf[0:6], PauseDestMAC[:])
	copy(buf[6:12], f.SrcMAC[:])
	binary.BigEndian.PutUint16(buf[etherTypeOff:], EtherTypeMACControl)
	binary.BigEndian.PutUint16(buf[opcodeOff:], OpcodePause)
	binary.BigEndian.PutUint16(buf[pauseTimeOff:], f.PauseTime)
	return buf
}

// IsPauseFrame reports whether buf looks like a MAC-control pause frame
// (EtherType 0x8808, opcode 0x0001) without requiring it be the strict
// PFC variant.
func IsPauseFrame(buf []byte) bool {
	if len(buf) < PauseFrameLen {
		return false
	}
	et := binary.BigEndian.Uint16(buf[etherTypeOff:])
	op := binary.BigEndian.Uint16(buf[opcodeOff:])
	return et == EtherTypeMACControl && op == OpcodePause
}

// IsPFCFrame reports whether buf is a PFC frame (opcode 0x0101).
func IsPFCFrame(buf []byte) bool {
	if len(buf) < PauseFrameLen {
		return false
	}
	et := binary.BigEndian.Uint16(buf[etherTypeOff:])
	op := binary.BigEndian.Uint16(buf[opcodeOff:])
	return et == EtherTypeMACControl && op == OpcodePFC
}

// ParsePause decodes a classic pause frame. Caller should check
// IsPauseFrame first.
func ParsePause(buf []byte) (PauseFrame, error) {
	if !IsPauseFrame(buf) {
		return PauseFrame{}, NewProtocolError(ErrBadMagic, "wire: not a pause frame")
	}
	var f PauseFrame
	copy(f.SrcMAC[:], buf[6:12])
	f.PauseTime = binary.BigEndian.Uint16(buf[pauseTimeOff:])
	return f, nil
}

// PFCFrame is a parsed Priority Flow Control frame (IEEE 802.1Qbb).
type PFCFrame struct {
	SrcMAC           [6]byte
	EnabledPriorities uint8 // bitmap, bit i = priority i requested
	PauseTimes       [8]uint16
}

// SerializePFC builds the 64-byte wire form of a PFC frame.
func SerializePFC(f PFCFrame) []byte {
	buf := dirtmake.Bytes(PauseFrameLen, PauseFrameLen)
	copy(buf[0:6], PauseDestMAC[:])
	copy(buf[6:12], f.SrcMAC[:])
	binary.BigEndian.PutUint16(buf[etherTypeOff:], EtherTypeMACControl)
	binary.BigEndian.PutUint16(buf[opcodeOff:], OpcodePFC)
	buf[pfcPriMapOff] = f.EnabledPriorities
	buf[pfcReservedOff] = 0
	for i := 0; i < 8; i++ {
		binary.BigEndian.PutUint16(buf[pfcTimesOff+2*i:], f.PauseTimes[i])
	}
	return buf
}

// ParsePFC decodes a PFC frame. Caller should check IsPFCFrame first.
func ParsePFC(buf []byte) (PFCFrame, error) {
	if !IsPFCFrame(buf) {
		return PFCFrame{}, NewProtocolError(ErrBadMagic, "wire: not a pfc frame")
	}
	var f PFCFrame
	copy(f.SrcMAC[:], buf[6:12])
	f.EnabledPriorities = buf[pfcPriMapOff]
	for i := 0; i < 8; i++ {
		f.PauseTimes[i] = binary.BigEndian.Uint16(buf[pfcTimesOff+2*i:])
	}
	return f, nil
}
