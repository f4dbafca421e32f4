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

import "encoding/binary"

// Opcode is the RC packet opcode. Numeric values follow IBTA v1.x RC
// semantics and must stay stable across implementations.
type Opcode uint8

const (
	OpSendFirst Opcode = iota
	OpSendMiddle
	OpSendLast
	OpSendLastWithImmediate
	OpSendOnly
	OpSendOnlyWithImmediate
	OpRdmaWriteFirst
	OpRdmaWriteMiddle
	OpRdmaWriteLast
	OpRdmaWriteLastWithImmediate
	OpRdmaWriteOnly
	OpRdmaWriteOnlyWithImmediate
	OpRdmaReadRequest
	OpRdmaReadResponseFirst
	OpRdmaReadResponseMiddle
	OpRdmaReadResponseLast
	OpRdmaReadResponseOnly
	OpAcknowledge
)

// PSNMask is the 24-bit modulus PSNs are carried and compared in.
const PSNMask = 0x00FFFFFF

// BTHLen is the wire size of the Base Transport Header.
const BTHLen = 12

// BTH is the Base Transport Header present on every RC packet.
type BTH struct {
	Opcode     Opcode
	DestQPN    uint32 // 24 bits
	PSN        uint32 // 24 bits
	AckReq     bool
	Solicited  bool
	PadCount   uint8 // 0-3
}

// EncodeBTH writes a BTH into buf[:BTHLen].
func EncodeBTH(buf []byte, h BTH) {
	buf[0] = byte(h.Opcode)
	flags := byte(0)
	if h.Solicited {
		flags |= 0x80
	}
	flags |= (h.PadCount & 0x3) << 4
	buf[1] = flags
	buf[2] = byte(h.DestQPN >> 16)
	buf[3] = byte(h.DestQPN >> 8)
	buf[4] = byte(h.DestQPN)
	ackByte := byte(0)
	if h.AckReq {
		ackByte = 0x80
	}
	buf[5] = ackByte
	buf[6] = byte(h.PSN >> 16)
	buf[7] = byte(h.PSN >> 8)
	buf[8] = byte(h.PSN)
	// bytes 9-11 reserved
	buf[9], buf[10], buf[11] = 0, 0, 0
}

// DecodeBTH reads a BTH from buf[:BTHLen].
func DecodeBTH(buf []byte) (BTH, error) {
	if len(buf) < BTHLen {
		return BTH{}, NewProtocolError(ErrShortBuffer, "wire: short bth")
	}
	var h BTH
	h.Opcode = Opcode(buf[0])
	h.Solicited = buf[1]&0x80 != 0
	h.PadCount = (buf[1] >> 4) & 0x3
	h.DestQPN = uint32(buf[2])<<16 | uint32(buf[3])<<8 | uint32(buf[4])
	h.AckReq = buf[5]&0x80 != 0
	h.PSN = (uint32(buf[6])<<16 | uint32(buf[7])<<8 | uint32(buf[8])) & PSNMask
	return h, nil
}

// RETHLen is the wire size of the RDMA Extended Transport Header.
const RETHLen = 16

// RETH carries the remote virtual address/rkey/length for WRITE/READ
// request first-or-only packets.
type RETH struct {
	VirtualAddress uint64
	RKey           uint32
	DMALength      uint32
}

func EncodeRETH(buf []byte, h RETH) {
	binary.BigEndian.PutUint64(buf[0:8], h.VirtualAddress)
	binary.BigEndian.PutUint32(buf[8:12], h.RKey)
	binary.BigEndian.PutUint32(buf[12:16], h.DMALength)
}

func DecodeRETH(buf []byte) (RETH, error) {
	if len(buf) < RETHLen {
		return RETH{}, NewProtocolError(ErrShortBuffer, "wire: short reth")
	}
	var h RETH
	h.VirtualAddress = binary.BigEndian.Uint64(buf[0:8])
	h.RKey = binary.BigEndian.Uint32(buf[8:12])
	h.DMALength = binary.BigEndian.Uint32(buf[12:16])
	return h, nil
}

// Syndrome is the AETH status code.
type Syndrome uint8

const (
	SyndromeAck Syndrome = iota
	SyndromeRnrNak
	SyndromePsnSeqError
	SyndromeInvalidRequest
	SyndromeRemoteAccessError
	SyndromeRemoteOperationError
)

// AETHLen is the wire size of the ACK Extended Transport Header.
const AETHLen = 4

// AETH carries ACK/NAK syndrome and message sequence number; present on
// ACK packets and on READ response first/only packets.
type AETH struct {
	Syndrome Syndrome
	MSN      uint32 // 24 bits
}

func EncodeAETH(buf []byte, h AETH) {
	buf[0] = byte(h.Syndrome)
	buf[1] = byte(h.MSN >> 16)
	buf[2] = byte(h.MSN >> 8)
	buf[3] = byte(h.MSN)
}

func DecodeAETH(buf []byte) (AETH, error) {
	if len(buf) < AETHLen {
		return AETH{}, NewProtocolError(ErrShortBuffer, "wire: short aeth")
	}
	var h AETH
	h.Syndrome = Syndrome(buf[0])
	h.MSN = uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
	return h, nil
}

// ImmediateLen is the wire size of an immediate-data field.
const ImmediateLen = 4

func EncodeImmediate(buf []byte, v uint32) {
	binary.BigEndian.PutUint32(buf, v)
}

func DecodeImmediate(buf []byte) (uint32, error) {
	if len(buf) < ImmediateLen {
		return 0, NewProtocolError(ErrShortBuffer, "wire: short immediate")
	}
	return binary.BigEndian.Uint32(buf), nil
}

// IsLast reports whether opcode ends a message (a Last or Only opcode).
func (op Opcode) IsLast() bool {
	switch op {
	case OpSendLast, OpSendLastWithImmediate, OpSendOnly, OpSendOnlyWithImmediate,
		OpRdmaWriteLast, OpRdmaWriteLastWithImmediate, OpRdmaWriteOnly, OpRdmaWriteOnlyWithImmediate,
		OpRdmaReadResponseLast, OpRdmaReadResponseOnly:
		return true
	}
	return false
}

func (op Opcode) IsOnly() bool {
	switch op {
	case OpSendOnly, OpSendOnlyWithImmediate, OpRdmaWriteOnly, OpRdmaWriteOnlyWithImmediate, OpRdmaReadResponseOnly:
		return true
	}
	return false
}

func (op Opcode) HasImmediate() bool {
	switch op {
	case OpSendLastWithImmediate, OpSendOnlyWithImmediate,
		OpRdmaWriteLastWithImmediate, OpRdmaWriteOnlyWithImmediate:
		return true
	}
	return false
}
