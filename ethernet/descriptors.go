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

// Package ethernet implements the TX->RX QueuePair pipeline: descriptor
// decode, DMA gather, MTU/MSS validation, TSO/GSO segmentation, VLAN
// handling, checksum offload, and per-segment RX delivery.
package ethernet

import (
	"encoding/binary"

	"github.com/softnic/gonic/wire"
)

// ChecksumMode selects which protocol checksum a descriptor carries.
type ChecksumMode uint8

const (
	ChecksumNone ChecksumMode = iota
	ChecksumIPv4
	ChecksumTCP
	ChecksumUDP
)

// Segmentation bounds (spec §4.3 step 6).
const (
	MinMSS          = 64
	MaxMSS          = 9000
	MaxTSOSegments  = 64
)

// TxDescriptorWireLen is the fixed encoded size of a TxDescriptor.
const TxDescriptorWireLen = 32

// TxDescriptor is a host-produced TX descriptor.
type TxDescriptor struct {
	DescriptorIndex  uint32
	BufferAddress    uint64
	Length           uint32
	ChecksumMode     ChecksumMode
	ChecksumValue    uint16
	ChecksumOffload  bool
	VlanInsert       bool
	VlanTag          uint16
	TSOEnabled       bool
	GSOEnabled       bool
	MSS              uint16
	HeaderLength     uint16
}

// EncodeTxDescriptor serializes d into a TxDescriptorWireLen buffer, the
// form the host would push into the TX ring.
func EncodeTxDescriptor(d TxDescriptor) []byte {
	buf := make([]byte, TxDescriptorWireLen)
	binary.BigEndian.PutUint32(buf[0:4], d.DescriptorIndex)
	binary.BigEndian.PutUint64(buf[4:12], d.BufferAddress)
	binary.BigEndian.PutUint32(buf[12:16], d.Length)
	buf[16] = byte(d.ChecksumMode)
	binary.BigEndian.PutUint16(buf[17:19], d.ChecksumValue)
	buf[19] = boolByte(d.ChecksumOffload)
	buf[20] = boolByte(d.VlanInsert)
	binary.BigEndian.PutUint16(buf[21:23], d.VlanTag)
	buf[23] = boolByte(d.TSOEnabled)
	buf[24] = boolByte(d.GSOEnabled)
	binary.BigEndian.PutUint16(buf[25:27], d.MSS)
	binary.BigEndian.PutUint16(buf[27:29], d.HeaderLength)
	return buf
}

// DecodeTxDescriptor parses the wire form built by EncodeTxDescriptor.
func DecodeTxDescriptor(buf []byte) (TxDescriptor, error) {
	if len(buf) < TxDescriptorWireLen {
		return TxDescriptor{}, wire.NewProtocolError(wire.ErrShortBuffer, "ethernet: short tx descriptor")
	}
	var d TxDescriptor
	d.DescriptorIndex = binary.BigEndian.Uint32(buf[0:4])
	d.BufferAddress = binary.BigEndian.Uint64(buf[4:12])
	d.Length = binary.BigEndian.Uint32(buf[12:16])
	d.ChecksumMode = ChecksumMode(buf[16])
	d.ChecksumValue = binary.BigEndian.Uint16(buf[17:19])
	d.ChecksumOffload = buf[19] != 0
	d.VlanInsert = buf[20] != 0
	d.VlanTag = binary.BigEndian.Uint16(buf[21:23])
	d.TSOEnabled = buf[23] != 0
	d.GSOEnabled = buf[24] != 0
	d.MSS = binary.BigEndian.Uint16(buf[25:27])
	d.HeaderLength = binary.BigEndian.Uint16(buf[27:29])
	return d, nil
}

// RxDescriptorWireLen is the fixed encoded size of an RxDescriptor.
const RxDescriptorWireLen = 24

// RxDescriptor is a host-produced RX descriptor.
type RxDescriptor struct {
	DescriptorIndex uint32
	BufferAddress   uint64
	BufferLength    uint32
	VlanPresent     bool
	VlanStrip       bool
	VlanTag         uint16
	ChecksumMode    ChecksumMode
	ChecksumOffload bool
	GROEnabled      bool
}

func EncodeRxDescriptor(d RxDescriptor) []byte {
	buf := make([]byte, RxDescriptorWireLen)
	binary.BigEndian.PutUint32(buf[0:4], d.DescriptorIndex)
	binary.BigEndian.PutUint64(buf[4:12], d.BufferAddress)
	binary.BigEndian.PutUint32(buf[12:16], d.BufferLength)
	buf[16] = boolByte(d.VlanPresent)
	buf[17] = boolByte(d.VlanStrip)
	binary.BigEndian.PutUint16(buf[18:20], d.VlanTag)
	buf[20] = byte(d.ChecksumMode)
	buf[21] = boolByte(d.ChecksumOffload)
	buf[22] = boolByte(d.GROEnabled)
	return buf
}

func DecodeRxDescriptor(buf []byte) (RxDescriptor, error) {
	if len(buf) < RxDescriptorWireLen {
		return RxDescriptor{}, wire.NewProtocolError(wire.ErrShortBuffer, "ethernet: short rx descriptor")
	}
	var d RxDescriptor
	d.DescriptorIndex = binary.BigEndian.Uint32(buf[0:4])
	d.BufferAddress = binary.BigEndian.Uint64(buf[4:12])
	d.BufferLength = binary.BigEndian.Uint32(buf[12:16])
	d.VlanPresent = buf[16] != 0
	d.VlanStrip = buf[17] != 0
	d.VlanTag = binary.BigEndian.Uint16(buf[18:20])
	d.ChecksumMode = ChecksumMode(buf[20])
	d.ChecksumOffload = buf[21] != 0
	d.GROEnabled = buf[22] != 0
	return d, nil
}

// CompletionStatus is the fixed status taxonomy for Ethernet completions.
type CompletionStatus uint8

const (
	StatusSuccess CompletionStatus = iota
	StatusNoDescriptor
	StatusFault
	StatusChecksumError
	StatusBufferTooSmall
	StatusMtuExceeded
	StatusInvalidMss
	StatusTooManySegments
)

// CompletionEntry is posted to either the TX or RX completion queue.
type CompletionEntry struct {
	QueueID          uint32
	DescriptorIndex  uint32
	Status           CompletionStatus
	ChecksumOffloaded bool
	VlanInserted     bool
	VlanStripped     bool
	VlanTag          uint16
	TSOPerformed     bool
	GSOPerformed     bool
	SegmentsProduced int
	GROAggregated    bool
	ChecksumVerified bool
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
