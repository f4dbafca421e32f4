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

import "github.com/bytedance/gopkg/lang/dirtmake"

// VlanTagLen is the size of an 802.1Q tag as inserted by TX VLAN insert.
const VlanTagLen = 4

// VlanTPID is the EtherType reserved for 802.1Q tagging (0x8100).
const VlanTPID = 0x8100

// InsertVlanTag prepends an 802.1Q tag "81 00 <tag_hi> <tag_lo>" to segment.
func InsertVlanTag(segment []byte, tag uint16) []byte {
	out := dirtmake.Bytes(0, VlanTagLen+len(segment))
	out = append(out, byte(VlanTPID>>8), byte(VlanTPID))
	out = append(out, byte(tag>>8), byte(tag))
	out = append(out, segment...)
	return out
}

// StripVlanTag removes the first 4 bytes of segment and returns the tag
// they carried. Caller must check len(segment) >= VlanTagLen first.
func StripVlanTag(segment []byte) (rest []byte, tag uint16) {
	tag = uint16(segment[2])<<8 | uint16(segment[3])
	return segment[VlanTagLen:], tag
}
