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

package rdma

import "github.com/softnic/gonic/wire"

// DeliverToResponder routes one inbound packet to the processor matching
// its opcode class and returns whatever reply packet(s) the responder
// generates (ACK/NAK for SEND and WRITE, one or more READ RESPONSEs for a
// READ request, nothing for a packet that required no ack).
func DeliverToResponder(qp *QueuePair, pkt Packet) []Packet {
	switch {
	case pkt.BTH.Opcode == wire.OpRdmaReadRequest:
		replies, _ := qp.HandleReadRequest(pkt)
		return replies
	case pkt.BTH.Opcode >= wire.OpRdmaWriteFirst && pkt.BTH.Opcode <= wire.OpRdmaWriteOnlyWithImmediate:
		if reply, ok := qp.HandleWritePacket(pkt); ok {
			return []Packet{reply}
		}
		return nil
	default:
		if reply, ok := qp.HandleSendPacket(pkt); ok {
			return []Packet{reply}
		}
		return nil
	}
}

// DeliverToOriginator routes one inbound packet (an ACK/NAK or a READ
// RESPONSE) to the originator-side processor that owns the pending op it
// concerns.
func DeliverToOriginator(qp *QueuePair, pkt Packet) {
	switch pkt.BTH.Opcode {
	case wire.OpAcknowledge:
		qp.HandleAck(pkt)
	case wire.OpRdmaReadResponseFirst, wire.OpRdmaReadResponseMiddle,
		wire.OpRdmaReadResponseLast, wire.OpRdmaReadResponseOnly:
		qp.HandleReadResponse(pkt)
	}
}
