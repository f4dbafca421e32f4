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

import (
	"github.com/softnic/gonic/dma"
	"github.com/softnic/gonic/memregion"
	"github.com/softnic/gonic/wire"
)

// writeResponderState tracks an in-progress multi-packet RDMA WRITE on the
// responder side: only the first packet carries the RETH, so later packets
// must continue at the address the first packet established.
type writeResponderState struct {
	nextAddr uint64
	rkey     uint32
	withImm  bool
	written  uint32
}

// PostWrite builds the wire packets for an RDMA WRITE (optionally
// WITH_IMMEDIATE) work request, per spec §4.5.3. The responder applies
// them directly against its own registered memory without consuming a
// receive WQE, except that a WRITE_WITH_IMMEDIATE's last packet does
// consume one, to carry the immediate datum to a waiting receiver.
func (qp *QueuePair) PostWrite(w WQE) ([]Packet, error) {
	payload, err := qp.gatherLocal(w.SGL)
	if err != nil {
		qp.pushCQE(CQE{WRID: w.WRID, Opcode: cqOpcodeFor(w.Kind), Status: CQLocalAccessError})
		return nil, err
	}

	count := packetCount(len(payload), qp.PMTU)
	firstPSN := qp.sendPSN
	withImm := w.Kind == OpRdmaWriteWithImm
	packets := make([]Packet, 0, count)

	for i := 0; i < count; i++ {
		op := wire.OpRdmaWriteMiddle
		switch {
		case count == 1:
			op = wire.OpRdmaWriteOnly
			if withImm {
				op = wire.OpRdmaWriteOnlyWithImmediate
			}
		case i == 0:
			op = wire.OpRdmaWriteFirst
		case i == count-1:
			op = wire.OpRdmaWriteLast
			if withImm {
				op = wire.OpRdmaWriteLastWithImmediate
			}
		}
		psn := qp.NextSendPSN()
		pkt := Packet{
			BTH: wire.BTH{Opcode: op, DestQPN: qp.DestQPN, PSN: psn, AckReq: i == count-1},
			Payload: chunkAt(payload, i, count, qp.PMTU),
		}
		if i == 0 {
			pkt.RETH = &wire.RETH{VirtualAddress: w.RemoteAddr, RKey: w.RKey, DMALength: uint32(len(payload))}
		}
		if op.HasImmediate() {
			imm := w.ImmediateData
			pkt.Immediate = &imm
		}
		qp.observeSent(psn, len(pkt.Payload))
		packets = append(packets, pkt)
	}

	qp.addPendingOp(&PendingOp{WQE: w, PacketCount: count, FirstPSN: firstPSN})
	return packets, nil
}

// HandleWritePacket is the responder-side processor for RDMA WRITE packets.
func (qp *QueuePair) HandleWritePacket(pkt Packet) (Packet, bool) {
	if !qp.CanReceive() {
		return qp.nak(pkt.BTH.PSN, wire.SyndromeInvalidRequest), true
	}
	if pkt.BTH.PSN != qp.expectedRecvPSN {
		return qp.nak(qp.expectedRecvPSN, wire.SyndromePsnSeqError), true
	}

	withImm := pkt.BTH.Opcode.HasImmediate()
	if pkt.BTH.Opcode == wire.OpRdmaWriteFirst || pkt.BTH.Opcode.IsOnly() {
		if pkt.RETH == nil {
			qp.advanceRecvPSN()
			return qp.nak(pkt.BTH.PSN, wire.SyndromeInvalidRequest), true
		}
		qp.writeState = &writeResponderState{nextAddr: pkt.RETH.VirtualAddress, rkey: pkt.RETH.RKey, withImm: withImm}
	}

	qp.observeReceived(pkt.BTH.PSN, len(pkt.Payload))
	qp.advanceRecvPSN()

	if qp.writeState != nil && len(pkt.Payload) > 0 {
		if qp.Regions != nil {
			if _, err := qp.Regions.ValidateRemote(qp.writeState.rkey, qp.PDHandle, qp.writeState.nextAddr, uint64(len(pkt.Payload)), memregion.RemoteWrite); err != nil {
				qp.writeState = nil
				return qp.nak(pkt.BTH.PSN, wire.SyndromeRemoteAccessError), true
			}
		}
		if st := qp.DMA.Write(qp.writeState.nextAddr, pkt.Payload); st != dma.StatusNone {
			qp.writeState = nil
			return qp.nak(pkt.BTH.PSN, wire.SyndromeRemoteOperationError), true
		}
		qp.writeState.nextAddr += uint64(len(pkt.Payload))
		qp.writeState.written += uint32(len(pkt.Payload))
	}

	if pkt.BTH.Opcode.IsLast() && withImm {
		w, ok := qp.popRecvWqe()
		if !ok {
			qp.writeState = nil
			return qp.nak(pkt.BTH.PSN, wire.SyndromeRnrNak), true
		}
		ce := CQE{WRID: w.WRID, Opcode: CQOpRdmaWriteImm, Status: CQSuccess, BytesCompleted: qp.writeState.written}
		if pkt.Immediate != nil {
			ce.HasImmediate = true
			ce.ImmediateData = *pkt.Immediate
		}
		qp.pushCQE(ce)
	}
	if pkt.BTH.Opcode.IsLast() {
		qp.writeState = nil
	}

	if pkt.BTH.AckReq {
		return qp.ack(pkt.BTH.PSN), true
	}
	return Packet{}, false
}
