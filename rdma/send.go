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
	"errors"

	"github.com/bytedance/gopkg/lang/dirtmake"

	"github.com/softnic/gonic/dma"
	"github.com/softnic/gonic/memregion"
	"github.com/softnic/gonic/wire"
)

// ErrLocalAccess wraps a failed local lkey/address validation on the
// gather or scatter side of an operation.
var ErrLocalAccess = errors.New("rdma: local access validation failed")

// ErrRemoteAccess wraps a failed remote rkey/address validation.
var ErrRemoteAccess = errors.New("rdma: remote access validation failed")

func (qp *QueuePair) gatherLocal(sgl []SGE) ([]byte, error) {
	out := dirtmake.Bytes(0, sgeTotalLength(sgl))
	for _, s := range sgl {
		if qp.Regions != nil {
			if _, err := qp.Regions.ValidateLocal(s.LKey, qp.PDHandle, s.Addr, uint64(s.Length), memregion.LocalRead); err != nil {
				return nil, ErrLocalAccess
			}
		}
		chunk, st := qp.DMA.Read(s.Addr, uint64(s.Length))
		if st != dma.StatusNone {
			return nil, ErrLocalAccess
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// scatterLocalAt writes data into sgl starting at baseOffset bytes into the
// SGL's combined address space (the bytes already delivered by earlier
// packets of the same message), so a multi-packet transfer fills each SGE
// contiguously regardless of per-packet chunk boundaries.
func (qp *QueuePair) scatterLocalAt(sgl []SGE, baseOffset int, data []byte) error {
	skip := baseOffset
	off := 0
	for _, s := range sgl {
		segLen := int(s.Length)
		if skip >= segLen {
			skip -= segLen
			continue
		}
		addr := s.Addr + uint64(skip)
		avail := segLen - skip
		skip = 0
		if off >= len(data) {
			break
		}
		n := avail
		if off+n > len(data) {
			n = len(data) - off
		}
		if qp.Regions != nil {
			if _, err := qp.Regions.ValidateLocal(s.LKey, qp.PDHandle, addr, uint64(n), memregion.LocalWrite); err != nil {
				return ErrLocalAccess
			}
		}
		if st := qp.DMA.Write(addr, data[off:off+n]); st != dma.StatusNone {
			return ErrLocalAccess
		}
		off += n
	}
	return nil
}

// PostSend builds the wire packets for a SEND work request and records a
// pending op awaiting ACK. Per spec §4.5.2, packets are SendOnly for a
// single-packet message or SendFirst/SendMiddle*/SendLast(WithImmediate)
// for a multi-packet one.
func (qp *QueuePair) PostSend(w WQE) ([]Packet, error) {
	payload, err := qp.gatherLocal(w.SGL)
	if err != nil {
		qp.pushCQE(CQE{WRID: w.WRID, Opcode: cqOpcodeFor(w.Kind), Status: CQLocalAccessError})
		return nil, err
	}

	count := packetCount(len(payload), qp.PMTU)
	firstPSN := qp.sendPSN
	packets := make([]Packet, 0, count)
	withImm := w.Kind == OpSendWithImm

	for i := 0; i < count; i++ {
		op := opSendMiddle
		switch {
		case count == 1:
			op = wire.OpSendOnly
			if withImm {
				op = wire.OpSendOnlyWithImmediate
			}
		case i == 0:
			op = wire.OpSendFirst
		case i == count-1:
			op = wire.OpSendLast
			if withImm {
				op = wire.OpSendLastWithImmediate
			}
		}
		psn := qp.NextSendPSN()
		pkt := Packet{
			BTH: wire.BTH{
				Opcode: op, DestQPN: qp.DestQPN, PSN: psn,
				AckReq: i == count-1, Solicited: w.Solicited && i == count-1,
			},
			Payload: chunkAt(payload, i, count, qp.PMTU),
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

var opSendMiddle = wire.OpSendMiddle

func cqOpcodeFor(k OpKind) CQOpcode {
	switch k {
	case OpSendWithImm:
		return CQOpSendImm
	case OpRdmaWrite:
		return CQOpRdmaWrite
	case OpRdmaWriteWithImm:
		return CQOpRdmaWriteImm
	case OpRdmaRead:
		return CQOpRdmaRead
	default:
		return CQOpSend
	}
}

// receiveAssembly tracks an in-progress multi-packet SEND on the responder
// side, one at a time per RC ordering (no interleaving between QPs' SENDs).
type receiveAssembly struct {
	wqe     RecvWqe
	written int
}

// HandleSendPacket is the responder-side processor for SEND packets (spec
// §4.5.2). It enforces PSN order, consumes a receive WQE on the packet that
// begins a message, and posts a completion when the message's last packet
// arrives. Returns the ACK/NAK packet to send back, if any.
func (qp *QueuePair) HandleSendPacket(pkt Packet) (Packet, bool) {
	if !qp.CanReceive() {
		return qp.nak(pkt.BTH.PSN, wire.SyndromeInvalidRequest), true
	}
	if pkt.BTH.PSN != qp.expectedRecvPSN {
		return qp.nak(qp.expectedRecvPSN, wire.SyndromePsnSeqError), true
	}

	if pkt.BTH.Opcode == wire.OpSendFirst || pkt.BTH.Opcode.IsOnly() {
		w, ok := qp.popRecvWqe()
		if !ok {
			return qp.nak(pkt.BTH.PSN, wire.SyndromeRnrNak), true
		}
		qp.recvAssembly = &receiveAssembly{wqe: w}
	}

	qp.observeReceived(pkt.BTH.PSN, len(pkt.Payload))
	qp.advanceRecvPSN()

	if qp.recvAssembly != nil && len(pkt.Payload) > 0 {
		err := qp.scatterLocalAt(qp.recvAssembly.wqe.SGL, qp.recvAssembly.written, pkt.Payload)
		if err != nil {
			qp.pushCQE(CQE{WRID: qp.recvAssembly.wqe.WRID, Opcode: CQOpSend, Status: CQLocalAccessError})
			qp.recvAssembly = nil
			return qp.nak(pkt.BTH.PSN, wire.SyndromeRemoteAccessError), true
		}
		qp.recvAssembly.written += len(pkt.Payload)
	}

	if pkt.BTH.Opcode.IsLast() {
		wrid := uint64(0)
		if qp.recvAssembly != nil {
			wrid = qp.recvAssembly.wqe.WRID
		}
		ce := CQE{WRID: wrid, Opcode: CQOpSend, Status: CQSuccess}
		if pkt.Immediate != nil {
			ce.HasImmediate = true
			ce.ImmediateData = *pkt.Immediate
			ce.Opcode = CQOpSendImm
		}
		if qp.recvAssembly != nil {
			ce.BytesCompleted = uint32(qp.recvAssembly.written)
		}
		qp.pushCQE(ce)
		qp.recvAssembly = nil
	}

	if pkt.BTH.AckReq {
		return qp.ack(pkt.BTH.PSN), true
	}
	return Packet{}, false
}
