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

// readOriginatorState tracks a READ request awaiting its response packets,
// so the originator can scatter each response chunk into the local SGL in
// order and complete the WQE once the last chunk lands.
type readOriginatorState struct {
	wqe      WQE
	written  int
	wantLen  int
	firstPSN uint32
}

// PostRead builds the single READ REQUEST packet for an RDMA READ work
// request (spec §4.5.4). A READ request is always one packet regardless of
// the requested length; the responder is the one that segments the
// response across multiple packets bounded by its own PMTU.
func (qp *QueuePair) PostRead(w WQE) (Packet, error) {
	wantLen := int(sgeTotalLength(w.SGL))
	psn := qp.NextSendPSN()
	pkt := Packet{
		BTH:  wire.BTH{Opcode: wire.OpRdmaReadRequest, DestQPN: qp.DestQPN, PSN: psn, AckReq: true},
		RETH: &wire.RETH{VirtualAddress: w.RemoteAddr, RKey: w.RKey, DMALength: uint32(wantLen)},
	}
	qp.observeSent(psn, 0)
	qp.readState = &readOriginatorState{wqe: w, wantLen: wantLen, firstPSN: psn}
	qp.addPendingOp(&PendingOp{WQE: w, PacketCount: 1, FirstPSN: psn})
	return pkt, nil
}

// HandleReadRequest is the responder-side processor: validates the remote
// rkey for RemoteRead, reads the requested range from local memory, and
// segments it into one or more READ RESPONSE packets bounded by this QP's
// PMTU. The first (or only) response packet carries the AETH.
func (qp *QueuePair) HandleReadRequest(pkt Packet) ([]Packet, bool) {
	if !qp.CanReceive() || pkt.RETH == nil {
		return []Packet{qp.nak(pkt.BTH.PSN, wire.SyndromeInvalidRequest)}, true
	}
	if pkt.BTH.PSN != qp.expectedRecvPSN {
		return []Packet{qp.nak(qp.expectedRecvPSN, wire.SyndromePsnSeqError)}, true
	}
	qp.advanceRecvPSN()

	if qp.Regions != nil {
		if _, err := qp.Regions.ValidateRemote(pkt.RETH.RKey, qp.PDHandle, pkt.RETH.VirtualAddress, uint64(pkt.RETH.DMALength), memregion.RemoteRead); err != nil {
			return []Packet{qp.nak(pkt.BTH.PSN, wire.SyndromeRemoteAccessError)}, true
		}
	}
	data, st := qp.DMA.Read(pkt.RETH.VirtualAddress, uint64(pkt.RETH.DMALength))
	if st != dma.StatusNone {
		return []Packet{qp.nak(pkt.BTH.PSN, wire.SyndromeRemoteOperationError)}, true
	}

	count := packetCount(len(data), qp.PMTU)
	resp := make([]Packet, 0, count)
	for i := 0; i < count; i++ {
		op := wire.OpRdmaReadResponseMiddle
		switch {
		case count == 1:
			op = wire.OpRdmaReadResponseOnly
		case i == 0:
			op = wire.OpRdmaReadResponseFirst
		case i == count-1:
			op = wire.OpRdmaReadResponseLast
		}
		psn := qp.NextSendPSN()
		p := Packet{
			BTH:     wire.BTH{Opcode: op, DestQPN: qp.DestQPN, PSN: psn, AckReq: i == count-1},
			Payload: chunkAt(data, i, count, qp.PMTU),
		}
		if op.IsOnly() || op == wire.OpRdmaReadResponseFirst {
			p.AETH = &wire.AETH{Syndrome: wire.SyndromeAck, MSN: psn}
		}
		qp.observeSent(psn, len(p.Payload))
		resp = append(resp, p)
	}
	return resp, true
}

// HandleReadResponse is the originator-side processor for READ RESPONSE
// packets: scatters each chunk into the pending read's local SGL in order,
// and posts a success completion once the last chunk arrives (spec §4.5.4,
// testable property #8: every requested byte is delivered exactly once).
func (qp *QueuePair) HandleReadResponse(pkt Packet) {
	if qp.readState == nil {
		return
	}
	qp.observeReceived(pkt.BTH.PSN, len(pkt.Payload))
	if len(pkt.Payload) > 0 {
		if err := qp.scatterLocalAt(qp.readState.wqe.SGL, qp.readState.written, pkt.Payload); err != nil {
			qp.pushCQE(CQE{WRID: qp.readState.wqe.WRID, Opcode: CQOpRdmaRead, Status: CQLocalAccessError})
			qp.readState = nil
			return
		}
		qp.readState.written += len(pkt.Payload)
	}
	if pkt.BTH.Opcode.IsLast() {
		qp.pushCQE(CQE{
			WRID: qp.readState.wqe.WRID, Opcode: CQOpRdmaRead, Status: CQSuccess,
			BytesCompleted: uint32(qp.readState.written),
		})
		// retire the originator-side pending op recorded by PostRead.
		for i, op := range qp.pendingOps {
			if op.FirstPSN == qp.readState.firstPSN {
				qp.pendingOps = append(qp.pendingOps[:i], qp.pendingOps[i+1:]...)
				break
			}
		}
		qp.readState = nil
	}
}
