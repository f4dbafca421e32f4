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

func (qp *QueuePair) ack(psn uint32) Packet {
	return Packet{
		BTH:  wire.BTH{Opcode: wire.OpAcknowledge, DestQPN: qp.DestQPN, PSN: psn},
		AETH: &wire.AETH{Syndrome: wire.SyndromeAck, MSN: psn},
	}
}

func (qp *QueuePair) nak(psn uint32, syn wire.Syndrome) Packet {
	return Packet{
		BTH:  wire.BTH{Opcode: wire.OpAcknowledge, DestQPN: qp.DestQPN, PSN: psn},
		AETH: &wire.AETH{Syndrome: syn, MSN: psn},
	}
}

// HandleAck is the originator-side processor for an inbound ACK/NAK
// packet (spec §4.5.5). For a plain ACK it retires every pending op whose
// packet range is now fully covered by ack.BTH.PSN, posting a success CQE
// per retired op. For a NAK it flushes every pending op with the syndrome
// mapped to a completion status, since IBTA RC treats a NAK as ending the
// message sequence on that QP until the requester recovers.
func (qp *QueuePair) HandleAck(ack Packet) {
	if ack.AETH == nil {
		return
	}
	if ack.AETH.Syndrome == wire.SyndromeAck {
		qp.retireThrough(ack.BTH.PSN)
		return
	}
	qp.flushPendingWithStatus(statusForSyndrome(ack.AETH.Syndrome))
}

func statusForSyndrome(s wire.Syndrome) CompletionStatus {
	switch s {
	case wire.SyndromeRnrNak:
		return CQRnrRetryExceeded
	case wire.SyndromePsnSeqError:
		return CQSequenceError
	case wire.SyndromeRemoteAccessError:
		return CQRemoteAccessError
	case wire.SyndromeRemoteOperationError:
		return CQRemoteOperationError
	default:
		return CQRemoteOperationError
	}
}

// retireThrough marks every pending op whose full PSN range is at or
// before ackPSN as acked, posting its completion, and drops it from the
// FIFO. Ops are retired in order: an RC ACK is cumulative, so an ACK for a
// later op's PSN implicitly also acknowledges every earlier one.
func (qp *QueuePair) retireThrough(ackPSN uint32) {
	kept := qp.pendingOps[:0]
	for _, op := range qp.pendingOps {
		last := wire.AddPSN(op.FirstPSN, uint32(op.PacketCount-1))
		if wire.PSNLessEqual(last, ackPSN) {
			op.AckedAny = true
			op.AckedPSN = last
			qp.pushCQE(CQE{
				WRID:           op.WQE.WRID,
				Opcode:         cqOpcodeFor(op.WQE.Kind),
				Status:         CQSuccess,
				BytesCompleted: sgeTotalLength(op.WQE.SGL),
			})
			continue
		}
		kept = append(kept, op)
	}
	qp.pendingOps = kept
}

// flushPendingWithStatus drains every pending op with a failure
// completion, matching spec §4.5.5's flush-on-error behavior: a non-ACK
// syndrome ends reliable progress on the QP until software recovers it.
func (qp *QueuePair) flushPendingWithStatus(status CompletionStatus) {
	for _, op := range qp.pendingOps {
		qp.pushCQE(CQE{WRID: op.WQE.WRID, Opcode: cqOpcodeFor(op.WQE.Kind), Status: status})
	}
	qp.pendingOps = nil
	qp.State = StateSqe
}

// FlushAll posts a FlushError completion for every pending send op and
// every posted receive WQE, matching the spec's move-to-error-state
// behavior (§7): once a QP enters Err, all outstanding work is flushed.
func (qp *QueuePair) FlushAll() {
	for _, op := range qp.pendingOps {
		qp.pushCQE(CQE{WRID: op.WQE.WRID, Opcode: cqOpcodeFor(op.WQE.Kind), Status: CQFlushError})
	}
	qp.pendingOps = nil
	for _, w := range qp.recvWqeQueue {
		qp.pushCQE(CQE{WRID: w.WRID, Opcode: CQOpSend, Status: CQFlushError})
	}
	qp.recvWqeQueue = nil
	qp.State = StateErr
}
