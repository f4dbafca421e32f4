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

// Package rdma implements the Reliable Connection (RC) transport layered on
// top of the descriptor-ring/DMA core: PSN-ordered send/receive, RDMA
// write/read, AETH-based ACK/NAK/RNR, and the congestion/reliability
// plug-points the spec requires without mandating their algorithms.
//
// A QueuePair mutates its own state (send_psn, expected_recv_psn, pending
// op FIFO, recv WQE FIFO) without internal locking — callers must serialize
// access the same way the Ethernet QueuePair's process_once is not safe for
// concurrent callers on the same QP.
package rdma

import (
	"github.com/softnic/gonic/dma"
	"github.com/softnic/gonic/memregion"
	"github.com/softnic/gonic/wire"
)

// State is the RC queue pair lifecycle state.
type State int

const (
	StateReset State = iota
	StateInit
	StateRtr // ready to receive
	StateRts // ready to send
	StateSqe // send queue error
	StateErr
)

// SGE is one scatter-gather element of a work request.
type SGE struct {
	LKey   uint32
	Addr   uint64
	Length uint32
}

func sgeTotalLength(sgl []SGE) uint32 {
	var total uint32
	for _, s := range sgl {
		total += s.Length
	}
	return total
}

// OpKind selects the work-request kind posted to the send queue.
type OpKind int

const (
	OpSend OpKind = iota
	OpSendWithImm
	OpRdmaWrite
	OpRdmaWriteWithImm
	OpRdmaRead
)

// WQE is a work queue element posted by the host to the send queue.
type WQE struct {
	WRID          uint64
	Kind          OpKind
	SGL           []SGE
	RemoteAddr    uint64
	RKey          uint32
	ImmediateData uint32
	Solicited     bool
}

// RecvWqe is a work queue element posted to the receive queue, ready to
// absorb an incoming SEND.
type RecvWqe struct {
	WRID uint64
	SGL  []SGE
}

// PendingOp tracks one originator operation across its packet PSN range
// until it is fully ACKed.
type PendingOp struct {
	WQE         WQE
	PacketCount int
	FirstPSN    uint32
	AckedPSN    uint32
	AckedAny    bool
}

// Retired reports whether the op has been acked through its last packet.
func (p *PendingOp) Retired() bool {
	if !p.AckedAny {
		return false
	}
	last := wire.AddPSN(p.FirstPSN, uint32(p.PacketCount-1))
	return p.AckedPSN == last
}

// CompletionStatus is the WQE/CQE status taxonomy (spec §7).
type CompletionStatus int

const (
	CQSuccess CompletionStatus = iota
	CQLocalAccessError
	CQRemoteAccessError
	CQRemoteOperationError
	CQRnrRetryExceeded
	CQFlushError
	CQSequenceError
)

// CQOpcode records what kind of completion this is.
type CQOpcode int

const (
	CQOpSend CQOpcode = iota
	CQOpSendImm
	CQOpRdmaWrite
	CQOpRdmaWriteImm
	CQOpRdmaRead
)

// CQE is a completion queue entry.
type CQE struct {
	WRID            uint64
	Opcode          CQOpcode
	Status          CompletionStatus
	BytesCompleted  uint32
	ImmediateData   uint32
	HasImmediate    bool
}

// QueuePair is one RC queue pair's transport state.
type QueuePair struct {
	QPN     uint32
	DestQPN uint32
	PDHandle uint32
	PMTU    uint32
	State   State

	sendPSN        uint32
	expectedRecvPSN uint32

	pendingOps   []*PendingOp
	recvWqeQueue []RecvWqe

	cqes []CQE

	// responder-side partial transfer state, one at a time per RC ordering.
	writeState   *writeResponderState
	readState    *readOriginatorState
	recvAssembly *receiveAssembly

	Regions *memregion.Table
	DMA     *dma.Engine

	congestion  CongestionObserver
	reliability ReliabilityManager
}

// NewQueuePair creates a QP in Reset state.
func NewQueuePair(qpn, destQPN, pd uint32, pmtu uint32, regions *memregion.Table, eng *dma.Engine) *QueuePair {
	return &QueuePair{
		QPN: qpn, DestQPN: destQPN, PDHandle: pd, PMTU: pmtu,
		State:   StateReset,
		Regions: regions,
		DMA:     eng,
	}
}

// SetCongestionObserver installs the congestion manager plug-point.
func (qp *QueuePair) SetCongestionObserver(c CongestionObserver) { qp.congestion = c }

// SetReliabilityManager installs the reliability manager plug-point.
func (qp *QueuePair) SetReliabilityManager(r ReliabilityManager) { qp.reliability = r }

// NextSendPSN returns the current send_psn and advances it by one.
func (qp *QueuePair) NextSendPSN() uint32 {
	psn := qp.sendPSN
	qp.sendPSN = wire.NextPSN(qp.sendPSN)
	return psn
}

// CanReceive reports whether the QP is in a state that accepts inbound
// data packets (RTR or RTS, matching IBTA RC semantics).
func (qp *QueuePair) CanReceive() bool {
	return qp.State == StateRtr || qp.State == StateRts
}

// ExpectedRecvPSN returns the PSN the responder expects next.
func (qp *QueuePair) ExpectedRecvPSN() uint32 { return qp.expectedRecvPSN }

func (qp *QueuePair) advanceRecvPSN() {
	qp.expectedRecvPSN = wire.NextPSN(qp.expectedRecvPSN)
}

// PostRecvWqe enqueues a receive work request.
func (qp *QueuePair) PostRecvWqe(w RecvWqe) {
	qp.recvWqeQueue = append(qp.recvWqeQueue, w)
}

func (qp *QueuePair) popRecvWqe() (RecvWqe, bool) {
	if len(qp.recvWqeQueue) == 0 {
		return RecvWqe{}, false
	}
	w := qp.recvWqeQueue[0]
	qp.recvWqeQueue = qp.recvWqeQueue[1:]
	return w, true
}

func (qp *QueuePair) addPendingOp(op *PendingOp) {
	qp.pendingOps = append(qp.pendingOps, op)
}

func (qp *QueuePair) pushCQE(c CQE) {
	qp.cqes = append(qp.cqes, c)
	if qp.reliability != nil {
		// no ReliabilityManager method is called for completions
	}
}

// PopCQE drains one completion in submission order, oldest first.
func (qp *QueuePair) PopCQE() (CQE, bool) {
	if len(qp.cqes) == 0 {
		return CQE{}, false
	}
	c := qp.cqes[0]
	qp.cqes = qp.cqes[1:]
	return c, true
}

// PendingOps exposes the pending op FIFO for tests/inspection.
func (qp *QueuePair) PendingOps() []*PendingOp { return qp.pendingOps }

// Reset drops all in-flight pending ops and recv WQEs without surfacing
// completions for them, matching the spec's device-level reset semantics.
func (qp *QueuePair) Reset() {
	qp.sendPSN = 0
	qp.expectedRecvPSN = 0
	qp.pendingOps = nil
	qp.recvWqeQueue = nil
	qp.cqes = nil
	qp.writeState = nil
	qp.readState = nil
	qp.recvAssembly = nil
	qp.State = StateReset
}
