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

// CongestionObserver is the narrow contract the transport holds the
// congestion manager to: exactly one RecordPacketSent per data-bearing
// packet transmitted, and exactly one RecordPacketReceived per
// data-bearing packet accepted by a responder. Implementations are free
// to run any congestion-control algorithm (DCQCN, timely, a no-op) behind
// this seam; the transport never inspects the decision, only emits events.
type CongestionObserver interface {
	RecordPacketSent(qpn uint32, psn uint32, bytes int)
	RecordPacketReceived(qpn uint32, psn uint32, bytes int)
}

// ReliabilityManager is the retransmit plug-point a QP stores via
// SetReliabilityManager. The transport itself never calls it: there is no
// retransmit timer, and a NAK flushes the affected pending ops.
// ShouldRetransmit must be idempotent: calling it again for an op already
// marked for retransmission must not schedule a second redundant
// retransmit.
type ReliabilityManager interface {
	ShouldRetransmit(op *PendingOp) bool
	OnRetransmit(op *PendingOp)
}

// NopCongestionObserver discards every event. Used when a QP is built
// without a congestion manager installed.
type NopCongestionObserver struct{}

func (NopCongestionObserver) RecordPacketSent(uint32, uint32, int)     {}
func (NopCongestionObserver) RecordPacketReceived(uint32, uint32, int) {}

// NopReliabilityManager never requests a retransmit.
type NopReliabilityManager struct{}

func (NopReliabilityManager) ShouldRetransmit(*PendingOp) bool { return false }
func (NopReliabilityManager) OnRetransmit(*PendingOp)          {}

func (qp *QueuePair) observeSent(psn uint32, n int) {
	if qp.congestion != nil {
		qp.congestion.RecordPacketSent(qp.QPN, psn, n)
	}
}

func (qp *QueuePair) observeReceived(psn uint32, n int) {
	if qp.congestion != nil {
		qp.congestion.RecordPacketReceived(qp.QPN, psn, n)
	}
}
