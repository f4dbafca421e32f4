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

package ethernet

import (
	"sync/atomic"

	"github.com/softnic/gonic/dma"
	"github.com/softnic/gonic/interrupt"
	"github.com/softnic/gonic/ring"
	"github.com/softnic/gonic/wire"
)

// QueuePair is the Ethernet TX->RX pipeline for one queue pair. It is not
// safe for concurrent callers: process_once must be invoked by a single
// logical executor, matching the spec's single-threaded per-QP data plane.
type QueuePair struct {
	TxRing *ring.DescriptorRing
	RxRing *ring.DescriptorRing
	TxCQ   *ring.CompletionQueue[CompletionEntry]
	RxCQ   *ring.CompletionQueue[CompletionEntry]

	DMA *dma.Engine

	Interrupts       *interrupt.Dispatcher
	TxInterruptVec   int
	RxInterruptVec   int

	MaxMTU uint32

	Stats Stats
}

func (qp *QueuePair) postTxCompletion(e CompletionEntry) {
	_ = qp.TxCQ.Push(e)
	if qp.Interrupts != nil {
		qp.Interrupts.Fire(qp.TxInterruptVec)
	}
}

func (qp *QueuePair) postRxCompletion(e CompletionEntry) {
	_ = qp.RxCQ.Push(e)
	if qp.Interrupts != nil {
		qp.Interrupts.Fire(qp.RxInterruptVec)
	}
}

// ProcessOnce performs exactly one TX descriptor's worth of work. It
// returns false when the TX ring is empty, when popping the descriptor
// fails, or when the descriptor does not decode (no completion is posted
// in those cases); any other outcome (success or a dropped/faulted
// descriptor) returns true.
func (qp *QueuePair) ProcessOnce() bool {
	if qp.TxRing.IsEmpty() {
		return false
	}
	raw, err := qp.TxRing.Pop()
	if err != nil {
		return false
	}
	txd, decErr := DecodeTxDescriptor(raw)
	if decErr != nil {
		// decode failure: no completion posted, treat as a no-op TX.
		return false
	}

	if qp.RxRing.IsEmpty() {
		qp.postTxCompletion(CompletionEntry{QueueID: 0, DescriptorIndex: txd.DescriptorIndex, Status: StatusNoDescriptor})
		atomic.AddUint64(&qp.Stats.dropsNoRxDesc, 1)
		return true
	}

	payload, dmaSt := qp.DMA.Read(txd.BufferAddress, uint64(txd.Length))
	if dmaSt != dma.StatusNone {
		qp.postTxCompletion(CompletionEntry{QueueID: 0, DescriptorIndex: txd.DescriptorIndex, Status: StatusFault})
		atomic.AddUint64(&qp.Stats.dropsFault, 1)
		return true
	}

	if txd.ChecksumMode != ChecksumNone && !txd.ChecksumOffload {
		if !wire.VerifyChecksum(payload, txd.ChecksumValue) {
			qp.postTxCompletion(CompletionEntry{QueueID: 0, DescriptorIndex: txd.DescriptorIndex, Status: StatusChecksumError})
			atomic.AddUint64(&qp.Stats.dropsChecksum, 1)
			return true
		}
	}

	if uint32(len(payload)) > qp.MaxMTU {
		qp.postTxCompletion(CompletionEntry{QueueID: 0, DescriptorIndex: txd.DescriptorIndex, Status: StatusMtuExceeded})
		atomic.AddUint64(&qp.Stats.dropsMtu, 1)
		return true
	}

	segments, segErr := segment(payload, txd)
	switch segErr {
	case segErrInvalidMss:
		qp.postTxCompletion(CompletionEntry{QueueID: 0, DescriptorIndex: txd.DescriptorIndex, Status: StatusInvalidMss})
		atomic.AddUint64(&qp.Stats.dropsInvalidMss, 1)
		return true
	case segErrTooMany:
		qp.postTxCompletion(CompletionEntry{QueueID: 0, DescriptorIndex: txd.DescriptorIndex, Status: StatusTooManySegments})
		atomic.AddUint64(&qp.Stats.dropsTooManySeg, 1)
		return true
	}

	if qp.RxRing.Count() < len(segments) {
		qp.postTxCompletion(CompletionEntry{QueueID: 0, DescriptorIndex: txd.DescriptorIndex, Status: StatusNoDescriptor})
		atomic.AddUint64(&qp.Stats.dropsNoRxDesc, 1)
		return true
	}

	produced, txStatus := qp.deliverSegments(segments, txd)
	switch {
	case produced == len(segments):
		qp.postTxCompletion(CompletionEntry{
			QueueID:          0,
			DescriptorIndex:  txd.DescriptorIndex,
			Status:           StatusSuccess,
			SegmentsProduced: len(segments),
			TSOPerformed:     txd.TSOEnabled && len(segments) > 1,
			GSOPerformed:     txd.GSOEnabled && len(segments) > 1,
			VlanInserted:     txd.VlanInsert,
		})
		atomic.AddUint64(&qp.Stats.txPackets, uint64(len(segments)))
		atomic.AddUint64(&qp.Stats.txBytes, uint64(txd.Length))
	default:
		// a middle segment stopped processing (BufferTooSmall, Fault, or
		// ChecksumError): single TX completion for the original descriptor,
		// leaving earlier segments already delivered — the partial-delivery
		// behavior flagged as an open question in spec §9.
		qp.postTxCompletion(CompletionEntry{QueueID: 0, DescriptorIndex: txd.DescriptorIndex, Status: txStatus, SegmentsProduced: produced})
	}
	return true
}

// deliverSegments pops one RX descriptor per segment and DMA-writes it in.
// Returns the number of segments fully delivered, and the TX completion
// status to use if that count is less than len(segments).
func (qp *QueuePair) deliverSegments(segments [][]byte, txd TxDescriptor) (int, CompletionStatus) {
	for i, seg := range segments {
		rawRx, err := qp.RxRing.Pop()
		if err != nil {
			return i, StatusNoDescriptor
		}
		rxd, decErr := DecodeRxDescriptor(rawRx)
		if decErr != nil {
			return i, StatusNoDescriptor
		}

		if txd.VlanInsert {
			seg = wire.InsertVlanTag(seg, txd.VlanTag)
		}

		vlanStripped := false
		stripTag := rxd.VlanTag
		segHasVlan := txd.VlanInsert || rxd.VlanPresent
		if rxd.VlanStrip && segHasVlan && len(seg) >= wire.VlanTagLen {
			var tag uint16
			seg, tag = wire.StripVlanTag(seg)
			vlanStripped = true
			stripTag = tag
		}

		if uint32(len(seg)) > rxd.BufferLength {
			qp.postRxCompletion(CompletionEntry{
				QueueID: 1, DescriptorIndex: rxd.DescriptorIndex, Status: StatusBufferTooSmall,
				VlanStripped: vlanStripped, VlanTag: stripTag,
			})
			atomic.AddUint64(&qp.Stats.dropsBufferSmall, 1)
			return i, StatusSuccess
		}

		dmaSt := qp.DMA.Write(rxd.BufferAddress, seg)
		if dmaSt != dma.StatusNone {
			qp.postRxCompletion(CompletionEntry{QueueID: 1, DescriptorIndex: rxd.DescriptorIndex, Status: StatusFault})
			atomic.AddUint64(&qp.Stats.dropsFault, 1)
			return i, StatusFault
		}

		entry := CompletionEntry{
			QueueID:          1,
			DescriptorIndex:  rxd.DescriptorIndex,
			Status:           StatusSuccess,
			VlanStripped:     vlanStripped,
			VlanTag:          stripTag,
			GROAggregated:    rxd.GROEnabled,
			ChecksumVerified: rxd.ChecksumOffload,
		}
		if rxd.ChecksumMode != ChecksumNone && wire.ComputeChecksum(seg) != 0 {
			entry.Status = StatusChecksumError
			qp.postRxCompletion(entry)
			atomic.AddUint64(&qp.Stats.dropsChecksum, 1)
			return i, StatusSuccess
		}
		qp.postRxCompletion(entry)
	}
	return len(segments), StatusSuccess
}
