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

package stats

import "github.com/softnic/gonic/ethernet"

// EthernetSource adapts an ethernet.QueuePair's Stats into a Source.
type EthernetSource struct {
	QueueName string
	Stats     *ethernet.Stats
}

func (s *EthernetSource) Name() string { return s.QueueName }

func (s *EthernetSource) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"tx_packets":         s.Stats.TxPackets(),
		"tx_bytes":           s.Stats.TxBytes(),
		"drops_no_rx_desc":   s.Stats.DropsNoRxDesc(),
		"drops_checksum":     s.Stats.DropsChecksum(),
		"drops_mtu":          s.Stats.DropsMtu(),
		"drops_invalid_mss":  s.Stats.DropsInvalidMss(),
		"drops_too_many_seg": s.Stats.DropsTooManySeg(),
		"drops_fault":        s.Stats.DropsFault(),
		"drops_buffer_small": s.Stats.DropsBufferSmall(),
	}
}
