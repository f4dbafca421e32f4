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

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/softnic/gonic/ethernet"
)

type fakeSource struct {
	name string
	vals map[string]uint64
}

func (f *fakeSource) Name() string                   { return f.name }
func (f *fakeSource) Snapshot() map[string]uint64     { return f.vals }

func TestCollectorExportsRegisteredSources(t *testing.T) {
	c := NewCollector("gonic")
	c.Register(&fakeSource{name: "qp0", vals: map[string]uint64{"tx_packets": 5}})
	c.RecordReset()

	n := testutil.CollectAndCount(c)
	require.GreaterOrEqual(t, n, 2)
}

func TestEthernetSourceSnapshot(t *testing.T) {
	var s ethernet.Stats
	src := &EthernetSource{QueueName: "qp0", Stats: &s}
	snap := src.Snapshot()
	require.Contains(t, snap, "tx_packets")
	require.Equal(t, uint64(0), snap["tx_packets"])
}
