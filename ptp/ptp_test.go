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

package ptp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClockTickNoDrift(t *testing.T) {
	c := NewClock()
	c.Tick(1000)
	require.Equal(t, uint64(1000), c.NowNs())
}

func TestClockPositiveDrift(t *testing.T) {
	c := NewClock()
	c.BaseDriftPPB = 1_000_000 // +0.1%
	c.Tick(1_000_000_000)
	require.Equal(t, uint64(1_000_000_000+1_000_000), c.NowNs())
}

func TestClockAdjustTimeSaturatesAtZero(t *testing.T) {
	c := NewClock()
	c.SetTime(100)
	c.AdjustTime(-1000)
	require.Equal(t, uint64(0), c.NowNs())
}

func TestClockAdjustFrequency(t *testing.T) {
	c := NewClock()
	c.AdjustFrequency(-500_000) // -0.05%
	c.Tick(1_000_000_000)
	require.Equal(t, uint64(1_000_000_000-500_000), c.NowNs())
}

func TestTimestamperPerQueue(t *testing.T) {
	c := NewClock()
	ts := NewTimestamper(c, 2)

	c.SetTime(10)
	ts.TapTx(0)
	c.SetTime(20)
	ts.TapTx(1)

	tx0, ok := ts.LastTx(0)
	require.True(t, ok)
	require.Equal(t, uint64(10), tx0)

	tx1, ok := ts.LastTx(1)
	require.True(t, ok)
	require.Equal(t, uint64(20), tx1)

	_, ok = ts.LastRx(0)
	require.False(t, ok)
}

func TestTimestamperGrowsForUnseenQueue(t *testing.T) {
	c := NewClock()
	ts := NewTimestamper(c, 1)
	c.SetTime(5)
	ts.TapRx(4)
	v, ok := ts.LastRx(4)
	require.True(t, ok)
	require.Equal(t, uint64(5), v)
}
