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

package flowcontrol

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/softnic/gonic/wire"
)

func TestPauseRoundTrip(t *testing.T) {
	mac := [6]byte{1, 2, 3, 4, 5, 6}
	m := NewPauseManager(mac)
	require.False(t, m.Paused())

	frame := m.RequestPause(100)
	require.True(t, m.Paused())
	require.True(t, wire.IsPauseFrame(frame))

	for i := 0; i < 100; i++ {
		m.Tick()
	}
	require.False(t, m.Paused())
}

// TestPFCHysteresis covers scenario S4: a priority asserts at the pause
// threshold and does not clear until depth drops to half that threshold,
// not merely below the threshold itself.
func TestPFCHysteresis(t *testing.T) {
	mac := [6]byte{1, 2, 3, 4, 5, 6}
	m := NewPFCManager(mac, 100)
	require.Equal(t, uint32(50), m.ClearAt)

	m.UpdateQueueDepth(3, 100)
	require.True(t, m.Asserted(3))

	m.UpdateQueueDepth(3, 60)
	require.True(t, m.Asserted(3), "must stay asserted between clear and threshold")

	m.UpdateQueueDepth(3, 50)
	require.False(t, m.Asserted(3))

	frame := m.GeneratePFC(200)
	require.True(t, wire.IsPFCFrame(frame))
	parsed, err := wire.ParsePFC(frame)
	require.NoError(t, err)
	require.Equal(t, uint8(0), parsed.EnabledPriorities)
}

func TestPFCGeneratesOnlyAssertedPriorities(t *testing.T) {
	mac := [6]byte{1, 2, 3, 4, 5, 6}
	m := NewPFCManager(mac, 100)
	m.UpdateQueueDepth(0, 100)
	m.UpdateQueueDepth(5, 100)

	frame := m.GeneratePFC(10)
	parsed, err := wire.ParsePFC(frame)
	require.NoError(t, err)
	require.Equal(t, uint8(1<<0|1<<5), parsed.EnabledPriorities)
	require.Equal(t, uint16(10), parsed.PauseTimes[0])
	require.Equal(t, uint16(10), parsed.PauseTimes[5])
	require.Equal(t, uint16(0), parsed.PauseTimes[1])
}

func TestBackpressureClassification(t *testing.T) {
	m := NewBackpressureMonitor(DefaultThresholds)
	require.Equal(t, CongestionNone, m.Observe(0, 10, 100))
	require.Equal(t, CongestionLow, m.Observe(0, 30, 100))
	require.Equal(t, CongestionMedium, m.Observe(0, 60, 100))
	require.Equal(t, CongestionHigh, m.Observe(0, 80, 100))
	require.Equal(t, CongestionCritical, m.Observe(0, 95, 100))
}

func TestHeadOfLineBlockingDetection(t *testing.T) {
	m := NewBackpressureMonitor(DefaultThresholds)
	require.False(t, m.ObserveHead(1, 42, false))
	require.False(t, m.ObserveHead(1, 42, false))
	require.False(t, m.ObserveHead(1, 42, false))
	require.True(t, m.ObserveHead(1, 42, false))

	require.False(t, m.ObserveHead(1, 43, false), "head advanced, stall counter resets")
}

// TestEEECycle covers scenario S5: a link goes idle long enough to reach
// LPI, then a packet becoming ready wakes it back to Active through
// WakeTransit.
func TestEEECycle(t *testing.T) {
	m := NewEEEManager(1000, 500, 200)
	require.Equal(t, EEEActive, m.State)

	m.Tick(1000, false)
	require.Equal(t, EEESleepTransit, m.State)

	m.Tick(500, false)
	require.Equal(t, EEELPI, m.State)

	m.Tick(10, true)
	require.Equal(t, EEEWakeTransit, m.State)
	require.False(t, m.CanTransmit())

	m.Tick(200, true)
	require.Equal(t, EEEActive, m.State)
	require.True(t, m.CanTransmit())
}

func TestEEEAbortsToActiveOnPacketDuringSleepTransit(t *testing.T) {
	m := NewEEEManager(1000, 500, 200)
	m.Tick(1000, false)
	require.Equal(t, EEESleepTransit, m.State)

	m.Tick(10, true)
	require.Equal(t, EEEActive, m.State)
}
