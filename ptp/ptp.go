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

// Package ptp models the device's free-running hardware clock and the
// per-queue TX/RX timestamp taps used to support IEEE 1588 PTP hardware
// timestamping.
package ptp

// Clock is a monotonic nanosecond counter subject to a fixed base drift
// plus a software frequency adjustment, both expressed in parts per
// billion. Advance multiplies elapsed wall-clock time by the effective
// drift ratio, so a positive drift makes the clock run fast relative to
// real time and a negative one makes it run slow.
type Clock struct {
	counterNs            uint64
	BaseDriftPPB         int64
	AccumulatedFreqAdjustPPB int64
}

// NewClock creates a clock starting at zero with no drift.
func NewClock() *Clock {
	return &Clock{}
}

// NowNs returns the clock's current counter value.
func (c *Clock) NowNs() uint64 { return c.counterNs }

// Tick advances the clock by elapsedNs of real time, scaled by the
// effective drift (base drift plus accumulated frequency adjustment).
func (c *Clock) Tick(elapsedNs uint64) {
	ppb := c.BaseDriftPPB + c.AccumulatedFreqAdjustPPB
	delta := int64(elapsedNs) + (int64(elapsedNs)*ppb)/1_000_000_000
	if delta < 0 {
		delta = 0
	}
	c.counterNs += uint64(delta)
}

// AdjustTime applies a one-shot step offset to the counter, saturating at
// zero rather than underflowing if deltaNs is negative and larger in
// magnitude than the current counter.
func (c *Clock) AdjustTime(deltaNs int64) {
	if deltaNs >= 0 {
		c.counterNs += uint64(deltaNs)
		return
	}
	step := uint64(-deltaNs)
	if step >= c.counterNs {
		c.counterNs = 0
		return
	}
	c.counterNs -= step
}

// AdjustFrequency sets the accumulated frequency adjustment applied on
// every subsequent Tick, replacing whatever correction was previously in
// effect.
func (c *Clock) AdjustFrequency(ppb int64) {
	c.AccumulatedFreqAdjustPPB = ppb
}

// SetTime overwrites the counter outright, used for an initial PTP sync.
func (c *Clock) SetTime(ns uint64) {
	c.counterNs = ns
}
