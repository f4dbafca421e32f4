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

// Package errinject lets test harnesses and fault-injection tooling force
// a chosen failure to surface from an otherwise healthy data-plane
// pipeline, targeting a specific queue or every queue via a wildcard.
package errinject

import "sync/atomic"

// AnyQueue is the wildcard queue target: an injector armed with this
// target fires for every queue ID checked against it.
const AnyQueue uint16 = 0xFFFF

// Injector is checked by a data-plane pipeline ahead of whatever real
// status it would otherwise produce. ShouldInject is safe to call from the
// processing goroutine on every packet; arming/disarming is expected to
// happen from a control-plane goroutine and uses atomics so no lock is
// needed on the hot path.
type Injector struct {
	shouldInject int32
	queueTarget  uint32 // stored as uint16, widened for atomic ops

	triggerDelay int32 // remaining hits to ignore before injecting
	injectCount  int32 // remaining injections once triggered; <0 = unlimited
	continuous   int32
}

// Arm configures the injector: it skips the first triggerAfter matching
// calls (0 = fire immediately), then injects count times (count<0 means
// indefinitely) against queue (or AnyQueue for every queue) and
// auto-disables. With continuous true, count is ignored and the injector
// keeps firing until Disarm.
func (inj *Injector) Arm(queue uint16, triggerAfter, count int, continuous bool) {
	atomic.StoreInt32(&inj.shouldInject, 1)
	atomic.StoreUint32(&inj.queueTarget, uint32(queue))
	atomic.StoreInt32(&inj.triggerDelay, int32(triggerAfter))
	atomic.StoreInt32(&inj.injectCount, int32(count))
	if continuous {
		atomic.StoreInt32(&inj.continuous, 1)
	} else {
		atomic.StoreInt32(&inj.continuous, 0)
	}
}

// Disarm turns the injector off entirely.
func (inj *Injector) Disarm() {
	atomic.StoreInt32(&inj.shouldInject, 0)
}

// Armed reports whether the injector is currently configured to fire.
func (inj *Injector) Armed() bool {
	return atomic.LoadInt32(&inj.shouldInject) != 0
}

// ShouldInject reports whether the caller, processing queueID, should
// inject the configured fault right now. It decrements the trigger delay
// before it starts counting down injections. In one-shot mode it
// auto-disables as soon as the last injection of the budget is handed out;
// in continuous mode the budget is ignored.
func (inj *Injector) ShouldInject(queueID uint16) bool {
	if atomic.LoadInt32(&inj.shouldInject) == 0 {
		return false
	}
	target := uint16(atomic.LoadUint32(&inj.queueTarget))
	if target != AnyQueue && target != queueID {
		return false
	}

	if d := atomic.LoadInt32(&inj.triggerDelay); d > 0 {
		atomic.AddInt32(&inj.triggerDelay, -1)
		return false
	}

	if atomic.LoadInt32(&inj.continuous) != 0 {
		return true
	}
	count := atomic.LoadInt32(&inj.injectCount)
	if count == 0 {
		atomic.StoreInt32(&inj.shouldInject, 0)
		return false
	}
	if count > 0 && atomic.AddInt32(&inj.injectCount, -1) == 0 {
		atomic.StoreInt32(&inj.shouldInject, 0)
	}
	return true
}
