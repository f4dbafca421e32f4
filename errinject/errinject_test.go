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

package errinject

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisarmedNeverInjects(t *testing.T) {
	var inj Injector
	require.False(t, inj.ShouldInject(0))
}

func TestWildcardTargetsEveryQueue(t *testing.T) {
	var inj Injector
	inj.Arm(AnyQueue, 0, -1, true)
	require.True(t, inj.ShouldInject(0))
	require.True(t, inj.ShouldInject(5))
}

func TestTriggerDelayDefersFirstInjection(t *testing.T) {
	var inj Injector
	inj.Arm(AnyQueue, 2, -1, true)
	require.False(t, inj.ShouldInject(0))
	require.False(t, inj.ShouldInject(0))
	require.True(t, inj.ShouldInject(0))
}

func TestOneShotAutoDisables(t *testing.T) {
	var inj Injector
	inj.Arm(AnyQueue, 0, 1, false)
	require.True(t, inj.ShouldInject(0))
	require.False(t, inj.Armed())
	require.False(t, inj.ShouldInject(0))
}

func TestContinuousKeepsFiringAfterBudget(t *testing.T) {
	var inj Injector
	inj.Arm(AnyQueue, 0, 1, true)
	require.True(t, inj.ShouldInject(0))
	require.True(t, inj.Armed())
	require.True(t, inj.ShouldInject(0), "budget exhausted but continuous mode keeps firing")
}

func TestTargetedQueueIgnoresOthers(t *testing.T) {
	var inj Injector
	inj.Arm(3, 0, -1, true)
	require.False(t, inj.ShouldInject(0))
	require.True(t, inj.ShouldInject(3))
}
