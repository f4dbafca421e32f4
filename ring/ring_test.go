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

package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescriptorRingIntegrity(t *testing.T) {
	r := NewDescriptorRing(1, 4, 8, nil)
	require.True(t, r.IsEmpty())
	require.False(t, r.IsFull())

	for i := 0; i < 4; i++ {
		require.NoError(t, r.Push([]byte{byte(i)}))
	}
	require.True(t, r.IsFull())
	require.ErrorIs(t, r.Push([]byte{9}), ErrFull)

	for i := 0; i < 4; i++ {
		b, err := r.Pop()
		require.NoError(t, err)
		require.Equal(t, byte(i), b[0])
	}
	require.True(t, r.IsEmpty())
	_, err := r.Pop()
	require.ErrorIs(t, err, ErrEmpty)
}

func TestDescriptorRingDoorbell(t *testing.T) {
	var rung []Doorbell
	bell := BellFunc(func(db Doorbell) { rung = append(rung, db) })
	r := NewDescriptorRing(7, 2, 4, bell)
	require.NoError(t, r.Push([]byte{1, 2, 3, 4}))
	require.Len(t, rung, 1)
	require.Equal(t, uint32(7), rung[0].QueueID)
	require.Equal(t, uint32(1), rung[0].ProducerIdx)
}

func TestDescriptorRingReset(t *testing.T) {
	r := NewDescriptorRing(0, 2, 4, nil)
	require.NoError(t, r.Push([]byte{1, 2, 3, 4}))
	_, _ = r.Pop()
	require.NoError(t, r.Push([]byte{5, 6, 7, 8}))
	r.Reset()
	require.True(t, r.IsEmpty())
	require.Equal(t, 0, r.ProducerIdx())
	require.Equal(t, 0, r.ConsumerIdx())
	require.Equal(t, 2, r.Capacity())
}

func TestCompletionQueueIntegrity(t *testing.T) {
	q := NewCompletionQueue[int](0, 2, nil)
	require.NoError(t, q.Push(1))
	require.NoError(t, q.Push(2))
	require.ErrorIs(t, q.Push(3), ErrFull)

	v, err := q.Pop()
	require.NoError(t, err)
	require.Equal(t, 1, v)
	v, err = q.Pop()
	require.NoError(t, err)
	require.Equal(t, 2, v)
	_, err = q.Pop()
	require.ErrorIs(t, err, ErrEmpty)
}
