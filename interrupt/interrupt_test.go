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

package interrupt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFireMaskedDisabled(t *testing.T) {
	d := New(2)
	require.True(t, d.Fire(0))
	d.SetMask(0, true)
	require.False(t, d.Fire(0))
	d.SetMask(0, false)
	d.SetEnabled(0, false)
	require.False(t, d.Fire(0))
}

func TestFireOutOfRange(t *testing.T) {
	d := New(1)
	require.False(t, d.Fire(5))
}

func TestCoalescing(t *testing.T) {
	d := New(1)
	d.SetCoalesce(0, 50*time.Millisecond)

	base := time.Unix(0, 0)
	cur := base
	d.now = func() time.Time { return cur }

	require.True(t, d.Fire(0))
	cur = base.Add(10 * time.Millisecond)
	require.False(t, d.Fire(0))
	fired, pending := d.Stats(0)
	require.Equal(t, uint64(1), fired)
	require.Equal(t, uint64(1), pending)

	cur = base.Add(100 * time.Millisecond)
	require.True(t, d.Fire(0))
	fired, pending = d.Stats(0)
	require.Equal(t, uint64(2), fired)
	require.Equal(t, uint64(0), pending)
}
