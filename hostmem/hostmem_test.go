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

package hostmem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadWriteRoundTrip(t *testing.T) {
	m := New(64)
	st := m.Write(8, []byte{1, 2, 3, 4})
	require.Equal(t, StatusNone, st)

	out, st := m.Read(8, 4)
	require.Equal(t, StatusNone, st)
	require.Equal(t, []byte{1, 2, 3, 4}, out)
}

func TestOutOfBounds(t *testing.T) {
	m := New(16)
	_, st := m.Read(10, 16)
	require.Equal(t, StatusAccessError, st)

	st = m.Write(20, []byte{1})
	require.Equal(t, StatusAccessError, st)
}

func TestZeroLengthAtBoundary(t *testing.T) {
	m := New(4)
	_, st := m.Read(4, 0)
	require.Equal(t, StatusNone, st)
}
