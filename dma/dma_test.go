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

package dma

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/softnic/gonic/hostmem"
)

func TestReadWriteCounters(t *testing.T) {
	e := New(hostmem.New(64))
	require.Equal(t, StatusNone, e.Write(0, []byte{1, 2, 3, 4}))
	data, st := e.Read(0, 4)
	require.Equal(t, StatusNone, st)
	require.Equal(t, []byte{1, 2, 3, 4}, data)
	require.Equal(t, uint64(4), e.Counters().BytesRead())
	require.Equal(t, uint64(4), e.Counters().BytesWritten())
	require.Equal(t, uint64(1), e.Counters().Reads())
	require.Equal(t, uint64(1), e.Counters().Writes())
}

func TestBurstAlignment(t *testing.T) {
	e := New(hostmem.New(64))
	_, st := e.BurstRead(0, 3, 4, 0)
	require.Equal(t, StatusAlignmentError, st)

	data, st := e.BurstRead(0, 4, 4, 8)
	require.Equal(t, StatusNone, st)
	require.Len(t, data, 16)
	require.Equal(t, uint64(1), e.Counters().BurstOps())
}

func TestScatterGatherEmptyList(t *testing.T) {
	e := New(hostmem.New(64))
	_, st := e.ScatterGatherRead(nil)
	require.Equal(t, StatusAccessError, st)
}

func TestScatterGatherRoundTrip(t *testing.T) {
	e := New(hostmem.New(64))
	sgl := []SGEntry{{Addr: 0, Length: 4}, {Addr: 8, Length: 4}}
	require.Equal(t, StatusNone, e.ScatterGatherWrite(sgl, []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	out, st := e.ScatterGatherRead(sgl)
	require.Equal(t, StatusNone, st)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, out)
}

func TestReadFault(t *testing.T) {
	e := New(hostmem.New(4))
	_, st := e.Read(10, 4)
	require.Equal(t, StatusAccessError, st)
}
