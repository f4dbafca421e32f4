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

package rss

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashIsPure(t *testing.T) {
	key := DefaultKey[:]
	data := []byte{1, 2, 3, 4, 5}
	h1 := Hash(key, data)
	h2 := Hash(key, data)
	require.Equal(t, h1, h2)
}

func TestSelectQueueMatchesTable(t *testing.T) {
	table := []uint16{5, 6, 7, 8}
	e := New(nil, table)
	data := []byte{10, 20, 30, 40}
	h := Hash(e.key, data)
	q, ok := e.SelectQueue(data)
	require.True(t, ok)
	require.Equal(t, table[int(h)%len(table)], q)
}

func TestEmptyTableNoSelection(t *testing.T) {
	e := New(nil, []uint16{})
	_, ok := e.SelectQueue([]byte{1})
	require.False(t, ok)
}

func TestDefaults(t *testing.T) {
	e := New(nil, nil)
	require.Len(t, e.table, DefaultTableLen)
	require.Equal(t, uint16(0), e.table[0])
	require.Equal(t, uint16(1), e.table[1])
}

func TestHistogramBySlotNotQueue(t *testing.T) {
	table := []uint16{9, 9, 9, 9} // all slots map to the same queue id
	e := New(nil, table)
	for i := 0; i < 10; i++ {
		e.SelectQueue([]byte{byte(i)})
	}
	require.Equal(t, uint64(10), e.TotalHashes())
	var total uint64
	for i := range table {
		total += e.TableHit(i)
	}
	require.Equal(t, uint64(10), total)
}
