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

package memregion

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndValidate(t *testing.T) {
	tbl := New()
	tbl.Register(Region{
		LKey: 1, RKey: 2, PDHandle: 9,
		StartAddress: 1000, Length: 100,
		AccessFlags: LocalRead | LocalWrite | RemoteWrite,
	})

	_, err := tbl.ValidateLocal(1, 9, 1000, 50, LocalRead)
	require.NoError(t, err)

	_, err = tbl.ValidateLocal(1, 9, 1000, 200, LocalRead)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = tbl.ValidateLocal(1, 1, 1000, 50, LocalRead)
	require.ErrorIs(t, err, ErrPDMismatch)

	_, err = tbl.ValidateRemote(2, 9, 1000, 50, RemoteRead)
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = tbl.ValidateRemote(2, 9, 1000, 50, RemoteWrite)
	require.NoError(t, err)
}

func TestDeregister(t *testing.T) {
	tbl := New()
	tbl.Register(Region{LKey: 1, RKey: 1, PDHandle: 1, StartAddress: 0, Length: 10, AccessFlags: LocalRead})
	tbl.Deregister(1, 1)
	_, err := tbl.ValidateLocal(1, 1, 0, 1, LocalRead)
	require.ErrorIs(t, err, ErrNotFound)
}
