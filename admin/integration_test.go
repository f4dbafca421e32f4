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

package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMailboxSendAndReceiveRoundTrip(t *testing.T) {
	mb := NewMailbox(time.Millisecond)
	seq := mb.NextSequence()

	go func() {
		time.Sleep(5 * time.Millisecond)
		mb.Post(Message{Sequence: seq, Opcode: 7, Data: []byte("pong")})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sent := false
	reply, err := mb.SendAndReceive(ctx, seq, func() error {
		sent = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, sent)
	require.Equal(t, uint16(7), reply.Opcode)
	require.Equal(t, []byte("pong"), reply.Data)
}

func TestMailboxSendAndReceiveTimesOut(t *testing.T) {
	mb := NewMailbox(time.Millisecond)
	seq := mb.NextSequence()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := mb.SendAndReceive(ctx, seq, func() error { return nil })
	require.ErrorIs(t, err, ErrTimeout)
}

// TestAdminQueueDrivesMailboxCommand exercises the supplemented end-to-end
// path: an admin command submitted on one side is processed, and its
// result is carried back to the caller through the mailbox rather than a
// synchronous return, mirroring how a PF services a VF's admin request
// asynchronously.
func TestAdminQueueDrivesMailboxCommand(t *testing.T) {
	mb := NewMailbox(time.Millisecond)
	q := NewQueue(func(c Command) CommandResult {
		return CommandResult{ID: c.ID, Success: true, Data: []byte("ok")}
	})

	cmdID := q.Submit(1, []byte("ping"))
	seq := mb.NextSequence()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	reply, err := mb.SendAndReceive(ctx, seq, func() error {
		results := q.ProcessCommands()
		require.Len(t, results, 1)
		require.Equal(t, cmdID, results[0].ID)
		mb.Post(Message{Sequence: seq, Opcode: uint16(cmdID), Data: results[0].Data})
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []byte("ok"), reply.Data)
}
