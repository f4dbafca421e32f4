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
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
)

// mailboxDepth is the bounded inbox size per VF/PF mailbox.
const mailboxDepth = 16

// Message is one mailbox entry exchanged between a PF and a VF.
type Message struct {
	Sequence uint32
	Opcode   uint16
	Data     []byte

	// CorrelationID tags the message for cross-process log correlation;
	// matching is still done by Sequence, CorrelationID is carried
	// through untouched for tracing a request across the PF/VF boundary.
	CorrelationID string
}

// NewCorrelationID returns a new globally sortable ID suitable for
// stamping an outbound Message before it is sent.
func NewCorrelationID() string { return xid.New().String() }

// ErrTimeout is returned by SendAndReceive when no reply with a matching
// sequence arrived before the deadline.
var ErrTimeout = errors.New("admin: mailbox timeout")

// Mailbox is a 16-entry bounded inbox for one VF/PF pair. Messages posted
// past capacity are dropped and counted rather than blocking the poster,
// matching a fixed-size hardware mailbox register window.
type Mailbox struct {
	mu      sync.Mutex
	inbox   []Message
	dropped uint64

	nextSeq uint32

	pollInterval time.Duration
}

// NewMailbox creates an empty mailbox. pollInterval governs how often
// SendAndReceive re-checks the inbox while waiting; it defaults to 1ms if
// zero, the same ballpark gopool's worker-wake ticker runs at.
func NewMailbox(pollInterval time.Duration) *Mailbox {
	if pollInterval <= 0 {
		pollInterval = time.Millisecond
	}
	return &Mailbox{pollInterval: pollInterval}
}

// Dropped returns the count of messages rejected because the inbox was full.
func (m *Mailbox) Dropped() uint64 { return atomic.LoadUint64(&m.dropped) }

// Post enqueues an inbound message, dropping and counting it if the inbox
// is already at mailboxDepth.
func (m *Mailbox) Post(msg Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.inbox) >= mailboxDepth {
		atomic.AddUint64(&m.dropped, 1)
		return false
	}
	m.inbox = append(m.inbox, msg)
	return true
}

// takeMatching removes and returns the first queued message with the
// given sequence, if any.
func (m *Mailbox) takeMatching(seq uint32) (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, msg := range m.inbox {
		if msg.Sequence == seq {
			m.inbox = append(m.inbox[:i], m.inbox[i+1:]...)
			return msg, true
		}
	}
	return Message{}, false
}

// NextSequence assigns and returns the next outbound sequence number.
func (m *Mailbox) NextSequence() uint32 {
	return atomic.AddUint32(&m.nextSeq, 1)
}

// SendAndReceive calls send (the caller's own transport, e.g. a device
// register write, which is responsible for tagging its message with seq),
// then cooperatively polls the inbox every pollInterval for a reply
// carrying seq, until ctx is done.
func (m *Mailbox) SendAndReceive(ctx context.Context, seq uint32, send func() error) (Message, error) {
	if err := send(); err != nil {
		return Message{}, err
	}

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for {
		if msg, ok := m.takeMatching(seq); ok {
			return msg, nil
		}
		select {
		case <-ctx.Done():
			return Message{}, ErrTimeout
		case <-ticker.C:
		}
	}
}
