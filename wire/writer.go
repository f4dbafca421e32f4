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

// Package wire holds the bit-exact frame and header encode/decode logic
// shared by the Ethernet data plane, the RDMA (RC) transport, and the flow
// control frames: 802.1Q VLAN tags, pause/PFC frames, and BTH/RETH/AETH.
package wire

import (
	"errors"

	"github.com/bytedance/gopkg/lang/dirtmake"
)

var errNegativeCount = errors.New("wire: negative count")

// Writer is a zero-copy builder for outbound frames: Malloc reserves n
// bytes in the buffer and returns them for the caller to fill in place;
// WriteBinary appends a caller-owned slice. Flush finalizes the buffer.
type Writer interface {
	Malloc(n int) (buf []byte, err error)
	WriteBinary(bs []byte) (n int, err error)
	WrittenLen() int
	Flush() error
}

// BytesWriter is the simplest Writer: it appends directly into a growing
// []byte and writes the result back into *out on Flush.
type BytesWriter struct {
	out *[]byte
	buf []byte
}

// NewBytesWriter returns a Writer that accumulates into *out.
func NewBytesWriter(out *[]byte) *BytesWriter {
	return &BytesWriter{out: out, buf: *out}
}

func (w *BytesWriter) Malloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, errNegativeCount
	}
	start := len(w.buf)
	if cap(w.buf)-start < n {
		grown := dirtmake.Bytes(start, (start+n)*2+16)
		copy(grown, w.buf)
		w.buf = grown[:start]
	}
	w.buf = w.buf[:start+n]
	return w.buf[start : start+n], nil
}

func (w *BytesWriter) WriteBinary(bs []byte) (int, error) {
	buf, err := w.Malloc(len(bs))
	if err != nil {
		return 0, err
	}
	return copy(buf, bs), nil
}

func (w *BytesWriter) WrittenLen() int { return len(w.buf) }

func (w *BytesWriter) Flush() error {
	*w.out = w.buf
	return nil
}

// EncodeToBytes runs fn against a fresh BytesWriter and returns the result.
func EncodeToBytes(fn func(w Writer) error) ([]byte, error) {
	var out []byte
	w := NewBytesWriter(&out)
	if err := fn(w); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return out, nil
}
