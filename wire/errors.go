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

package wire

import "fmt"

// ProtocolError codes, modeled on the ApplicationException/ProtocolException
// split the teacher uses for apache-thrift-compatible error reporting.
const (
	ErrShortBuffer = iota
	ErrBadMagic
	ErrBadLength
	ErrUnsupportedOpcode
)

// ProtocolError is returned by every frame/header decoder in this package.
type ProtocolError struct {
	Code int
	Msg  string
	err  error
}

func NewProtocolError(code int, msg string) *ProtocolError {
	return &ProtocolError{Code: code, Msg: msg}
}

func (e *ProtocolError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("wire: protocol error [%d]", e.Code)
}

func (e *ProtocolError) Unwrap() error { return e.err }

func (e *ProtocolError) Is(target error) bool {
	t, ok := target.(*ProtocolError)
	return ok && t.Code == e.Code
}
