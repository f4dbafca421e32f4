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

package device

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is configured once when a Device is constructed and held for its
// lifetime; it is not meant to be swapped mid-flight the way a service's
// request-scoped logger might be.
type Logger struct {
	zerolog.Logger
}

// NewLogger builds a Logger writing structured JSON lines to w, tagged
// with the device's name field so multi-device test harnesses can filter
// by it.
func NewLogger(w *os.File, deviceName string) Logger {
	if w == nil {
		w = os.Stderr
	}
	l := zerolog.New(w).With().Timestamp().Str("device", deviceName).Logger()
	return Logger{l}
}
