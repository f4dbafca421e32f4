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

// NextPSN advances a 24-bit PSN by one, wrapping modulo 2^24.
func NextPSN(psn uint32) uint32 {
	return (psn + 1) & PSNMask
}

// AddPSN advances psn by delta, wrapping modulo 2^24.
func AddPSN(psn uint32, delta uint32) uint32 {
	return (psn + delta) & PSNMask
}

// PSNLessEqual reports whether a is at or before b within the 2^24 modular
// window, i.e. (b - a) mod 2^24 < half the window. Used to order ACKs
// against pending PSN ranges.
func PSNLessEqual(a, b uint32) bool {
	diff := (b - a) & PSNMask
	return diff < (PSNMask+1)/2
}

// PSNBefore reports whether a strictly precedes b in the modular window.
func PSNBefore(a, b uint32) bool {
	return a != b && PSNLessEqual(a, b)
}
