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

package ethernet

type segError int

const (
	segErrNone segError = iota
	segErrInvalidMss
	segErrTooMany
)

// segment splits payload into TSO/GSO chunks per spec §4.3 step 6. If
// offloads are not requested (or mss==0, or length<=mss) the result is a
// single segment equal to payload.
func segment(payload []byte, txd TxDescriptor) ([][]byte, segError) {
	length := len(payload)
	if !(txd.TSOEnabled || txd.GSOEnabled) || txd.MSS == 0 || length <= int(txd.MSS) {
		return [][]byte{payload}, segErrNone
	}

	mss := int(txd.MSS)
	hdrLen := int(txd.HeaderLength)
	if mss < MinMSS || mss > MaxMSS || hdrLen > length {
		return nil, segErrInvalidMss
	}

	header := payload[:hdrLen]
	body := payload[hdrLen:]

	var segments [][]byte
	for off := 0; off < len(body); off += mss {
		end := off + mss
		if end > len(body) {
			end = len(body)
		}
		chunk := make([]byte, 0, hdrLen+(end-off))
		chunk = append(chunk, header...)
		chunk = append(chunk, body[off:end]...)
		segments = append(segments, chunk)
	}
	if len(segments) == 0 {
		segments = append(segments, header)
	}
	if len(segments) > MaxTSOSegments {
		return nil, segErrTooMany
	}
	return segments, segErrNone
}
