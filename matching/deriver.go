// Copyright 2026 The matching-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package matching

import (
	"encoding/binary"
	"fmt"

	"github.com/exposure-notification/matching-go/subtle"
)

// IDsPerKey is the number of rolling proximity identifiers derived from
// one temporary exposure key, one per 10-minute interval of a day.
const IDsPerKey = 144

// TEKLength is the length of temporary exposure key material in bytes.
const TEKLength = 16

const (
	hkdfInfo   = "EN-RPIK"
	rpikLength = 16

	// Block layout: bytes 0..6 hold "EN-RPI", bytes 6..12 are zero,
	// bytes 12..16 hold the interval number.
	rpiPad        = "EN-RPI\x00\x00\x00\x00\x00\x00"
	intervalStart = 12
)

// Deriver expands a temporary exposure key into the IDsPerKey rolling
// proximity identifiers it produced. The first twelve bytes of every
// plaintext block are invariant across all keys and intervals, so the
// scratch buffer is laid out once at construction and each Derive only
// rewrites the trailing four bytes per block before a single multi-block
// ECB pass.
type Deriver struct {
	scratch [IDsPerKey * IDLength]byte
}

// NewDeriver returns a Deriver with the invariant plaintext bytes in
// place. A Deriver is reusable across keys but not safe for concurrent
// use.
func NewDeriver() *Deriver {
	d := &Deriver{}
	for i := 0; i < len(d.scratch); i += IDLength {
		copy(d.scratch[i:], rpiPad)
	}
	return d
}

// Derive writes the IDsPerKey identifiers of tek to dst, one contiguous
// IDLength-byte identifier per interval starting at rollingStart. The
// interval number is encoded little-endian explicitly, independent of
// host byte order. The derived RPIK is zeroised before Derive returns.
func (d *Deriver) Derive(dst []byte, tek []byte, rollingStart uint32) error {
	if len(tek) != TEKLength {
		return fmt.Errorf("matching: diagnosis key has %d bytes, want %d", len(tek), TEKLength)
	}
	if len(dst) < len(d.scratch) {
		return fmt.Errorf("matching: identifier buffer has %d bytes, want %d", len(dst), len(d.scratch))
	}
	rpik, err := subtle.ComputeHKDFSHA256(tek, []byte(hkdfInfo), rpikLength)
	if err != nil {
		return err
	}
	ecb, err := subtle.NewAESECB(rpik)
	zero(rpik)
	if err != nil {
		return err
	}
	interval := rollingStart
	for i := intervalStart; i < len(d.scratch); i += IDLength {
		binary.LittleEndian.PutUint32(d.scratch[i:], interval)
		interval++
	}
	return ecb.EncryptBlocks(dst, d.scratch[:])
}

// zero overwrites key material that is no longer needed. The garbage
// collector gives no timing guarantee of its own.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
