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

package subtle_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"testing"

	"github.com/exposure-notification/matching-go/subtle"
)

// expandOneBlock is an independent HKDF oracle built directly from RFC
// 5869: with an empty salt the PRK is HMAC(zeros, ikm) and the first
// output block is HMAC(PRK, info || 0x01). Valid for lengths up to one
// digest.
func expandOneBlock(ikm, info []byte, length int) []byte {
	salt := make([]byte, sha256.Size)
	ext := hmac.New(sha256.New, salt)
	ext.Write(ikm)
	prk := ext.Sum(nil)

	exp := hmac.New(sha256.New, prk)
	exp.Write(info)
	exp.Write([]byte{0x01})
	return exp.Sum(nil)[:length]
}

func TestComputeHKDFSHA256(t *testing.T) {
	for _, tc := range []struct {
		name   string
		ikm    []byte
		info   []byte
		length int
	}{
		{
			name:   "zero key rpik info",
			ikm:    make([]byte, 16),
			info:   []byte("EN-RPIK"),
			length: 16,
		},
		{
			name:   "patterned key",
			ikm:    []byte{0x0b, 0x0b, 0x0b, 0x0b, 0x0b, 0x0b, 0x0b, 0x0b, 0x0b, 0x0b, 0x0b, 0x0b, 0x0b, 0x0b, 0x0b, 0x0b},
			info:   []byte{0xf0, 0xf1, 0xf2},
			length: 32,
		},
		{
			name:   "empty info",
			ikm:    []byte{0x01, 0x02, 0x03, 0x04},
			info:   nil,
			length: 16,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := subtle.ComputeHKDFSHA256(tc.ikm, tc.info, tc.length)
			if err != nil {
				t.Fatalf("ComputeHKDFSHA256() err = %v, want nil", err)
			}
			if want := expandOneBlock(tc.ikm, tc.info, tc.length); !bytes.Equal(got, want) {
				t.Errorf("ComputeHKDFSHA256() = %x, want %x", got, want)
			}
		})
	}
}

func TestComputeHKDFSHA256DistinctInfo(t *testing.T) {
	ikm := make([]byte, 16)
	a, err := subtle.ComputeHKDFSHA256(ikm, []byte("EN-RPIK"), 16)
	if err != nil {
		t.Fatalf("ComputeHKDFSHA256() err = %v, want nil", err)
	}
	b, err := subtle.ComputeHKDFSHA256(ikm, []byte("CT-AEMK"), 16)
	if err != nil {
		t.Fatalf("ComputeHKDFSHA256() err = %v, want nil", err)
	}
	if bytes.Equal(a, b) {
		t.Errorf("expansions with distinct info are equal: %x", a)
	}
}

func TestComputeHKDFSHA256InvalidLength(t *testing.T) {
	for _, length := range []int{0, -1, 255*sha256.Size + 1} {
		if _, err := subtle.ComputeHKDFSHA256(make([]byte, 16), nil, length); err == nil {
			t.Errorf("ComputeHKDFSHA256(length = %d) err = nil, want error", length)
		}
	}
}
