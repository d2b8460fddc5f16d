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

// Package subtle provides the low-level cryptographic operations of the
// matching engine.
package subtle

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ComputeHKDFSHA256 derives length bytes from ikm and info using
// HKDF-SHA256 with an empty salt.
func ComputeHKDFSHA256(ikm, info []byte, length int) ([]byte, error) {
	if length <= 0 || length > 255*sha256.Size {
		return nil, fmt.Errorf("subtle.ComputeHKDFSHA256: invalid output length %d", length)
	}
	out := make([]byte, length)
	kdf := hkdf.New(sha256.New, ikm, nil, info)
	if n, err := io.ReadFull(kdf, out); n != len(out) || err != nil {
		return nil, fmt.Errorf("subtle.ComputeHKDFSHA256: %v", err)
	}
	return out, nil
}
