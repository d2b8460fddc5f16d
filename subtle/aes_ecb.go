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

package subtle

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// BlockSize is the AES block size in bytes.
const BlockSize = aes.BlockSize

// AESECB encrypts whole blocks with AES-128 in ECB mode.
//
// ECB preserves equal-block structure and is not a general-purpose
// cipher mode. The Exposure Notification protocol uses it because every
// rolling proximity identifier is an independent single-block
// encryption under a per-key RPIK; no two plaintext blocks under the
// same key are equal.
type AESECB struct {
	bc cipher.Block
}

// NewAESECB returns an AESECB keyed with the given 16-byte key.
func NewAESECB(key []byte) (*AESECB, error) {
	if len(key) != 16 {
		return nil, fmt.Errorf("subtle.NewAESECB: invalid key size %d, want 16", len(key))
	}
	bc, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("subtle.NewAESECB: could not obtain cipher: %v", err)
	}
	return &AESECB{bc: bc}, nil
}

// EncryptBlocks encrypts src into dst without padding. len(src) must be
// a non-zero multiple of BlockSize and dst must be at least as long as
// src. dst and src may overlap exactly or not at all.
func (a *AESECB) EncryptBlocks(dst, src []byte) error {
	if len(src) == 0 || len(src)%BlockSize != 0 {
		return fmt.Errorf("subtle.AESECB: plaintext length %d is not a positive multiple of the block size", len(src))
	}
	if len(dst) < len(src) {
		return fmt.Errorf("subtle.AESECB: destination length %d is shorter than plaintext length %d", len(dst), len(src))
	}
	for i := 0; i < len(src); i += BlockSize {
		a.bc.Encrypt(dst[i:i+BlockSize], src[i:i+BlockSize])
	}
	return nil
}
