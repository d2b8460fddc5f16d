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

package matching_test

import (
	"bytes"
	"crypto/aes"
	"crypto/sha256"
	"encoding/binary"
	"io"
	"testing"

	"golang.org/x/crypto/hkdf"

	"github.com/exposure-notification/matching-go/matching"
)

// referenceRPI derives one rolling proximity identifier the way the
// protocol document spells it out, block by block: RPIK <- HKDF(tek,
// "", "EN-RPIK", 16), RPI <- AES-ECB(RPIK, "EN-RPI" || 0x00 x 6 ||
// interval as little-endian uint32). Serves as an independent oracle
// for the batched deriver.
func referenceRPI(t *testing.T, tek []byte, interval uint32) []byte {
	t.Helper()
	rpik := make([]byte, 16)
	kdf := hkdf.New(sha256.New, tek, nil, []byte("EN-RPIK"))
	if _, err := io.ReadFull(kdf, rpik); err != nil {
		t.Fatalf("reading HKDF output: %v", err)
	}
	block, err := aes.NewCipher(rpik)
	if err != nil {
		t.Fatalf("aes.NewCipher() err = %v, want nil", err)
	}
	var plain [16]byte
	copy(plain[:6], "EN-RPI")
	binary.LittleEndian.PutUint32(plain[12:], interval)
	rpi := make([]byte, 16)
	block.Encrypt(rpi, plain[:])
	return rpi
}

func deriveIDs(t *testing.T, tek []byte, rollingStart uint32) []byte {
	t.Helper()
	ids := make([]byte, matching.IDsPerKey*matching.IDLength)
	if err := matching.NewDeriver().Derive(ids, tek, rollingStart); err != nil {
		t.Fatalf("Derive() err = %v, want nil", err)
	}
	return ids
}

func idAt(ids []byte, i int) []byte {
	return ids[i*matching.IDLength : (i+1)*matching.IDLength]
}

func TestDeriveMatchesReference(t *testing.T) {
	patterned := make([]byte, matching.TEKLength)
	for i := range patterned {
		patterned[i] = byte(i + 1)
	}
	for _, tc := range []struct {
		name         string
		tek          []byte
		rollingStart uint32
	}{
		{name: "zero key, epoch start", tek: make([]byte, matching.TEKLength), rollingStart: 0},
		{name: "patterned key", tek: patterned, rollingStart: 2650320},
		{name: "high interval bit", tek: patterned, rollingStart: 1 << 31},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ids := deriveIDs(t, tc.tek, tc.rollingStart)
			for _, i := range []int{0, 1, 72, 143} {
				want := referenceRPI(t, tc.tek, tc.rollingStart+uint32(i))
				if got := idAt(ids, i); !bytes.Equal(got, want) {
					t.Errorf("id %d = %x, want %x", i, got, want)
				}
			}
		})
	}
}

func TestDeriveDeterministic(t *testing.T) {
	tek := make([]byte, matching.TEKLength)
	tek[0] = 0x5a
	a := deriveIDs(t, tek, 144)
	b := deriveIDs(t, tek, 144)
	if !bytes.Equal(a, b) {
		t.Errorf("two derivations of the same key differ")
	}
}

// Identifiers depend only on the absolute interval number: shifting the
// rolling start by i lines block 0 up with block i.
func TestDeriveWindowShift(t *testing.T) {
	tek := make([]byte, matching.TEKLength)
	tek[15] = 0x99
	base := deriveIDs(t, tek, 1000)
	for _, i := range []uint32{1, 72, 143} {
		shifted := deriveIDs(t, tek, 1000+i)
		if got, want := idAt(shifted, 0), idAt(base, int(i)); !bytes.Equal(got, want) {
			t.Errorf("shift %d: id 0 = %x, want base id %d = %x", i, got, i, want)
		}
	}
}

func TestDeriveReusedAcrossKeys(t *testing.T) {
	d := matching.NewDeriver()
	ids := make([]byte, matching.IDsPerKey*matching.IDLength)
	tekA := make([]byte, matching.TEKLength)
	tekB := bytes.Repeat([]byte{0xee}, matching.TEKLength)

	if err := d.Derive(ids, tekB, 10); err != nil {
		t.Fatalf("Derive() err = %v, want nil", err)
	}
	if err := d.Derive(ids, tekA, 0); err != nil {
		t.Fatalf("Derive() err = %v, want nil", err)
	}
	// The second derivation must be untainted by the first.
	if got, want := idAt(ids, 0), referenceRPI(t, tekA, 0); !bytes.Equal(got, want) {
		t.Errorf("id 0 after reuse = %x, want %x", got, want)
	}
}

func TestDeriveInvalidInput(t *testing.T) {
	d := matching.NewDeriver()
	ids := make([]byte, matching.IDsPerKey*matching.IDLength)
	if err := d.Derive(ids, make([]byte, 15), 0); err == nil {
		t.Errorf("Derive(short key) err = nil, want error")
	}
	if err := d.Derive(make([]byte, 16), make([]byte, matching.TEKLength), 0); err == nil {
		t.Errorf("Derive(short buffer) err = nil, want error")
	}
}
