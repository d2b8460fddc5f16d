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

// Package matching derives rolling proximity identifiers from diagnosis
// keys and probes them against a corpus of scan records.
package matching

import (
	"bytes"
	"encoding/binary"
	"sort"
)

// IDLength is the length in bytes of a rolling proximity identifier and
// of a scan record.
const IDLength = 16

const prefixTableSize = 1 << 16

// PrefixIndex is an immutable set of scan records bucketed by the
// little-endian 16-bit prefix of each record. Prefixes of real corpora
// distribute close to uniformly, so with thousands to tens of thousands
// of records a probe is one table lookup plus a scan of zero to two
// candidates; the 256 KiB table replaces a per-probe binary search.
//
// A PrefixIndex is read-only after construction and may be shared
// without synchronisation.
type PrefixIndex struct {
	records [][IDLength]byte
	// prefixEnd[p] is the number of records whose prefix is <= p, so
	// records with prefix exactly p occupy
	// records[prefixEnd[p-1]:prefixEnd[p]], with prefixEnd[-1] read as 0.
	prefixEnd []uint32
}

// BuildPrefixIndex copies records into a new index. Entries that are
// not IDLength bytes long are dropped. Duplicates are kept; Find
// returns one of them.
func BuildPrefixIndex(records [][]byte) *PrefixIndex {
	idx := &PrefixIndex{
		records:   make([][IDLength]byte, 0, len(records)),
		prefixEnd: make([]uint32, prefixTableSize),
	}
	for _, rec := range records {
		if len(rec) != IDLength {
			continue
		}
		var r [IDLength]byte
		copy(r[:], rec)
		idx.records = append(idx.records, r)
	}
	sort.Slice(idx.records, func(i, j int) bool {
		return prefix(idx.records[i][:]) < prefix(idx.records[j][:])
	})
	last := 0
	for i := range idx.records {
		p := int(prefix(idx.records[i][:]))
		for last < p {
			idx.prefixEnd[last] = uint32(i)
			last++
		}
	}
	for last < prefixTableSize {
		idx.prefixEnd[last] = uint32(len(idx.records))
		last++
	}
	return idx
}

// Len returns the number of records in the index.
func (x *PrefixIndex) Len() int {
	return len(x.records)
}

// Find returns the position of a record equal to all IDLength bytes of
// id, or -1 if the corpus holds none.
func (x *PrefixIndex) Find(id []byte) int {
	if len(id) != IDLength {
		return -1
	}
	p := prefix(id)
	var lo uint32
	if p > 0 {
		lo = x.prefixEnd[p-1]
	}
	hi := x.prefixEnd[p]
	for i := lo; i < hi; i++ {
		if bytes.Equal(x.records[i][:], id) {
			return int(i)
		}
	}
	return -1
}

func prefix(id []byte) uint16 {
	return binary.LittleEndian.Uint16(id)
}
