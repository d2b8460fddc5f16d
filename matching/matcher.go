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
	"go.uber.org/zap"

	"github.com/exposure-notification/matching-go/keyfile"
)

// Matcher probes published diagnosis keys against a corpus of scan
// records. One Matcher owns its prefix index, deriver, and identifier
// scratch; operations on the same Matcher must not run concurrently,
// though distinct Matchers are independent.
type Matcher struct {
	index   *PrefixIndex
	deriver *Deriver
	ids     [IDsPerKey * IDLength]byte
	log     *zap.SugaredLogger

	lastProcessedKeyCount uint32
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger directs the Matcher's progress and skip reports to log.
// Without it the Matcher is silent.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(m *Matcher) { m.log = log }
}

// NewMatcher builds the prefix index over scanRecords. Records that are
// not IDLength bytes long are dropped.
func NewMatcher(scanRecords [][]byte, opts ...Option) *Matcher {
	m := &Matcher{
		index:   BuildPrefixIndex(scanRecords),
		deriver: NewDeriver(),
		log:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log.Infof("prefix index loaded %d scan records", m.index.Len())
	return m
}

// Match decodes every export file in keyFiles and returns the keys with
// at least one derived identifier present in the corpus, in consumption
// order and without deduplication. A source that fails to open or
// verify is skipped, a record that fails to decode or derive is
// skipped, and a mid-stream read failure ends that one source; none of
// these abort the batch.
func (m *Matcher) Match(keyFiles []string) []*keyfile.TemporaryExposureKey {
	var matched []*keyfile.TemporaryExposureKey
	m.lastProcessedKeyCount = 0
	for _, path := range keyFiles {
		m.log.Infof("matching with %s", path)
		r, err := keyfile.Open(path)
		if err != nil {
			m.log.Errorf("skipping %s: %v", path, err)
			continue
		}
		matched = m.matchReader(r, matched)
		if err := r.Err(); err != nil {
			m.log.Errorf("reading %s: %v", path, err)
		}
		r.Close()
	}
	if len(matched) == 0 {
		m.log.Infof("matching done, total %d keys, no key matches", m.lastProcessedKeyCount)
	} else {
		m.log.Infof("matching done, total %d keys, found %d keys match", m.lastProcessedKeyCount, len(matched))
	}
	return matched
}

func (m *Matcher) matchReader(r *keyfile.Reader, matched []*keyfile.TemporaryExposureKey) []*keyfile.TemporaryExposureKey {
	for r.HasNext() {
		tek, err := r.Next()
		// The counter tracks stream progress, so every attempted record
		// bumps it, decodable or not.
		m.lastProcessedKeyCount++
		if err != nil {
			// Stream failures surface once through r.Err after the
			// loop; only per-record decode failures are reported here.
			if r.Err() == nil {
				m.log.Errorf("skipping key record: %v", err)
			}
			continue
		}
		if err := m.deriver.Derive(m.ids[:], tek.KeyData, uint32(tek.RollingStartIntervalNumber)); err != nil {
			m.log.Errorf("deriving identifiers: %v", err)
			continue
		}
		if m.probe() {
			matched = append(matched, tek)
		}
	}
	return matched
}

// probe reports whether any derived identifier is in the corpus. The
// first hit decides; matching is a membership test, not a sighting
// count.
func (m *Matcher) probe() bool {
	for i := 0; i < len(m.ids); i += IDLength {
		if m.index.Find(m.ids[i:i+IDLength]) >= 0 {
			return true
		}
	}
	return false
}

// MatchDirect probes in-memory diagnosis keys and returns the indices
// of those with at least one identifier in the corpus, in input order.
// The two slices are parallel; a length mismatch aborts the whole call
// with a nil result. MatchDirect leaves LastProcessedKeyCount untouched.
func (m *Matcher) MatchDirect(diagnosisKeys [][]byte, rollingStartNumbers []uint32) []int {
	if len(diagnosisKeys) != len(rollingStartNumbers) {
		m.log.Warnf("key count %d does not match rolling start number count %d",
			len(diagnosisKeys), len(rollingStartNumbers))
		return nil
	}
	m.log.Infof("matching with %d diagnosis keys", len(diagnosisKeys))
	var matched []int
	for i, key := range diagnosisKeys {
		if err := m.deriver.Derive(m.ids[:], key, rollingStartNumbers[i]); err != nil {
			m.log.Errorf("deriving identifiers for key %d: %v", i, err)
			continue
		}
		if m.probe() {
			matched = append(matched, i)
		}
	}
	return matched
}

// LastProcessedKeyCount returns the number of key records consumed by
// the most recent Match call.
func (m *Matcher) LastProcessedKeyCount() uint32 {
	return m.lastProcessedKeyCount
}
