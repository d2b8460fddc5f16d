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

package keyfile

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// KeyLength is the length of temporary exposure key material in bytes.
const KeyLength = 16

// DefaultRollingPeriod is the rolling period applied when an export
// record omits the field, per the published schema. One period of
// 10-minute intervals spans a day.
const DefaultRollingPeriod = 144

// TemporaryExposureKey is one diagnosis key record of an export file.
type TemporaryExposureKey struct {
	KeyData                    []byte
	TransmissionRiskLevel      int32
	RollingStartIntervalNumber int32
	RollingPeriod              int32
	ReportType                 int32
	DaysSinceOnsetOfSymptoms   int32

	// HasDaysSinceOnsetOfSymptoms distinguishes an explicit zero from an
	// absent field; zero is a meaningful onset distance.
	HasDaysSinceOnsetOfSymptoms bool
}

// parseTemporaryExposureKey decodes one key submessage. Fields beyond
// the published schema are skipped by wire type.
func parseTemporaryExposureKey(buf []byte) (*TemporaryExposureKey, error) {
	tek := &TemporaryExposureKey{RollingPeriod: DefaultRollingPeriod}
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return nil, fmt.Errorf("keyfile: malformed key record tag: %v", protowire.ParseError(n))
		}
		buf = buf[n:]
		if num == tekKeyData && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return nil, fmt.Errorf("keyfile: malformed key data: %v", protowire.ParseError(n))
			}
			tek.KeyData = append([]byte(nil), v...)
			buf = buf[n:]
			continue
		}
		if typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return nil, fmt.Errorf("keyfile: malformed field %d: %v", num, protowire.ParseError(n))
			}
			buf = buf[n:]
			switch num {
			case tekTransmissionRiskLevel:
				tek.TransmissionRiskLevel = int32(v)
			case tekRollingStartIntervalNumber:
				tek.RollingStartIntervalNumber = int32(v)
			case tekRollingPeriod:
				tek.RollingPeriod = int32(v)
			case tekReportType:
				tek.ReportType = int32(v)
			case tekDaysSinceOnsetOfSymptoms:
				tek.DaysSinceOnsetOfSymptoms = int32(protowire.DecodeZigZag(v))
				tek.HasDaysSinceOnsetOfSymptoms = true
			}
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, buf)
		if n < 0 {
			return nil, fmt.Errorf("keyfile: malformed field %d: %v", num, protowire.ParseError(n))
		}
		buf = buf[n:]
	}
	if len(tek.KeyData) != KeyLength {
		return nil, fmt.Errorf("keyfile: key record carries %d bytes of key material, want %d", len(tek.KeyData), KeyLength)
	}
	return tek, nil
}

// Marshal re-encodes the record in wire format so a host can read the
// interval number and metadata of a matched key. Default-valued fields
// are omitted. A fresh 64-byte buffer holds any record whose integer
// fields are non-negative without growing; negative values take 10-byte
// varints and may make the buffer grow.
func (t *TemporaryExposureKey) Marshal() []byte {
	b := make([]byte, 0, 64)
	b = protowire.AppendTag(b, tekKeyData, protowire.BytesType)
	b = protowire.AppendBytes(b, t.KeyData)
	if t.TransmissionRiskLevel != 0 {
		b = protowire.AppendTag(b, tekTransmissionRiskLevel, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(t.TransmissionRiskLevel)))
	}
	if t.RollingStartIntervalNumber != 0 {
		b = protowire.AppendTag(b, tekRollingStartIntervalNumber, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(t.RollingStartIntervalNumber)))
	}
	if t.RollingPeriod != DefaultRollingPeriod {
		b = protowire.AppendTag(b, tekRollingPeriod, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(t.RollingPeriod)))
	}
	if t.ReportType != 0 {
		b = protowire.AppendTag(b, tekReportType, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(t.ReportType)))
	}
	if t.HasDaysSinceOnsetOfSymptoms {
		b = protowire.AppendTag(b, tekDaysSinceOnsetOfSymptoms, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(t.DaysSinceOnsetOfSymptoms)))
	}
	return b
}
