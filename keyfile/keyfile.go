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

// Package keyfile reads the Exposure Notification key export container:
// a 16-byte literal header followed by a wire-format encoding of the
// published TemporaryExposureKeyExport schema.
//
// See https://developers.google.com/android/exposure-notifications/exposure-key-file-format
package keyfile

// Header is the literal that starts every v1 export file. The four
// trailing spaces pad the magic to 16 bytes; there is no terminator.
const Header = "EK Export v1    "

// HeaderSize is the length of Header in bytes.
const HeaderSize = 16

// Field numbers of the published export schema. Only the keys field is
// dispatched on; every other container-level field is skipped by wire
// type without being interpreted.
const (
	keysFieldNumber = 7

	tekKeyData                    = 1
	tekTransmissionRiskLevel      = 2
	tekRollingStartIntervalNumber = 3
	tekRollingPeriod              = 4
	tekReportType                 = 5
	tekDaysSinceOnsetOfSymptoms   = 6
)
