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

import "time"

// IntervalNumber returns the 10-minute interval number, counted from
// the Unix epoch, that contains t.
func IntervalNumber(t time.Time) uint32 {
	return uint32(t.Unix() / 600)
}

// RollingStartNumber returns the first interval of the rolling period
// containing t. Keys roll at interval numbers that are multiples of
// IDsPerKey.
func RollingStartNumber(t time.Time) uint32 {
	return IntervalNumber(t) / IDsPerKey * IDsPerKey
}
