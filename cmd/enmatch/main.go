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

// enmatch matches published Exposure Notification key export files
// against a corpus of scan records collected by a device.
//
// The scan-record corpus is a text file with one hex-encoded 16-byte
// record per line. Matched keys are printed to stdout, one per line,
// with their metadata.
package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	flags "github.com/jessevdk/go-flags"

	"github.com/exposure-notification/matching-go/internal/logger"
	"github.com/exposure-notification/matching-go/matching"
)

type options struct {
	ScanFile string `short:"s" long:"scan-file" required:"true" description:"File with one hex-encoded 16-byte scan record per line"`

	Args struct {
		KeyFiles []string `positional-arg-name:"keyfile" required:"1"`
	} `positional-args:"yes"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}
	log := logger.New()
	defer log.Sync()

	records, err := readScanRecords(opts.ScanFile)
	if err != nil {
		log.Fatalf("loading scan records: %v", err)
	}

	m := matching.NewMatcher(records, matching.WithLogger(log))
	matched := m.Match(opts.Args.KeyFiles)
	for _, key := range matched {
		fmt.Printf("%x start=%d period=%d risk=%d report=%d\n",
			key.KeyData, key.RollingStartIntervalNumber, key.RollingPeriod,
			key.TransmissionRiskLevel, key.ReportType)
	}
	log.Infof("processed %d keys, matched %d", m.LastProcessedKeyCount(), len(matched))
}

func readScanRecords(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var records [][]byte
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := hex.DecodeString(line)
		if err != nil {
			return nil, fmt.Errorf("scan record %q: %v", line, err)
		}
		if len(rec) != matching.IDLength {
			return nil, fmt.Errorf("scan record %q: %d bytes, want %d", line, len(rec), matching.IDLength)
		}
		records = append(records, rec)
	}
	return records, sc.Err()
}
