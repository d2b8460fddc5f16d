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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrHeaderMismatch is returned by Open and NewReader when the source
// does not begin with the v1 export header.
var ErrHeaderMismatch = errors.New("keyfile: export header mismatch")

const readBufferSize = 64 * 1024

// maxRecordSize bounds one key submessage. Records of the published
// schema are a few dozen bytes; a larger declared length means a
// corrupt stream, not a bigger record.
const maxRecordSize = 1 << 20

// Reader is a pull iterator over the key records of one export file. It
// decodes keys-tagged records one at a time and skips every other field
// of the container, so memory use is independent of file size.
//
// A Reader is single-use and not safe for concurrent use.
type Reader struct {
	src io.Closer // nil when the caller owns the source
	br  *bufio.Reader

	// Field number of the tag the Reader is positioned at. Outside of
	// scanToKeyTag this is keysFieldNumber or the zero sentinel meaning
	// end of stream, because every other field is skipped.
	nextTag protowire.Number

	// Stream error that ended the read early; surfaced through Err.
	err error
}

// Open opens the export file at path. The returned Reader owns the file
// handle and releases it in Close.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("keyfile: %w", err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.src = f
	return r, nil
}

// NewReader verifies the export header of src and positions the Reader
// at the first key record. The caller keeps ownership of src; Close on
// the returned Reader is then a no-op.
func NewReader(src io.Reader) (*Reader, error) {
	r := &Reader{br: bufio.NewReaderSize(src, readBufferSize)}
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r.br, header[:]); err != nil {
		return nil, fmt.Errorf("keyfile: reading export header: %w", err)
	}
	if string(header[:]) != Header {
		return nil, ErrHeaderMismatch
	}
	if err := r.scanToKeyTag(); err != nil {
		return nil, err
	}
	return r, nil
}

// Close releases the underlying file if the Reader owns one.
func (r *Reader) Close() error {
	if r.src == nil {
		return nil
	}
	err := r.src.Close()
	r.src = nil
	return err
}

// HasNext reports whether the Reader is positioned at a key record. It
// may report true and Next still fail if the record turns out to be
// unreadable.
func (r *Reader) HasNext() bool {
	return r.nextTag != 0
}

// Err returns the stream error, if any, that ended the read early: a
// read failure inside a record or while advancing past one. Decode
// failures of individual records are not stream errors and are reported
// by Next alone.
func (r *Reader) Err() error {
	return r.err
}

// Next returns the record the Reader is positioned at and advances to
// the following key tag or end of stream. A record that fails to decode
// yields its error with the Reader already positioned past it, so the
// caller may skip it and continue. A read failure ends the stream.
func (r *Reader) Next() (*TemporaryExposureKey, error) {
	if r.nextTag != keysFieldNumber {
		return nil, fmt.Errorf("keyfile: no further key records")
	}
	payload, err := r.readDelimited()
	if err != nil {
		r.nextTag = 0
		r.err = fmt.Errorf("keyfile: reading key record: %w", err)
		return nil, r.err
	}
	tek, parseErr := parseTemporaryExposureKey(payload)
	// Position at the following key tag regardless of the parse
	// outcome, so one corrupt record does not end the stream. Scan
	// failures land in r.err.
	r.scanToKeyTag()
	if parseErr != nil {
		return nil, parseErr
	}
	return tek, nil
}

// ReadAll parses every key record of the export file at path, skipping
// records that fail to decode. Best effort: it returns the records read
// before any stream failure, along with that failure.
func ReadAll(path string) ([]*TemporaryExposureKey, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var keys []*TemporaryExposureKey
	for r.HasNext() {
		tek, err := r.Next()
		if err != nil {
			// Decode failures are skipped; only a real stream failure
			// cuts the read short.
			if r.Err() != nil {
				return keys, r.Err()
			}
			continue
		}
		keys = append(keys, tek)
	}
	return keys, r.Err()
}

// scanToKeyTag advances past container fields until the next keys tag
// or end of stream, leaving nextTag at keysFieldNumber or at the zero
// sentinel. Errors are recorded in r.err and also returned.
func (r *Reader) scanToKeyTag() error {
	r.nextTag = 0
	for {
		tag, err := r.readVarint()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			r.err = fmt.Errorf("keyfile: reading field tag: %w", err)
			return r.err
		}
		num, typ := protowire.DecodeTag(tag)
		if num <= 0 {
			r.err = fmt.Errorf("keyfile: malformed field tag %#x", tag)
			return r.err
		}
		if num == keysFieldNumber && typ == protowire.BytesType {
			r.nextTag = num
			return nil
		}
		if err := r.skipField(num, typ); err != nil {
			r.err = err
			return r.err
		}
	}
}

// skipField consumes the value of a field the Reader does not
// interpret, by the width its wire type declares.
func (r *Reader) skipField(num protowire.Number, typ protowire.Type) error {
	switch typ {
	case protowire.VarintType:
		_, err := r.readVarint()
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		if err != nil {
			return fmt.Errorf("keyfile: skipping field %d: %w", num, err)
		}
		return nil
	case protowire.Fixed32Type:
		return r.discard(num, 4)
	case protowire.Fixed64Type:
		return r.discard(num, 8)
	case protowire.BytesType:
		size, err := r.readVarint()
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		if err != nil {
			return fmt.Errorf("keyfile: skipping field %d: %w", num, err)
		}
		if size > maxRecordSize {
			return fmt.Errorf("keyfile: field %d declares %d bytes", num, size)
		}
		return r.discard(num, int(size))
	default:
		return fmt.Errorf("keyfile: cannot skip field %d of wire type %d", num, typ)
	}
}

func (r *Reader) discard(num protowire.Number, n int) error {
	if _, err := r.br.Discard(n); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("keyfile: skipping field %d: %w", num, err)
	}
	return nil
}

// readDelimited reads one length-delimited payload.
func (r *Reader) readDelimited() ([]byte, error) {
	size, err := r.readVarint()
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}
	if size > maxRecordSize {
		return nil, fmt.Errorf("record declares %d bytes", size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// readVarint reads one base-128 varint byte by byte, following the
// continuation bit. io.EOF is only returned when the stream ends on a
// varint boundary.
func (r *Reader) readVarint() (uint64, error) {
	var v uint64
	for shift := uint(0); shift < 64; shift += 7 {
		b, err := r.br.ReadByte()
		if err != nil {
			if err == io.EOF && shift > 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, errors.New("varint overflows 64 bits")
}
