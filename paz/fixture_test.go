// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package paz

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"

	"github.com/woozymasta/gameres/crypt"
)

// Fixture keys shared by tests.
var (
	testIndexKey = KeyBytes("index-key")
	testDataKey  = KeyBytes("data-key")
)

// fixtureEntry is one plaintext file placed into a synthetic archive.
type fixtureEntry struct {
	name   string
	data   []byte
	packed bool
	// key overrides derived RC4 key used for encryption.
	key []byte
}

// fixture describes a synthetic PAZ archive.
type fixture struct {
	scheme    *Scheme
	videoKey  *[crypt.TableSize]byte
	category  string
	entries   []fixtureEntry
	signature uint32
	xorKey    byte
	// mutate edits raw index records before encryption.
	mutate func(i int, rec []byte)
	// count overrides stored entry count when non-nil.
	count *int32
}

// testScheme returns a scheme with keys for the given categories.
func testScheme(version int, typeKeys map[string]string, categories ...string) *Scheme {
	s := &Scheme{Version: version, ArcKeys: map[string]ArcKey{}, TypeKeys: typeKeys}
	for _, c := range categories {
		s.ArcKeys[c] = ArcKey{IndexKey: testIndexKey, DataKey: testDataKey}
	}

	return s
}

// derivedKey mirrors per-entry password derivation for ASCII names.
func derivedKey(name string, unpacked int, fragment string) []byte {
	return []byte(fmt.Sprintf("%s %08X %s", strings.ToLower(name), unpacked, fragment))
}

// deflateRaw compresses data as a raw deflate stream.
func deflateRaw(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		t.Fatalf("flate.NewWriter: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("deflate write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("deflate close: %v", err)
	}

	return buf.Bytes()
}

// align8 rounds n up to the Blowfish block size.
func align8(n int) int {
	return (n + 7) &^ 7
}

// build serializes the fixture into archive bytes.
func (f *fixture) build(t *testing.T) []byte {
	t.Helper()

	version := f.scheme.Version
	_, isAudio := audioCategories[f.category]
	_, isVideo := videoCategories[f.category]

	type record struct {
		name    string
		payload []byte
		fields  []byte
	}

	records := make([]record, 0, len(f.entries))
	indexLen := 4
	if isVideo {
		indexLen += crypt.TableSize
	}

	for _, e := range f.entries {
		stored := e.data
		if e.packed {
			stored = deflateRaw(t, e.data)
		}

		aligned := align8(len(stored))
		payload := make([]byte, aligned)
		copy(payload, stored)

		key := e.key
		if key == nil && version > 0 {
			var fragment string
			if !e.packed {
				fragment = f.scheme.TypePassword(e.name, isAudio)
			}
			if fragment != "" || isVideo {
				key = derivedKey(e.name, len(e.data), fragment)
			}
		}

		switch {
		case isVideo && version < 1:
			inverse := crypt.InvertTable(f.videoKey)
			for i, b := range payload {
				payload[i] = inverse[b]
			}
		case isVideo:
			if aligned > 0 {
				ks, err := crypt.NewKeystream(crypt.MixKey(f.videoKey, key))
				if err != nil {
					t.Fatalf("video keystream: %v", err)
				}
				window := ks.Block(min(videoBlockLimit, aligned))
				for i := range payload {
					payload[i] ^= window[i%len(window)]
				}
			}
		default:
			if key != nil {
				ks, err := crypt.NewKeystream(key)
				if err != nil {
					t.Fatalf("entry keystream: %v", err)
				}
				if version >= 2 {
					ks.Skip(crypt.SkipRounds(key))
				}
				ks.XORKeyStream(payload, payload)
			}

			block, err := crypt.NewBlowfish(testDataKey)
			if err != nil {
				t.Fatalf("data cipher: %v", err)
			}
			crypt.EncryptECB(block, payload)
		}

		fields := make([]byte, entryFieldsSize+4)
		binary.LittleEndian.PutUint32(fields[8:], uint32(len(e.data)))
		binary.LittleEndian.PutUint32(fields[12:], uint32(len(stored)))
		binary.LittleEndian.PutUint32(fields[16:], uint32(aligned))
		if e.packed {
			binary.LittleEndian.PutUint32(fields[20:], 1)
		}

		records = append(records, record{name: e.name, payload: payload, fields: fields})
		indexLen += len(e.name) + 1 + len(fields)
	}

	indexLen = align8(indexLen)
	start := 0
	if version > 0 {
		start = indexOffsetV1
	}

	dataStart := start + 4 + indexLen
	offset := int64(dataStart)
	index := make([]byte, 0, indexLen)
	count := int32(len(records))
	if f.count != nil {
		count = *f.count
	}
	index = binary.LittleEndian.AppendUint32(index, uint32(count))
	if isVideo {
		// Stored key is the inverse table for version 0 archives.
		stored := f.videoKey
		if version < 1 {
			stored = crypt.InvertTable(f.videoKey)
		}
		index = append(index, stored[:]...)
	}

	for i, rec := range records {
		binary.LittleEndian.PutUint64(rec.fields[0:], uint64(offset))
		if f.mutate != nil {
			f.mutate(i, rec.fields)
		}

		index = append(index, rec.name...)
		index = append(index, 0)
		index = append(index, rec.fields...)
		offset += int64(len(rec.payload))
	}

	index = append(index, make([]byte, indexLen-len(index))...)
	indexCipher, err := crypt.NewBlowfish(testIndexKey)
	if err != nil {
		t.Fatalf("index cipher: %v", err)
	}
	crypt.EncryptECB(indexCipher, index)

	out := make([]byte, start, int(offset))
	if version > 0 {
		binary.LittleEndian.PutUint32(out, f.signature)
	}

	sizeField := uint32(indexLen)
	if f.xorKey != 0 {
		sizeField ^= uint32(f.xorKey) * 0x01010101
		whiten(index, f.xorKey)
	}

	out = binary.LittleEndian.AppendUint32(out, sizeField)
	out = append(out, index...)
	for _, rec := range records {
		if f.xorKey != 0 {
			whiten(rec.payload, f.xorKey)
		}
		out = append(out, rec.payload...)
	}

	// Keep at least one byte after the index so empty directories pass the size check.
	if len(records) == 0 {
		out = append(out, make([]byte, 8)...)
	}

	return out
}

// whiten XORs data in place.
func whiten(data []byte, key byte) {
	for i := range data {
		data[i] ^= key
	}
}

// testSource is an in-memory SchemeSource.
type testSource struct {
	bySignature map[uint32]*Scheme
	byTitle     map[string]*Scheme
}

func (s testSource) SchemeBySignature(signature uint32) (*Scheme, bool) {
	v, ok := s.bySignature[signature]
	return v, ok
}

func (s testSource) SchemeByTitle(title string) (*Scheme, bool) {
	v, ok := s.byTitle[title]
	return v, ok
}
