// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package pbo

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // Trailer format requires SHA1.
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/gameres"
)

// testEntry is one record of a hand-built PBO.
type testEntry struct {
	path     string
	data     []byte
	mime     MimeType
	original uint32
}

// buildPBO serializes a PBO with headers, entries and an optional SHA1 trailer.
func buildPBO(t *testing.T, headers []HeaderPair, entries []testEntry, trailer bool) []byte {
	t.Helper()

	var raw bytes.Buffer
	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[1:5], uint32(MimeHeader))
	raw.Write(header)
	for _, h := range headers {
		raw.WriteString(h.Key)
		raw.WriteByte(0)
		raw.WriteString(h.Value)
		raw.WriteByte(0)
	}
	raw.WriteByte(0)

	for _, e := range entries {
		raw.WriteString(e.path)
		raw.WriteByte(0)

		fields := make([]byte, 20)
		binary.LittleEndian.PutUint32(fields[0:4], uint32(e.mime))
		binary.LittleEndian.PutUint32(fields[4:8], e.original)
		binary.LittleEndian.PutUint32(fields[16:20], uint32(len(e.data)))
		raw.Write(fields)
	}
	raw.WriteByte(0)
	raw.Write(make([]byte, 20))

	for _, e := range entries {
		raw.Write(e.data)
	}

	if trailer {
		sum := sha1.Sum(raw.Bytes()) //nolint:gosec // Trailer format requires SHA1.
		raw.WriteByte(0)
		raw.Write(sum[:])
	}

	return raw.Bytes()
}

// writePBO stores data in a temp dir and returns the path.
func writePBO(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.pbo")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write pbo: %v", err)
	}

	return path
}

// openPBO probes path with a registry holding only the PBO decoder.
func openPBO(t *testing.T, path string, opts Options) (*Archive, error) {
	t.Helper()

	reg := gameres.NewArchiveRegistry(nil)
	reg.Register(New(opts))
	arc, err := gameres.OpenArchive(reg, nil, path)
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() { _ = arc.Close() })

	pa, ok := arc.(*Archive)
	if !ok {
		t.Fatalf("archive type %T, want *pbo.Archive", arc)
	}

	return pa, nil
}
