// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package pbo

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/lzss"

	"github.com/woozymasta/gameres"
)

func TestSignatureMatchesHeader(t *testing.T) {
	data := buildPBO(t, nil, []testEntry{{path: "a.txt", data: []byte("hello")}}, false)
	v := gameres.NewBytesView("data.pbo", data)

	sig, err := v.Signature()
	if err != nil {
		t.Fatalf("Signature: %v", err)
	}
	if sig != Signature {
		t.Fatalf("signature=%#08x, want %#08x", sig, Signature)
	}
}

// TestOpen_ManualPBO verifies the decoder parses a hand-built minimal PBO.
func TestOpen_ManualPBO(t *testing.T) {
	t.Parallel()

	headers := []HeaderPair{{Key: "prefix", Value: `mod\data`}, {Key: "version", Value: "7"}}
	path := writePBO(t, buildPBO(t, headers, []testEntry{
		{path: "config.cpp", data: []byte("class CfgPatches {};")},
		{path: `data\logo.paa`, data: []byte("PAA")},
	}, false))

	arc, err := openPBO(t, path, Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if arc.FormatTag() != Tag {
		t.Fatalf("tag=%q, want %q", arc.FormatTag(), Tag)
	}
	if arc.Prefix() != `mod\data` {
		t.Fatalf("prefix=%q", arc.Prefix())
	}
	if got := arc.Headers(); len(got) != 2 || got[1].Value != "7" {
		t.Fatalf("headers=%v", got)
	}

	entries := arc.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Offset != arc.DataStart() {
		t.Fatalf("first offset=%d, want data start %d", entries[0].Offset, arc.DataStart())
	}

	data, err := gameres.ReadEntry(arc, "data/logo.paa")
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if string(data) != "PAA" {
		t.Errorf("data: got %q", data)
	}
}

func TestOpen_InvalidHeader(t *testing.T) {
	t.Parallel()

	v := gameres.NewBytesView("bad.pbo", []byte("not a pbo header\x00\x00\x00\x00\x00\x00"))
	arc, err := New(Options{}).TryOpen(v)
	if arc != nil {
		t.Fatal("expected no archive")
	}
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("expected ErrInvalidHeader, got %v", err)
	}

	// Soft failures stay inside the registry.
	path := writePBO(t, []byte("not a pbo header\x00\x00\x00\x00\x00\x00"))
	if _, err := openPBO(t, path, Options{}); !errors.Is(err, gameres.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestOpen_EntryNameTooLong(t *testing.T) {
	t.Parallel()

	long := string(bytes.Repeat([]byte("n"), maxNameLen+1))
	path := writePBO(t, buildPBO(t, nil, []testEntry{{path: long, data: []byte("x")}}, false))

	_, err := openPBO(t, path, Options{})
	if !errors.Is(err, ErrFileNameTooLong) || !errors.Is(err, gameres.ErrMalformedIndex) {
		t.Fatalf("expected ErrFileNameTooLong as ErrMalformedIndex, got %v", err)
	}
}

func TestOpen_TruncatedTable(t *testing.T) {
	t.Parallel()

	data := buildPBO(t, nil, []testEntry{{path: "a.txt", data: []byte("hello")}}, false)
	path := writePBO(t, data[:headerSize+1+len("a.txt")+1+10])

	_, err := openPBO(t, path, Options{})
	if !errors.Is(err, gameres.ErrMalformedIndex) {
		t.Fatalf("expected ErrMalformedIndex, got %v", err)
	}
}

func TestReadEntry_Compressed(t *testing.T) {
	t.Parallel()

	plain := bytes.Repeat([]byte("class Item { scope = 2; };\n"), 64)
	packed, err := lzss.Compress(plain, lzss.DefaultCompressOptions())
	if err != nil {
		t.Fatalf("lzss.Compress: %v", err)
	}

	path := writePBO(t, buildPBO(t, nil, []testEntry{
		{path: "config.cpp", data: packed, mime: MimeCompress, original: uint32(len(plain))},
		{path: "readme.txt", data: []byte("plain")},
	}, false))

	arc, err := openPBO(t, path, Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	e, err := gameres.FindEntry(arc, "config.cpp")
	if err != nil {
		t.Fatal(err)
	}
	if !e.IsPacked || e.ExtractedSize() != int64(len(plain)) {
		t.Fatalf("entry packed=%v extracted=%d", e.IsPacked, e.ExtractedSize())
	}

	got, err := gameres.ReadEntry(arc, "config.cpp")
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("decompressed mismatch: %d bytes, want %d", len(got), len(plain))
	}

	got, err = gameres.ReadEntry(arc, "readme.txt")
	if err != nil || string(got) != "plain" {
		t.Fatalf("readme=%q err=%v", got, err)
	}
}

func TestReadEntry_CompressedCorruptedPayload(t *testing.T) {
	t.Parallel()

	path := writePBO(t, buildPBO(t, nil, []testEntry{
		{path: "broken.bin", data: []byte{0xff, 0x01}, mime: MimeCompress, original: 4096},
	}, false))

	arc, err := openPBO(t, path, Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, err := gameres.ReadEntry(arc, "broken.bin"); err == nil {
		t.Fatal("expected decompression error")
	}
}

func TestOpenWithOptions_StoredOffsetCompatReadsGappedPayload(t *testing.T) {
	t.Parallel()

	path, firstOffset, secondOffset := createManualPBOWithAbsoluteOffsetsAndGaps(t)

	def, err := openPBO(t, path, Options{})
	if err != nil {
		t.Fatalf("open default: %v", err)
	}
	got, err := gameres.ReadEntry(def, "a.txt")
	if err != nil {
		t.Fatalf("ReadEntry default: %v", err)
	}
	if bytes.Equal(got, []byte("hello")) {
		t.Fatal("default sequential mode unexpectedly read stored-offset payload")
	}

	compat, err := openPBO(t, path, Options{OffsetMode: OffsetModeStoredCompat})
	if err != nil {
		t.Fatalf("open compat: %v", err)
	}

	raw := compat.RawEntries()
	if raw[0].Offset != firstOffset || raw[1].Offset != secondOffset {
		t.Fatalf("offsets=[%d %d], want [%d %d]", raw[0].Offset, raw[1].Offset, firstOffset, secondOffset)
	}

	for name, want := range map[string]string{"a.txt": "hello", "b.txt": "world"} {
		got, err := gameres.ReadEntry(compat, name)
		if err != nil {
			t.Fatalf("ReadEntry %s: %v", name, err)
		}
		if string(got) != want {
			t.Fatalf("%s=%q, want %q", name, got, want)
		}
	}
}

func TestOpenWithOptions_StoredOffsetStrictRejectsMalformed(t *testing.T) {
	t.Parallel()

	path := createManualPBOMalformedStoredOffset(t)

	compat, err := openPBO(t, path, Options{OffsetMode: OffsetModeStoredCompat})
	if err != nil {
		t.Fatalf("open compat: %v", err)
	}
	got, err := gameres.ReadEntry(compat, "a.txt")
	if err != nil || string(got) != "hello" {
		t.Fatalf("compat payload=%q err=%v", got, err)
	}

	_, err = openPBO(t, path, Options{OffsetMode: OffsetModeStoredStrict})
	if !errors.Is(err, ErrInvalidEntryOffset) {
		t.Fatalf("expected ErrInvalidEntryOffset, got %v", err)
	}
	if !errors.Is(err, gameres.ErrMalformedIndex) {
		t.Fatalf("expected ErrMalformedIndex, got %v", err)
	}
}

func TestOpenWithOptions_JunkFilter(t *testing.T) {
	t.Parallel()

	path := writePBO(t, buildPBO(t, nil, []testEntry{
		{path: "keep1.txt", data: []byte("hello")},
		{path: "empty.txt"},
		{path: "bad.bin", data: []byte("x"), mime: MimeCompress},
		{path: "../../escape.txt", data: []byte("evil")},
		{path: "keep2.txt", data: []byte("world")},
	}, false))

	def, err := openPBO(t, path, Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if n := len(def.Entries()); n != 5 {
		t.Fatalf("default entries=%d, want 5", n)
	}

	filtered, err := openPBO(t, path, Options{EnableJunkFilter: true})
	if err != nil {
		t.Fatalf("open filtered: %v", err)
	}

	entries := filtered.Entries()
	if len(entries) != 3 {
		t.Fatalf("filtered entries=%d, want 3", len(entries))
	}

	got, err := gameres.ReadEntry(filtered, "keep2.txt")
	if err != nil || string(got) != "world" {
		t.Fatalf("keep2.txt=%q err=%v", got, err)
	}
}

func TestVerifyTrailer(t *testing.T) {
	t.Parallel()

	entries := []testEntry{{path: "a.txt", data: []byte("payload bytes that are not zero")}}

	signed, err := openPBO(t, writePBO(t, buildPBO(t, nil, entries, true)), Options{})
	if err != nil {
		t.Fatalf("open signed: %v", err)
	}
	if _, ok := signed.Trailer(); !ok {
		t.Fatal("trailer not detected")
	}
	if err := signed.VerifyTrailer(); err != nil {
		t.Fatalf("VerifyTrailer: %v", err)
	}

	raw := buildPBO(t, nil, entries, true)
	raw[len(raw)-1] ^= 0xff
	tampered, err := openPBO(t, writePBO(t, raw), Options{})
	if err != nil {
		t.Fatalf("open tampered: %v", err)
	}
	if err := tampered.VerifyTrailer(); !errors.Is(err, ErrTrailerHashMismatch) {
		t.Fatalf("expected ErrTrailerHashMismatch, got %v", err)
	}

	plain, err := openPBO(t, writePBO(t, buildPBO(t, nil, entries, false)), Options{})
	if err != nil {
		t.Fatalf("open plain: %v", err)
	}
	if err := plain.VerifyTrailer(); !errors.Is(err, ErrNoTrailer) {
		t.Fatalf("expected ErrNoTrailer, got %v", err)
	}
}

func TestOpenEntry_AfterClose(t *testing.T) {
	t.Parallel()

	arc, err := openPBO(t, writePBO(t, buildPBO(t, nil, []testEntry{{path: "a.txt", data: []byte("a")}}, false)), Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := arc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := arc.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := arc.OpenEntry(arc.Entries()[0]); !errors.Is(err, gameres.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

// createManualPBOWithAbsoluteOffsetsAndGaps writes a PBO whose stored absolute offsets skip padding gaps.
func createManualPBOWithAbsoluteOffsetsAndGaps(t *testing.T) (string, uint32, uint32) {
	t.Helper()

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[1:5], uint32(MimeHeader))

	var table bytes.Buffer
	writeEntry := func(name string) int {
		_, _ = table.WriteString(name)
		_ = table.WriteByte(0)
		fieldPos := table.Len()
		_, _ = table.Write(make([]byte, 20))
		return fieldPos
	}

	fieldPosA := writeEntry("a.txt")
	fieldPosB := writeEntry("b.txt")
	_ = table.WriteByte(0)
	_, _ = table.Write(make([]byte, 20))

	raw := make([]byte, 0, 256)
	raw = append(raw, header...)
	raw = append(raw, 0x00)
	tableBase := len(raw)
	raw = append(raw, table.Bytes()...)
	dataStart := len(raw)

	firstOffset := uint32(dataStart + 16)
	secondOffset := firstOffset + uint32(len("hello")+7)

	binary.LittleEndian.PutUint32(raw[tableBase+fieldPosA+8:], firstOffset)
	binary.LittleEndian.PutUint32(raw[tableBase+fieldPosA+16:], uint32(len("hello")))
	binary.LittleEndian.PutUint32(raw[tableBase+fieldPosB+8:], secondOffset)
	binary.LittleEndian.PutUint32(raw[tableBase+fieldPosB+16:], uint32(len("world")))

	region := make([]byte, int(secondOffset)+len("world")-dataStart)
	copy(region[int(firstOffset)-dataStart:], "hello")
	copy(region[int(secondOffset)-dataStart:], "world")
	raw = append(raw, region...)

	path := filepath.Join(t.TempDir(), "offset-compat.pbo")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write pbo: %v", err)
	}

	return path, firstOffset, secondOffset
}

// createManualPBOMalformedStoredOffset writes a PBO with an out-of-file stored offset.
func createManualPBOMalformedStoredOffset(t *testing.T) string {
	t.Helper()

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[1:5], uint32(MimeHeader))

	var table bytes.Buffer
	_, _ = table.WriteString("a.txt")
	_ = table.WriteByte(0)
	fieldPos := table.Len()
	_, _ = table.Write(make([]byte, 20))
	_ = table.WriteByte(0)
	_, _ = table.Write(make([]byte, 20))

	raw := make([]byte, 0, 128)
	raw = append(raw, header...)
	raw = append(raw, 0x00)
	tableBase := len(raw)
	raw = append(raw, table.Bytes()...)

	binary.LittleEndian.PutUint32(raw[tableBase+fieldPos+8:], 0xFFFFFFF0)
	binary.LittleEndian.PutUint32(raw[tableBase+fieldPos+16:], uint32(len("hello")))
	raw = append(raw, "hello"...)

	path := filepath.Join(t.TempDir(), "offset-strict-malformed.pbo")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write pbo: %v", err)
	}

	return path
}
