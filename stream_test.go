// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package gameres

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"

	"github.com/woozymasta/gameres/crypt"
)

func readPipeline(t *testing.T, p Pipeline, src []byte) []byte {
	t.Helper()

	rc, err := p.Open(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = rc.Close() }()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	return got
}

func TestXorStage(t *testing.T) {
	t.Parallel()

	plain := []byte("whitened index bytes")

	if got := readPipeline(t, Pipeline{}.Then(Xor(0)), plain); !bytes.Equal(got, plain) {
		t.Fatalf("key 0 changed data: %q", got)
	}

	once := readPipeline(t, Pipeline{}.Then(Xor(0xA5)), plain)
	if bytes.Equal(once, plain) {
		t.Fatal("xor with non-zero key left data unchanged")
	}

	twice := readPipeline(t, Pipeline{}.Then(Xor(0xA5)).Then(Xor(0xA5)), plain)
	if !bytes.Equal(twice, plain) {
		t.Fatalf("double xor=%q, want %q", twice, plain)
	}
}

func TestBlockDecryptStage(t *testing.T) {
	t.Parallel()

	block, err := crypt.NewBlowfish([]byte("stream-key"))
	if err != nil {
		t.Fatalf("NewBlowfish: %v", err)
	}

	plain := bytes.Repeat([]byte("0123456789abcdef"), 700)
	plain = append(plain, "tail"...)

	enc := bytes.Clone(plain)
	crypt.EncryptECB(block, enc)

	got := readPipeline(t, Pipeline{}.Then(BlockDecrypt(block)), enc)
	if !bytes.Equal(got, plain) {
		t.Fatal("block decrypt mismatch")
	}
	if !bytes.HasSuffix(enc, []byte("tail")) {
		t.Fatal("partial trailing block must stay in clear")
	}
}

func TestRepeatXorAndLimit(t *testing.T) {
	t.Parallel()

	pattern := []byte{1, 2, 3}
	src := []byte{1, 2, 3, 1, 2, 3, 1, 2}

	got := readPipeline(t, Pipeline{}.Then(RepeatXor(pattern)), src)
	if !bytes.Equal(got, make([]byte, len(src))) {
		t.Fatalf("RepeatXor=%v, want zeros", got)
	}

	got = readPipeline(t, Pipeline{}.Then(Limit(5)), src)
	if len(got) != 5 {
		t.Fatalf("Limit len=%d, want 5", len(got))
	}

	if _, err := (Pipeline{}.Then(RepeatXor(nil))).Open(bytes.NewReader(src)); err == nil {
		t.Fatal("expected error for empty pattern")
	}
}

func TestSubstituteStage(t *testing.T) {
	t.Parallel()

	var table [256]byte
	for i := range table {
		table[i] = byte(255 - i)
	}

	got := readPipeline(t, Pipeline{}.Then(Substitute(&table, 3)), []byte{0, 1, 2, 3})
	if !bytes.Equal(got, []byte{255, 254, 253}) {
		t.Fatalf("Substitute=%v", got)
	}
}

func TestInflateStage(t *testing.T) {
	t.Parallel()

	plain := []byte(strings.Repeat("compressible ", 64))

	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		t.Fatalf("flate writer: %v", err)
	}
	_, _ = fw.Write(plain)
	if err := fw.Close(); err != nil {
		t.Fatalf("flate close: %v", err)
	}

	// Inflate stops at the deflate end marker; trailing padding is ignored.
	src := append(buf.Bytes(), 0, 0, 0)
	got := readPipeline(t, Pipeline{}.Then(Inflate()), src)
	if !bytes.Equal(got, plain) {
		t.Fatal("inflate mismatch")
	}
}

type closeCounter struct {
	io.Reader
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestPipelineCloseAndStageError(t *testing.T) {
	t.Parallel()

	stageCloser := &closeCounter{Reader: strings.NewReader("")}
	src := &closeCounter{Reader: strings.NewReader("data")}

	p := Pipeline{}.Then(nil).Then(func(r io.Reader) (io.Reader, error) {
		stageCloser.Reader = r
		return stageCloser, nil
	})
	if len(p) != 1 {
		t.Fatalf("nil stage was appended: len=%d", len(p))
	}

	rc, err := p.Open(src)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = rc.Close()
	_ = rc.Close()
	if stageCloser.closed != 1 || src.closed != 1 {
		t.Fatalf("closed stage=%d src=%d, want 1 and 1", stageCloser.closed, src.closed)
	}

	failing := &closeCounter{Reader: strings.NewReader("data")}
	boom := errors.New("boom")
	_, err = Pipeline{}.Then(func(io.Reader) (io.Reader, error) { return nil, boom }).Open(failing)
	if !errors.Is(err, boom) {
		t.Fatalf("expected stage error, got %v", err)
	}
	if failing.closed != 1 {
		t.Fatalf("source not closed on stage failure: %d", failing.closed)
	}

	if _, err := (Pipeline{}).Open(nil); !errors.Is(err, ErrNilReader) {
		t.Fatalf("expected ErrNilReader, got %v", err)
	}
}
