// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package gameres

import (
	"bytes"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/woozymasta/gameres/crypt"
)

// blockChunkBlocks is number of cipher blocks decrypted per source read.
const blockChunkBlocks = 512

// Stage wraps the output address space of the previous stage.
type Stage func(src io.Reader) (io.Reader, error)

// Pipeline is an ordered list of read-only byte transforms.
// Stages are applied in slice order; the last stage output is what callers read.
type Pipeline []Stage

// Then returns a copy of the pipeline with stage appended. Nil stages are skipped.
func (p Pipeline) Then(stage Stage) Pipeline {
	if stage == nil {
		return p
	}

	out := make(Pipeline, len(p), len(p)+1)
	copy(out, p)
	return append(out, stage)
}

// Open applies every stage to src and returns the final stream.
// Closing the result closes every intermediate stage that holds resources,
// outermost first, and src itself when it is an io.Closer.
func (p Pipeline) Open(src io.Reader) (io.ReadCloser, error) {
	if src == nil {
		return nil, ErrNilReader
	}

	out := &pipelineReader{Reader: src}
	if c, ok := src.(io.Closer); ok {
		out.closers = append(out.closers, c)
	}

	for i, stage := range p {
		next, err := stage(out.Reader)
		if err != nil {
			_ = out.Close()
			return nil, fmt.Errorf("pipeline stage %d: %w", i, err)
		}

		passthrough := next == out.Reader
		out.Reader = next
		if c, ok := next.(io.Closer); ok && !passthrough {
			out.closers = append(out.closers, c)
		}
	}

	return out, nil
}

// pipelineReader is the assembled pipeline stream.
type pipelineReader struct {
	io.Reader
	closers []io.Closer
	closed  bool
}

// Close releases stage resources once.
func (r *pipelineReader) Close() error {
	if r.closed {
		return nil
	}

	r.closed = true
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Xor returns a whitening stage that XORs every byte with key.
// A zero key yields the source unchanged.
func Xor(key byte) Stage {
	return func(src io.Reader) (io.Reader, error) {
		if key == 0 {
			return src, nil
		}

		return &xorReader{src: src, key: key}, nil
	}
}

// xorReader applies single-byte XOR whitening.
type xorReader struct {
	src io.Reader
	key byte
}

// Read implements io.Reader.
func (r *xorReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	XorBytes(p[:n], r.key)
	return n, err
}

// XorBytes XORs data in place with key.
func XorBytes(data []byte, key byte) {
	for i := range data {
		data[i] ^= key
	}
}

// BlockDecrypt returns an ECB decryption stage over block.
// A trailing partial block is passed through unchanged.
func BlockDecrypt(block cipher.Block) Stage {
	return func(src io.Reader) (io.Reader, error) {
		if block == nil {
			return nil, errors.New("block cipher is nil")
		}

		bs := block.BlockSize()
		return &blockDecryptReader{
			src:   src,
			block: block,
			in:    make([]byte, bs*blockChunkBlocks),
		}, nil
	}
}

// blockDecryptReader decrypts whole cipher blocks as they are read.
type blockDecryptReader struct {
	src     io.Reader
	block   cipher.Block
	in      []byte
	pending []byte
	err     error
}

// Read implements io.Reader.
func (r *blockDecryptReader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		if r.err != nil {
			return 0, r.err
		}

		r.fill()
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// fill reads the next chunk of source blocks and decrypts it into pending.
func (r *blockDecryptReader) fill() {
	n, err := io.ReadFull(r.src, r.in)
	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		r.err = io.EOF
	case err != nil:
		r.err = err
	}

	bs := r.block.BlockSize()
	chunk := r.in[:n]
	for off := 0; off+bs <= len(chunk); off += bs {
		r.block.Decrypt(chunk[off:off+bs], chunk[off:off+bs])
	}

	r.pending = chunk
}

// KeystreamXor returns a stage combining the source with a keystream by XOR.
func KeystreamXor(stream cipher.Stream) Stage {
	return func(src io.Reader) (io.Reader, error) {
		if stream == nil {
			return nil, errors.New("stream cipher is nil")
		}

		return cipher.StreamReader{S: stream, R: src}, nil
	}
}

// RepeatXor returns a stage that XORs the source with pattern, reusing the
// pattern cyclically when the source is longer.
func RepeatXor(pattern []byte) Stage {
	return func(src io.Reader) (io.Reader, error) {
		if len(pattern) == 0 {
			return nil, errors.New("xor pattern is empty")
		}

		return &repeatXorReader{src: src, pattern: pattern}, nil
	}
}

// repeatXorReader applies a cyclic XOR window.
type repeatXorReader struct {
	src     io.Reader
	pattern []byte
	pos     int
}

// Read implements io.Reader.
func (r *repeatXorReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	for i := 0; i < n; i++ {
		p[i] ^= r.pattern[r.pos]
		r.pos++
		if r.pos == len(r.pattern) {
			r.pos = 0
		}
	}

	return n, err
}

// Substitute returns a stage that reads exactly size bytes eagerly and maps every
// byte through table. The result is served from memory.
func Substitute(table *[256]byte, size int64) Stage {
	return func(src io.Reader) (io.Reader, error) {
		if table == nil {
			return nil, errors.New("substitution table is nil")
		}
		if size < 0 {
			return nil, fmt.Errorf("%w: negative size %d", ErrOutOfRange, size)
		}

		data := make([]byte, size)
		n, err := io.ReadFull(src, data)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return nil, fmt.Errorf("read substitution input: %w", err)
		}

		data = data[:n]
		crypt.Substitute(table, data)

		return bytes.NewReader(data), nil
	}
}

// Limit returns a truncation stage yielding at most n bytes.
func Limit(n int64) Stage {
	return func(src io.Reader) (io.Reader, error) {
		return io.LimitReader(src, n), nil
	}
}

// Inflate returns a raw deflate decompression stage.
func Inflate() Stage {
	return func(src io.Reader) (io.Reader, error) {
		return flate.NewReader(src), nil
	}
}
