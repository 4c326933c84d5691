// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package pbo

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/woozymasta/lzss"

	"github.com/woozymasta/gameres"
)

// Archive is an opened PBO.
type Archive struct {
	*gameres.BaseArchive

	layout *layout
}

var _ gameres.Archive = (*Archive)(nil)

// Headers returns parsed headers in original order.
func (a *Archive) Headers() []HeaderPair {
	out := make([]HeaderPair, len(a.layout.headers))
	copy(out, a.layout.headers)
	return out
}

// Header returns the first header value stored under key.
func (a *Archive) Header(key string) (string, bool) {
	for _, h := range a.layout.headers {
		if h.Key == key {
			return h.Value, true
		}
	}

	return "", false
}

// Prefix returns the "prefix" header, the virtual root of entry paths.
func (a *Archive) Prefix() string {
	prefix, _ := a.Header("prefix")
	return prefix
}

// RawEntries returns raw entry table records with resolved offsets.
func (a *Archive) RawEntries() []EntryInfo {
	out := make([]EntryInfo, len(a.layout.entries))
	copy(out, a.layout.entries)
	return out
}

// DataStart returns absolute offset of first payload byte.
func (a *Archive) DataStart() int64 {
	return a.layout.dataStart
}

// OpenEntry implements gameres.Archive.
// Returned stream yields decompressed content for LZSS-compressed entries.
func (a *Archive) OpenEntry(e gameres.Entry) (io.ReadCloser, error) {
	if err := a.CheckOpen(); err != nil {
		return nil, err
	}

	src, err := a.Volumes().Range(e.Offset, int64(e.Size))
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", e.Name, err)
	}

	p := gameres.Pipeline{}
	if e.IsPacked {
		p = p.Then(Unlzss(e.Name, e.UnpackedSize))
	}

	return p.Open(src)
}

// Unlzss returns a stage that decompresses an LZSS payload of outLen bytes
// eagerly and serves the result from memory.
func Unlzss(name string, outLen uint32) gameres.Stage {
	return func(src io.Reader) (io.Reader, error) {
		if uint64(outLen) > uint64(math.MaxInt) {
			return nil, ErrSizeOverflow
		}

		var buf bytes.Buffer
		buf.Grow(int(outLen))
		if _, err := lzss.DecompressToWriter(&buf, src, int(outLen), nil); err != nil {
			return nil, fmt.Errorf("decompress entry %s: %w", name, err)
		}

		return bytes.NewReader(buf.Bytes()), nil
	}
}
