// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package gameres

import (
	"io"
	"testing"
)

// memFile is one stored entry of memArchive.
type memFile struct {
	name string
	data []byte
}

// memArchive is an unencrypted container over one in-memory view.
type memArchive struct {
	*BaseArchive
}

// OpenEntry implements Archive.
func (a *memArchive) OpenEntry(e Entry) (io.ReadCloser, error) {
	if err := a.CheckOpen(); err != nil {
		return nil, err
	}

	r, err := a.Volumes().Range(e.Offset, int64(e.AlignedSize))
	if err != nil {
		return nil, err
	}

	return Pipeline{}.Then(Limit(int64(e.Size))).Open(r)
}

// newMemArchive lays files out back to back, padding each to 8 bytes.
func newMemArchive(t *testing.T, files ...memFile) *memArchive {
	t.Helper()

	var (
		raw []byte
		dir []Entry
	)
	for _, f := range files {
		e := NewEntry(f.name)
		e.Offset = int64(len(raw))
		e.Size = uint32(len(f.data))
		e.AlignedSize = (e.Size + 7) &^ 7

		raw = append(raw, f.data...)
		raw = append(raw, make([]byte, int(e.AlignedSize-e.Size))...)
		dir = append(dir, e)
	}

	v := NewBytesView("mem.arc", raw)
	for _, e := range dir {
		if !e.CheckPlacement(v.MaxOffset()) {
			t.Fatalf("fixture entry %s out of bounds", e.Name)
		}
	}

	return &memArchive{BaseArchive: NewBaseArchive("MEM", NewVolumes(v), dir)}
}
