// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package pbo

import (
	"github.com/woozymasta/gameres"
)

// Format identity.
const (
	Tag         = "PBO"
	Description = "Real Virtuality packed bank"
)

// Format is the PBO archive decoder. It implements gameres.ArchiveFormat.
type Format struct {
	opts Options
}

// New returns a PBO decoder.
func New(opts Options) *Format {
	opts.applyDefaults()
	return &Format{opts: opts}
}

// Tag implements gameres.ArchiveFormat.
func (f *Format) Tag() string { return Tag }

// Description implements gameres.ArchiveFormat.
func (f *Format) Description() string { return Description }

// Signatures implements gameres.ArchiveFormat.
func (f *Format) Signatures() []uint32 { return []uint32{Signature} }

// TryOpen implements gameres.ArchiveFormat. On success the archive owns v.
func (f *Format) TryOpen(v *gameres.View) (gameres.Archive, error) {
	if v == nil {
		return nil, gameres.ErrNilReader
	}
	if v.MaxOffset() < headerSize {
		return nil, nil
	}

	l, err := parseLayout(v, f.opts)
	if err != nil {
		return nil, err
	}

	dir := make([]gameres.Entry, len(l.entries))
	for i := range l.entries {
		dir[i] = l.entries[i].entry()
	}

	f.opts.Logger.Debug("pbo archive opened",
		"path", v.Name(),
		"entries", len(dir),
		"headers", len(l.headers),
		"trailer", l.hasTrailer,
	)

	return &Archive{
		BaseArchive: gameres.NewBaseArchive(Tag, gameres.NewVolumes(v), dir),
		layout:      l,
	}, nil
}
