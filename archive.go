// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package gameres

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/spf13/afero"
)

// Archive is an opened container: an entry directory bound to its volumes.
type Archive interface {
	// Name returns the primary source path.
	Name() string
	// FormatTag returns the tag of the decoder that opened the archive.
	FormatTag() string
	// Entries returns a copy of the directory in index order.
	Entries() []Entry
	// OpenEntry builds a lazily read stream of the entry plaintext.
	OpenEntry(e Entry) (io.ReadCloser, error)
	// Close releases every owned volume. It is safe to call repeatedly.
	Close() error
}

// ArchiveFormat is a registered container decoder.
type ArchiveFormat = Format[Archive]

// ArchiveRegistry dispatches sources to container decoders.
type ArchiveRegistry = Registry[Archive]

// NewArchiveRegistry returns an empty container registry.
func NewArchiveRegistry(logger *slog.Logger) *ArchiveRegistry {
	return NewRegistry[Archive](logger)
}

// BaseArchive carries state every container shares. Formats embed it and
// implement OpenEntry on top.
type BaseArchive struct {
	// volumes is the owned address space, primary first.
	volumes *Volumes
	// tag is the opening decoder tag.
	tag string
	// dir stores parsed immutable entries.
	dir []Entry
	// mu guards closed state.
	mu sync.Mutex
	// closed reports whether Close was already called.
	closed bool
}

// NewBaseArchive binds dir to volumes. The archive takes ownership of volumes.
func NewBaseArchive(tag string, volumes *Volumes, dir []Entry) *BaseArchive {
	return &BaseArchive{volumes: volumes, tag: tag, dir: dir}
}

// Name returns the primary source path.
func (a *BaseArchive) Name() string {
	views := a.volumes.views
	if len(views) == 0 {
		return ""
	}

	return views[0].Name()
}

// FormatTag returns the decoder tag.
func (a *BaseArchive) FormatTag() string {
	return a.tag
}

// Entries returns a copy of parsed entries.
func (a *BaseArchive) Entries() []Entry {
	out := make([]Entry, len(a.dir))
	copy(out, a.dir)
	return out
}

// Volumes returns the archive address space.
func (a *BaseArchive) Volumes() *Volumes {
	return a.volumes
}

// Primary returns the primary volume view.
func (a *BaseArchive) Primary() *View {
	return a.volumes.views[0]
}

// CheckOpen returns ErrClosed after Close.
func (a *BaseArchive) CheckOpen() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}

	return nil
}

// Close releases every volume once.
func (a *BaseArchive) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	return a.volumes.Close()
}

// OpenArchive opens path on fsys and probes it against registry.
// The returned archive owns the view; on ErrUnknownFormat the view is released.
func OpenArchive(registry *ArchiveRegistry, fsys afero.Fs, path string) (Archive, error) {
	v, err := OpenView(fsys, path)
	if err != nil {
		return nil, err
	}

	arc, _, err := registry.Probe(v)
	if err != nil {
		_ = v.Close()
		return nil, err
	}
	if arc == nil {
		_ = v.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	return arc, nil
}

// FindEntry returns the entry named name.
func FindEntry(arc Archive, name string) (Entry, error) {
	lookup := NormalizePath(name)
	for _, e := range arc.Entries() {
		if NormalizePath(e.Name) == lookup {
			return e, nil
		}
	}

	return Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
}

// ReadEntry reads full plaintext of the named entry.
func ReadEntry(arc Archive, name string) ([]byte, error) {
	e, err := FindEntry(arc, name)
	if err != nil {
		return nil, err
	}

	rc, err := arc.OpenEntry(e)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return io.ReadAll(rc)
}
