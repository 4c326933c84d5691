// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package gameres

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/afero"
)

// View is a read-only, randomly addressable byte range over one physical file.
// Slicing a view never copies data; slices share the parent's reader and
// never close it.
type View struct {
	// ra is the underlying random-access reader.
	ra io.ReaderAt
	// fs is the filesystem the view was opened from; nil for detached views.
	fs afero.Fs
	// closer is set when the view owns the underlying handle.
	closer io.Closer
	// name is the source path (or a descriptive label for detached views).
	name string
	// base is absolute offset of the first view byte in ra.
	base int64
	// size is total view length in bytes.
	size int64
	// mu guards closed state and close operation.
	mu sync.Mutex
	// closed reports whether Close was already called.
	closed bool
}

// OpenView opens path on fsys and returns an owning view over the whole file.
// A nil fsys means the host filesystem.
func OpenView(fsys afero.Fs, path string) (*View, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	// Only OS files read with pread; other afero handles seek internally.
	var ra io.ReaderAt = f
	if _, ok := f.(*os.File); !ok {
		ra = &lockedReaderAt{ra: f}
	}

	return &View{
		ra:     ra,
		fs:     fsys,
		closer: f,
		name:   path,
		size:   fi.Size(),
	}, nil
}

// NewView wraps an existing ReaderAt. The view does not own ra and Close does not close it.
func NewView(name string, ra io.ReaderAt, size int64) *View {
	return &View{ra: ra, name: name, size: size}
}

// NewBytesView returns a detached view over an in-memory buffer.
func NewBytesView(name string, data []byte) *View {
	return NewView(name, bytes.NewReader(data), int64(len(data)))
}

// Name returns the path the view was opened from.
func (v *View) Name() string {
	if v == nil {
		return ""
	}

	return v.name
}

// FS returns the filesystem the view belongs to, nil for detached views.
func (v *View) FS() afero.Fs {
	if v == nil {
		return nil
	}

	return v.fs
}

// MaxOffset returns view length in bytes.
func (v *View) MaxOffset() int64 {
	if v == nil {
		return 0
	}

	return v.size
}

// ReadAt implements io.ReaderAt bounded to the view range.
func (v *View) ReadAt(p []byte, off int64) (int, error) {
	if v == nil || v.ra == nil {
		return 0, ErrNilReader
	}
	if v.isClosed() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrOutOfRange, off)
	}
	if off >= v.size {
		return 0, io.EOF
	}

	var short bool
	if remaining := v.size - off; int64(len(p)) > remaining {
		p = p[:remaining]
		short = true
	}

	n, err := v.ra.ReadAt(p, v.base+off)
	if err == nil && short {
		err = io.EOF
	}

	return n, err
}

// Slice returns a sub-view of n bytes starting at off. The slice does not own
// the underlying handle; closing it only detaches the slice itself.
func (v *View) Slice(off int64, n int64) (*View, error) {
	if v == nil || v.ra == nil {
		return nil, ErrNilReader
	}
	if off < 0 || n < 0 || off > v.size || n > v.size-off {
		return nil, fmt.Errorf("%w: [%d, +%d) of %d in %s", ErrOutOfRange, off, n, v.size, v.name)
	}

	return &View{
		ra:   v.ra,
		fs:   v.fs,
		name: v.name,
		base: v.base + off,
		size: n,
	}, nil
}

// SliceFrom returns a sub-view running from off to the end of the view.
func (v *View) SliceFrom(off int64) (*View, error) {
	return v.Slice(off, v.MaxOffset()-off)
}

// Section returns a sequential reader over [off, off+n) of the view.
func (v *View) Section(off int64, n int64) (*io.SectionReader, error) {
	if v == nil || v.ra == nil {
		return nil, ErrNilReader
	}
	if off < 0 || n < 0 || off > v.size || n > v.size-off {
		return nil, fmt.Errorf("%w: [%d, +%d) of %d in %s", ErrOutOfRange, off, n, v.size, v.name)
	}

	return io.NewSectionReader(v, off, n), nil
}

// Bytes reads exactly n bytes at off.
func (v *View) Bytes(off int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := v.ReadAt(buf, off); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: short read of %d bytes at %d", ErrOutOfRange, n, off)
		}

		return nil, err
	}

	return buf, nil
}

// ReadUint32 reads a little-endian uint32 at off.
func (v *View) ReadUint32(off int64) (uint32, error) {
	var buf [4]byte
	if _, err := v.ReadAt(buf[:], off); err != nil {
		if err == io.EOF {
			return 0, fmt.Errorf("%w: uint32 at %d", ErrOutOfRange, off)
		}

		return 0, err
	}

	return binary.LittleEndian.Uint32(buf[:]), nil
}

// AsciiEqual reports whether the view holds text at off.
func (v *View) AsciiEqual(off int64, text string) bool {
	buf := make([]byte, len(text))
	if _, err := v.ReadAt(buf, off); err != nil {
		return false
	}

	return string(buf) == text
}

// Signature returns the first four bytes of the view as little-endian uint32.
// Sources shorter than four bytes have signature zero.
func (v *View) Signature() (uint32, error) {
	if v.MaxOffset() < 4 {
		return 0, nil
	}

	return v.ReadUint32(0)
}

// Close releases the underlying handle when the view owns one. It is safe to call repeatedly.
func (v *View) Close() error {
	if v == nil {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil
	}

	v.closed = true
	if v.closer != nil {
		return v.closer.Close()
	}

	return nil
}

// isClosed reports whether Close was already called.
func (v *View) isClosed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.closed
}

// lockedReaderAt serializes ReadAt calls of a handle that is not safe for concurrent use.
type lockedReaderAt struct {
	ra io.ReaderAt
	mu sync.Mutex
}

// ReadAt implements io.ReaderAt.
func (l *lockedReaderAt) ReadAt(p []byte, off int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.ra.ReadAt(p, off)
}
