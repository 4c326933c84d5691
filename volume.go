// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package gameres

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/afero"
)

// Volume suffix range probed after the primary file name.
const (
	firstVolumeSuffix = 'A'
	lastVolumeSuffix  = 'Z'
)

// VolumeInfo describes one discovered spanning volume before it is opened.
type VolumeInfo struct {
	// Name is the volume path.
	Name string `json:"name" yaml:"name"`
	// Size is volume length in bytes.
	Size int64 `json:"size" yaml:"size"`
}

// FindVolumes probes fsys for files named primary+"A", primary+"B", ... and
// stops at the first missing suffix. A nil fsys yields no volumes.
func FindVolumes(fsys afero.Fs, primary string) ([]VolumeInfo, error) {
	if fsys == nil || primary == "" {
		return nil, nil
	}

	var found []VolumeInfo
	for suffix := firstVolumeSuffix; suffix <= lastVolumeSuffix; suffix++ {
		name := primary + string(suffix)
		fi, err := fsys.Stat(name)
		if err != nil {
			if errors.Is(err, afero.ErrFileNotFound) {
				break
			}

			return nil, fmt.Errorf("%w: stat %s: %w", ErrVolume, name, err)
		}
		if fi.IsDir() {
			break
		}

		found = append(found, VolumeInfo{Name: name, Size: fi.Size()})
	}

	return found, nil
}

// OpenVolumes opens every listed volume in order. When one fails, all views
// opened so far are closed before the error is returned.
func OpenVolumes(fsys afero.Fs, infos []VolumeInfo) ([]*View, error) {
	if len(infos) == 0 {
		return nil, nil
	}

	views := make([]*View, 0, len(infos))
	for _, info := range infos {
		v, err := OpenView(fsys, info.Name)
		if err != nil {
			for _, opened := range views {
				_ = opened.Close()
			}

			return nil, fmt.Errorf("%w: %w", ErrVolume, err)
		}

		views = append(views, v)
	}

	return views, nil
}

// Volumes is an ordered set of views forming one logical address space:
// the primary view followed by its spanning parts.
type Volumes struct {
	// views holds primary view first, then parts in suffix order.
	views []*View
	// total is combined length of all views.
	total int64
	// mu guards closed state and close operation.
	mu sync.Mutex
	// closed reports whether Close was already called.
	closed bool
}

// NewVolumes binds primary and parts into one address space. The result owns every view.
func NewVolumes(primary *View, parts ...*View) *Volumes {
	views := make([]*View, 0, len(parts)+1)
	views = append(views, primary)
	views = append(views, parts...)

	vs := &Volumes{views: views}
	for _, v := range views {
		vs.total += v.MaxOffset()
	}

	return vs
}

// Views returns the ordered views, primary first.
func (vs *Volumes) Views() []*View {
	out := make([]*View, len(vs.views))
	copy(out, vs.views)
	return out
}

// Total returns combined length of every volume.
func (vs *Volumes) Total() int64 {
	return vs.total
}

// Range returns a sequential reader over logical bytes [off, off+n).
// A range crossing volume boundaries is assembled from consecutive slices.
func (vs *Volumes) Range(off int64, n int64) (io.Reader, error) {
	if off < 0 || n < 0 || off > vs.total || n > vs.total-off {
		return nil, fmt.Errorf("%w: [%d, +%d) of %d", ErrOutOfRange, off, n, vs.total)
	}

	start := off
	end := off + n
	var readers []io.Reader
	var base int64
	for _, v := range vs.views {
		if start >= end {
			break
		}

		partEnd := base + v.MaxOffset()
		if start < partEnd {
			size := min(end, partEnd) - start
			section, err := v.Section(start-base, size)
			if err != nil {
				return nil, err
			}

			readers = append(readers, section)
			start += size
		}

		base = partEnd
	}

	switch len(readers) {
	case 0:
		return eofReader{}, nil
	case 1:
		return readers[0], nil
	default:
		return io.MultiReader(readers...), nil
	}
}

// Close closes every view exactly once. It is safe to call repeatedly.
func (vs *Volumes) Close() error {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if vs.closed {
		return nil
	}

	vs.closed = true
	var errs []error
	for _, v := range vs.views {
		if err := v.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// eofReader is an empty stream.
type eofReader struct{}

// Read implements io.Reader.
func (eofReader) Read([]byte) (int, error) {
	return 0, io.EOF
}
