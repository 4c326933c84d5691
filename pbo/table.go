// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package pbo

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/woozymasta/gameres"
)

// recordFieldsSize is mime, original size, offset, timestamp and data size.
const recordFieldsSize = 5 * 4

// layout is the parsed structure of one PBO file.
type layout struct {
	headers   []HeaderPair
	entries   []EntryInfo
	dataStart int64
	trailer   [shaSize]byte
	// hasTrailer reports whether trailing 0x00 + SHA1 was detected.
	hasTrailer bool
}

// tableCursor reads the header and entry table front to back.
type tableCursor struct {
	br  *bufio.Reader
	pos int64
	buf bytes.Buffer
}

func newTableCursor(v *gameres.View) *tableCursor {
	return &tableCursor{br: bufio.NewReaderSize(io.NewSectionReader(v, 0, v.MaxOffset()), 64<<10)}
}

// cstring reads one NUL-terminated string; limit > 0 bounds its length.
func (c *tableCursor) cstring(limit int) (string, error) {
	c.buf.Reset()
	for {
		chunk, err := c.br.ReadSlice(0)
		c.pos += int64(len(chunk))
		switch {
		case err == nil:
			c.buf.Write(chunk[:len(chunk)-1])
		case errors.Is(err, bufio.ErrBufferFull):
			c.buf.Write(chunk)
		default:
			return "", err
		}

		if limit > 0 && c.buf.Len() > limit {
			return "", ErrFileNameTooLong
		}
		if err == nil {
			return c.buf.String(), nil
		}
	}
}

// read fills p completely.
func (c *tableCursor) read(p []byte) error {
	n, err := io.ReadFull(c.br, p)
	c.pos += int64(n)
	return err
}

// parseLayout reads and validates PBO structure from v.
func parseLayout(v *gameres.View, opts Options) (*layout, error) {
	c := newTableCursor(v)

	headers, err := readHeaders(c)
	if err != nil {
		return nil, err
	}

	entries, err := readEntries(c)
	if err != nil {
		return nil, fmt.Errorf("%w: entry table at %d: %w", gameres.ErrMalformedIndex, c.pos, err)
	}

	l := &layout{headers: headers, entries: entries, dataStart: c.pos}
	resolve, ok := offsetResolvers[opts.OffsetMode]
	if !ok {
		return nil, fmt.Errorf("%w: unknown offset mode %q", ErrInvalidEntryOffset, opts.OffsetMode)
	}
	if err := resolve(l.entries, l.dataStart, v.MaxOffset()); err != nil {
		return nil, err
	}
	if err := checkPlacement(l.entries, l.dataStart, v.MaxOffset()); err != nil {
		return nil, err
	}

	if opts.EnableJunkFilter {
		l.entries = dropJunk(l.entries)
	}

	l.hasTrailer = readTrailer(v, &l.trailer)
	return l, nil
}

// readHeaders checks the "Vers" record and collects key-value pairs up to the empty key.
// Failures here mean the source is not a PBO.
func readHeaders(c *tableCursor) ([]HeaderPair, error) {
	var fixed [headerSize]byte
	if err := c.read(fixed[:]); err != nil {
		return nil, fmt.Errorf("%w: short header", ErrInvalidHeader)
	}
	if fixed[0] != 0 || MimeType(binary.LittleEndian.Uint32(fixed[1:5])) != MimeHeader {
		return nil, ErrInvalidHeader
	}

	var headers []HeaderPair
	for {
		key, err := c.cstring(0)
		if err != nil {
			return nil, fmt.Errorf("%w: header key: %w", ErrInvalidHeader, err)
		}
		if key == "" {
			return headers, nil
		}

		value, err := c.cstring(0)
		if err != nil {
			return nil, fmt.Errorf("%w: header %q value: %w", ErrInvalidHeader, key, err)
		}

		headers = append(headers, HeaderPair{Key: key, Value: value})
	}
}

// readEntries collects records until the all-zero terminator.
func readEntries(c *tableCursor) ([]EntryInfo, error) {
	var (
		entries []EntryInfo
		fields  [recordFieldsSize]byte
	)
	for {
		name, err := c.cstring(maxNameLen)
		if err != nil {
			return nil, err
		}
		if err := c.read(fields[:]); err != nil {
			return nil, fmt.Errorf("record %q: %w", name, err)
		}

		e := EntryInfo{
			Path:         name,
			MimeType:     MimeType(binary.LittleEndian.Uint32(fields[0:])),
			OriginalSize: binary.LittleEndian.Uint32(fields[4:]),
			Offset:       binary.LittleEndian.Uint32(fields[8:]),
			TimeStamp:    binary.LittleEndian.Uint32(fields[12:]),
			DataSize:     binary.LittleEndian.Uint32(fields[16:]),
		}
		if e == (EntryInfo{}) {
			return entries, nil
		}

		entries = append(entries, e)
	}
}

// offsetResolver assigns absolute payload offsets in place.
type offsetResolver func(entries []EntryInfo, dataStart int64, total int64) error

var offsetResolvers = map[OffsetMode]offsetResolver{
	OffsetModeSequential: sequentialOffsets,
	OffsetModeStoredCompat: func(entries []EntryInfo, dataStart int64, total int64) error {
		if used, err := storedOffsets(entries, dataStart, total); err == nil && used {
			return nil
		}

		return sequentialOffsets(entries, dataStart, total)
	},
	OffsetModeStoredStrict: func(entries []EntryInfo, dataStart int64, total int64) error {
		used, err := storedOffsets(entries, dataStart, total)
		if err != nil {
			return fmt.Errorf("%w: %w: %w", gameres.ErrMalformedIndex, ErrInvalidEntryOffset, err)
		}
		if used {
			return nil
		}

		return sequentialOffsets(entries, dataStart, total)
	},
}

// sequentialOffsets packs payloads back to back from dataStart in table order.
func sequentialOffsets(entries []EntryInfo, dataStart int64, _ int64) error {
	next := dataStart
	for i := range entries {
		if next >= maxPBOData {
			return fmt.Errorf("%w: %w: entry %s starts past 4 GiB",
				gameres.ErrMalformedIndex, ErrSizeOverflow, entries[i].Path)
		}

		entries[i].Offset = uint32(next) //nolint:gosec // below maxPBOData
		next += int64(entries[i].DataSize)
	}

	if next > maxPBOData {
		return fmt.Errorf("%w: %w: payload region ends at %d", gameres.ErrMalformedIndex, ErrSizeOverflow, next)
	}

	return nil
}

// storedOffsets applies the offsets written in the table. used is false when
// every stored offset is zero. Stored values are tried as relative to dataStart
// and as absolute, starting with the reading the first entry suggests.
func storedOffsets(entries []EntryInfo, dataStart int64, total int64) (used bool, err error) {
	i := 0
	for i < len(entries) && entries[i].Offset == 0 {
		i++
	}
	if i == len(entries) {
		return false, nil
	}

	bases := [2]int64{dataStart, 0}
	if int64(entries[0].Offset) >= dataStart {
		bases = [2]int64{0, dataStart}
	}

	var errs []error
	for _, base := range bases {
		resolved, err := rebase(entries, base, dataStart, total)
		if err == nil {
			copy(entries, resolved)
			return true, nil
		}

		errs = append(errs, err)
	}

	return false, errors.Join(errs...)
}

// rebase returns entries with stored offsets shifted by base, checked for order and bounds.
func rebase(entries []EntryInfo, base int64, dataStart int64, total int64) ([]EntryInfo, error) {
	out := make([]EntryInfo, len(entries))
	prev := dataStart
	for i, e := range entries {
		at := base + int64(e.Offset)
		switch {
		case at < prev:
			return nil, fmt.Errorf("entry %s at %d is before %d", e.Path, at, prev)
		case at >= maxPBOData, at+int64(e.DataSize) > total:
			return nil, fmt.Errorf("entry %s at %d+%d is outside the file", e.Path, at, e.DataSize)
		}

		e.Offset = uint32(at) //nolint:gosec // below maxPBOData
		out[i] = e
		prev = at
	}

	return out, nil
}

// checkPlacement rejects payloads before the data region or past the end of the file.
func checkPlacement(entries []EntryInfo, dataStart int64, total int64) error {
	for i := range entries {
		entry := entries[i].entry()
		if int64(entries[i].Offset) < dataStart || !entry.CheckPlacement(total) {
			return fmt.Errorf("%w: %w: entry %s at %d+%d",
				gameres.ErrMalformedIndex, ErrInvalidEntryOffset, entries[i].Path, entries[i].Offset, entries[i].DataSize)
		}
	}

	return nil
}

// dropJunk removes empty records, packed records without a size and names that cannot be extracted.
func dropJunk(entries []EntryInfo) []EntryInfo {
	kept := make([]EntryInfo, 0, len(entries))
	for _, e := range entries {
		if e.DataSize == 0 || (e.MimeType == MimeCompress && e.OriginalSize == 0) {
			continue
		}
		if name, err := gameres.SanitizePath(e.Path); err != nil || name == "" {
			continue
		}

		kept = append(kept, e)
	}

	return kept
}

// readTrailer reports whether the file ends with a zero byte and a SHA1 digest.
func readTrailer(v *gameres.View, digest *[shaSize]byte) bool {
	tail, err := v.Bytes(v.MaxOffset()-headerSize, headerSize)
	if err != nil || tail[0] != 0 {
		return false
	}

	copy(digest[:], tail[1:])
	return true
}
