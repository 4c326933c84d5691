// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package paz

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"

	"github.com/woozymasta/gameres"
	"github.com/woozymasta/gameres/crypt"
)

// Index layout limits.
const (
	// maxEntryCount is exclusive upper bound of sane entry count.
	maxEntryCount = 0x40000
	// entryFieldsSize covers offset and the three size fields after the entry name.
	entryFieldsSize = 8 + 4 + 4 + 4
	// videoKeySize is the substitution key stored after the count in video archives.
	videoKeySize = crypt.TableSize
)

// indexParams carries archive-level inputs of index parsing.
type indexParams struct {
	scheme    *Scheme
	maxOffset int64
	isAudio   bool
	isVideo   bool
}

// indexReader walks a decrypted index buffer.
type indexReader struct {
	data []byte
	pos  int
}

// need fails when fewer than n bytes remain.
func (r *indexReader) need(n int, what string) error {
	if n < 0 || len(r.data)-r.pos < n {
		return fmt.Errorf("%w: index truncated reading %s at %d", gameres.ErrMalformedIndex, what, r.pos)
	}

	return nil
}

// int32 reads a little-endian int32.
func (r *indexReader) int32(what string) (int32, error) {
	if err := r.need(4, what); err != nil {
		return 0, err
	}

	v := int32(binary.LittleEndian.Uint32(r.data[r.pos:])) //nolint:gosec // two's complement field
	r.pos += 4
	return v, nil
}

// cstring reads a NUL-terminated byte string.
func (r *indexReader) cstring() ([]byte, error) {
	end := bytes.IndexByte(r.data[r.pos:], 0)
	if end < 0 {
		return nil, fmt.Errorf("%w: unterminated entry name at %d", gameres.ErrMalformedIndex, r.pos)
	}

	raw := r.data[r.pos : r.pos+end]
	r.pos += end + 1
	return raw, nil
}

// parseIndex decodes a decrypted index into entries and the optional video key.
func parseIndex(data []byte, p indexParams) ([]gameres.Entry, *[crypt.TableSize]byte, error) {
	r := &indexReader{data: data}
	count, err := r.int32("entry count")
	if err != nil {
		return nil, nil, err
	}
	if count <= 0 || count >= maxEntryCount {
		return nil, nil, fmt.Errorf("%w: entry count %d", gameres.ErrMalformedIndex, count)
	}

	var videoKey *[crypt.TableSize]byte
	if p.isVideo {
		if err := r.need(videoKeySize, "video key"); err != nil {
			return nil, nil, err
		}

		videoKey = new([crypt.TableSize]byte)
		copy(videoKey[:], r.data[r.pos:])
		r.pos += videoKeySize
	}

	decoder := japanese.ShiftJIS.NewDecoder()
	encoder := encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder())
	dir := make([]gameres.Entry, 0, count)
	for i := 0; i < int(count); i++ {
		rawName, err := r.cstring()
		if err != nil {
			return nil, nil, err
		}

		name, err := decoder.String(string(rawName))
		if err != nil {
			name = string(rawName)
		}

		if err := r.need(entryFieldsSize, "entry fields"); err != nil {
			return nil, nil, err
		}

		fields := r.data[r.pos : r.pos+entryFieldsSize]
		r.pos += entryFieldsSize

		entry := gameres.NewEntry(name)
		entry.Offset = int64(binary.LittleEndian.Uint64(fields[0:8])) //nolint:gosec // checked by placement
		entry.UnpackedSize = binary.LittleEndian.Uint32(fields[8:12])
		entry.Size = binary.LittleEndian.Uint32(fields[12:16])
		entry.AlignedSize = binary.LittleEndian.Uint32(fields[16:20])
		if !entry.CheckPlacement(p.maxOffset) {
			return nil, nil, fmt.Errorf("%w: entry %q placement [%d, +%d) outside %d bytes",
				gameres.ErrMalformedIndex, name, entry.Offset, entry.AlignedSize, p.maxOffset)
		}

		packed, err := r.int32("packed flag")
		if err != nil {
			return nil, nil, err
		}

		entry.IsPacked = packed != 0
		if entry.Type == "" {
			switch {
			case p.isAudio:
				entry.Type = gameres.TypeAudio
			case p.isVideo:
				entry.Type = gameres.TypeVideo
			}
		}

		if p.scheme.Version > 0 {
			key, err := deriveEntryKey(p, entry, name, encoder)
			if err != nil {
				return nil, nil, err
			}

			entry.Key = key
		}

		dir = append(dir, entry)
	}

	return dir, videoKey, nil
}

// deriveEntryKey returns the per-entry cipher key, nil when the scheme data key applies.
func deriveEntryKey(p indexParams, entry gameres.Entry, name string, encoder *encoding.Encoder) ([]byte, error) {
	var password string
	if !entry.IsPacked {
		password = p.scheme.TypePassword(name, p.isAudio)
	}
	if password == "" && !p.isVideo {
		return nil, nil
	}

	text := fmt.Sprintf("%s %08X %s", strings.ToLower(name), entry.UnpackedSize, password)
	key, err := encoder.Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode key of %q: %w", name, err)
	}

	return key, nil
}
