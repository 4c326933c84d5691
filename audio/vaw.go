// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package audio

import (
	"errors"
	"fmt"

	"github.com/woozymasta/gameres"
)

// Resource header layout shared by VAW and sibling resource files.
const (
	resourceHeaderSize = 0x40
	packTypeOffset     = 0x20
	packTypeKey        = "PACKTYPE="
	innerTagOffset     = 0x10
)

// Pack types understood by VAW.
const (
	PackTypeWave      = 0
	PackTypeOgg       = 2
	PackTypeTaggedOgg = 6
)

// ResourceHeader is the fixed 0x40-byte header preceding wrapped resources.
type ResourceHeader struct {
	// Bytes is the raw header.
	Bytes [resourceHeaderSize]byte
	// PackType selects the wrapped payload kind.
	PackType int
}

// ParseResourceHeader decodes a resource header; ok is false when raw is not one.
func ParseResourceHeader(raw []byte) (ResourceHeader, bool) {
	var h ResourceHeader
	if len(raw) < resourceHeaderSize {
		return h, false
	}

	copy(h.Bytes[:], raw)
	field := h.Bytes[packTypeOffset:]
	if string(field[:len(packTypeKey)]) != packTypeKey {
		return h, false
	}

	digits := field[len(packTypeKey):]
	n := 0
	for n < len(digits) && digits[n] >= '0' && digits[n] <= '9' {
		h.PackType = h.PackType*10 + int(digits[n]-'0')
		n++
	}

	return h, n > 0
}

// VAW decodes Black Cyc sounds: a resource header wrapping WAV or Ogg data.
type VAW struct {
	wav Format
	ogg Format
}

var _ Format = (*VAW)(nil)

// NewVAW returns a VAW decoder delegating to the given inner formats.
func NewVAW(wav, ogg Format) *VAW {
	return &VAW{wav: wav, ogg: ogg}
}

// Tag implements Format.
func (*VAW) Tag() string { return "VAW" }

// Description implements Format.
func (*VAW) Description() string { return "Black Cyc audio format" }

// Signatures implements Format. VAW validates structure and lives in the wildcard bucket.
func (*VAW) Signatures() []uint32 { return []uint32{gameres.WildcardSignature} }

// TryOpen implements Format.
func (f *VAW) TryOpen(v *gameres.View) (*Sound, error) {
	if v == nil {
		return nil, gameres.ErrNilReader
	}
	if v.MaxOffset() < resourceHeaderSize {
		return nil, nil
	}

	raw, err := v.Bytes(0, resourceHeaderSize)
	if err != nil {
		return nil, err
	}

	header, ok := ParseResourceHeader(raw)
	if !ok {
		return nil, nil
	}

	inner, offset := f.inner(v, header)
	if offset == 0 {
		return nil, nil
	}
	if inner == nil {
		return nil, fmt.Errorf("%w: pack type %d", ErrInnerFormat, header.PackType)
	}

	sub, err := v.SliceFrom(offset)
	if err != nil {
		return nil, err
	}

	snd, err := inner.TryOpen(sub)
	if err != nil || snd == nil {
		return nil, errors.Join(err, sub.Close())
	}

	snd.Attach(v)
	return snd, nil
}

// inner selects the delegated format and its payload offset; zero offset means not mine.
func (f *VAW) inner(v *gameres.View, header ResourceHeader) (Format, int64) {
	switch {
	case header.PackType == PackTypeWave:
		if !v.AsciiEqual(resourceHeaderSize, "RIFF") {
			return nil, 0
		}

		return f.wav, resourceHeaderSize
	case header.PackType == PackTypeOgg:
		return f.ogg, 0x6C
	case header.PackType == PackTypeTaggedOgg && string(header.Bytes[innerTagOffset:innerTagOffset+4]) == "OGG ":
		return f.ogg, resourceHeaderSize
	default:
		return nil, 0
	}
}
