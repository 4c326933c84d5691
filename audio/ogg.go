// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/gameres

package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/woozymasta/gameres"
)

// Ogg page and Vorbis identification header layout.
const (
	oggSignature      uint32 = 0x5367674f // "OggS"
	oggPageHeaderSize        = 27
	vorbisIDSize             = 30
	vorbisPacketID           = 0x01
)

// OGG decodes Ogg Vorbis sounds. The payload is served as the Ogg bitstream.
type OGG struct{}

var _ Format = (*OGG)(nil)

// NewOGG returns an Ogg Vorbis decoder.
func NewOGG() *OGG { return &OGG{} }

// Tag implements Format.
func (*OGG) Tag() string { return "OGG" }

// Description implements Format.
func (*OGG) Description() string { return "Ogg/Vorbis audio format" }

// Signatures implements Format.
func (*OGG) Signatures() []uint32 { return []uint32{oggSignature} }

// TryOpen implements Format.
func (o *OGG) TryOpen(v *gameres.View) (*Sound, error) {
	if v == nil {
		return nil, gameres.ErrNilReader
	}
	if !v.AsciiEqual(0, "OggS") {
		return nil, nil
	}

	page, err := v.Bytes(0, oggPageHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOgg, err)
	}
	if page[4] != 0 {
		return nil, fmt.Errorf("%w: page version %d", ErrInvalidOgg, page[4])
	}

	segments := int64(page[26])
	packet := int64(oggPageHeaderSize) + segments
	id, err := v.Bytes(packet, vorbisIDSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOgg, err)
	}
	if id[0] != vorbisPacketID || string(id[1:7]) != "vorbis" {
		return nil, fmt.Errorf("%w: first packet is not a Vorbis identification header", ErrInvalidOgg)
	}

	channels := uint16(id[11])
	rate := binary.LittleEndian.Uint32(id[12:16])
	nominal := int32(binary.LittleEndian.Uint32(id[20:24])) //nolint:gosec // signed field
	if channels == 0 || rate == 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidOgg, channels, rate)
	}

	format := WaveFormat{
		FormatTag:        WaveFormatOggVorbis,
		Channels:         channels,
		SamplesPerSecond: rate,
		BlockAlign:       2 * channels,
		BitsPerSample:    16,
	}

	bitrate := 0
	if nominal > 0 {
		bitrate = int(nominal)
		format.AverageBytesPerSecond = uint32(nominal) / 8
	}

	payload, err := v.Section(0, v.MaxOffset())
	if err != nil {
		return nil, err
	}

	return NewSound(o.Tag(), format, bitrate, payload, v), nil
}
